// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package service defines the uniform contract implemented by every layer
of a layerx pipeline and by the inner transport the pipeline wraps.

A Service is polled for readiness, then invoked:

	if s.Ready(ctx) == service.Ready {
		res, err := s.Invoke(ctx, req)
		...
	}

The package also defines the error taxonomy shared by all layers. Layer
rejections are reported as *Error values which match the sentinel errors
ErrShed, ErrRateLimited, and ErrTimeout under errors.Is. Errors produced
by the inner transport are never wrapped, so a caller can inspect them
exactly as the transport returned them.
*/
package service
