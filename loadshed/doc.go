// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package loadshed provides the pipeline layer which rejects calls
// immediately, rather than queuing them, when the service it wraps is
// not ready.
package loadshed
