// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package transport adapts an HTTP client into the inner service of a
layerx pipeline.

A Client sends each request through an HTTPDoer, typically the Go
standard HTTP client. It reports itself ready while fewer than its
maximum number of requests are in flight, so a pipeline's load-shed
layer can reject calls once the transport is saturated:

	c := transport.NewClient(&http.Client{}, transport.WithMaxInFlight(64))

Connection pooling, TLS, DNS, and keep-alive remain the concern of the
HTTPDoer. NewHTTPTransport builds a standard library transport with or
without HTTP/2 support for use in an http.Client.
*/
package transport
