// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layerx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gogama/layerx/transport"
)

// HTTPPipeline is a Pipeline sending HTTP requests.
type HTTPPipeline = Pipeline[*http.Request, *http.Response]

// NewHTTP builds a pipeline around the HTTP client c. If c is nil, a
// transport.Client over http.DefaultClient with no in-flight limit is
// used.
//
// The pipeline closes the body of any response which arrives after its
// call timed out. A WithDiscard option replaces this behavior.
func NewHTTP(cfg Config, c *transport.Client, opts ...Option) (*HTTPPipeline, error) {
	if c == nil {
		c = transport.NewClient(nil)
	}
	opts = append([]Option{WithDiscard(closeBody)}, opts...)
	return New[*http.Request, *http.Response](c, cfg, opts...)
}

func closeBody(res *http.Response, _ error) {
	if res != nil && res.Body != nil {
		_ = res.Body.Close()
	}
}

// Caller is the interface that wraps the basic Call method.
//
// Call polls the service for readiness and, if it is ready, invokes it.
// Pipeline implements the Caller interface.
type Caller[Req, Res any] interface {
	Call(ctx context.Context, req Req) (Res, error)
}

// HTTPCaller is a Caller of HTTP requests.
type HTTPCaller = Caller[*http.Request, *http.Response]

// Get uses the specified Caller to issue a GET to the specified URL.
//
// To send a request with custom headers, use http.NewRequestWithContext
// and c.Call.
func Get(ctx context.Context, c HTTPCaller, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	return c.Call(ctx, req)
}

// Head uses the specified Caller to issue a HEAD to the specified URL.
//
// To send a request with custom headers, use http.NewRequestWithContext
// and c.Call.
func Head(ctx context.Context, c HTTPCaller, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "HEAD", url, nil)
	if err != nil {
		return nil, err
	}
	return c.Call(ctx, req)
}

// Post uses the specified Caller to issue a POST to the specified URL.
//
// The body parameter may be nil for an empty body, or may be any of the
// types supported by BodyBytes, namely: string; []byte; io.Reader; and
// io.ReadCloser.
func Post(ctx context.Context, c HTTPCaller, url, contentType string, body interface{}) (*http.Response, error) {
	b, err := BodyBytes(body)
	if err != nil {
		return nil, err
	}
	var r io.Reader
	if b != nil {
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", url, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.Call(ctx, req)
}

// PostForm uses the specified Caller to issue a POST to the specified
// URL, with data's keys and values URL-encoded as the request body.
//
// The Content-Type header is set to application/x-www-form-urlencoded.
func PostForm(ctx context.Context, c HTTPCaller, url string, data url.Values) (*http.Response, error) {
	return Post(ctx, c, url, "application/x-www-form-urlencoded", data.Encode())
}

const badBodyTypeMsg = "layerx: invalid type (for body use nil, " +
	"string, []byte, io.Reader or io.ReadCloser)"

// BodyBytes converts a generic body parameter to a byte slice.
//
// The body parameter may be nil, or it may be a string, []byte,
// io.Reader, or io.ReadCloser. A reader is read to the end, and closed
// if it is an io.ReadCloser. Any other type is an error.
func BodyBytes(body interface{}) ([]byte, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case io.ReadCloser:
		b, err := io.ReadAll(x)
		if err != nil {
			return nil, err
		}
		err = x.Close()
		if err != nil {
			return nil, err
		}
		return b, nil
	case io.Reader:
		return BodyBytes(io.NopCloser(x))
	default:
		return nil, errors.New(badBodyTypeMsg)
	}
}
