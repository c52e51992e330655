// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gogama/layerx/service"
	"golang.org/x/net/http2"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	//
	// The Do method must follow the contract documented on the GoLang
	// standard library http.Client from the net/http package.
	Do(r *http.Request) (*http.Response, error)
}

// ErrBusy is returned by Client.Invoke when every in-flight slot is
// taken. A caller which polls Ready first only sees it when it loses a
// race with a concurrent caller.
var ErrBusy = errors.New("layerx/transport: too many requests in flight")

// An Option configures a Client.
type Option func(*Client)

// WithMaxInFlight limits the number of requests a Client has in flight
// at once. A request is in flight from the moment it is sent until its
// response body is closed, or until it fails. A limit of zero or less
// means no limit, which is the default.
func WithMaxInFlight(n int) Option {
	return func(c *Client) {
		c.slots = newSlotPool(n)
	}
}

// A Client is a service which sends HTTP requests through an HTTPDoer.
//
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	doer  HTTPDoer
	slots *slotPool
}

// NewClient returns a Client sending requests through doer. If doer is
// nil, http.DefaultClient from the standard net/http package is used.
func NewClient(doer HTTPDoer, opts ...Option) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	c := &Client{doer: doer}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ready reports service.NotReady while the maximum number of requests
// is in flight, and service.Ready otherwise.
func (c *Client) Ready(_ context.Context) service.Readiness {
	if c.slots.full() {
		return service.NotReady
	}
	return service.Ready
}

// Invoke sends req and returns the response. The caller must close the
// response body, which frees the request's in-flight slot.
//
// Cancellation of ctx aborts the request until the response headers
// arrive. After that the response body stays readable even if ctx is
// cancelled, so that a layer may release its own context as soon as
// Invoke returns.
func (c *Client) Invoke(ctx context.Context, req *http.Request) (*http.Response, error) {
	release, ok := c.slots.tryAcquire()
	if !ok {
		return nil, ErrBusy
	}
	reqCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(ctx, cancel)
	res, err := c.doer.Do(req.WithContext(reqCtx))
	stop()
	done := func() {
		cancel()
		release()
	}
	if err != nil {
		done()
		return nil, err
	}
	if res.Body == nil {
		done()
		return res, nil
	}
	res.Body = &releasingBody{ReadCloser: res.Body, release: done}
	return res, nil
}

// InFlight returns the number of requests currently in flight. It is
// always zero if the Client has no in-flight limit.
func (c *Client) InFlight() int {
	return c.slots.inUse()
}

// CloseIdleConnections invokes the same method on the client's
// underlying HTTPDoer.
//
// If the HTTPDoer has no CloseIdleConnections method, this method does
// nothing.
func (c *Client) CloseIdleConnections() {
	type idleCloser interface {
		CloseIdleConnections()
	}
	if ic, ok := c.doer.(idleCloser); ok {
		ic.CloseIdleConnections()
	}
}

type releasingBody struct {
	io.ReadCloser
	once    sync.Once
	release func()
}

func (b *releasingBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.release)
	return err
}

// NewHTTPTransport returns a new standard library HTTP transport with
// the same dialing, proxy, and idle connection settings as
// http.DefaultTransport. If enableHTTP2 is true, the transport is
// configured to negotiate HTTP/2 over TLS; otherwise it only speaks
// HTTP/1.1.
func NewHTTPTransport(enableHTTP2 bool) (*http.Transport, error) {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if !enableHTTP2 {
		t.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
		return t, nil
	}
	if err := http2.ConfigureTransport(t); err != nil {
		return nil, err
	}
	return t, nil
}
