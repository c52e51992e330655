// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layerx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gogama/layerx/service"
	"github.com/gogama/layerx/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// instructed is a Caller which attaches a server instruction to every
// request before passing it on.
type instructed struct {
	next HTTPCaller
	i    serverInstruction
}

func (c instructed) Call(ctx context.Context, req *http.Request) (*http.Response, error) {
	b, err := json.Marshal(c.i)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Instruction", string(b))
	return c.next.Call(ctx, req)
}

func TestHTTPHelpers(t *testing.T) {
	for _, server := range servers {
		server := server
		t.Run(serverName(server), func(t *testing.T) {
			p, err := NewHTTP(Config{}, transport.NewClient(server.Client()))
			require.NoError(t, err)
			c := instructed{next: p, i: serverInstruction{StatusCode: 200, Body: "ok"}}
			ctx := context.Background()

			check := func(t *testing.T, res *http.Response, err error, body string) {
				require.NoError(t, err)
				defer func() { _ = res.Body.Close() }()
				assert.Equal(t, 200, res.StatusCode)
				b, err := io.ReadAll(res.Body)
				require.NoError(t, err)
				assert.Equal(t, body, string(b))
				if server == http2Server {
					assert.Equal(t, "HTTP/2.0", res.Header.Get("X-Proto"))
				}
			}

			t.Run("Get", func(t *testing.T) {
				res, err := Get(ctx, c, server.URL)
				check(t, res, err, "ok")
			})
			t.Run("Head", func(t *testing.T) {
				res, err := Head(ctx, c, server.URL)
				check(t, res, err, "")
			})
			t.Run("Post", func(t *testing.T) {
				res, err := Post(ctx, c, server.URL, "text/plain", "hello")
				check(t, res, err, "ok")
			})
			t.Run("PostForm", func(t *testing.T) {
				res, err := PostForm(ctx, c, server.URL, url.Values{"key": {"Value"}})
				check(t, res, err, "ok")
			})
		})
	}
}

func TestHTTPTimeout(t *testing.T) {
	for _, server := range servers {
		server := server
		t.Run(serverName(server), func(t *testing.T) {
			client := transport.NewClient(server.Client(), transport.WithMaxInFlight(1))
			p, err := NewHTTP(Config{Timeout: 50 * time.Millisecond}, client)
			require.NoError(t, err)
			c := instructed{next: p, i: serverInstruction{StatusCode: 200, HeaderPause: 500 * time.Millisecond}}

			start := time.Now()
			_, err = Get(context.Background(), c, server.URL)
			assert.True(t, errors.Is(err, service.ErrTimeout))
			assert.Less(t, int64(time.Since(start)), int64(500*time.Millisecond))
			assert.Eventually(t, func() bool { return client.InFlight() == 0 }, 2*time.Second, 10*time.Millisecond)
		})
	}
}

func TestHTTPShed(t *testing.T) {
	client := transport.NewClient(httpServer.Client(), transport.WithMaxInFlight(1))
	p, err := NewHTTP(Config{}, client)
	require.NoError(t, err)
	c := instructed{next: p, i: serverInstruction{StatusCode: 200, Body: "held"}}
	ctx := context.Background()

	held, err := Get(ctx, c, httpServer.URL)
	require.NoError(t, err)
	assert.Equal(t, service.Shedding, p.Ready(ctx))
	_, err = Get(ctx, c, httpServer.URL)
	assert.True(t, errors.Is(err, service.ErrShed))

	require.NoError(t, held.Body.Close())
	assert.Equal(t, service.Ready, p.Ready(ctx))
	res, err := Get(ctx, c, httpServer.URL)
	require.NoError(t, err)
	assert.NoError(t, res.Body.Close())
}

func TestNewHTTP(t *testing.T) {
	t.Run("nil client", func(t *testing.T) {
		p, err := NewHTTP(Config{}, nil)
		require.NoError(t, err)
		assert.NotNil(t, p)
	})
	t.Run("invalid config", func(t *testing.T) {
		_, err := NewHTTP(Config{Timeout: -time.Second}, nil)
		assert.Error(t, err)
	})
	t.Run("bad url", func(t *testing.T) {
		p, err := NewHTTP(Config{}, nil)
		require.NoError(t, err)
		_, err = Get(context.Background(), p, ":not a url")
		assert.Error(t, err)
		_, err = Head(context.Background(), p, ":not a url")
		assert.Error(t, err)
		_, err = Post(context.Background(), p, ":not a url", "text/plain", nil)
		assert.Error(t, err)
	})
	t.Run("bad body", func(t *testing.T) {
		p, err := NewHTTP(Config{}, nil)
		require.NoError(t, err)
		_, err = Post(context.Background(), p, "http://example.com", "text/plain", 10)
		assert.EqualError(t, err, badBodyTypeMsg)
	})
}

func TestCloseBody(t *testing.T) {
	m := &mockReadCloser{}
	m.On("Close").Return(nil).Once()
	closeBody(&http.Response{Body: m}, nil)
	m.AssertExpectations(t)
	assert.NotPanics(t, func() { closeBody(nil, errors.New("late")) })
	assert.NotPanics(t, func() { closeBody(&http.Response{}, nil) })
}

func TestBodyBytes(t *testing.T) {
	var b []byte
	var err error
	t.Run("happy path", func(t *testing.T) {
		b, err = BodyBytes(nil)
		assert.Nil(t, b)
		assert.NoError(t, err)
		b, err = BodyBytes("foo")
		assert.Equal(t, []byte("foo"), b)
		assert.NoError(t, err)
		b2 := []byte("bar")
		b, err = BodyBytes(b2)
		assert.Equal(t, []byte("bar"), b)
		assert.NoError(t, err)
		b, err = BodyBytes(strings.NewReader("baz"))
		assert.Equal(t, []byte("baz"), b)
		assert.NoError(t, err)
		b, err = BodyBytes(io.NopCloser(bytes.NewReader(b2)))
		assert.Equal(t, []byte("bar"), b)
		assert.NoError(t, err)
		b, err = BodyBytes(10)
		assert.Nil(t, b)
		assert.EqualError(t, err, badBodyTypeMsg)
	})
	t.Run("reader errors", func(t *testing.T) {
		expectedErr := errors.New("ham")
		t.Run("Read", func(t *testing.T) {
			m := &mockReadCloser{}
			m.Test(t)
			m.On("Read", mock.Anything).Return(10, expectedErr).Once()
			b, err = BodyBytes(m)
			assert.Nil(t, b)
			assert.Same(t, expectedErr, err)
			m.AssertExpectations(t)
		})
		t.Run("Close", func(t *testing.T) {
			m := &mockReadCloser{}
			m.Test(t)
			m.On("Read", mock.Anything).Return(0, io.EOF).Once()
			m.On("Close").Return(expectedErr).Once()
			b, err = BodyBytes(m)
			assert.Nil(t, b)
			assert.Same(t, expectedErr, err)
			m.AssertExpectations(t)
		})
	})
}

type mockReadCloser struct {
	mock.Mock
}

func (m *mockReadCloser) Read(p []byte) (n int, err error) {
	args := m.Called(p)
	n = args.Int(0)
	err = args.Error(1)
	return
}

func (m *mockReadCloser) Close() error {
	args := m.Called()
	return args.Error(0)
}
