// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"fmt"
	"net/url"
	"syscall"
	"testing"
	"time"

	"github.com/gogama/layerx/service"
	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected Category
	}{
		{"nil", nil, Not},
		{"plain", errors.New("foo"), Not},
		{"empty wrapper", wrapper{}, Not},
		{"wrapped plain", wrapper{errors.New("bar")}, Not},
		{"ETIMEDOUT", syscall.ETIMEDOUT, Timeout},
		{"timeout method", timeout{}, Timeout},
		{"url ETIMEDOUT", &url.Error{Err: syscall.ETIMEDOUT}, Timeout},
		{"url timeout method", &url.Error{Err: timeout{}}, Timeout},
		{"wrapped url ETIMEDOUT", wrapper{&url.Error{Err: syscall.ETIMEDOUT}}, Timeout},
		{"deep timeout method", wrapper{wrapper{timeout{}}}, Timeout},
		{"timeout over reset", timeoutWrapper{true, syscall.ECONNRESET}, Timeout},
		{"timeout over refused", wrapper{timeoutWrapper{true, syscall.ECONNREFUSED}}, Timeout},
		{"ECONNRESET", syscall.ECONNRESET, ConnReset},
		{"wrapped ECONNRESET", wrapper{syscall.ECONNRESET}, ConnReset},
		{"non-timeout over reset", timeoutWrapper{false, syscall.ECONNRESET}, ConnReset},
		{"ECONNREFUSED", syscall.ECONNREFUSED, ConnRefused},
		{"wrapped ECONNREFUSED", wrapper{syscall.ECONNREFUSED}, ConnRefused},
		{"url non-timeout over refused", &url.Error{Err: wrapper{timeoutWrapper{false, syscall.ECONNREFUSED}}}, ConnRefused},
		{"pipeline timeout", service.ErrTimeout, Timeout},
		{"url pipeline timeout", &url.Error{Err: &service.Error{Kind: service.Timeout, Elapsed: time.Second}}, Timeout},
		{"shed", service.ErrShed, Shed},
		{"wrapped shed", wrapper{service.ErrShed}, Shed},
		{"rate limited", service.ErrRateLimited, RateLimited},
		{"rate limiter failure", &service.Error{Kind: service.RateLimited, Err: timeout{}}, RateLimited},
		{"inner kind", &service.Error{Kind: service.Inner, Err: syscall.ECONNRESET}, ConnReset},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, Categorize(testCase.err))
		})
	}
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "Not", Not.String())
	assert.Equal(t, "Timeout", Timeout.String())
	assert.Equal(t, "ConnRefused", ConnRefused.String())
	assert.Equal(t, "ConnReset", ConnReset.String())
	assert.Equal(t, "Shed", Shed.String())
	assert.Equal(t, "RateLimited", RateLimited.String())
	assert.Equal(t, "Category(?)", Category(77).String())
}

type timeout struct{}

func (err timeout) Error() string {
	return "timeout"
}

func (_ timeout) Timeout() bool {
	return true
}

type wrapper struct {
	wrappedError error
}

func (err wrapper) Error() string {
	return fmt.Sprintf("wrapper - wraps %v", err.wrappedError)
}

func (err wrapper) Unwrap() error {
	return err.wrappedError
}

type timeoutWrapper struct {
	timeout      bool
	wrappedError error
}

func (err timeoutWrapper) Error() string {
	return fmt.Sprintf("timeoutWrapper - timeout %t, wraps %v", err.timeout, err.wrappedError)
}

func (err timeoutWrapper) Timeout() bool {
	return err.timeout
}

func (err timeoutWrapper) Unwrap() error {
	return err.wrappedError
}
