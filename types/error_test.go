package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	e := NewError(ErrUpstreamError, "upstream returned 502")
	assert.Equal(t, "[UPSTREAM_ERROR] upstream returned 502", e.Error())

	cause := errors.New("connection refused")
	e = NewError(ErrUpstreamError, "request failed").WithCause(cause)
	assert.Equal(t, "[UPSTREAM_ERROR] request failed: connection refused", e.Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	e := NewError(ErrInternalError, "wrapped").WithCause(cause)
	assert.True(t, errors.Is(e, cause))
}

func TestError_Builders(t *testing.T) {
	e := NewError(ErrRateLimited, "slow down").
		WithHTTPStatus(429).
		WithRetryable(true).
		WithProvider("openai")

	assert.Equal(t, 429, e.HTTPStatus)
	assert.True(t, e.Retryable)
	assert.Equal(t, "openai", e.Provider)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewError(ErrUpstreamError, "x").WithRetryable(true)))
	assert.False(t, IsRetryable(NewError(ErrInvalidRequest, "x")))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrMissingCredential, GetErrorCode(NewError(ErrMissingCredential, "no key")))
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
}

