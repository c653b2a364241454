package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatusCode(t *testing.T) {
	tests := []struct {
		code     int
		expected ErrorType
	}{
		{404, ErrorTypeNotFound},
		{429, ErrorTypeRateLimit},
		{500, ErrorTypeServerError},
		{503, ErrorTypeServerError},
		{403, ErrorTypeHTTPStatus},
		{301, ErrorTypeHTTPStatus},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.code), func(t *testing.T) {
			err := FromStatusCode("http://example.com/a.jpg", tt.code)
			assert.Equal(t, tt.expected, err.Type)
			assert.Equal(t, tt.code, err.Code)
			assert.Contains(t, err.Error(), "http://example.com/a.jpg")
		})
	}
}

func TestTypeOfWrapped(t *testing.T) {
	base := Wrap(ErrorTypeNetwork, "http://h/x.jpg", "request failed", context.DeadlineExceeded)
	wrapped := fmt.Errorf("image 3: %w", base)

	assert.Equal(t, ErrorTypeNetwork, TypeOf(wrapped))
	assert.True(t, Is(wrapped, ErrorTypeNetwork))
	assert.ErrorIs(t, wrapped, context.DeadlineExceeded)
	assert.Equal(t, ErrorTypeUnknown, TypeOf(fmt.Errorf("plain")))
	assert.False(t, Is(nil, ErrorTypeUnknown))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeNetwork))
	assert.True(t, IsRetryable(ErrorTypeServerError))
	assert.True(t, IsRetryable(ErrorTypeRateLimit))
	assert.False(t, IsRetryable(ErrorTypeNotFound))
	assert.False(t, IsRetryable(ErrorTypeInvalidLogFileName))
	assert.False(t, IsRetryable(ErrorTypeCancelled))

	assert.True(t, IsRetryableStatusCode(0))
	assert.True(t, IsRetryableStatusCode(502))
	assert.False(t, IsRetryableStatusCode(404))
	assert.False(t, IsRetryableStatusCode(400))
}
