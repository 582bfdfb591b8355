package summarize

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"

	"igdigest/pkg/errors"
)

func TestClassifyBackendError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errors.ErrorType
	}{
		{"server error", genai.APIError{Code: 500, Message: "internal"}, errors.ErrorTypeBackendTransient},
		{"service unavailable", genai.APIError{Code: 503, Message: "overloaded"}, errors.ErrorTypeBackendTransient},
		{"rate limited", genai.APIError{Code: 429, Message: "quota"}, errors.ErrorTypeBackendTransient},
		{"bad request", genai.APIError{Code: 400, Message: "invalid argument"}, errors.ErrorTypeBackendFatal},
		{"permission denied", genai.APIError{Code: 403, Message: "forbidden"}, errors.ErrorTypeBackendFatal},
		{"untyped with server code in text", fmt.Errorf("rpc failed with 500"), errors.ErrorTypeBackendTransient},
		{"untyped opaque", fmt.Errorf("connection reset"), errors.ErrorTypeBackendFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyBackendError("inference request failed", tt.err)
			assert.True(t, errors.IsType(got, tt.want), "got %v", got)
			assert.Contains(t, got.Error(), "inference request failed")
		})
	}
}
