package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := NewExternalError("orphadata request failed", fmt.Errorf("connection refused"))
	assert.Equal(t, "EXTERNAL: orphadata request failed: connection refused", err.Error())

	notFound := NewNotFoundError("disease not found")
	assert.Equal(t, "NOT_FOUND: disease not found", notFound.Error())
}

func TestIsType_Wrapped(t *testing.T) {
	base := NewExternalStatusError("orphadata returned status 503", http.StatusServiceUnavailable)
	wrapped := fmt.Errorf("fetch catalog: %w", base)

	assert.True(t, IsType(wrapped, ErrorTypeExternal))
	assert.False(t, IsType(wrapped, ErrorTypeInternal))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeExternal))
	assert.Equal(t, http.StatusServiceUnavailable, base.StatusCode)
}
