package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsErrorTypeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("extracting: %w", NewParseFailed("no braces here", nil))

	assert.True(t, IsErrorType(err, ErrorTypeParse))
	assert.False(t, IsErrorType(err, ErrorTypeTransport))
	assert.True(t, IsRecoverable(err))
}

func TestTransportFailedMessage(t *testing.T) {
	err := NewTransportFailed("chat completion", fmt.Errorf("connection refused"))

	assert.Equal(t, "[transport] chat completion failed: connection refused", err.Error())
	assert.True(t, IsErrorType(err, ErrorTypeTransport))
	assert.True(t, IsRecoverable(err))
}

func TestConfigErrorsAreNotRecoverable(t *testing.T) {
	assert.False(t, IsRecoverable(NewConfigMissingRequired("llm.api_key")))
	assert.True(t, IsErrorType(ErrNoCredentials, ErrorTypeConfig))
	assert.False(t, IsErrorType(nil, ErrorTypeConfig))
}
