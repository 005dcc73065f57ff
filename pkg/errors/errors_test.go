package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	// Test without cause
	err := New(CodeVideoGenFailed, "Test error")
	assert.Equal(t, "[1400] Test error", err.Error())

	// Test with cause
	cause := errors.New("underlying error")
	errWithCause := Wrap(CodeVideoGenFailed, "Test error", cause)
	assert.Contains(t, errWithCause.Error(), "underlying error")
	assert.Contains(t, errWithCause.Error(), "1400")
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(CodeKeyframeGenFailed, "Keyframe generation failed", cause)

	// Test Unwrap
	assert.Equal(t, cause, err.Unwrap())

	// Test errors.Is
	assert.True(t, errors.Is(err, cause))
}

func TestIs(t *testing.T) {
	err := New(CodeScriptGenFailed, "Script generation failed")

	assert.True(t, Is(err, CodeScriptGenFailed))
	assert.False(t, Is(err, CodeVideoGenFailed))

	// Test with regular error
	regularErr := errors.New("regular error")
	assert.False(t, Is(regularErr, CodeScriptGenFailed))
}

func TestGetCode(t *testing.T) {
	// AppError
	appErr := New(CodeLLMQuotaExceeded, "Quota exceeded")
	assert.Equal(t, CodeLLMQuotaExceeded, GetCode(appErr))

	// Regular error returns CodeUnknown
	regularErr := errors.New("regular error")
	assert.Equal(t, CodeUnknown, GetCode(regularErr))
}

func TestGetMessage(t *testing.T) {
	// AppError
	appErr := New(CodeFileNotFound, "文件不存在 File not found")
	assert.Equal(t, "文件不存在 File not found", GetMessage(appErr))

	// Regular error returns error message
	regularErr := errors.New("regular error message")
	assert.Equal(t, "regular error message", GetMessage(regularErr))
}

func TestWrapWithDetail(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := WrapWithDetail(CodeProviderError, "远程服务异常 Provider error", "visual.volcengineapi.com", cause)

	assert.Equal(t, CodeProviderError, err.Code)
	assert.Equal(t, "visual.volcengineapi.com", err.Detail)
	assert.True(t, errors.Is(err, cause))
}
