// Package errors provides structured error handling for the application.
// It defines AppError type with error codes for consistent API responses.
package errors

import (
	"errors"
	"fmt"
)

// Error codes organized by category
const (
	// General errors (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002
	CodeUnauthorized  = 1003

	// Auth errors (1100-1199)
	CodeBadCredentials   = 1100
	CodeUserExists       = 1101
	CodeWeakPassword     = 1102
	CodeInvalidUsername  = 1103
	CodeTokenExpired     = 1104

	// Script errors (1200-1299)
	CodeScriptGenFailed   = 1200
	CodeScriptEmpty       = 1201
	CodeScriptParseFailed = 1202
	CodeLLMQuotaExceeded  = 1203
	CodeModelNotFound     = 1204

	// Keyframe errors (1300-1399)
	CodeKeyframeGenFailed = 1300
	CodeKeyframeTimeout   = 1301
	CodeNoImageReturned   = 1302
	CodeMissingFirstFrame = 1303

	// Video errors (1400-1499)
	CodeVideoGenFailed   = 1400
	CodeVideoGenTimeout  = 1401
	CodeNoVideoReturned  = 1402
	CodeKeyframesPending = 1403
	CodeExportFailed     = 1404
	CodeExportIncomplete = 1405

	// Storage errors (1500-1599)
	CodeDBError        = 1500
	CodeFileNotFound   = 1501
	CodeFileWriteError = 1502
	CodeFileTooLarge   = 1503
	CodeOSSError       = 1504

	// Remote provider errors (1600-1699)
	CodeTaskNotFound  = 1600
	CodeTaskExpired   = 1601
	CodeProviderError = 1602
)

// AppError represents a structured application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps an error with additional detail
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Predefined common errors
var (
	ErrInvalidParams = New(CodeInvalidParams, "参数错误 Invalid parameters")
	ErrNotFound      = New(CodeNotFound, "资源不存在 Resource not found")
	ErrUnauthorized  = New(CodeUnauthorized, "未授权 Unauthorized")

	// Auth
	ErrBadCredentials  = New(CodeBadCredentials, "用户名或密码错误 Invalid username or password")
	ErrUserExists      = New(CodeUserExists, "用户已存在 User already exists")
	ErrWeakPassword    = New(CodeWeakPassword, "密码格式不正确：至少6位，必须包含字母和数字 Password too weak")
	ErrInvalidUsername = New(CodeInvalidUsername, "用户名格式不正确：3-50位，只能包含字母、数字、下划线 Invalid username")
	ErrTokenExpired    = New(CodeTokenExpired, "登录已过期 Token expired")

	// Script
	ErrScriptGenFailed  = New(CodeScriptGenFailed, "脚本生成失败 Script generation failed")
	ErrScriptEmpty      = New(CodeScriptEmpty, "脚本内容为空 Script content is empty")
	ErrLLMQuotaExceeded = New(CodeLLMQuotaExceeded, "LLM配额耗尽 LLM quota exceeded")
	ErrModelNotFound    = New(CodeModelNotFound, "模型不存在 Model not found")

	// Keyframe
	ErrKeyframeGenFailed = New(CodeKeyframeGenFailed, "关键帧生成失败 Keyframe generation failed")
	ErrNoImageReturned   = New(CodeNoImageReturned, "生成成功但未返回图片 No image returned")
	ErrMissingFirstFrame = New(CodeMissingFirstFrame, "缺少首帧关键帧 Missing first-frame keyframe")

	// Video
	ErrVideoGenFailed   = New(CodeVideoGenFailed, "视频生成失败 Video generation failed")
	ErrVideoGenTimeout  = New(CodeVideoGenTimeout, "视频生成超时 Video generation timeout")
	ErrNoVideoReturned  = New(CodeNoVideoReturned, "生成成功但未返回视频 No video returned")
	ErrKeyframesPending = New(CodeKeyframesPending, "脚本没有已完成的关键帧 Script has no completed keyframes")
	ErrExportIncomplete = New(CodeExportIncomplete, "存在未完成的视频片段，无法导出 Export requires all segments completed")

	// Storage
	ErrDBError      = New(CodeDBError, "数据库错误 Database error")
	ErrFileNotFound = New(CodeFileNotFound, "文件不存在 File not found")
	ErrFileTooLarge = New(CodeFileTooLarge, "文件大小超过限制 File too large")

	// Remote provider
	ErrTaskNotFound = New(CodeTaskNotFound, "远程任务未找到 Remote task not found")
	ErrTaskExpired  = New(CodeTaskExpired, "远程任务已过期 Remote task expired")
)
