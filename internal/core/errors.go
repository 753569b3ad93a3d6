package core

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Kind 错误分类，决定响应中的 error_kind 与建议
type Kind string

const (
	KindValidation  Kind = "ValidationError"
	KindSecurity    Kind = "SecurityError"
	KindNotFound    Kind = "OperationNotFound"
	KindFileSystem  Kind = "FileSystemError"
	KindPerformance Kind = "PerformanceError"
	KindInternal    Kind = "InternalError"
)

// OpError 带分类和修复建议的操作错误
// 处理器只负责返回带类型的错误，统一的转换发生在调度器一处
type OpError struct {
	Kind        Kind
	Message     string
	Suggestions []string
	Err         error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Validationf 参数校验错误
func Validationf(format string, args ...any) *OpError {
	return &OpError{
		Kind:    KindValidation,
		Message: fmt.Sprintf(format, args...),
		Suggestions: []string{
			"Verify input parameters are valid",
			"Check file format and extension",
		},
	}
}

// Securityf 沙箱越界错误
func Securityf(format string, args ...any) *OpError {
	return &OpError{
		Kind:    KindSecurity,
		Message: fmt.Sprintf(format, args...),
		Suggestions: []string{
			"Check if file path is within allowed directories",
			"Verify path does not contain '..' or other traversal patterns",
		},
	}
}

// FileSystemf 文件系统错误
func FileSystemf(err error, format string, args ...any) *OpError {
	return &OpError{
		Kind:    KindFileSystem,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
		Suggestions: []string{
			"Verify the file path exists",
			"Check file permissions",
		},
	}
}

// Performancef 超时或资源耗尽
func Performancef(format string, args ...any) *OpError {
	return &OpError{
		Kind:    KindPerformance,
		Message: fmt.Sprintf(format, args...),
		Suggestions: []string{
			"Reduce file size or operation complexity",
			"Consider breaking operation into smaller chunks",
			"Increase timeout if operation is expected to be slow",
		},
	}
}

// Internalf 未分类的内部错误，保留原始错误信息
func Internalf(err error, format string, args ...any) *OpError {
	return &OpError{
		Kind:    KindInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
		Suggestions: []string{
			"Retry the operation",
			"Check server logs for details",
		},
	}
}

// Classify 将任意错误归类为 OpError
// 已经是 OpError 的原样返回；其余按错误来源推断分类
func Classify(err error) *OpError {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr
	}
	switch {
	case errors.Is(err, os.ErrNotExist):
		return FileSystemf(err, "file not found")
	case errors.Is(err, os.ErrPermission):
		return FileSystemf(err, "permission denied")
	case errors.Is(err, context.DeadlineExceeded):
		return Performancef("operation timed out")
	default:
		return Internalf(err, "operation failed")
	}
}
