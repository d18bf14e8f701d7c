// Package apperr 定义了跨模块共享的错误类别，以及它们到HTTP状态码的映射。
package apperr

import (
	"errors"
	"net/http"
)

// Kind 是错误的类别
type Kind int

const (
	// KindInternal 表示序列化失败、补偿写失败或任何未映射的存储错误
	KindInternal Kind = iota
	// KindUnauthenticated 表示缺少或无效的已验证主体
	KindUnauthenticated
	// KindNotFound 表示请求的记录不存在
	KindNotFound
	// KindRateLimited 表示操作在当前窗口内已被执行过
	KindRateLimited
	// KindBadRequest 表示请求参数无效
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindBadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}

// Error 是带类别的领域错误
type Error struct {
	Kind    Kind
	Message string // 面向调用方的消息
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New 创建一个不带底层原因的错误
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap 创建一个包装底层原因的错误
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Unauthenticated, NotFound, RateLimited, BadRequest, Internal 是常用的构造函数
func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }
func NotFound(message string) *Error        { return New(KindNotFound, message) }
func RateLimited(message string) *Error     { return New(KindRateLimited, message) }
func BadRequest(message string) *Error      { return New(KindBadRequest, message) }
func Internal(message string) *Error        { return New(KindInternal, message) }

// KindOf 返回错误链中第一个 *Error 的类别；没有则视为 KindInternal
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is 判断错误是否属于给定类别
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus 将错误类别映射为HTTP状态码
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage 返回可以安全暴露给调用方的消息
// Internal 类别的细节只写入服务端日志
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "internal server error"
}
