// Package apperr 错误分类
package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误类别
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNetwork
	KindRequestFailed
	KindInvalidResponse
	KindStoreWrite
	KindStoreRead
	KindStoreDelete
	KindNoValidURL
)

var kindNames = map[Kind]string{
	KindUnknown:         "Unknown",
	KindValidation:      "ValidationError",
	KindNetwork:         "NetworkError",
	KindRequestFailed:   "RequestFailed",
	KindInvalidResponse: "InvalidResponse",
	KindStoreWrite:      "StoreWriteError",
	KindStoreRead:       "StoreReadError",
	KindStoreDelete:     "StoreDeleteError",
	KindNoValidURL:      "NoValidUrl",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// 哨兵错误，配合 errors.Is 按类别判断
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrNetwork         = &Error{Kind: KindNetwork}
	ErrRequestFailed   = &Error{Kind: KindRequestFailed}
	ErrInvalidResponse = &Error{Kind: KindInvalidResponse}
	ErrStoreWrite      = &Error{Kind: KindStoreWrite}
	ErrStoreRead       = &Error{Kind: KindStoreRead}
	ErrStoreDelete     = &Error{Kind: KindStoreDelete}
	ErrNoValidURL      = &Error{Kind: KindNoValidURL}
)

// Error 带类别的错误
type Error struct {
	Kind    Kind
	Status  int // 上游 HTTP 状态码，仅 RequestFailed 使用
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 同类别即视为相等
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New 创建错误
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap 包装底层错误
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Validation 输入校验错误
func Validation(msg string) *Error {
	return New(KindValidation, msg)
}

// RequestFailed 上游返回非 2xx
func RequestFailed(status int, msg string) *Error {
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return &Error{Kind: KindRequestFailed, Status: status, Message: msg}
}

// KindOf 取出错误类别
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf 取出面向用户的错误描述
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
