package errors

import (
	"errors"
	"fmt"
)

type CodeMsg struct {
	Code int    // 错误码
	Msg  string // 错误消息
	Err  error  // 原始错误
}

// 实现 error 接口
func (e *CodeMsg) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("code=%d, msg=%s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("code=%d, msg=%s", e.Code, e.Msg)
}

// Unwrap 支持 errors.Is / errors.As 穿透到原始错误
func (e *CodeMsg) Unwrap() error {
	return e.Err
}

// Is 错误码相同即视为同一类错误
func (e *CodeMsg) Is(target error) bool {
	t, ok := target.(*CodeMsg)
	return ok && t.Code == e.Code
}

// New 构造函数
func New(code int, msg string) error {
	return &CodeMsg{Code: code, Msg: msg}
}

// Wrap 带原始错误
func Wrap(code int, msg string, err error) error {
	return &CodeMsg{Code: code, Msg: msg, Err: err}
}

// CodeOf 取出错误链上的错误码，没有则返回 0
func CodeOf(err error) int {
	var cm *CodeMsg
	if errors.As(err, &cm) {
		return cm.Code
	}
	return 0
}

// HasCode 判断错误链上是否带有指定错误码
func HasCode(err error, code int) bool {
	return CodeOf(err) == code
}
