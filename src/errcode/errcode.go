package errcode

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Err 对外暴露的业务错误
// Code 为业务错误码, HTTPStatus 为响应状态码, Msg 为可读的错误信息
type Err struct {
	Code       int
	HTTPStatus int
	Msg        string
}

func (e *Err) Error() string {
	return e.Msg
}

// WithMsg 复制错误并替换错误信息, 保留错误码与状态码
func (e *Err) WithMsg(msg string) *Err {
	return &Err{Code: e.Code, HTTPStatus: e.HTTPStatus, Msg: msg}
}

// Is 按错误码比较, 使 errors.Is 对 WithMsg 派生的错误同样成立
func (e *Err) Is(target error) bool {
	t, ok := target.(*Err)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrInvalidParams   = &Err{Code: 10001, HTTPStatus: http.StatusBadRequest, Msg: "invalid params"}
	ErrNotFound        = &Err{Code: 10004, HTTPStatus: http.StatusNotFound, Msg: "not found"}
	ErrConflict        = &Err{Code: 10009, HTTPStatus: http.StatusConflict, Msg: "conflict"}
	ErrUpstream        = &Err{Code: 20002, HTTPStatus: http.StatusBadGateway, Msg: "upstream failure"}
	ErrUpstreamTimeout = &Err{Code: 20004, HTTPStatus: http.StatusGatewayTimeout, Msg: "upstream timeout"}
	ErrStoreRead       = &Err{Code: 30001, HTTPStatus: http.StatusInternalServerError, Msg: "store read failure"}
	ErrUnexpected      = &Err{Code: 50000, HTTPStatus: http.StatusInternalServerError, Msg: "Internal Server Error"}
)

// NewCustomErr 参数类错误, 使用自定义信息
func NewCustomErr(msg string) *Err {
	return ErrInvalidParams.WithMsg(msg)
}

// NewNotFoundErr 资源不存在
func NewNotFoundErr(format string, args ...interface{}) *Err {
	return ErrNotFound.WithMsg(fmt.Sprintf(format, args...))
}

// NewConflictErr 状态冲突
func NewConflictErr(msg string) *Err {
	return ErrConflict.WithMsg(msg)
}

// NewUpstreamErr 上游服务错误
func NewUpstreamErr(msg string) *Err {
	return ErrUpstream.WithMsg(msg)
}

// ParseErr 将任意错误还原为 *Err
// 包装链中找不到 *Err 时返回 ErrUnexpected
func ParseErr(err error) *Err {
	if err == nil {
		return nil
	}
	var e *Err
	if errors.As(err, &e) {
		return e
	}
	if e, ok := errors.Cause(err).(*Err); ok {
		return e
	}
	return ErrUnexpected
}
