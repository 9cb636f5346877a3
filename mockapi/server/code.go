package server

import (
	"fmt"
	"net/http"
)

// ErrorCode: service error code and the HTTP status it is answered with
type ErrorCode struct {
	Code     string
	Reason   string
	HttpCode int
}

func NewErrorCode(code, reason string, httpCode int) *ErrorCode {
	return &ErrorCode{
		Code:     code,
		Reason:   reason,
		HttpCode: httpCode,
	}
}

func NewBadRequest(code, reason string) *ErrorCode {
	return NewErrorCode(code, reason, http.StatusBadRequest)
}

func NewUnauthorized(code, reason string) *ErrorCode {
	return NewErrorCode(code, reason, http.StatusUnauthorized)
}

func NewNotFound(code, reason string) *ErrorCode {
	return NewErrorCode(code, reason, http.StatusNotFound)
}

func NewConflict(code, reason string) *ErrorCode {
	return NewErrorCode(code, reason, http.StatusConflict)
}

func NewInternalError(code, reason string) *ErrorCode {
	return NewErrorCode(code, reason, http.StatusInternalServerError)
}

func (code *ErrorCode) GetCode() string   { return code.Code }
func (code *ErrorCode) GetReason() string { return code.Reason }
func (code *ErrorCode) GetHttpCode() int  { return code.HttpCode }
func (code *ErrorCode) String() string {
	return fmt.Sprintf("HTTPCode=%d, %s(%s)", code.HttpCode, code.Reason, code.Code)
}
