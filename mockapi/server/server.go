package server

import (
	"errors"
	"fmt"
)

type ServiceError struct {
	Code    *ErrorCode
	Message string
}

func NewServiceError(code *ErrorCode, msgAndArgs ...interface{}) ServiceError {
	return ServiceError{
		Code:    code,
		Message: BuildMessage(msgAndArgs...),
	}
}

func (e ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code.String(), e.Message)
}

func IsServiceError(err error) (ServiceError, bool) {
	var e ServiceError
	ok := errors.As(err, &e)
	return e, ok
}

func BuildMessage(msgAndArgs ...interface{}) string {
	if len(msgAndArgs) == 0 {
		return ""
	}
	if len(msgAndArgs) == 1 {
		msg := msgAndArgs[0]
		if msgAsStr, ok := msg.(string); ok {
			return msgAsStr
		}
		if err, ok := msg.(error); ok {
			return err.Error()
		}
		return fmt.Sprintf("%+v", msg)
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprintf("%v", msgAndArgs)
}
