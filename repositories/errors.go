package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError: the remote service answered with a non-2xx status
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: HTTPCode=%d, %s", e.Method, e.URL, e.StatusCode, e.Message)
}

func IsAPIError(err error) (*APIError, bool) {
	var e *APIError
	ok := errors.As(err, &e)
	return e, ok
}

func IsNotFound(err error) bool {
	e, ok := IsAPIError(err)
	return ok && e.StatusCode == http.StatusNotFound
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func newAPIError(req *http.Request, statusCode int, body []byte) *APIError {
	e := &APIError{
		Method:     req.Method,
		URL:        req.URL.Path,
		StatusCode: statusCode,
	}
	resp := errorResponse{}
	if err := json.Unmarshal(body, &resp); err == nil && (len(resp.Message) > 0 || len(resp.Error) > 0) {
		parts := []string{}
		for _, s := range []string{resp.Message, resp.Error} {
			if len(s) > 0 {
				parts = append(parts, s)
			}
		}
		e.Message = strings.Join(parts, ": ")
		return e
	}
	e.Message = strings.TrimSpace(string(body))
	if len(e.Message) == 0 {
		e.Message = http.StatusText(statusCode)
	}
	return e
}
