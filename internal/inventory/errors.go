package inventory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnexpectedStatus is wrapped by RequestError for non-2xx responses
var ErrUnexpectedStatus = errors.New("unexpected status code")

// RequestError reports a transport failure or a rejected request
type RequestError struct {
	Method     string
	URL        string
	StatusCode int // 0 when the request never got a response
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("inventory: %s %s: %v", e.Method, e.URL, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("inventory: %s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("inventory: %s %s: status %d", e.Method, e.URL, e.StatusCode)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ValidationError reports field-level rejections, either from the service
// (HTTP 400) or from local payload validation before sending
type ValidationError struct {
	Method string
	URL    string
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return fmt.Sprintf("inventory: %s %s rejected: %s", e.Method, e.URL, strings.Join(parts, "; "))
}

// UnexpectedError reports a response the client could not make sense of
type UnexpectedError struct {
	Op  string
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("inventory: %s: %v", e.Op, e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

// IsInventoryError reports whether err belongs to one of the client's categories
func IsInventoryError(err error) bool {
	var re *RequestError
	var ve *ValidationError
	var ue *UnexpectedError
	return errors.As(err, &re) || errors.As(err, &ve) || errors.As(err, &ue)
}
