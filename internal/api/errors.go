package api

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidRequest is wrapped by ValidationError.
var ErrInvalidRequest = errors.New("invalid request")

// TransportError reports that an exchange did not produce a usable answer:
// the request could not be sent, was aborted, got a non-2xx status, or the
// body could not be decoded.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP error, status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RejectedError is an application-level refusal: the server answered
// {"success": false, "message": ...}.
type RejectedError struct {
	Op      string
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: rejected: %s", e.Op, e.Message)
}

// ValidationError is returned before any request is sent when the request
// fails client-side validation.
type ValidationError struct {
	Op     string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, ErrInvalidRequest, e.Summary())
}

// Summary lists the invalid fields with their messages, for example
// "quantity must be at least 0".
func (e *ValidationError) Summary() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

// Message returns the text to show the user for err: the server's message
// for rejections, fallback otherwise.
func Message(err error, fallback string) string {
	var rejected *RejectedError
	if errors.As(err, &rejected) && rejected.Message != "" {
		return rejected.Message
	}
	return fallback
}
