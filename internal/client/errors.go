// ABOUTME: Uniform error values returned by the backend collaborators
// ABOUTME: Carries a display message plus status and cause for errors.As callers

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error is returned for every failed backend call. Message is meant for display.
type Error struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.Status)
	}
	return e.Op + " failed"
}

func (e *Error) Unwrap() error { return e.Err }

// DecodeError reports a response body whose shape matches no known version
// of the endpoint's schema.
type DecodeError struct {
	Op     string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: unexpected response: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: unexpected response: %s", e.Op, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether err is a backend 401.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

func hasStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// errorBody is the error envelope the backend uses. Validation failures
// list one entry per offending field.
type errorBody struct {
	Message string       `json:"message"`
	Error   string       `json:"error"`
	Errors  []fieldError `json:"errors"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func readErrorBody(resp *http.Response) errorBody {
	var body errorBody
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return body
	}
	_ = json.Unmarshal(data, &body)
	return body
}

// statusError builds an error with a fixed message, ignoring the body.
func statusError(resp *http.Response, op, message string) error {
	return &Error{Op: op, Status: resp.StatusCode, Message: message}
}

// serverError prefers the server's message and falls back to fallback.
func serverError(resp *http.Response, op, fallback string) error {
	body := readErrorBody(resp)
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = fallback
	}
	return &Error{Op: op, Status: resp.StatusCode, Message: msg}
}

// validationError prefers the server's message, then the aggregated field
// errors, then a status-coded generic message.
func validationError(resp *http.Response, op, fallback string) error {
	body := readErrorBody(resp)
	if body.Message != "" {
		return &Error{Op: op, Status: resp.StatusCode, Message: body.Message}
	}
	if len(body.Errors) > 0 {
		parts := make([]string, 0, len(body.Errors))
		for _, fe := range body.Errors {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
		}
		return &Error{
			Op:      op,
			Status:  resp.StatusCode,
			Message: "validation errors: " + strings.Join(parts, "; "),
		}
	}
	return &Error{
		Op:      op,
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("error %d: %s", resp.StatusCode, fallback),
	}
}
