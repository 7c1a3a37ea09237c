package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the error envelope of the API.
//
// Every failing endpoint responds with `{"error": "..."}`.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Extract picks the error text out of a response body.
//
// return: (error text, true) when body is a well-formed ErrorResponse with
// non-empty error. Otherwise ("", false).
func Extract(body []byte) (string, bool) {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return "", false
	}
	if er.Error == "" {
		return "", false
	}
	return er.Error, true
}

type ErrorMessage struct {
	Reason string
	Advice string
	Cause  error
}

func (e ErrorMessage) String() string {
	lines := []string{e.Reason}
	if e.Advice != "" {
		lines = append(lines, e.Advice)
	}
	if e.Cause != nil {
		lines = append(lines, fmt.Sprint("caused by: ", e.Cause.Error()))
	}
	return strings.Join(lines, ": ")
}

func (e ErrorMessage) Error() string {
	return e.String()
}

func (e ErrorMessage) Unwrap() error {
	return e.Cause
}

type ErrorMessageOption func(in *ErrorMessage) *ErrorMessage

func WithAdvice(advice string) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if advice != "" {
			in.Advice = advice
		}
		return in
	}
}

func WithError(err error) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if err != nil {
			in.Cause = err
		}
		return in
	}
}

func NewErrorMessage(code int, reason string, opts ...ErrorMessageOption) *echo.HTTPError {
	msg := ErrorMessage{Reason: reason}
	for _, opt := range opts {
		msg = *opt(&msg)
	}

	// The cause stays server side; the response carries reason and advice only.
	visible := ErrorMessage{Reason: msg.Reason, Advice: msg.Advice}
	return echo.NewHTTPError(code, ErrorResponse{Error: visible.String()}).SetInternal(msg)
}

func NotFound() *echo.HTTPError {
	return NewErrorMessage(http.StatusNotFound, "not found")
}

func BadRequest(advice string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusBadRequest,
		"bad request",
		WithAdvice(advice),
		WithError(err),
	)
}

func Conflict(message string, options ...ErrorMessageOption) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusConflict,
		message,
		options...,
	)
}

func ServiceUnavailable(advice string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusServiceUnavailable,
		"service unavailable temporarily",
		WithAdvice(advice),
		WithError(err),
	)
}

// InternalServerError reports an unexpected fault.
//
// The "unknown: " prefix is the conventional marker for faults without a
// user-actionable reason; clients strip it before display.
func InternalServerError(err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusInternalServerError,
		"unknown: unexpected error",
		WithError(err),
	)
}
