// Package status carries HTTP-aware error values shared by the blog and
// notification packages.
package status

import (
	"errors"
	"fmt"
	"net/http"
)

var _ error = &statusError{}

type statusError struct {
	Code int
	Text string

	WrappedError error
}

func (s *statusError) Error() string {
	if s.WrappedError != nil {
		return s.Text + ": " + s.WrappedError.Error()
	}
	return s.Text
}

func (s *statusError) Unwrap() error {
	return s.WrappedError
}

// Is matches any status error carrying the same text, so a detailed error
// built with Wrap still matches its base sentinel.
func (s *statusError) Is(target error) bool {
	if err, ok := target.(*statusError); ok {
		return err.Text == s.Text
	}
	return false
}

func (s *statusError) HTTPStatus() int {
	return s.Code
}

// Statusf builds an error that reports the given HTTP status.
func Statusf(code int, format string, args ...any) error {
	return &statusError{Code: code, Text: fmt.Sprintf(format, args...)}
}

// Wrap attaches detail to a sentinel created with Statusf. The result keeps the
// sentinel's status code and still satisfies errors.Is(result, base).
func Wrap(base error, detail error) error {
	var se *statusError
	if !errors.As(base, &se) {
		return fmt.Errorf("%w: %w", base, detail)
	}
	return &statusError{Code: se.Code, Text: se.Text, WrappedError: detail}
}

// ErrorCode returns the HTTP status an error should be reported with.
func ErrorCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var coded interface{ HTTPStatus() int }
	if errors.As(err, &coded) {
		return coded.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Message returns the caller-facing text of err: the status text without any
// attached detail, or an empty string when err carries no status.
func Message(err error) string {
	var se *statusError
	if errors.As(err, &se) {
		return se.Text
	}
	return ""
}
