package form

import (
	"errors"
	"strings"
)

// SubmissionMessage is shown when the submit handler fails.
const SubmissionMessage = "Something went wrong. Please try again."

var (
	// ErrClosed is returned when submitting a form that is not open.
	ErrClosed = errors.New("form is not open")
	// ErrBusy is returned when a submit is already in flight.
	ErrBusy = errors.New("form is already submitting")
)

// ValidationError is a problem with a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors lists the invalid fields of one submit attempt, in form order.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// For returns the message for field, if it failed.
func (v ValidationErrors) For(field string) (string, bool) {
	for _, e := range v {
		if e.Field == field {
			return e.Message, true
		}
	}
	return "", false
}

// Map returns the messages keyed by field.
func (v ValidationErrors) Map() map[string]string {
	m := make(map[string]string, len(v))
	for _, e := range v {
		m[e.Field] = e.Message
	}
	return m
}

// SubmissionError wraps a failure of the submit handler. Its message is
// deliberately generic; the cause is kept for logging.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return SubmissionMessage
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
