// Package form binds input fields to a validation schema and runs the
// submit lifecycle of a form.
package form

import (
	"context"
	"errors"
	"fmt"
)

const (
	submitLabel = "Save"
	savingLabel = "Saving..."
)

// SubmitFunc receives validated, typed values.
type SubmitFunc func(ctx context.Context, values map[string]any) error

// Session is the transient state of one form: its field values, their
// errors, and whether the form is open or submitting.
type Session struct {
	schema     *Schema
	values     Values
	errs       map[string]string
	open       bool
	submitting bool
	notices    []string
}

// NewSession creates a closed session holding the blank shape.
func NewSession(schema *Schema) *Session {
	return &Session{
		schema: schema,
		values: schema.Blank(),
		errs:   make(map[string]string),
	}
}

// Schema returns the bound schema.
func (s *Session) Schema() *Schema {
	return s.schema
}

// Open initialises the fields from defaults and opens the form.
// Fields missing from defaults take their blank value.
func (s *Session) Open(defaults Values) {
	s.values = s.schema.Blank()
	for name, v := range defaults {
		if _, ok := s.schema.Field(name); ok {
			s.values[name] = v
		}
	}
	s.errs = make(map[string]string)
	s.open = true
	s.submitting = false
}

// Close closes the form without submitting and drops its field state.
func (s *Session) Close() {
	s.open = false
	s.submitting = false
	s.values = s.schema.Blank()
	s.errs = make(map[string]string)
}

// IsOpen reports whether the form is open.
func (s *Session) IsOpen() bool {
	return s.open
}

// IsSubmitting reports whether a submit is in flight.
func (s *Session) IsSubmitting() bool {
	return s.submitting
}

// CanSubmit reports whether the submit control is enabled.
func (s *Session) CanSubmit() bool {
	return s.open && !s.submitting
}

// CanCancel reports whether the cancel control is enabled. Submitting
// never disables it.
func (s *Session) CanCancel() bool {
	return s.open
}

// SubmitLabel is the label of the submit control.
func (s *Session) SubmitLabel() string {
	if s.submitting {
		return savingLabel
	}
	return submitLabel
}

// Set changes a field value and clears its error.
func (s *Session) Set(name, value string) error {
	if _, ok := s.schema.Field(name); !ok {
		return fmt.Errorf("form %s: unknown field %q", s.schema.Name(), name)
	}
	s.values[name] = value
	delete(s.errs, name)
	return nil
}

// Value returns the current raw value of a field.
func (s *Session) Value(name string) string {
	return s.values[name]
}

// Values returns a copy of the current raw values.
func (s *Session) Values() Values {
	return s.values.Clone()
}

// FieldError returns the validation message of a field, if any.
func (s *Session) FieldError(name string) string {
	return s.errs[name]
}

// Errors returns the validation messages of the last submit attempt.
func (s *Session) Errors() map[string]string {
	out := make(map[string]string, len(s.errs))
	for k, v := range s.errs {
		out[k] = v
	}
	return out
}

// Begin validates the form and marks it as submitting. It returns the typed
// values to hand to the submit handler, or ValidationErrors, in which case
// the handler must not run.
func (s *Session) Begin() (map[string]any, error) {
	if !s.open {
		return nil, ErrClosed
	}
	if s.submitting {
		return nil, ErrBusy
	}

	values, err := s.schema.Validate(s.values)
	if err != nil {
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			s.errs = verrs.Map()
		}
		return nil, err
	}
	s.errs = make(map[string]string)
	s.submitting = true
	return values, nil
}

// Finish applies the outcome of the submit handler. A nil result resets the
// fields to the blank shape and closes the form. A failure keeps the form
// open with its values, queues one notification and returns a
// SubmissionError.
func (s *Session) Finish(result error) error {
	s.submitting = false
	if result != nil {
		s.notices = append(s.notices, SubmissionMessage)
		return &SubmissionError{Err: result}
	}
	s.values = s.schema.Blank()
	s.errs = make(map[string]string)
	s.open = false
	return nil
}

// Submit validates, calls fn and applies its outcome.
func (s *Session) Submit(ctx context.Context, fn SubmitFunc) error {
	values, err := s.Begin()
	if err != nil {
		return err
	}
	return s.Finish(fn(ctx, values))
}

// Notifications drains the queued user notifications.
func (s *Session) Notifications() []string {
	out := s.notices
	s.notices = nil
	return out
}
