// Package errors is our internal errors package. It should be used in place of the standard "errors" package
// or "fmt.Errorf".
// This package ensures that all errors have a correct category & collect stack-traces. The categories map onto the
// way an upload reacts to them: input, configuration, system and remote errors abort an upload, while record and
// attachment errors are recorded next to the data they belong to.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigurationError represent a configuration error. When used, it should ideally also point towards the configuration
// value that caused this error to occur.
type ConfigurationError struct {
	E error
}

// NewConfigurationError returns a new ConfigurationError
func NewConfigurationError(msg string, a ...any) ConfigurationError {
	return ConfigurationError{E: errors.Errorf(msg, a...)}
}

// AsConfigurationError checks whether the error is a configuration error
func AsConfigurationError(err error) (ConfigurationError, bool) {
	var e ConfigurationError
	ok := As(err, &e)
	return e, ok
}

func (e ConfigurationError) Error() string { return e.E.Error() }
func (e ConfigurationError) Unwrap() error { return e.E }

// ExecutionError carries the exit code the process should terminate with.
type ExecutionError struct {
	E    error
	Code int
}

// NewExecutionError returns a new ExecutionError
func NewExecutionError(code int, msg string, a ...any) ExecutionError {
	return ExecutionError{Code: code, E: errors.Errorf(msg, a...)}
}

// AsExecutionError checks whether the error is an execution error.
func AsExecutionError(err error) (ExecutionError, bool) {
	var e ExecutionError
	ok := As(err, &e)
	return e, ok
}

func (e ExecutionError) Error() string { return e.E.Error() }
func (e ExecutionError) Unwrap() error { return e.E }

// InputError is an error caused by user input, most commonly an unreadable or malformed test report.
type InputError struct {
	E error
}

// NewInputError returns a new InputError
func NewInputError(msg string, a ...any) InputError {
	return InputError{E: errors.Errorf(msg, a...)}
}

// AsInputError checks whether the error is an input error
func AsInputError(err error) (InputError, bool) {
	var e InputError
	ok := As(err, &e)
	return e, ok
}

func (e InputError) Error() string { return e.E.Error() }
func (e InputError) Unwrap() error { return e.E }

// InternalError is an internal error. This error type should only be used if an end-user cannot act upon it and would
// need to reach out to us for support.
type InternalError struct {
	E error
}

// NewInternalError returns a new InternalError
func NewInternalError(msg string, a ...any) InternalError {
	return InternalError{E: errors.Errorf(msg, a...)}
}

// AsInternalError checks whether the error is an internal error
func AsInternalError(err error) (InternalError, bool) {
	var e InternalError
	ok := As(err, &e)
	return e, ok
}

func (e InternalError) Error() string { return e.E.Error() }
func (e InternalError) Unwrap() error { return e.E }

// SystemError is returned when the CLI encountered a system error. This is most likely either an error during file read
// or a network error.
type SystemError struct {
	E error
}

// NewSystemError returns a new SystemError
func NewSystemError(msg string, a ...any) SystemError {
	return SystemError{E: errors.Errorf(msg, a...)}
}

// AsSystemError checks whether the error is a system error
func AsSystemError(err error) (SystemError, bool) {
	var e SystemError
	ok := As(err, &e)
	return e, ok
}

func (e SystemError) Error() string { return e.E.Error() }
func (e SystemError) Unwrap() error { return e.E }

// RecordError marks a single malformed record inside an otherwise readable report. It is logged and the record is
// skipped; it never aborts an upload.
type RecordError struct {
	E error
}

// NewRecordError returns a new RecordError
func NewRecordError(msg string, a ...any) RecordError {
	return RecordError{E: errors.Errorf(msg, a...)}
}

// AsRecordError checks whether the error is a record error
func AsRecordError(err error) (RecordError, bool) {
	var e RecordError
	ok := As(err, &e)
	return e, ok
}

func (e RecordError) Error() string { return e.E.Error() }
func (e RecordError) Unwrap() error { return e.E }

// AttachmentError is stored on an attachment that could not be read.
type AttachmentError struct {
	E    error
	Path string
}

// NewAttachmentError returns a new AttachmentError
func NewAttachmentError(path string, msg string, a ...any) AttachmentError {
	return AttachmentError{E: errors.Errorf(msg, a...), Path: path}
}

// AsAttachmentError checks whether the error is an attachment error
func AsAttachmentError(err error) (AttachmentError, bool) {
	var e AttachmentError
	ok := As(err, &e)
	return e, ok
}

func (e AttachmentError) Error() string { return e.E.Error() }
func (e AttachmentError) Unwrap() error { return e.E }

// MatchError is returned when test results could not be reconciled with the test cases of a project.
type MatchError struct {
	E         error
	Unmatched []string
}

// NewMatchError returns a new MatchError
func NewMatchError(unmatched []string, msg string, a ...any) MatchError {
	return MatchError{E: errors.Errorf(msg, a...), Unmatched: unmatched}
}

// AsMatchError checks whether the error is a match error
func AsMatchError(err error) (MatchError, bool) {
	var e MatchError
	ok := As(err, &e)
	return e, ok
}

func (e MatchError) Error() string { return e.E.Error() }
func (e MatchError) Unwrap() error { return e.E }

// RemoteError is returned when the QA Sphere API answered with an error.
type RemoteError struct {
	Endpoint   string
	Message    string
	StatusCode int
}

// NewRemoteError returns a new RemoteError
func NewRemoteError(endpoint string, statusCode int, message string) RemoteError {
	return RemoteError{Endpoint: endpoint, Message: message, StatusCode: statusCode}
}

// AsRemoteError checks whether the error is a remote error
func AsRemoteError(err error) (RemoteError, bool) {
	var e RemoteError
	ok := As(err, &e)
	return e, ok
}

func (e RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API request to %q failed with status code %d", e.Endpoint, e.StatusCode)
	}

	return e.Message
}
