package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrObjectNotFound     = errors.New("object not found")
	ErrValueIsInvalid     = errors.New("value is invalid")
	ErrValueIsOutOfRange  = errors.New("value is out of range")
	ErrValueIsRequired    = errors.New("value is required")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrDuplicateTask      = errors.New("duplicate task")
	ErrParse              = errors.New("parse error")
	ErrNotification       = errors.New("notification failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// sanitize keeps user supplied values on a single log line.
func sanitize(v any) string {
	s := fmt.Sprintf("%v", v)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return fmt.Sprintf("%s (cause: %s)", msg, cause.Error())
}

// ObjectNotFoundError reports a lookup by identifier that matched nothing.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %s)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports a parameter that failed validation.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName), e.Cause)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	return withCause(fmt.Sprintf("%s: %s is %s, min value is %s, max value is %s",
		ErrValueIsInvalid,
		sanitize(e.Value), sanitize(e.ParamName), sanitize(e.Min), sanitize(e.Max)), e.Cause)
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError reports a missing mandatory parameter.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName), e.Cause)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// InvalidTransitionError reports a status change the state machine forbids.
// The task is left untouched when it is returned.
type InvalidTransitionError struct {
	From  string
	To    string
	Cause error
}

func NewInvalidTransitionError(from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}

func NewInvalidTransitionErrorWithCause(from, to string, cause error) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to, Cause: cause}
}

func (e *InvalidTransitionError) Error() string {
	return withCause(fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To), e.Cause)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// DuplicateTaskError is raised when the (order reference, category) key already exists.
type DuplicateTaskError struct {
	OrderReference string
	Category       string
	Cause          error
}

func NewDuplicateTaskError(orderReference, category string) *DuplicateTaskError {
	return &DuplicateTaskError{OrderReference: orderReference, Category: category}
}

func NewDuplicateTaskErrorWithCause(orderReference, category string, cause error) *DuplicateTaskError {
	return &DuplicateTaskError{OrderReference: orderReference, Category: category, Cause: cause}
}

func (e *DuplicateTaskError) Error() string {
	return withCause(fmt.Sprintf("%s: %s/%s", ErrDuplicateTask, e.OrderReference, e.Category), e.Cause)
}

func (e *DuplicateTaskError) Unwrap() error {
	return ErrDuplicateTask
}

// ParseError reports a malformed fragment of upstream input.
type ParseError struct {
	Input string
	Cause error
}

func NewParseError(input string) *ParseError {
	return &ParseError{Input: input}
}

func NewParseErrorWithCause(input string, cause error) *ParseError {
	return &ParseError{Input: input, Cause: cause}
}

func (e *ParseError) Error() string {
	return withCause(fmt.Sprintf("%s: %q", ErrParse, sanitize(e.Input)), e.Cause)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// NotificationError reports a message the provider did not accept.
type NotificationError struct {
	Recipient string
	Cause     error
}

func NewNotificationError(recipient string) *NotificationError {
	return &NotificationError{Recipient: recipient}
}

func NewNotificationErrorWithCause(recipient string, cause error) *NotificationError {
	return &NotificationError{Recipient: recipient, Cause: cause}
}

func (e *NotificationError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrNotification, e.Recipient), e.Cause)
}

func (e *NotificationError) Unwrap() error {
	return ErrNotification
}

// StorageUnavailableError reports a blob that could not be written.
type StorageUnavailableError struct {
	Name  string
	Cause error
}

func NewStorageUnavailableError(name string) *StorageUnavailableError {
	return &StorageUnavailableError{Name: name}
}

func NewStorageUnavailableErrorWithCause(name string, cause error) *StorageUnavailableError {
	return &StorageUnavailableError{Name: name, Cause: cause}
}

func (e *StorageUnavailableError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrStorageUnavailable, e.Name), e.Cause)
}

func (e *StorageUnavailableError) Unwrap() error {
	return ErrStorageUnavailable
}
