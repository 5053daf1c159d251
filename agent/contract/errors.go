package contract

import (
	"errors"
	"fmt"
)

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")
)

// Dispatch taxonomy. Every kind is converted into a ToolResult with IsError set
// before it leaves the dispatcher.
var (
	ErrUnknownTool  = errors.New("unknown tool")
	ErrMissingField = errors.New("missing_required_field")
	ErrInvalidField = errors.New("invalid_field_value")
	ErrPrecondition = errors.New("precondition not met")
	ErrDownstream   = errors.New("downstream failure")
)

// Facade outcomes the dispatcher knows how to phrase for the user.
var (
	ErrNotFound      = errors.New("not found")
	ErrSearchExpired = errors.New("search expired")
	ErrRejected      = errors.New("request rejected")
)

// FieldError names the argument that could not be extracted.
type FieldError struct {
	Field  string
	Reason string
	Kind   error
}

func MissingField(field string) *FieldError {
	return &FieldError{Field: field, Kind: ErrMissingField}
}

func InvalidField(field, reason string) *FieldError {
	return &FieldError{Field: field, Reason: reason, Kind: ErrInvalidField}
}

// Nest prefixes the field path, e.g. "dateOfBirth" becomes "passengers[1].dateOfBirth".
func (e *FieldError) Nest(prefix string) *FieldError {
	return &FieldError{Field: prefix + "." + e.Field, Reason: e.Reason, Kind: e.Kind}
}

func (e *FieldError) Code() string {
	if errors.Is(e.Kind, ErrInvalidField) {
		return ErrInvalidField.Error()
	}
	return ErrMissingField.Error()
}

// Message is safe to show to the user.
func (e *FieldError) Message() string {
	if errors.Is(e.Kind, ErrInvalidField) {
		if e.Reason == "" {
			return fmt.Sprintf("Invalid value for %s.", e.Field)
		}
		return fmt.Sprintf("Invalid value for %s: %s.", e.Field, e.Reason)
	}
	return fmt.Sprintf("Missing required field: %s.", e.Field)
}

func (e *FieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", e.Code(), e.Field)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code(), e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	if e.Kind == nil {
		return ErrMissingField
	}
	return e.Kind
}

// PreconditionError is a cross-turn invariant that failed. Prompt, when set, is
// the question the channel should ask the user before retrying.
type PreconditionError struct {
	Code    string
	Message string
	Prompt  string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PreconditionError) Unwrap() error {
	return ErrPrecondition
}

func SearchRequired() *PreconditionError {
	return &PreconditionError{
		Code:    "search_required",
		Message: "No search found. Please search for flights first.",
	}
}

func LoginRequired() *PreconditionError {
	return &PreconditionError{
		Code:    "login_required",
		Message: "You need to be logged in to use your saved travelers.",
	}
}

func OriginRequired() *PreconditionError {
	return &PreconditionError{
		Code:    "origin_required",
		Message: "I need to know where you are flying from.",
		Prompt:  "Which city or airport will you be departing from?",
	}
}

// FacadeError is a business outcome reported by a downstream service. Message
// is already phrased for the user; Detail carries identifiers for logs only.
type FacadeError struct {
	Kind    error
	Message string
	Detail  string
}

func (e *FacadeError) Error() string {
	if e.Detail == "" {
		return e.Message
	}
	return e.Message + " (" + e.Detail + ")"
}

func (e *FacadeError) Unwrap() error {
	return e.Kind
}

func NotFound(format string, args ...any) error {
	return &FacadeError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func Rejected(format string, args ...any) error {
	return &FacadeError{Kind: ErrRejected, Message: fmt.Sprintf(format, args...)}
}

func SearchExpired(searchID string) error {
	return &FacadeError{
		Kind:    ErrSearchExpired,
		Message: "Your flight search has expired. Please search for flights again.",
		Detail:  "search " + searchID,
	}
}

func SearchNotFound(searchID string) error {
	return &FacadeError{
		Kind:    ErrNotFound,
		Message: "That flight search is no longer available. Please search for flights again.",
		Detail:  "search " + searchID,
	}
}
