package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown connector type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrValidation indicates one or more form fields failed validation.
	ErrValidation = errors.New("validation failed")

	// ErrQuotaExceeded indicates an entitlement limit blocks the request.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrActionBlocked indicates the current CCPair state does not permit an action.
	ErrActionBlocked = errors.New("action blocked")

	// ErrRefreshInFlight indicates a refresh of the same collection is already running.
	// The request was dropped, not queued.
	ErrRefreshInFlight = errors.New("refresh already in flight")

	// ErrUploadInProgress indicates an upload batch is already running.
	ErrUploadInProgress = errors.New("upload in progress")

	// ErrBackendUnavailable indicates the backend is not configured.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// GenericFailureMessage is shown for user-initiated actions when the backend gives no detail.
const GenericFailureMessage = "Something went wrong. Please try again."

// ValidationError carries field-scoped validation messages.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := e.Fields.Names()
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// QuotaError is returned when the quota gate blocks a request.
type QuotaError struct {
	Decision QuotaDecision
}

func (e *QuotaError) Error() string {
	return e.Decision.Message
}

// Is reports whether target is ErrQuotaExceeded.
func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// ActionBlockedError is returned when the action guard rejects a lifecycle action.
type ActionBlockedError struct {
	Action Action
	Reason string
}

func (e *ActionBlockedError) Error() string {
	return fmt.Sprintf("%s blocked: %s", e.Action, e.Reason)
}

// Is reports whether target is ErrActionBlocked.
func (e *ActionBlockedError) Is(target error) bool {
	return target == ErrActionBlocked
}

// APIError is an application-level rejection returned by the backend.
// The request reached the server and a non-2xx status came back.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// Is maps 404 responses onto ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}

// UserMessage converts an error into the inline message shown after a
// user-initiated action. Server detail text is surfaced verbatim.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Detail) != "" {
		return apiErr.Detail
	}

	var quotaErr *QuotaError
	if errors.As(err, &quotaErr) {
		return quotaErr.Decision.Message
	}

	var blockedErr *ActionBlockedError
	if errors.As(err, &blockedErr) {
		return blockedErr.Reason
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return "Please fix the highlighted fields."
	}

	return GenericFailureMessage
}
