// Package errs defines the single typed error taxonomy every core
// component returns. The HTTP adapter is the only layer that maps these
// to status codes; everything else inspects them with errors.As.
package errs

import "fmt"

// Code identifies which branch of the taxonomy an error belongs to.
type Code string

const (
	CodeValidation     Code = "VALIDATION"
	CodeUnauthorized   Code = "UNAUTHORIZED"
	CodeNotFound       Code = "NOT_FOUND"
	CodeGameState      Code = "GAME_STATE"
	CodeConflict       Code = "CONFLICT"
	CodeAntiCheat      Code = "ANTI_CHEAT_REJECT"
	CodePersistence    Code = "PERSISTENCE"
	CodeInternal       Code = "INTERNAL"
	CodeInvalidGeo     Code = "INVALID_GEOMETRY"
)

// Reason is a machine-readable rejection reason, set on kill rejections
// and on rejected location updates.
type Reason string

const (
	ReasonSafeZone       Reason = "SAFE_ZONE"
	ReasonOutOfRange     Reason = "OUT_OF_RANGE"
	ReasonTargetMismatch Reason = "TARGET_MISMATCH"
	ReasonStaleLocation  Reason = "STALE_LOCATION"
	ReasonEmergencyPaused Reason = "EMERGENCY_PAUSED"
)

// Error is the single error-result type used across the core, per the
// "exceptions as control flow" design note: components return Error
// values, never raw status codes.
type Error struct {
	Code    Code
	Message string
	Reason  Reason // optional, set for kill and location rejection paths
	Err     error  // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Retriable reports whether the caller may safely retry the operation
// that produced this error.
func (e *Error) Retriable() bool {
	return e.Code == CodePersistence
}

func Validation(msg string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(msg, args...)}
}

func Unauthorized(msg string, args ...any) *Error {
	return &Error{Code: CodeUnauthorized, Message: fmt.Sprintf(msg, args...)}
}

func NotFound(msg string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(msg, args...)}
}

func GameState(msg string, args ...any) *Error {
	return &Error{Code: CodeGameState, Message: fmt.Sprintf(msg, args...)}
}

func Conflict(msg string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(msg, args...)}
}

func AntiCheatReject(reason Reason, msg string, args ...any) *Error {
	return &Error{Code: CodeAntiCheat, Message: fmt.Sprintf(msg, args...), Reason: reason}
}

func Persistence(cause error, msg string, args ...any) *Error {
	return &Error{Code: CodePersistence, Message: fmt.Sprintf(msg, args...), Err: cause}
}

func Internal(cause error, msg string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(msg, args...), Err: cause}
}

func InvalidGeometry(msg string, args ...any) *Error {
	return &Error{Code: CodeInvalidGeo, Message: fmt.Sprintf(msg, args...)}
}

// KillRejection wraps a validation failure with a machine-readable reason,
// used by KillPipeline precondition checks.
func KillRejection(reason Reason, msg string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(msg, args...), Reason: reason}
}
