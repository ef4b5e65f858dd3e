package usecase

import "fmt"

type ErrorCode string

const (
	// ErrorInvalidSignature rejects a request whose body signature or
	// extension id does not check out.
	ErrorInvalidSignature ErrorCode = "INVALID_SIGNATURE"
	// ErrorInvalidEnvelope rejects a request body that cannot be decoded.
	ErrorInvalidEnvelope ErrorCode = "INVALID_ENVELOPE"
	// ErrorRouting means no handler is registered for the request type.
	ErrorRouting ErrorCode = "ROUTING_ERROR"
	// ErrorDependency means a store, weather, or notification call failed
	// and the turn was aborted.
	ErrorDependency ErrorCode = "DEPENDENCY_ERROR"
	ErrorInternal   ErrorCode = "INTERNAL_ERROR"
)

// Error is a turn-level failure. Slot validation problems and wrong-phase
// intents are not Errors; they produce corrective Turns instead.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
