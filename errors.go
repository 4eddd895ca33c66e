package flowernursery

import "errors"

var (
	// ErrFlowNotReady is an exported constant or variable used by the flow controller.
	ErrFlowNotReady = errors.New("flow controller not initialized")
	// ErrFlowNotFound is an exported constant or variable used by the flow controller.
	ErrFlowNotFound = errors.New("flow not found")
	// ErrFlowUnavailable is an exported constant or variable used by the flow controller.
	ErrFlowUnavailable = errors.New("flow store unavailable")
	// ErrValidationFailed is an exported constant or variable used by the flow controller.
	ErrValidationFailed = errors.New("form validation failed")
	// ErrStepMismatch is an exported constant or variable used by the flow controller.
	ErrStepMismatch = errors.New("operation not legal in current flow state")
	// ErrSubmissionInFlight is an exported constant or variable used by the flow controller.
	ErrSubmissionInFlight = errors.New("submission already in flight")
	// ErrSubmissionSuperseded is an exported constant or variable used by the flow controller.
	ErrSubmissionSuperseded = errors.New("submission superseded by a later action")
	// ErrServiceUnreachable is an exported constant or variable used by the flow controller.
	ErrServiceUnreachable = errors.New("identity service unreachable")
	// ErrServiceRejected is an exported constant or variable used by the flow controller.
	ErrServiceRejected = errors.New("identity service rejected the request")
	// ErrResetPayloadMissing is an exported constant or variable used by the flow controller.
	ErrResetPayloadMissing = errors.New("reset step entered without carried email and otp")
	// ErrOtpNotPending is an exported constant or variable used by the flow controller.
	ErrOtpNotPending = errors.New("no otp challenge pending")
)
