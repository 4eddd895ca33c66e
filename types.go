package flowernursery

import (
	"context"

	"github.com/swarooprajana/flowernursery/validate"
)

// State identifies the single active step of an authentication flow.
//
//	Docs: docs/functionality-flow-states.md
type State uint8

const (
	// StateAnonymous is an exported constant or variable used by the flow controller.
	StateAnonymous State = iota
	// StateRegistering is an exported constant or variable used by the flow controller.
	StateRegistering
	// StateLoggingIn is an exported constant or variable used by the flow controller.
	StateLoggingIn
	// StateAwaitingOtp is an exported constant or variable used by the flow controller.
	StateAwaitingOtp
	// StateAwaitingPasswordReset is an exported constant or variable used by the flow controller.
	StateAwaitingPasswordReset
	// StateAuthenticated is an exported constant or variable used by the flow controller.
	StateAuthenticated
)

// String describes the string operation and its observable behavior.
func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateRegistering:
		return "registering"
	case StateLoggingIn:
		return "logging_in"
	case StateAwaitingOtp:
		return "awaiting_otp"
	case StateAwaitingPasswordReset:
		return "awaiting_password_reset"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// OtpPurpose distinguishes which flow an outstanding OTP challenge belongs to.
type OtpPurpose uint8

const (
	// PurposeNone is an exported constant or variable used by the flow controller.
	PurposeNone OtpPurpose = iota
	// PurposeLoginVerification is an exported constant or variable used by the flow controller.
	PurposeLoginVerification
	// PurposePasswordReset is an exported constant or variable used by the flow controller.
	PurposePasswordReset
)

// String describes the string operation and its observable behavior.
func (p OtpPurpose) String() string {
	switch p {
	case PurposeLoginVerification:
		return "login_verification"
	case PurposePasswordReset:
		return "password_reset"
	default:
		return "none"
	}
}

// Snapshot is a read-only view of one flow: the active state plus the
// ephemeral payload carried between steps. The payload is only populated in
// the states that define it.
type Snapshot struct {
	FlowID     string
	State      State
	Purpose    OtpPurpose
	Email      string
	Otp        string
	Notice     string
	Submitting bool
}

// StepResult is returned by every Controller submission. Snapshot reflects
// the flow after the action; FieldErrors is set when validation blocked the
// submission; Message carries the step-level display message for
// connectivity and service failures.
type StepResult struct {
	Snapshot    Snapshot
	FieldErrors validate.Result
	Message     string
}

// IdentityService is the contract with the remote service that owns
// accounts, credentials, and OTP issuance. identity.Client is the HTTP
// implementation; tests substitute their own.
//
// Implementations report service-classified failures as *identity.Error and
// anything else is treated as a connectivity failure.
type IdentityService interface {
	Register(ctx context.Context, firstName, lastName, email, password string) error
	Login(ctx context.Context, email, password string) error
	VerifyLoginOtp(ctx context.Context, email, otp string) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyResetOtp(ctx context.Context, email, otp string) error
	ResetPassword(ctx context.Context, email, otp, newPassword string) error
}
