package flowernursery

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventFlowCreated     = "flow_created"
	auditEventRegistration    = "registration_submit"
	auditEventLogin           = "login_submit"
	auditEventLoginOtp        = "login_otp_verify"
	auditEventResetOtpRequest = "reset_otp_request"
	auditEventResetOtpVerify  = "reset_otp_verify"
	auditEventResetOtpResend  = "reset_otp_resend"
	auditEventPasswordReset   = "password_reset_submit"
	auditEventLogout          = "logout"
)

// AuditErrorCode defines a public type used by flowernursery APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrValidation      AuditErrorCode = "validation_failed"
	auditErrStepMismatch    AuditErrorCode = "step_mismatch"
	auditErrInFlight        AuditErrorCode = "submission_in_flight"
	auditErrSuperseded      AuditErrorCode = "submission_superseded"
	auditErrUnreachable     AuditErrorCode = "service_unreachable"
	auditErrServiceRejected AuditErrorCode = "service_rejected"
	auditErrFlowNotFound    AuditErrorCode = "flow_not_found"
	auditErrFlowUnavailable AuditErrorCode = "flow_unavailable"
	auditErrPayloadMissing  AuditErrorCode = "reset_payload_missing"
	auditErrOtpNotPending   AuditErrorCode = "otp_not_pending"
	auditErrInternal        AuditErrorCode = "internal_error"
)

func (c *Controller) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	flowID string,
	email string,
	state string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		FlowID:    flowID,
		Email:     email,
		State:     state,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	c.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrValidationFailed):
		return auditErrValidation
	case errors.Is(err, ErrStepMismatch):
		return auditErrStepMismatch
	case errors.Is(err, ErrSubmissionInFlight):
		return auditErrInFlight
	case errors.Is(err, ErrSubmissionSuperseded):
		return auditErrSuperseded
	case errors.Is(err, ErrServiceUnreachable):
		return auditErrUnreachable
	case errors.Is(err, ErrServiceRejected):
		return auditErrServiceRejected
	case errors.Is(err, ErrFlowNotFound):
		return auditErrFlowNotFound
	case errors.Is(err, ErrFlowUnavailable):
		return auditErrFlowUnavailable
	case errors.Is(err, ErrResetPayloadMissing):
		return auditErrPayloadMissing
	case errors.Is(err, ErrOtpNotPending):
		return auditErrOtpNotPending
	default:
		return auditErrInternal
	}
}
