package flowernursery

import (
	"context"
	"time"

	"github.com/swarooprajana/flowernursery/internal/stores"
	"github.com/swarooprajana/flowernursery/validate"
)

// SubmitOtp describes the submitotp operation and its observable behavior.
//
// SubmitOtp may return an error when input validation, dependency calls, or security checks fail.
// SubmitOtp does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) SubmitOtp(ctx context.Context, flowID string, code string) (StepResult, error) {
	if c == nil || c.flowStore == nil || c.identity == nil {
		return StepResult{}, ErrFlowNotReady
	}
	start := time.Now()

	record, err := c.loadFlow(ctx, flowID)
	if err != nil {
		return StepResult{}, err
	}

	if !stepAllowed(record.Step, StateAwaitingOtp) {
		c.metricInc(MetricFlowRedirect)
		return StepResult{Snapshot: c.snapshot(flowID, record)}, ErrStepMismatch
	}

	purpose := OtpPurpose(record.Purpose)
	if purpose == PurposeNone || record.Email == "" {
		return StepResult{Snapshot: c.snapshot(flowID, record)}, ErrOtpNotPending
	}

	if fieldErrors := validate.Otp(code); !fieldErrors.Valid() {
		c.metricInc(MetricValidationRejected)
		return StepResult{
			Snapshot:    c.snapshot(flowID, record),
			FieldErrors: fieldErrors,
		}, ErrValidationFailed
	}

	record, err = c.begin(ctx, flowID, StateAwaitingOtp, StateAwaitingOtp)
	if err != nil {
		return StepResult{}, err
	}

	callCtx, cancel := c.submitCtx(ctx)
	var svcErr error
	if purpose == PurposePasswordReset {
		svcErr = c.identity.VerifyResetOtp(callCtx, record.Email, code)
	} else {
		svcErr = c.identity.VerifyLoginOtp(callCtx, record.Email, code)
	}
	cancel()

	next := &stores.FlowRecord{Attempt: record.Attempt}
	var result StepResult
	var outcome error
	eventType := auditEventLoginOtp
	if purpose == PurposePasswordReset {
		eventType = auditEventResetOtpVerify
	}

	if svcErr == nil {
		if purpose == PurposePasswordReset {
			// Verified code travels with the flow so the reset step can
			// replay it to the service alongside the new password.
			next.Step = uint8(StateAwaitingPasswordReset)
			next.Email = record.Email
			next.Otp = code
			c.metricInc(MetricResetOtpVerified)
		} else {
			next.Step = uint8(StateAuthenticated)
			next.Email = record.Email
			c.metricInc(MetricLoginOtpSuccess)
		}
	} else {
		outcome, result.Message = c.classifyServiceFailure(svcErr)
		next.Step = uint8(StateAwaitingOtp)
		next.Purpose = record.Purpose
		next.Email = record.Email
		if purpose == PurposePasswordReset {
			c.metricInc(MetricResetOtpFailure)
		} else {
			c.metricInc(MetricLoginOtpFailure)
		}
	}

	if err := c.complete(ctx, flowID, record.Attempt, next); err != nil {
		return StepResult{}, err
	}

	result.Snapshot = c.snapshot(flowID, next)
	c.observeSubmit(start)
	c.emitAudit(ctx, eventType, svcErr == nil, flowID, record.Email, State(next.Step).String(), outcome, nil)

	return result, outcome
}

// ResendResetOtp describes the resendresetotp operation and its observable behavior.
//
// ResendResetOtp may return an error when input validation, dependency calls, or security checks fail.
// ResendResetOtp does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) ResendResetOtp(ctx context.Context, flowID string) (StepResult, error) {
	if c == nil || c.flowStore == nil || c.identity == nil {
		return StepResult{}, ErrFlowNotReady
	}
	start := time.Now()

	record, err := c.loadFlow(ctx, flowID)
	if err != nil {
		return StepResult{}, err
	}

	if !stepAllowed(record.Step, StateAwaitingOtp) {
		c.metricInc(MetricFlowRedirect)
		return StepResult{Snapshot: c.snapshot(flowID, record)}, ErrStepMismatch
	}

	if OtpPurpose(record.Purpose) != PurposePasswordReset || record.Email == "" {
		return StepResult{Snapshot: c.snapshot(flowID, record)}, ErrOtpNotPending
	}

	record, err = c.begin(ctx, flowID, StateAwaitingOtp, StateAwaitingOtp)
	if err != nil {
		return StepResult{}, err
	}

	callCtx, cancel := c.submitCtx(ctx)
	svcErr := c.identity.ForgotPassword(callCtx, record.Email)
	cancel()

	// The flow stays on the OTP step on both outcomes; only the notice
	// and the display message differ.
	next := &stores.FlowRecord{
		Step:    uint8(StateAwaitingOtp),
		Purpose: record.Purpose,
		Email:   record.Email,
		Attempt: record.Attempt,
	}
	var result StepResult
	var outcome error

	if svcErr == nil {
		next.Notice = NoticeResetOtpSent
		c.metricInc(MetricResetOtpRequested)
	} else {
		outcome, result.Message = c.classifyServiceFailure(svcErr)
	}

	if err := c.complete(ctx, flowID, record.Attempt, next); err != nil {
		return StepResult{}, err
	}

	result.Snapshot = c.snapshot(flowID, next)
	c.observeSubmit(start)
	c.emitAudit(ctx, auditEventResetOtpResend, svcErr == nil, flowID, record.Email, State(next.Step).String(), outcome, nil)

	return result, outcome
}
