package flowernursery

import (
	"context"
	"time"

	"github.com/swarooprajana/flowernursery/internal/stores"
	"github.com/swarooprajana/flowernursery/validate"
)

// RequestPasswordReset describes the requestpasswordreset operation and its observable behavior.
//
// RequestPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// RequestPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) RequestPasswordReset(ctx context.Context, flowID string, email string) (StepResult, error) {
	if c == nil || c.flowStore == nil || c.identity == nil {
		return StepResult{}, ErrFlowNotReady
	}
	start := time.Now()

	record, err := c.loadFlow(ctx, flowID)
	if err != nil {
		return StepResult{}, err
	}

	if !stepAllowed(record.Step, StateAnonymous) {
		c.metricInc(MetricFlowRedirect)
		return StepResult{Snapshot: c.snapshot(flowID, record)}, ErrStepMismatch
	}

	if fieldErrors := validate.ForgotPassword(email); !fieldErrors.Valid() {
		c.metricInc(MetricValidationRejected)
		return StepResult{
			Snapshot:    c.snapshot(flowID, record),
			FieldErrors: fieldErrors,
		}, ErrValidationFailed
	}

	record, err = c.begin(ctx, flowID, StateAnonymous, StateAnonymous)
	if err != nil {
		return StepResult{}, err
	}

	callCtx, cancel := c.submitCtx(ctx)
	svcErr := c.identity.ForgotPassword(callCtx, email)
	cancel()

	next := &stores.FlowRecord{Attempt: record.Attempt}
	var result StepResult
	var outcome error

	if svcErr == nil {
		next.Step = uint8(StateAwaitingOtp)
		next.Purpose = uint8(PurposePasswordReset)
		next.Email = email
		next.Notice = NoticeResetOtpSent
		c.metricInc(MetricResetOtpRequested)
	} else {
		outcome, result.Message = c.classifyServiceFailure(svcErr)
		next.Step = uint8(StateAnonymous)
	}

	if err := c.complete(ctx, flowID, record.Attempt, next); err != nil {
		return StepResult{}, err
	}

	result.Snapshot = c.snapshot(flowID, next)
	c.observeSubmit(start)
	c.emitAudit(ctx, auditEventResetOtpRequest, svcErr == nil, flowID, email, State(next.Step).String(), outcome, nil)

	return result, outcome
}

// SubmitNewPassword describes the submitnewpassword operation and its observable behavior.
//
// SubmitNewPassword may return an error when input validation, dependency calls, or security checks fail.
// SubmitNewPassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) SubmitNewPassword(ctx context.Context, flowID string, form validate.ResetPasswordForm) (StepResult, error) {
	if c == nil || c.flowStore == nil || c.identity == nil {
		return StepResult{}, ErrFlowNotReady
	}
	start := time.Now()

	record, err := c.loadFlow(ctx, flowID)
	if err != nil {
		return StepResult{}, err
	}

	if !stepAllowed(record.Step, StateAwaitingPasswordReset) {
		c.metricInc(MetricFlowRedirect)
		return StepResult{Snapshot: c.snapshot(flowID, record)}, ErrStepMismatch
	}

	// A reset without the verified email and code cannot be replayed to
	// the service; the flow is sent back to the forgot-password entry.
	if record.Email == "" || record.Otp == "" {
		next := &stores.FlowRecord{
			Step:      uint8(StateAnonymous),
			Attempt:   record.Attempt,
			UpdatedAt: time.Now().Unix(),
		}
		if err := c.flowStore.Save(ctx, flowID, next, c.config.Flow.TTL); err != nil {
			return StepResult{}, c.mapStoreError(err)
		}
		c.metricInc(MetricFlowRedirect)
		c.emitAudit(ctx, auditEventPasswordReset, false, flowID, record.Email, StateAnonymous.String(), ErrResetPayloadMissing, nil)
		return StepResult{Snapshot: c.snapshot(flowID, next)}, ErrResetPayloadMissing
	}

	if fieldErrors := validate.ResetPassword(form); !fieldErrors.Valid() {
		c.metricInc(MetricValidationRejected)
		return StepResult{
			Snapshot:    c.snapshot(flowID, record),
			FieldErrors: fieldErrors,
		}, ErrValidationFailed
	}

	record, err = c.begin(ctx, flowID, StateAwaitingPasswordReset, StateAwaitingPasswordReset)
	if err != nil {
		return StepResult{}, err
	}

	callCtx, cancel := c.submitCtx(ctx)
	svcErr := c.identity.ResetPassword(callCtx, record.Email, record.Otp, form.Password)
	cancel()

	next := &stores.FlowRecord{Attempt: record.Attempt}
	var result StepResult
	var outcome error

	if svcErr == nil {
		next.Step = uint8(StateAnonymous)
		next.Notice = NoticePasswordResetComplete
		c.metricInc(MetricPasswordResetSuccess)
	} else {
		outcome, result.Message = c.classifyServiceFailure(svcErr)
		next.Step = uint8(StateAwaitingPasswordReset)
		next.Email = record.Email
		next.Otp = record.Otp
		c.metricInc(MetricPasswordResetFailure)
	}

	if err := c.complete(ctx, flowID, record.Attempt, next); err != nil {
		return StepResult{}, err
	}

	result.Snapshot = c.snapshot(flowID, next)
	c.observeSubmit(start)
	c.emitAudit(ctx, auditEventPasswordReset, svcErr == nil, flowID, record.Email, State(next.Step).String(), outcome, nil)

	return result, outcome
}
