package flowernursery

import (
	"context"
	"time"

	"github.com/swarooprajana/flowernursery/internal/stores"
	"github.com/swarooprajana/flowernursery/validate"
)

// SubmitLogin describes the submitlogin operation and its observable behavior.
//
// SubmitLogin may return an error when input validation, dependency calls, or security checks fail.
// SubmitLogin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) SubmitLogin(ctx context.Context, flowID string, form validate.LoginForm) (StepResult, error) {
	if c == nil || c.flowStore == nil || c.identity == nil {
		return StepResult{}, ErrFlowNotReady
	}
	start := time.Now()

	record, err := c.loadFlow(ctx, flowID)
	if err != nil {
		return StepResult{}, err
	}

	if !stepAllowed(record.Step, StateAnonymous, StateLoggingIn) {
		c.metricInc(MetricFlowRedirect)
		return StepResult{Snapshot: c.snapshot(flowID, record)}, ErrStepMismatch
	}

	if fieldErrors := validate.Login(form); !fieldErrors.Valid() {
		c.metricInc(MetricValidationRejected)
		return StepResult{
			Snapshot:    c.snapshot(flowID, record),
			FieldErrors: fieldErrors,
		}, ErrValidationFailed
	}

	record, err = c.begin(ctx, flowID, State(record.Step), StateLoggingIn)
	if err != nil {
		return StepResult{}, err
	}

	callCtx, cancel := c.submitCtx(ctx)
	svcErr := c.identity.Login(callCtx, form.Email, form.Password)
	cancel()

	next := &stores.FlowRecord{Attempt: record.Attempt}
	var result StepResult
	var outcome error

	if svcErr == nil {
		// Credentials accepted; the service sends an OTP and the flow
		// carries the email until it is verified.
		next.Step = uint8(StateAwaitingOtp)
		next.Purpose = uint8(PurposeLoginVerification)
		next.Email = form.Email
		c.metricInc(MetricLoginSuccess)
	} else {
		outcome, result.Message = c.classifyServiceFailure(svcErr)
		next.Step = uint8(StateLoggingIn)
		c.metricInc(MetricLoginFailure)
	}

	if err := c.complete(ctx, flowID, record.Attempt, next); err != nil {
		return StepResult{}, err
	}

	result.Snapshot = c.snapshot(flowID, next)
	c.observeSubmit(start)
	c.emitAudit(ctx, auditEventLogin, svcErr == nil, flowID, form.Email, State(next.Step).String(), outcome, nil)

	return result, outcome
}
