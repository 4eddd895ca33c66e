package flowernursery

import (
	"context"
	"time"

	"github.com/swarooprajana/flowernursery/internal/stores"
	"github.com/swarooprajana/flowernursery/validate"
)

// SubmitRegistration describes the submitregistration operation and its observable behavior.
//
// SubmitRegistration may return an error when input validation, dependency calls, or security checks fail.
// SubmitRegistration does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) SubmitRegistration(ctx context.Context, flowID string, form validate.RegistrationForm) (StepResult, error) {
	if c == nil || c.flowStore == nil || c.identity == nil {
		return StepResult{}, ErrFlowNotReady
	}
	start := time.Now()

	record, err := c.loadFlow(ctx, flowID)
	if err != nil {
		return StepResult{}, err
	}

	if !stepAllowed(record.Step, StateAnonymous, StateRegistering) {
		c.metricInc(MetricFlowRedirect)
		return StepResult{Snapshot: c.snapshot(flowID, record)}, ErrStepMismatch
	}

	if fieldErrors := validate.Registration(form); !fieldErrors.Valid() {
		c.metricInc(MetricValidationRejected)
		return StepResult{
			Snapshot:    c.snapshot(flowID, record),
			FieldErrors: fieldErrors,
		}, ErrValidationFailed
	}

	record, err = c.begin(ctx, flowID, State(record.Step), StateRegistering)
	if err != nil {
		return StepResult{}, err
	}

	callCtx, cancel := c.submitCtx(ctx)
	svcErr := c.identity.Register(callCtx, form.FirstName, form.LastName, form.Email, form.Password)
	cancel()

	next := &stores.FlowRecord{Attempt: record.Attempt}
	var result StepResult
	var outcome error

	if svcErr == nil {
		next.Step = uint8(StateAnonymous)
		next.Notice = NoticeRegistrationComplete
		c.metricInc(MetricRegistrationSuccess)
	} else {
		outcome, result.Message = c.classifyServiceFailure(svcErr)
		next.Step = uint8(StateRegistering)
		c.metricInc(MetricRegistrationFailure)
	}

	if err := c.complete(ctx, flowID, record.Attempt, next); err != nil {
		return StepResult{}, err
	}

	result.Snapshot = c.snapshot(flowID, next)
	c.observeSubmit(start)
	c.emitAudit(ctx, auditEventRegistration, svcErr == nil, flowID, form.Email, State(next.Step).String(), outcome, nil)

	return result, outcome
}
