package flowernursery

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/swarooprajana/flowernursery/identity"
	"github.com/swarooprajana/flowernursery/internal/stores"
)

const (
	// NoticeRegistrationComplete is an exported constant or variable used by the flow controller.
	NoticeRegistrationComplete = "Registration successful!"
	// NoticeResetOtpSent is an exported constant or variable used by the flow controller.
	NoticeResetOtpSent = "Password reset OTP has been sent to your email. Please check your inbox."
	// NoticePasswordResetComplete is an exported constant or variable used by the flow controller.
	NoticePasswordResetComplete = "Password reset successful! Please login with your new password."
)

// Controller defines a public type used by flowernursery APIs.
//
// Controller instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Controller struct {
	config    Config
	identity  IdentityService
	flowStore stores.FlowStore
	audit     *auditDispatcher
	metrics   *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	if c.audit != nil {
		c.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

func (c *Controller) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

func (c *Controller) observeSubmit(start time.Time) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Observe(MetricSubmitLatency, time.Since(start))
}

// NewFlow describes the newflow operation and its observable behavior.
//
// NewFlow may return an error when input validation, dependency calls, or security checks fail.
// NewFlow does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) NewFlow(ctx context.Context) (Snapshot, error) {
	if c == nil || c.flowStore == nil {
		return Snapshot{}, ErrFlowNotReady
	}

	flowID := uuid.NewString()
	record := &stores.FlowRecord{
		Step:      uint8(StateAnonymous),
		UpdatedAt: time.Now().Unix(),
	}

	if err := c.flowStore.Save(ctx, flowID, record, c.config.Flow.TTL); err != nil {
		return Snapshot{}, c.mapStoreError(err)
	}

	c.metricInc(MetricFlowCreated)
	c.emitAudit(ctx, auditEventFlowCreated, true, flowID, "", StateAnonymous.String(), nil, nil)

	return c.snapshot(flowID, record), nil
}

// State describes the state operation and its observable behavior.
//
// State may return an error when input validation, dependency calls, or security checks fail.
// State does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) State(ctx context.Context, flowID string) (Snapshot, error) {
	if c == nil || c.flowStore == nil {
		return Snapshot{}, ErrFlowNotReady
	}

	record, err := c.loadFlow(ctx, flowID)
	if err != nil {
		return Snapshot{}, err
	}

	return c.snapshot(flowID, record), nil
}

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) Logout(ctx context.Context, flowID string) (Snapshot, error) {
	if c == nil || c.flowStore == nil {
		return Snapshot{}, ErrFlowNotReady
	}

	// Logout never fails on flow state: the payload is discarded and the
	// flow lands on anonymous regardless of where it was. The attempt
	// sequence is preserved and the in-flight flag cleared so a late
	// CompleteAttempt from a superseded submission is discarded.
	var attempt uint32
	record, err := c.flowStore.Load(ctx, flowID)
	if err != nil && !errors.Is(err, stores.ErrFlowNotFound) {
		return Snapshot{}, c.mapStoreError(err)
	}
	if record != nil {
		attempt = record.Attempt
	}

	next := &stores.FlowRecord{
		Step:      uint8(StateAnonymous),
		Attempt:   attempt,
		UpdatedAt: time.Now().Unix(),
	}
	if err := c.flowStore.Save(ctx, flowID, next, c.config.Flow.TTL); err != nil {
		return Snapshot{}, c.mapStoreError(err)
	}

	c.metricInc(MetricLogout)
	c.emitAudit(ctx, auditEventLogout, true, flowID, "", StateAnonymous.String(), nil, nil)

	return c.snapshot(flowID, next), nil
}

/*
====================================
FLOW RECORD PLUMBING
====================================
*/

func (c *Controller) snapshot(flowID string, record *stores.FlowRecord) Snapshot {
	if record == nil {
		return Snapshot{FlowID: flowID, State: StateAnonymous}
	}
	return Snapshot{
		FlowID:     flowID,
		State:      State(record.Step),
		Purpose:    OtpPurpose(record.Purpose),
		Email:      record.Email,
		Otp:        record.Otp,
		Notice:     record.Notice,
		Submitting: record.InFlight,
	}
}

func (c *Controller) loadFlow(ctx context.Context, flowID string) (*stores.FlowRecord, error) {
	record, err := c.flowStore.Load(ctx, flowID)
	if err != nil {
		return nil, c.mapStoreError(err)
	}
	return record, nil
}

func (c *Controller) begin(ctx context.Context, flowID string, current, transition State) (*stores.FlowRecord, error) {
	record, err := c.flowStore.BeginAttempt(ctx, flowID, uint8(current), uint8(transition), c.config.Flow.TTL)
	if err != nil {
		return nil, c.mapStoreError(err)
	}
	return record, nil
}

func (c *Controller) complete(ctx context.Context, flowID string, attempt uint32, next *stores.FlowRecord) error {
	next.UpdatedAt = time.Now().Unix()
	if err := c.flowStore.CompleteAttempt(ctx, flowID, attempt, next, c.config.Flow.TTL); err != nil {
		return c.mapStoreError(err)
	}
	return nil
}

func (c *Controller) mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, stores.ErrFlowNotFound):
		return ErrFlowNotFound
	case errors.Is(err, stores.ErrFlowBusy):
		return ErrSubmissionInFlight
	case errors.Is(err, stores.ErrFlowSuperseded):
		return ErrSubmissionSuperseded
	case errors.Is(err, stores.ErrFlowRedisUnavailable):
		return ErrFlowUnavailable
	default:
		return ErrFlowUnavailable
	}
}

// submitCtx bounds one identity round trip so a flow can never stay
// in-flight past the configured timeout.
func (c *Controller) submitCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := c.config.Service.Timeout
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// classifyServiceFailure splits an identity failure into the public
// sentinel and the display message for the step that ran it. Anything
// that is not a service-classified *identity.Error counts as a
// connectivity failure.
func (c *Controller) classifyServiceFailure(err error) (error, string) {
	var svcErr *identity.Error
	if errors.As(err, &svcErr) {
		return ErrServiceRejected, svcErr.Message
	}
	c.metricInc(MetricServiceUnreachable)
	return ErrServiceUnreachable, identity.UnreachableMessage
}

func stepAllowed(step uint8, allowed ...State) bool {
	for _, s := range allowed {
		if step == uint8(s) {
			return true
		}
	}
	return false
}
