package internaldefs

import (
	flowernursery "github.com/swarooprajana/flowernursery"
)

// CounterDef defines a public type used by flowernursery APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   flowernursery.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by flowernursery APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   flowernursery.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the flow controller.
var CounterDefs = []CounterDef{
	{ID: flowernursery.MetricRegistrationSuccess, Name: "nursery_registration_success_total", Help: "Successful registrations."},
	{ID: flowernursery.MetricRegistrationFailure, Name: "nursery_registration_failure_total", Help: "Failed registration submissions."},
	{ID: flowernursery.MetricLoginSuccess, Name: "nursery_login_success_total", Help: "Credential submissions accepted by the identity service."},
	{ID: flowernursery.MetricLoginFailure, Name: "nursery_login_failure_total", Help: "Credential submissions rejected or unreachable."},
	{ID: flowernursery.MetricLoginOtpSuccess, Name: "nursery_login_otp_success_total", Help: "Verified login OTP submissions."},
	{ID: flowernursery.MetricLoginOtpFailure, Name: "nursery_login_otp_failure_total", Help: "Failed login OTP submissions."},
	{ID: flowernursery.MetricResetOtpRequested, Name: "nursery_reset_otp_requested_total", Help: "Password reset OTP issuance requests."},
	{ID: flowernursery.MetricResetOtpVerified, Name: "nursery_reset_otp_verified_total", Help: "Verified password reset OTP submissions."},
	{ID: flowernursery.MetricResetOtpFailure, Name: "nursery_reset_otp_failure_total", Help: "Failed password reset OTP submissions."},
	{ID: flowernursery.MetricPasswordResetSuccess, Name: "nursery_password_reset_success_total", Help: "Completed password resets."},
	{ID: flowernursery.MetricPasswordResetFailure, Name: "nursery_password_reset_failure_total", Help: "Failed password reset submissions."},
	{ID: flowernursery.MetricValidationRejected, Name: "nursery_validation_rejected_total", Help: "Submissions rejected by field validation."},
	{ID: flowernursery.MetricServiceUnreachable, Name: "nursery_service_unreachable_total", Help: "Identity service connectivity failures."},
	{ID: flowernursery.MetricFlowCreated, Name: "nursery_flow_created_total", Help: "Created authentication flows."},
	{ID: flowernursery.MetricFlowRedirect, Name: "nursery_flow_redirect_total", Help: "Submissions redirected for arriving on the wrong step."},
	{ID: flowernursery.MetricLogout, Name: "nursery_logout_total", Help: "Logout operations."},
}

// HistogramDefs is an exported constant or variable used by the flow controller.
var HistogramDefs = []HistogramDef{
	{ID: flowernursery.MetricSubmitLatency, Name: "nursery_submit_latency_seconds", Help: "Submission latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the flow controller.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the flow controller.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets widens a raw snapshot slice to the fixed bucket count,
// zero-filling anything missing and dropping anything extra.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets converts per-bucket counts into the running totals the
// exposition formats expect; the last element is the sample count.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	out := raw
	for i := 1; i < len(out); i++ {
		out[i] += out[i-1]
	}
	return out
}
