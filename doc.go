// Package flowernursery provides the authentication and account-recovery flow
// engine behind the nursery storefront: registration, credential login with a
// one-time-password step, and the forgot-password/reset sequence, modeled as
// an explicit per-session state machine in front of a remote identity service.
//
// The package is designed for concurrent front-end workloads: Controller
// methods are safe to call from multiple goroutines after initialization
// through [Builder.Build].
//
// # Architecture boundaries
//
// flowernursery is the public surface. It exposes [Controller], [Builder],
// [Config], and value types (Snapshot, StepResult, MetricsSnapshot, etc.).
// Internal coordination — flow-record persistence and submission ordering —
// lives under internal/ and is never exported. Field validation is the
// validate subpackage; the HTTP identity client is the identity subpackage.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or record encoding details in
//     its public API.
//   - Store passwords or issue tokens — credentials pass through to the
//     identity service and are never persisted.
//   - Perform I/O outside of Controller methods (construction via Builder is
//     allocation-only until Build).
package flowernursery
