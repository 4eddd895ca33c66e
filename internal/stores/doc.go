// Package stores provides session-scoped persistence for authentication flow
// records: which step a flow is on, the ephemeral payload carried between
// steps (email, verified OTP), and the in-flight submission guard.
//
// # Design
//
// Each flow is a versioned, binary-encoded record stored under its flow ID
// with a TTL. Submissions are bracketed by BeginAttempt/CompleteAttempt:
// BeginAttempt marks the record in-flight and hands out an attempt sequence
// number; CompleteAttempt only applies a result whose sequence number still
// matches, so the outcome of a superseded submission is discarded. The Redis
// implementation uses WATCH/MULTI optimistic transactions with retry on
// contention; the memory implementation serializes on a mutex.
//
// # Architecture boundaries
//
// This package owns persistence and the submission-ordering discipline. It
// does NOT validate input, call the identity service, or decide transitions —
// those belong to the flow controller.
//
// # What this package must NOT do
//
//   - Import the root flowernursery package or any sibling internal package.
//   - Interpret step or purpose values beyond copying them.
//   - Log ephemeral payload (email, OTP) contents.
package stores
