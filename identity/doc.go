// Package identity implements the HTTP client for the remote identity
// service that owns accounts, credentials, and OTP issuance.
//
// # Error mapping
//
// A non-2xx response becomes a [*Error] carrying the HTTP status and the
// service's message when the body declares application/json and contains a
// "message" field; otherwise the status text. A transport-level failure (no
// response obtained) wraps [ErrUnreachable] and surfaces a generic
// connectivity message — callers can tell the two classes apart with
// errors.Is / errors.As.
//
// # Architecture boundaries
//
// This package owns request encoding, response decoding, and failure
// classification for the identity endpoints. It holds no flow state and
// makes no decisions about which call is legal at which step.
//
// # What this package must NOT do
//
//   - Import any other flowernursery package.
//   - Read its base URL or timeouts from ambient process state.
//   - Retry requests on its own.
package identity
