// Package middleware exposes HTTP middleware adapters that gate handlers on
// authentication flow state resolved through flowernursery.Controller.
//
// # Guards
//
//   - [RequireAuthenticated] — only lets authenticated flows through.
//
// Each guard reads the flow ID from the request, calls Controller.State, and
// injects the resolved snapshot into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Controller calls. It does NOT
// implement flow logic itself — all decisions are delegated to the Controller.
//
// # What this package must NOT do
//
//   - Read or write flow records directly (the Controller handles I/O).
//   - Make navigation decisions beyond pass/reject from the flow state.
package middleware
