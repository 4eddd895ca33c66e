// Package internal groups helpers that are intentionally private to
// flowernursery.
//
// # Sub-packages
//
//   - stores — flow-record persistence (FlowStore contract, Redis and
//     in-memory implementations, versioned binary record codec)
//
// Nothing under internal/ is part of the public API; the exported surface
// lives in the root package and its identity, validate, middleware, and
// metrics/export sub-packages.
package internal
