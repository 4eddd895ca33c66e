// Package validate implements the pure, per-field form validation rules for
// the account-access flows: registration, login, forgot-password, OTP entry,
// and password reset.
//
// # Results
//
// Every form function returns a complete [Result]: each field the form knows
// about is present in the map, with an empty string when the field is valid.
// A form passes iff [Result.Valid] reports true. Repeated calls on the same
// input always produce an identical Result — there is no hidden state.
//
// # Architecture boundaries
//
// This package owns field rules and their display messages only. It never
// performs I/O, never touches the network, and never inspects flow state.
// Which form is legal at which step is decided by the Controller.
//
// # What this package must NOT do
//
//   - Import any other flowernursery package.
//   - Call the identity service or any remote collaborator.
//   - Mutate its input or retain it between calls.
package validate
