// Package errs defines the error taxonomy shared by the domain, application,
// and adapter layers.
//
// Every concrete error type unwraps to one of the package-level sentinels, so
// callers classify failures with errors.Is regardless of which layer produced
// them. The HTTP adapter maps the sentinels to response status codes in one
// place; handlers and repositories only ever construct the typed errors.
//
// Validation kinds (ValueIsRequired, ValueIsInvalid, ValueIsOutOfRange) cover
// constructor guards. Lifecycle kinds (InvalidTransition, VersionConflict,
// PreconditionFailed) cover the order state machine and optimistic locking.
// MalformedPayload marks inbound payloads that must be dropped, not retried.
package errs
