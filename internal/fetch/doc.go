// Package fetch provides the HTTP primitives for static analysis:
// a client that measures time-to-first-byte and detects response
// compression, and a URL validator that rejects non-HTTP schemes and
// hosts resolving to private address space before any network I/O.
//
// Design decision: Validation and fetching live in the same package
// because the client's dialer enforces the same address policy the
// validator checks. Keeping them together prevents the two from
// drifting apart (a validator that allows what the dialer blocks would
// produce confusing mid-request failures).
package fetch
