// Package broker dispatches scope-checked operations to remote ERP instances.
//
// The broker is the single choke point between callers holding raw
// credentials and the XML-RPC transport. Every call is checked against the
// caller's scope before any pool or network activity, sessions are leased
// from a shared pool keyed by caller identity, and the caller's password is
// re-presented to the server on every dispatch so a pooled session cannot be
// ridden by a caller who does not hold the secret.
package broker
