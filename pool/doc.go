// Package pool caches authenticated ERP sessions so that repeated calls by
// the same caller do not re-authenticate on every request.
//
// Entries are keyed by a hash of endpoint, database, username and the raw
// scope string (never the password) and live for a fixed TTL measured from
// creation. Acquisition hands out leases:
//
//	lease, err := p.Acquire(ctx, key, factory)
//	if err != nil { ... }
//	defer lease.Release()
//	conn := lease.Conn()
//
// # Concurrency
//
// Concurrent acquisitions of the same key while no live entry exists are
// coalesced: exactly one factory invocation runs and every waiter shares its
// outcome. The factory executes under a pool-owned context bounded by
// Config.AuthTimeout, detached from any individual caller, so a canceled
// waiter abandons the wait (returning its own ctx.Err()) without aborting
// the authentication other waiters depend on.
//
// Factory failures are never cached; the next acquisition tries again.
//
// # Expiry
//
// A background sweeper and lazy checks on Acquire remove expired entries.
// An entry still borrowed (lease outstanding) is unlinked but its connection
// is closed only when the last lease is released, so in-flight operations
// are never cut mid-call.
package pool
