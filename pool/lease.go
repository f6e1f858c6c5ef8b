package pool

import (
	"sync"
	"time"
)

// Lease is a checked-out pool entry. The connection stays open for at least
// as long as the lease is held, even if the entry expires or is invalidated
// underneath it.
type Lease struct {
	pool  *Pool
	entry *entry
	once  sync.Once
}

// Conn returns the leased session.
func (l *Lease) Conn() Conn {
	return l.entry.conn
}

// Key returns the pool key the lease was acquired under.
func (l *Lease) Key() Key {
	return l.entry.key
}

// CreatedAt returns when the underlying session was authenticated.
func (l *Lease) CreatedAt() time.Time {
	return l.entry.createdAt
}

// Release returns the session to the pool. Safe to call more than once;
// only the first call counts.
func (l *Lease) Release() {
	l.once.Do(func() {
		l.pool.release(l.entry)
	})
}
