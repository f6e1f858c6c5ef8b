package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Default configuration values.
const (
	DefaultTTL           = 60 * time.Minute
	DefaultAuthTimeout   = 30 * time.Second
	DefaultSweepInterval = time.Minute
)

// Conn is a pooled session. The pool only needs to close it; everything
// else is the caller's business.
type Conn interface {
	Close() error
}

// Factory authenticates a new session. It runs under a pool-owned context
// bounded by Config.AuthTimeout and must honor cancellation.
type Factory func(ctx context.Context) (Conn, error)

// Config configures a Pool.
type Config struct {
	// TTL is how long an entry lives, measured from creation. Use is never
	// extended. Default: 60 minutes.
	TTL time.Duration

	// AuthTimeout bounds a single factory invocation. Default: 30 seconds.
	AuthTimeout time.Duration

	// SweepInterval is how often the background sweeper removes expired
	// entries. Zero means DefaultSweepInterval; negative disables the
	// sweeper (expiry is still enforced lazily on Acquire).
	SweepInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.AuthTimeout <= 0 {
		c.AuthTimeout = DefaultAuthTimeout
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	return c
}

// Stats is a snapshot of pool counters.
type Stats struct {
	Entries         int    `json:"entries"`
	Hits            uint64 `json:"hits"`
	Misses          uint64 `json:"misses"`
	Authentications uint64 `json:"authentications"`
	AuthFailures    uint64 `json:"auth_failures"`
	Expirations     uint64 `json:"expirations"`
	Evictions       uint64 `json:"evictions"`
}

type entry struct {
	key       Key
	conn      Conn
	createdAt time.Time
	expiresAt time.Time
	lastUsed  time.Time

	// Guarded by Pool.mu.
	refs    int
	removed bool
	closed  bool
}

// Pool is a keyed TTL session pool with coalesced authentication.
//
// Contract:
//   - Concurrency: safe for concurrent use; at most one factory invocation
//     per key is in flight at a time.
//   - Errors: factory errors propagate unchanged and are never cached.
//   - Ownership: the pool owns cached connections and closes them; borrowed
//     connections are closed only after their last lease is released.
type Pool struct {
	cfg Config

	mu      sync.Mutex
	entries map[Key]*entry
	closed  bool

	flight   singleflight.Group
	stopCh   chan struct{}
	stopOnce sync.Once

	hits         atomic.Uint64
	misses       atomic.Uint64
	auths        atomic.Uint64
	authFailures atomic.Uint64
	expirations  atomic.Uint64
	evictions    atomic.Uint64
}

// New creates a pool and starts its background sweeper (unless disabled).
func New(cfg Config) *Pool {
	p := &Pool{
		cfg:     cfg.withDefaults(),
		entries: make(map[Key]*entry),
		stopCh:  make(chan struct{}),
	}
	if p.cfg.SweepInterval > 0 {
		go p.sweepLoop()
	}
	return p
}

// Acquire returns a lease on the session for key, creating it through
// factory when no live entry exists. Expired entries are discarded, never
// returned. The caller must Release the lease when done with the session.
//
// When several goroutines acquire the same absent key concurrently, factory
// runs once and the result is shared. A caller whose ctx ends while waiting
// gets ctx.Err(); the in-flight authentication continues for the others.
func (p *Pool) Acquire(ctx context.Context, key Key, factory Factory) (*Lease, error) {
	if factory == nil {
		return nil, ErrNilFactory
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		lease, err := p.tryCheckout(key)
		if err != nil {
			return nil, err
		}
		if lease != nil {
			return lease, nil
		}

		p.misses.Add(1)

		ch := p.flight.DoChan(string(key), func() (any, error) {
			return p.authenticate(key, factory)
		})

		select {
		case <-ctx.Done():
			// The flight keeps running; other waiters still get its result.
			return nil, ctx.Err()
		case res := <-ch:
			if res.Err != nil {
				return nil, res.Err
			}
			e := res.Val.(*entry)

			p.mu.Lock()
			if p.closed {
				p.mu.Unlock()
				return nil, ErrClosed
			}
			if e.removed || time.Now().After(e.expiresAt) {
				// Replaced or already lapsed; go around again.
				p.mu.Unlock()
				continue
			}
			e.refs++
			e.lastUsed = time.Now()
			p.mu.Unlock()
			return &Lease{pool: p, entry: e}, nil
		}
	}
}

// tryCheckout hands out a lease on a live cached entry. A nil lease with a
// nil error means no live entry exists and the caller should take the
// factory path.
func (p *Pool) tryCheckout(key Key) (*Lease, error) {
	var closeNow Conn

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}

	e, ok := p.entries[key]
	if ok {
		if time.Now().Before(e.expiresAt) {
			e.refs++
			e.lastUsed = time.Now()
			p.hits.Add(1)
			p.mu.Unlock()
			return &Lease{pool: p, entry: e}, nil
		}
		closeNow = p.removeLocked(e)
		p.expirations.Add(1)
	}
	p.mu.Unlock()

	if closeNow != nil {
		_ = closeNow.Close()
	}
	return nil, nil
}

// authenticate is the single-flight body: it runs the factory under a
// pool-owned timeout context and caches the result on success.
func (p *Pool) authenticate(key Key, factory Factory) (any, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.AuthTimeout)
	defer cancel()

	p.auths.Add(1)
	conn, err := factory(ctx)
	if err != nil {
		p.authFailures.Add(1)
		return nil, err
	}

	now := time.Now()
	e := &entry{
		key:       key,
		conn:      conn,
		createdAt: now,
		expiresAt: now.Add(p.cfg.TTL),
		lastUsed:  now,
	}

	var closeNow Conn
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = conn.Close()
		return nil, ErrClosed
	}
	if prev, ok := p.entries[key]; ok {
		closeNow = p.removeLocked(prev)
		p.evictions.Add(1)
	}
	p.entries[key] = e
	p.mu.Unlock()

	if closeNow != nil {
		_ = closeNow.Close()
	}
	return e, nil
}

// release is called by Lease.Release exactly once per lease.
func (p *Pool) release(e *entry) {
	p.mu.Lock()
	if e.refs > 0 {
		e.refs--
	}
	closeNow := p.closeIfDoneLocked(e)
	p.mu.Unlock()

	if closeNow != nil {
		_ = closeNow.Close()
	}
}

// removeLocked unlinks an entry from the map and returns its connection
// when it can be closed immediately (no outstanding leases). Callers close
// outside the lock.
func (p *Pool) removeLocked(e *entry) Conn {
	if e.removed {
		return nil
	}
	e.removed = true
	if cur, ok := p.entries[e.key]; ok && cur == e {
		delete(p.entries, e.key)
	}
	return p.closeIfDoneLocked(e)
}

func (p *Pool) closeIfDoneLocked(e *entry) Conn {
	if e.removed && e.refs == 0 && !e.closed {
		e.closed = true
		return e.conn
	}
	return nil
}

// Sweep removes every expired entry now and returns how many were removed.
// Borrowed entries are unlinked; their connections close on final release.
func (p *Pool) Sweep() int {
	now := time.Now()
	var toClose []Conn
	removed := 0

	p.mu.Lock()
	for _, e := range p.entries {
		if now.After(e.expiresAt) {
			if c := p.removeLocked(e); c != nil {
				toClose = append(toClose, c)
			}
			p.expirations.Add(1)
			removed++
		}
	}
	p.mu.Unlock()

	for _, c := range toClose {
		_ = c.Close()
	}
	return removed
}

func (p *Pool) sweepLoop() {
	ticker := time.NewTicker(p.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.Sweep()
		case <-p.stopCh:
			return
		}
	}
}

// Invalidate removes the entry for key regardless of its TTL.
func (p *Pool) Invalidate(key Key) {
	p.mu.Lock()
	var closeNow Conn
	if e, ok := p.entries[key]; ok {
		closeNow = p.removeLocked(e)
		p.evictions.Add(1)
	}
	p.mu.Unlock()

	if closeNow != nil {
		_ = closeNow.Close()
	}
}

// InvalidateAll removes every entry regardless of TTL.
func (p *Pool) InvalidateAll() {
	var toClose []Conn

	p.mu.Lock()
	for _, e := range p.entries {
		if c := p.removeLocked(e); c != nil {
			toClose = append(toClose, c)
		}
		p.evictions.Add(1)
	}
	p.mu.Unlock()

	for _, c := range toClose {
		_ = c.Close()
	}
}

// Len returns the number of cached entries, expired or not.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	entries := len(p.entries)
	p.mu.Unlock()

	return Stats{
		Entries:         entries,
		Hits:            p.hits.Load(),
		Misses:          p.misses.Load(),
		Authentications: p.auths.Load(),
		AuthFailures:    p.authFailures.Load(),
		Expirations:     p.expirations.Load(),
		Evictions:       p.evictions.Load(),
	}
}

// TTL returns the configured entry lifetime.
func (p *Pool) TTL() time.Duration {
	return p.cfg.TTL
}

// Close stops the sweeper, rejects further Acquires, and closes all idle
// entries. Borrowed entries close when their last lease is released.
func (p *Pool) Close() error {
	p.stopOnce.Do(func() { close(p.stopCh) })

	var toClose []Conn
	p.mu.Lock()
	p.closed = true
	for _, e := range p.entries {
		if c := p.removeLocked(e); c != nil {
			toClose = append(toClose, c)
		}
		p.evictions.Add(1)
	}
	p.mu.Unlock()

	for _, c := range toClose {
		_ = c.Close()
	}
	return nil
}
