package broker

import (
	"context"

	"github.com/jonwraymond/odoogate/observe"
	"github.com/jonwraymond/odoogate/odoorpc"
	"github.com/jonwraymond/odoogate/pool"
	"github.com/jonwraymond/odoogate/scope"
	"github.com/jonwraymond/odoogate/token"
)

// Config holds the broker's collaborators. Dialer and Pool are required;
// Middleware and Logger default to discarding implementations.
type Config struct {
	Dialer     odoorpc.Dialer
	Pool       *pool.Pool
	Middleware *observe.Middleware
	Logger     observe.Logger
}

func (c Config) withDefaults() Config {
	if c.Middleware == nil {
		c.Middleware = observe.NopMiddleware()
	}
	if c.Logger == nil {
		c.Logger = observe.NopLogger()
	}
	return c
}

// Broker routes calls from credential-holding callers to pooled ERP sessions.
//
// Contract:
//   - Concurrency: safe for concurrent use; per-caller sessions are shared
//     through the pool.
//   - Ownership: the broker borrows the pool, it does not own its lifecycle.
type Broker struct {
	dialer odoorpc.Dialer
	pool   *pool.Pool
	mw     *observe.Middleware
	logger observe.Logger
}

// New validates the configuration and returns a ready broker.
func New(cfg Config) (*Broker, error) {
	if cfg.Dialer == nil {
		return nil, ErrNilDialer
	}
	if cfg.Pool == nil {
		return nil, ErrNilPool
	}
	cfg = cfg.withDefaults()

	return &Broker{
		dialer: cfg.Dialer,
		pool:   cfg.Pool,
		mw:     cfg.Middleware,
		logger: cfg.Logger,
	}, nil
}

// Call dispatches one operation against a model on behalf of the caller.
//
// Contract:
//   - Order: the operation name is validated first, then the scope is parsed
//     and checked. A rejected call performs no pool or network activity.
//   - Context: ctx bounds pool acquisition and the remote exchange; a caller
//     giving up does not abort an authentication other callers wait on.
//   - Errors: *scope.UnknownOperationError, *scope.SyntaxError,
//     *scope.DeniedError before dispatch; *odoorpc.ConnectError and
//     *odoorpc.RemoteError from it.
func (b *Broker) Call(ctx context.Context, creds token.Credentials, model, operation string, args []any, kw map[string]any) (any, error) {
	if _, err := scope.PermissionFor(operation); err != nil {
		return nil, err
	}
	if model == "" {
		return nil, ErrEmptyModel
	}

	sc, err := scope.Parse(creds.Scope)
	if err != nil {
		return nil, err
	}
	if err := sc.Check(model, operation); err != nil {
		b.logger.Warn(ctx, "call denied",
			observe.Field{Key: "odoo.model", Value: model},
			observe.Field{Key: "odoo.operation", Value: operation},
			observe.Field{Key: "caller.fingerprint", Value: creds.Fingerprint()},
		)
		return nil, err
	}

	meta := observe.CallMeta{
		Database:    creds.Database,
		Model:       model,
		Operation:   operation,
		Fingerprint: creds.Fingerprint(),
	}
	dispatch := b.mw.Wrap(func(ctx context.Context, _ observe.CallMeta, args []any, kw map[string]any) (any, error) {
		return b.dispatch(ctx, creds, model, operation, args, kw)
	})
	return dispatch(ctx, meta, args, kw)
}

// dispatch leases a session and runs the exchange. The lease is released on
// every path; the password travels with the call because the server
// revalidates it per exchange.
func (b *Broker) dispatch(ctx context.Context, creds token.Credentials, model, operation string, args []any, kw map[string]any) (any, error) {
	key := pool.KeyFor(creds.Endpoint, creds.Database, creds.Username, creds.Scope)

	lease, err := b.pool.Acquire(ctx, key, func(ctx context.Context) (pool.Conn, error) {
		return b.dialer.Authenticate(ctx, creds.Endpoint, creds.Database, creds.Username, creds.Password)
	})
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	sess := lease.Conn().(odoorpc.Session)
	return sess.Execute(ctx, creds.Password, model, operation, args, kw)
}

// Invalidate drops the caller's pooled session, if any. The next call
// re-authenticates.
func (b *Broker) Invalidate(creds token.Credentials) {
	b.pool.Invalidate(pool.KeyFor(creds.Endpoint, creds.Database, creds.Username, creds.Scope))
}

// PoolSnapshot exposes pool counters in the instrumentation-facing shape.
func (b *Broker) PoolSnapshot() observe.PoolSnapshot {
	s := b.pool.Stats()
	return observe.PoolSnapshot{
		Entries:         s.Entries,
		Hits:            s.Hits,
		Misses:          s.Misses,
		Authentications: s.Authentications,
		AuthFailures:    s.AuthFailures,
		Expirations:     s.Expirations,
		Evictions:       s.Evictions,
	}
}
