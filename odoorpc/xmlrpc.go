package odoorpc

import (
	"context"
	"errors"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kolo/xmlrpc"
)

// Default timeouts for remote calls.
const (
	DefaultAuthTimeout = 30 * time.Second
	DefaultCallTimeout = 60 * time.Second
)

// Config configures the XML-RPC dialer.
type Config struct {
	// AuthTimeout bounds one authenticate exchange. Default: 30s.
	AuthTimeout time.Duration

	// CallTimeout bounds one execute_kw exchange. Default: 60s.
	CallTimeout time.Duration

	// Transport overrides the HTTP transport. Default: a transport with
	// bounded dial and TLS handshake times.
	Transport http.RoundTripper
}

func (c Config) withDefaults() Config {
	if c.AuthTimeout <= 0 {
		c.AuthTimeout = DefaultAuthTimeout
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.Transport == nil {
		c.Transport = &http.Transport{
			DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 2 * time.Minute,
			MaxIdleConnsPerHost:   4,
		}
	}
	return c
}

// XMLRPCDialer authenticates against /xmlrpc/2/common and builds sessions
// bound to /xmlrpc/2/object.
type XMLRPCDialer struct {
	cfg Config
}

// NewDialer creates a dialer with defaults applied.
func NewDialer(cfg Config) *XMLRPCDialer {
	return &XMLRPCDialer{cfg: cfg.withDefaults()}
}

// Authenticate logs in and returns a session. A boolean false from the
// server (Odoo's way of saying "wrong credentials") and transport failures
// both surface as *ConnectError. No retries.
func (d *XMLRPCDialer) Authenticate(ctx context.Context, endpoint, database, username, password string) (Session, error) {
	base := strings.TrimRight(endpoint, "/")

	common, err := xmlrpc.NewClient(base+"/xmlrpc/2/common", d.cfg.Transport)
	if err != nil {
		return nil, &ConnectError{Endpoint: endpoint, Database: database, Reason: "invalid endpoint", Err: err}
	}
	defer common.Close()

	reply, err := call(ctx, d.cfg.AuthTimeout, common, "authenticate",
		[]any{database, username, password, map[string]any{}})
	if err != nil {
		return nil, &ConnectError{Endpoint: endpoint, Database: database, Reason: "authenticate call failed", Err: err}
	}

	uid, ok := uidFromReply(reply)
	if !ok || uid <= 0 {
		return nil, &ConnectError{Endpoint: endpoint, Database: database, Reason: "credentials rejected"}
	}

	object, err := xmlrpc.NewClient(base+"/xmlrpc/2/object", d.cfg.Transport)
	if err != nil {
		return nil, &ConnectError{Endpoint: endpoint, Database: database, Reason: "invalid endpoint", Err: err}
	}

	return &xmlrpcSession{
		database:    database,
		username:    username,
		uid:         uid,
		object:      object,
		callTimeout: d.cfg.CallTimeout,
	}, nil
}

var _ Dialer = (*XMLRPCDialer)(nil)

// xmlrpcSession is one authenticated uid plus an object-endpoint client.
type xmlrpcSession struct {
	database    string
	username    string
	uid         int64
	object      *xmlrpc.Client
	callTimeout time.Duration
}

// UID returns the server-assigned user id.
func (s *xmlrpcSession) UID() int64 { return s.uid }

// Execute dispatches execute_kw(db, uid, password, model, operation, args, kw).
func (s *xmlrpcSession) Execute(ctx context.Context, password, model, operation string, args []any, kw map[string]any) (any, error) {
	if args == nil {
		args = []any{}
	}
	if kw == nil {
		kw = map[string]any{}
	}

	reply, err := call(ctx, s.callTimeout, s.object, "execute_kw",
		[]any{s.database, s.uid, password, model, operation, args, kw})
	if err != nil {
		return nil, remoteError(model, operation, err)
	}
	return reply, nil
}

// Close releases the transport. Safe to call once the session is idle.
func (s *xmlrpcSession) Close() error {
	return s.object.Close()
}

var _ Session = (*xmlrpcSession)(nil)

// call runs one XML-RPC exchange under a deadline guard. The client library
// has no context support, so the exchange runs in its own goroutine and the
// guard returns as soon as ctx or the timeout expires; an abandoned exchange
// is bounded by the transport's own timeouts.
func call(ctx context.Context, timeout time.Duration, client *xmlrpc.Client, method string, params []any) (any, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		reply any
		err   error
	}
	resCh := make(chan result, 1)

	go func() {
		var reply any
		err := client.Call(method, params, &reply)
		resCh <- result{reply: reply, err: err}
	}()

	select {
	case res := <-resCh:
		return res.reply, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// uidFromReply extracts the numeric uid from an authenticate reply. Odoo
// answers false for bad credentials, so a boolean is a clean rejection.
func uidFromReply(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// faultRe recovers the fault shape from flattened client errors; fault
// strings may span lines (server tracebacks).
var faultRe = regexp.MustCompile(`(?s)Fault\((-?\d+)\):\s*(.*)`)

func remoteError(model, operation string, err error) *RemoteError {
	re := &RemoteError{Model: model, Operation: operation, Err: err}

	var fe xmlrpc.FaultError
	if errors.As(err, &fe) {
		re.Code = fe.Code
		re.Detail = fe.String
		return re
	}
	if m := faultRe.FindStringSubmatch(err.Error()); m != nil {
		if code, convErr := strconv.Atoi(m[1]); convErr == nil {
			re.Code = code
			re.Detail = strings.TrimSpace(m[2])
		}
	}
	return re
}
