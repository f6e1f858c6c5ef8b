package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jonwraymond/odoogate/broker"
	"github.com/jonwraymond/odoogate/odoorpc"
	"github.com/jonwraymond/odoogate/pool"
	"github.com/jonwraymond/odoogate/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// fakeSession answers every Execute with a canned result.
type fakeSession struct {
	uid    int64
	result any
	err    error

	mu    sync.Mutex
	calls []string // "model/operation"
}

func (s *fakeSession) UID() int64 { return s.uid }

func (s *fakeSession) Execute(ctx context.Context, password, model, operation string, args []any, kw map[string]any) (any, error) {
	s.mu.Lock()
	s.calls = append(s.calls, model+"/"+operation)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *fakeSession) Close() error { return nil }

// fakeDialer counts authentications.
type fakeDialer struct {
	session *fakeSession
	err     error

	mu    sync.Mutex
	calls int
}

func (d *fakeDialer) Authenticate(ctx context.Context, endpoint, database, username, password string) (odoorpc.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	if d.session != nil {
		return d.session, nil
	}
	return &fakeSession{uid: 7}, nil
}

func (d *fakeDialer) authCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func testCredentials(scopeStr string) token.Credentials {
	return token.Credentials{
		Endpoint: "http://odoo.example.com",
		Database: "prod",
		Username: "svc-bot",
		Password: "hunter2",
		Scope:    scopeStr,
	}
}

// newTestServer wires a server over a fake dialer. The pool is closed with
// the test.
func newTestServer(t *testing.T, dialer *fakeDialer) (*Server, *token.Codec) {
	t.Helper()

	codec, err := token.NewCodec([]byte(testSecret))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	p := pool.New(pool.Config{})
	t.Cleanup(func() { _ = p.Close() })

	b, err := broker.New(broker.Config{Dialer: dialer, Pool: p})
	if err != nil {
		t.Fatalf("broker.New: %v", err)
	}

	srv, err := New(Config{Broker: b, Codec: codec, ServiceName: "odoogate-test", Version: "test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv, codec
}

func doJSON(t *testing.T, srv *Server, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return out
}

func TestNewValidation(t *testing.T) {
	codec, _ := token.NewCodec([]byte(testSecret))
	p := pool.New(pool.Config{})
	defer p.Close()
	b, _ := broker.New(broker.Config{Dialer: &fakeDialer{}, Pool: p})

	if _, err := New(Config{Codec: codec}); !errors.Is(err, ErrNilBroker) {
		t.Errorf("New without broker: got %v, want ErrNilBroker", err)
	}
	if _, err := New(Config{Broker: b}); !errors.Is(err, ErrNilCodec) {
		t.Errorf("New without codec: got %v, want ErrNilCodec", err)
	}
}

func TestRootDescriptor(t *testing.T) {
	srv, _ := newTestServer(t, &fakeDialer{})

	rec := doJSON(t, srv, http.MethodGet, "/", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeResponse(t, rec)
	if body["service"] != "odoogate-test" {
		t.Errorf("service = %v", body["service"])
	}
	if body["version"] != "test" {
		t.Errorf("version = %v", body["version"])
	}
}

func TestGenerate(t *testing.T) {
	srv, codec := newTestServer(t, &fakeDialer{})

	t.Run("mints a decodable key and redacts the echo", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/auth/generate", testCredentials("*:R"), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		body := decodeResponse(t, rec)

		key, _ := body["api_key"].(string)
		tok, err := codec.Decode(key)
		if err != nil {
			t.Fatalf("minted key does not decode: %v", err)
		}
		if got, want := tok.Credentials, testCredentials("*:R"); got != want {
			t.Errorf("decoded credentials = %+v, want %+v", got, want)
		}

		echoed := body["credentials"].(map[string]any)
		if pw, ok := echoed["password"]; ok && pw != "" {
			t.Errorf("password leaked in response: %v", pw)
		}
	})

	t.Run("bad scope is scope_invalid", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/auth/generate", testCredentials("no-separator"), nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if got := decodeResponse(t, rec)["status"]; got != StatusScopeInvalid {
			t.Errorf("status string = %v, want %s", got, StatusScopeInvalid)
		}
	})

	t.Run("missing field is invalid_request", func(t *testing.T) {
		creds := testCredentials("*:R")
		creds.Password = ""
		rec := doJSON(t, srv, http.MethodPost, "/auth/generate", creds, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if got := decodeResponse(t, rec)["status"]; got != StatusInvalidRequest {
			t.Errorf("status string = %v, want %s", got, StatusInvalidRequest)
		}
	})

	t.Run("malformed body is invalid_request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/generate", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestValidate(t *testing.T) {
	srv, codec := newTestServer(t, &fakeDialer{})

	t.Run("reports identity and grants without the password", func(t *testing.T) {
		key, err := codec.Encode(testCredentials("res.partner:RW,*:R"))
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		rec := doJSON(t, srv, http.MethodPost, "/auth/validate", map[string]string{"api_key": key}, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		body := decodeResponse(t, rec)
		if body["status"] != "valid" {
			t.Errorf("status = %v", body["status"])
		}
		creds := body["credentials"].(map[string]any)
		if pw, ok := creds["password"]; ok && pw != "" {
			t.Errorf("password leaked: %v", pw)
		}
		models := body["models"].([]any)
		if len(models) != 2 {
			t.Fatalf("models = %v, want explicit rule plus wildcard", models)
		}
		first := models[0].(map[string]any)
		if first["model"] != "res.partner" || first["permissions"] != "RW" {
			t.Errorf("first grant = %v", first)
		}
	})

	t.Run("garbage key is auth_failed", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/auth/validate", map[string]string{"api_key": "not-a-token"}, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if got := decodeResponse(t, rec)["status"]; got != StatusAuthFailed {
			t.Errorf("status string = %v, want %s", got, StatusAuthFailed)
		}
	})

	t.Run("missing api_key is invalid_request", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/auth/validate", map[string]string{}, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestToolsList(t *testing.T) {
	srv, _ := newTestServer(t, &fakeDialer{})

	rec := doJSON(t, srv, http.MethodGet, "/tools/list", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	tools := decodeResponse(t, rec)["tools"].([]any)
	if len(tools) != 9 {
		t.Fatalf("catalog size = %d, want 9", len(tools))
	}
	names := make([]string, len(tools))
	for i, tl := range tools {
		names[i] = tl.(map[string]any)["name"].(string)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("catalog not sorted: %v", names)
		}
	}
}

func TestToolsCall(t *testing.T) {
	t.Run("dispatches through a sealed token", func(t *testing.T) {
		sess := &fakeSession{uid: 3, result: []any{float64(1), float64(2)}}
		dialer := &fakeDialer{session: sess}
		srv, codec := newTestServer(t, dialer)

		key, _ := codec.Encode(testCredentials("res.partner:RWD"))
		rec := doJSON(t, srv, http.MethodPost, "/tools/call", map[string]any{
			"tool":      "odoo_search",
			"arguments": map[string]any{"model": "res.partner", "domain": []any{}, "limit": 5},
		}, map[string]string{"X-API-Key": key})

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		body := decodeResponse(t, rec)
		if body["status"] != StatusOK {
			t.Errorf("status = %v", body["status"])
		}
		if dialer.authCalls() != 1 {
			t.Errorf("authentications = %d, want 1", dialer.authCalls())
		}
		sess.mu.Lock()
		defer sess.mu.Unlock()
		if len(sess.calls) != 1 || sess.calls[0] != "res.partner/search" {
			t.Errorf("dispatches = %v", sess.calls)
		}
	})

	t.Run("accepts a bearer token", func(t *testing.T) {
		srv, codec := newTestServer(t, &fakeDialer{})
		key, _ := codec.Encode(testCredentials("*:R"))
		rec := doJSON(t, srv, http.MethodPost, "/tools/call", map[string]any{
			"tool":      "odoo_search_count",
			"arguments": map[string]any{"model": "res.partner"},
		}, map[string]string{"Authorization": "Bearer " + key})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("accepts base64 raw credentials", func(t *testing.T) {
		srv, _ := newTestServer(t, &fakeDialer{})
		raw, _ := json.Marshal(testCredentials("*:R"))
		header := base64.StdEncoding.EncodeToString(raw)
		rec := doJSON(t, srv, http.MethodPost, "/tools/call", map[string]any{
			"tool":      "odoo_search_count",
			"arguments": map[string]any{"model": "res.partner"},
		}, map[string]string{"X-Auth-Credentials": header})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("sealed token outranks the credentials header", func(t *testing.T) {
		sess := &fakeSession{result: "from-token"}
		srv, codec := newTestServer(t, &fakeDialer{session: sess})
		key, _ := codec.Encode(testCredentials("*:R"))
		raw, _ := json.Marshal(testCredentials("no-valid-scope"))
		rec := doJSON(t, srv, http.MethodPost, "/tools/call", map[string]any{
			"tool":      "odoo_search_count",
			"arguments": map[string]any{"model": "res.partner"},
		}, map[string]string{
			"X-API-Key":          key,
			"X-Auth-Credentials": base64.StdEncoding.EncodeToString(raw),
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("precedence: status = %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("no credentials is auth_failed", func(t *testing.T) {
		srv, _ := newTestServer(t, &fakeDialer{})
		rec := doJSON(t, srv, http.MethodPost, "/tools/call", map[string]any{
			"tool": "odoo_search", "arguments": map[string]any{"model": "res.partner"},
		}, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if got := decodeResponse(t, rec)["status"]; got != StatusAuthFailed {
			t.Errorf("status string = %v", got)
		}
	})

	t.Run("tampered token is auth_failed", func(t *testing.T) {
		srv, codec := newTestServer(t, &fakeDialer{})
		key, _ := codec.Encode(testCredentials("*:R"))
		flipped := []byte(key)
		flipped[len(flipped)/2] ^= 1
		rec := doJSON(t, srv, http.MethodPost, "/tools/call", map[string]any{
			"tool": "odoo_search", "arguments": map[string]any{"model": "res.partner"},
		}, map[string]string{"X-API-Key": string(flipped)})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("denied call never reaches the dialer", func(t *testing.T) {
		dialer := &fakeDialer{}
		srv, codec := newTestServer(t, dialer)
		key, _ := codec.Encode(testCredentials("*:R"))
		rec := doJSON(t, srv, http.MethodPost, "/tools/call", map[string]any{
			"tool":      "odoo_create",
			"arguments": map[string]any{"model": "res.partner", "values": map[string]any{"name": "x"}},
		}, map[string]string{"X-API-Key": key})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
		if got := decodeResponse(t, rec)["status"]; got != StatusPermissionDenied {
			t.Errorf("status string = %v", got)
		}
		if dialer.authCalls() != 0 {
			t.Errorf("dialer invoked %d times on a denied call", dialer.authCalls())
		}
	})

	t.Run("unknown tool is tool_not_found", func(t *testing.T) {
		srv, codec := newTestServer(t, &fakeDialer{})
		key, _ := codec.Encode(testCredentials("*:RWD"))
		rec := doJSON(t, srv, http.MethodPost, "/tools/call", map[string]any{
			"tool": "odoo_dance", "arguments": map[string]any{"model": "res.partner"},
		}, map[string]string{"X-API-Key": key})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
		if got := decodeResponse(t, rec)["status"]; got != StatusToolNotFound {
			t.Errorf("status string = %v", got)
		}
	})

	t.Run("unreachable endpoint is connection_failed", func(t *testing.T) {
		dialer := &fakeDialer{err: &odoorpc.ConnectError{Endpoint: "http://odoo.example.com", Database: "prod", Reason: "endpoint unreachable"}}
		srv, codec := newTestServer(t, dialer)
		key, _ := codec.Encode(testCredentials("*:R"))
		rec := doJSON(t, srv, http.MethodPost, "/tools/call", map[string]any{
			"tool": "odoo_search", "arguments": map[string]any{"model": "res.partner"},
		}, map[string]string{"X-API-Key": key})
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("status = %d, want 502", rec.Code)
		}
		if got := decodeResponse(t, rec)["status"]; got != StatusConnectionFailed {
			t.Errorf("status string = %v", got)
		}
	})

	t.Run("remote fault is odoo_error", func(t *testing.T) {
		sess := &fakeSession{err: &odoorpc.RemoteError{Model: "res.partner", Operation: "search", Code: 2, Detail: "access denied by record rules"}}
		srv, codec := newTestServer(t, &fakeDialer{session: sess})
		key, _ := codec.Encode(testCredentials("*:R"))
		rec := doJSON(t, srv, http.MethodPost, "/tools/call", map[string]any{
			"tool": "odoo_search", "arguments": map[string]any{"model": "res.partner"},
		}, map[string]string{"X-API-Key": key})
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("status = %d, want 502", rec.Code)
		}
		if got := decodeResponse(t, rec)["status"]; got != StatusOdooError {
			t.Errorf("status string = %v", got)
		}
	})

	t.Run("missing tool name is invalid_request", func(t *testing.T) {
		srv, codec := newTestServer(t, &fakeDialer{})
		key, _ := codec.Encode(testCredentials("*:R"))
		rec := doJSON(t, srv, http.MethodPost, "/tools/call", map[string]any{
			"arguments": map[string]any{"model": "res.partner"},
		}, map[string]string{"X-API-Key": key})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("name is accepted as a tool alias", func(t *testing.T) {
		srv, codec := newTestServer(t, &fakeDialer{})
		key, _ := codec.Encode(testCredentials("*:R"))
		rec := doJSON(t, srv, http.MethodPost, "/tools/call", map[string]any{
			"name":      "odoo_search_count",
			"arguments": map[string]any{"model": "res.partner"},
		}, map[string]string{"X-API-Key": key})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
	})
}

func TestHealthRoutes(t *testing.T) {
	srv, _ := newTestServer(t, &fakeDialer{})

	for _, path := range []string{"/health", "/healthz", "/readyz"} {
		rec := doJSON(t, srv, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}
