package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jonwraymond/odoogate/odoorpc"
	"github.com/jonwraymond/odoogate/scope"
	"github.com/jonwraymond/odoogate/token"
)

// Machine-readable status strings. These are wire contract: automation
// callers branch on them, so they never change meaning.
const (
	StatusOK               = "ok"
	StatusAuthFailed       = "auth_failed"
	StatusScopeInvalid     = "scope_invalid"
	StatusPermissionDenied = "permission_denied"
	StatusConnectionFailed = "connection_failed"
	StatusOdooError        = "odoo_error"
	StatusToolNotFound     = "tool_not_found"
	StatusInvalidRequest   = "invalid_request"
	StatusExecutionError   = "execution_error"
)

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// resultBody is the JSON shape of a successful /tools/call response.
type resultBody struct {
	Status string `json:"status"`
	Result any    `json:"result"`
}

// classify maps an error from any layer of the gateway onto the HTTP status
// code and status string the caller sees. Order matters where taxonomies
// overlap: a denied call is a denial even though its scope also parsed.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, scope.ErrDenied):
		return http.StatusForbidden, StatusPermissionDenied
	case errors.Is(err, scope.ErrSyntax):
		return http.StatusForbidden, StatusScopeInvalid
	case errors.Is(err, ErrNoCredentials),
		errors.Is(err, ErrBadCredentialHeader),
		errors.Is(err, token.ErrInvalidToken),
		errors.Is(err, token.ErrInvalidCredentials):
		return http.StatusUnauthorized, StatusAuthFailed
	case errors.Is(err, ErrUnknownTool),
		errors.Is(err, scope.ErrUnknownOperation):
		return http.StatusNotFound, StatusToolNotFound
	case errors.Is(err, odoorpc.ErrConnectionFailed):
		return http.StatusBadGateway, StatusConnectionFailed
	case errors.Is(err, odoorpc.ErrRemoteOperation):
		return http.StatusBadGateway, StatusOdooError
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, StatusInvalidRequest
	default:
		return http.StatusInternalServerError, StatusExecutionError
	}
}

// writeJSON serializes v with the given HTTP status. Encoding failures are
// swallowed; by that point the header has been committed.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err through classify and writes the error envelope. Error
// text reaching the wire comes from the gateway's own error types, which
// never carry secrets.
func writeError(w http.ResponseWriter, err error) {
	code, status := classify(err)
	writeJSON(w, code, errorBody{Status: status, Error: err.Error()})
}
