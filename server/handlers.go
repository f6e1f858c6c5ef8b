package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/jonwraymond/odoogate/broker"
	"github.com/jonwraymond/odoogate/observe"
	"github.com/jonwraymond/odoogate/scope"
	"github.com/jonwraymond/odoogate/token"
)

// maxBodyBytes bounds request bodies; tool arguments are small documents.
const maxBodyBytes = 1 << 20

// handleRoot serves the service descriptor.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, errorBody{Status: StatusInvalidRequest, Error: "no such route"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service": s.service,
		"version": s.version,
		"endpoints": []string{
			"GET /",
			"GET /health",
			"GET /healthz",
			"GET /readyz",
			"POST /auth/generate",
			"POST /auth/validate",
			"GET /tools/list",
			"POST /tools/call",
		},
	})
}

// generateResponse is the body of a successful /auth/generate call. The
// echoed credentials are redacted; the password lives only inside the key.
type generateResponse struct {
	APIKey      string            `json:"api_key"`
	Credentials token.Credentials `json:"credentials"`
}

// handleGenerate mints a sealed token from raw credentials.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var creds token.Credentials
	if err := decodeBody(r, &creds); err != nil {
		writeError(w, err)
		return
	}

	key, err := s.codec.Encode(creds)
	if err != nil {
		// A mint request with bad input is a caller mistake, not an
		// authentication failure: no identity was being proven yet.
		switch {
		case errors.Is(err, scope.ErrSyntax):
			writeJSON(w, http.StatusBadRequest, errorBody{Status: StatusScopeInvalid, Error: err.Error()})
		case errors.Is(err, token.ErrInvalidCredentials):
			writeJSON(w, http.StatusBadRequest, errorBody{Status: StatusInvalidRequest, Error: err.Error()})
		default:
			writeError(w, err)
		}
		return
	}

	s.logger.Info(r.Context(), "api key generated",
		observe.Field{Key: "caller.fingerprint", Value: creds.Fingerprint()},
	)
	writeJSON(w, http.StatusOK, generateResponse{
		APIKey:      key,
		Credentials: creds.Redacted(),
	})
}

// validateRequest is the body of /auth/validate.
type validateRequest struct {
	APIKey string `json:"api_key"`
}

// validateResponse reports what a sealed token grants, without its secret.
type validateResponse struct {
	Status      string               `json:"status"`
	Credentials token.Credentials    `json:"credentials"`
	IssuedAt    time.Time            `json:"issued_at"`
	Models      []broker.ModelAccess `json:"models"`
}

// handleValidate opens a sealed token and reports the identity and grants
// inside it. Nothing here touches the ERP.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.APIKey == "" {
		writeError(w, badRequest("missing %q", "api_key"))
		return
	}

	tok, err := s.codec.Decode(req.APIKey)
	if err != nil {
		writeError(w, err)
		return
	}

	models, err := broker.AccessibleModels(tok.Credentials.Scope)
	if err != nil {
		// A sealed token always carries a parseable scope; reaching this
		// means the process secret was reused across incompatible versions.
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, validateResponse{
		Status:      "valid",
		Credentials: tok.Credentials.Redacted(),
		IssuedAt:    tok.IssuedAt,
		Models:      models,
	})
}

// handleToolsList serves the tool catalog. The catalog is not filtered by
// caller scope; enforcement happens at call time.
func (s *Server) handleToolsList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.registry.List()})
}

// callRequest is the body of /tools/call. Name is accepted as an alias for
// Tool for callers speaking the older wire shape.
type callRequest struct {
	Tool      string         `json:"tool"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// handleToolsCall authenticates the caller, resolves the tool and dispatches
// through the broker. Every failure maps to a status string via classify.
func (s *Server) handleToolsCall(w http.ResponseWriter, r *http.Request) {
	creds, err := s.credentialsFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req callRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	name := req.Tool
	if name == "" {
		name = req.Name
	}
	if name == "" {
		writeError(w, badRequest("missing %q", "tool"))
		return
	}

	result, err := s.registry.Dispatch(r.Context(), name, creds, arguments(req.Arguments))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultBody{Status: StatusOK, Result: result})
}

// decodeBody reads one JSON document from the request into v. Trailing
// garbage, oversized bodies and type mismatches are all *BadRequestError.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("empty request body")
		}
		return badRequest("malformed JSON body")
	}
	if dec.More() {
		return badRequest("trailing data after JSON body")
	}
	return nil
}
