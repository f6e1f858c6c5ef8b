package server

import (
	"context"
	"sort"
	"sync"

	"github.com/jonwraymond/odoogate/broker"
	"github.com/jonwraymond/odoogate/scope"
	"github.com/jonwraymond/odoogate/token"
)

// ToolHandler executes one tool invocation. Arguments arrive as decoded
// request JSON; the handler owns shaping them for the broker.
type ToolHandler func(ctx context.Context, creds token.Credentials, args arguments) (any, error)

// Tool is one entry in the dispatch catalog.
type Tool struct {
	Name        string
	Description string
	// Permission is the scope class the tool's operation requires; listed
	// in the catalog so callers can see what a scope buys them before
	// attempting a call. Enforcement happens in the broker, not here.
	Permission scope.Permission
	Handler    ToolHandler
}

// ToolInfo is the JSON catalog form of a Tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Permission  string `json:"permission"`
}

// Registry maps tool names to handlers.
//
// Contract:
//   - Concurrency: safe for concurrent use; registration is expected at
//     startup but is not restricted to it.
//   - Errors: Dispatch returns *UnknownToolError for unregistered names.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds or replaces a tool by name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name] = t
}

// List returns the catalog sorted by name.
func (r *Registry) List() []ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ToolInfo, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, ToolInfo{
			Name:        t.Name,
			Description: t.Description,
			Permission:  t.Permission.String(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Dispatch runs the named tool.
func (r *Registry) Dispatch(ctx context.Context, name string, creds token.Credentials, args arguments) (any, error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownToolError{Tool: name}
	}
	return t.Handler(ctx, creds, args)
}

// DefaultRegistry builds the standard ORM tool catalog over a broker. Tool
// names carry an odoo_ prefix to keep the catalog unambiguous for callers
// that aggregate tools from several gateways.
func DefaultRegistry(b *broker.Broker) *Registry {
	r := NewRegistry()

	r.Register(Tool{
		Name:        "odoo_search",
		Description: "Search for record ids matching a domain filter",
		Permission:  scope.Read,
		Handler: func(ctx context.Context, creds token.Credentials, args arguments) (any, error) {
			model, err := args.model()
			if err != nil {
				return nil, err
			}
			return b.Search(ctx, creds, model, args.domain(), args.paging())
		},
	})

	r.Register(Tool{
		Name:        "odoo_read",
		Description: "Read records by id",
		Permission:  scope.Read,
		Handler: func(ctx context.Context, creds token.Credentials, args arguments) (any, error) {
			model, err := args.model()
			if err != nil {
				return nil, err
			}
			ids, err := args.ids()
			if err != nil {
				return nil, err
			}
			return b.Read(ctx, creds, model, ids, args.fields())
		},
	})

	r.Register(Tool{
		Name:        "odoo_search_read",
		Description: "Search and read matching records in one round trip",
		Permission:  scope.Read,
		Handler: func(ctx context.Context, creds token.Credentials, args arguments) (any, error) {
			model, err := args.model()
			if err != nil {
				return nil, err
			}
			kw := args.paging()
			if fields := args.fields(); len(fields) > 0 {
				if kw == nil {
					kw = map[string]any{}
				}
				kw["fields"] = fields
			}
			return b.SearchRead(ctx, creds, model, args.domain(), kw)
		},
	})

	r.Register(Tool{
		Name:        "odoo_search_count",
		Description: "Count records matching a domain filter",
		Permission:  scope.Read,
		Handler: func(ctx context.Context, creds token.Credentials, args arguments) (any, error) {
			model, err := args.model()
			if err != nil {
				return nil, err
			}
			return b.SearchCount(ctx, creds, model, args.domain())
		},
	})

	r.Register(Tool{
		Name:        "odoo_fields_get",
		Description: "Describe a model's fields",
		Permission:  scope.Read,
		Handler: func(ctx context.Context, creds token.Credentials, args arguments) (any, error) {
			model, err := args.model()
			if err != nil {
				return nil, err
			}
			return b.FieldsGet(ctx, creds, model, args.fields())
		},
	})

	r.Register(Tool{
		Name:        "odoo_default_get",
		Description: "Fetch the default values applied on create",
		Permission:  scope.Read,
		Handler: func(ctx context.Context, creds token.Credentials, args arguments) (any, error) {
			model, err := args.model()
			if err != nil {
				return nil, err
			}
			return b.DefaultGet(ctx, creds, model, args.fields())
		},
	})

	r.Register(Tool{
		Name:        "odoo_create",
		Description: "Create one record",
		Permission:  scope.Write,
		Handler: func(ctx context.Context, creds token.Credentials, args arguments) (any, error) {
			model, err := args.model()
			if err != nil {
				return nil, err
			}
			values, err := args.values()
			if err != nil {
				return nil, err
			}
			return b.Create(ctx, creds, model, values)
		},
	})

	r.Register(Tool{
		Name:        "odoo_write",
		Description: "Update records by id",
		Permission:  scope.Write,
		Handler: func(ctx context.Context, creds token.Credentials, args arguments) (any, error) {
			model, err := args.model()
			if err != nil {
				return nil, err
			}
			ids, err := args.ids()
			if err != nil {
				return nil, err
			}
			values, err := args.values()
			if err != nil {
				return nil, err
			}
			return b.Write(ctx, creds, model, ids, values)
		},
	})

	r.Register(Tool{
		Name:        "odoo_unlink",
		Description: "Delete records by id",
		Permission:  scope.Delete,
		Handler: func(ctx context.Context, creds token.Credentials, args arguments) (any, error) {
			model, err := args.model()
			if err != nil {
				return nil, err
			}
			ids, err := args.ids()
			if err != nil {
				return nil, err
			}
			return b.Unlink(ctx, creds, model, ids)
		},
	})

	return r
}
