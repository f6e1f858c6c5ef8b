package broker

import (
	"context"

	"github.com/jonwraymond/odoogate/token"
)

// The methods below cover the standard ORM surface with typed arguments.
// Each is a thin shim over Call and inherits its checking order and errors.

// Search returns the ids of records matching domain. kw accepts the usual
// refinements (offset, limit, order).
func (b *Broker) Search(ctx context.Context, creds token.Credentials, model string, domain []any, kw map[string]any) (any, error) {
	return b.Call(ctx, creds, model, "search", []any{normalizeDomain(domain)}, kw)
}

// Read fetches the given records. An empty fields list means all fields.
func (b *Broker) Read(ctx context.Context, creds token.Credentials, model string, ids []int64, fields []string) (any, error) {
	kw := map[string]any{}
	if len(fields) > 0 {
		kw["fields"] = fields
	}
	return b.Call(ctx, creds, model, "read", []any{ids}, kw)
}

// SearchRead combines Search and Read in one round trip. kw accepts fields,
// offset, limit and order.
func (b *Broker) SearchRead(ctx context.Context, creds token.Credentials, model string, domain []any, kw map[string]any) (any, error) {
	return b.Call(ctx, creds, model, "search_read", []any{normalizeDomain(domain)}, kw)
}

// SearchCount returns the number of records matching domain.
func (b *Broker) SearchCount(ctx context.Context, creds token.Credentials, model string, domain []any) (any, error) {
	return b.Call(ctx, creds, model, "search_count", []any{normalizeDomain(domain)}, nil)
}

// FieldsGet returns the model's field definitions, limited to the named
// fields when the list is non-empty.
func (b *Broker) FieldsGet(ctx context.Context, creds token.Credentials, model string, fields []string) (any, error) {
	return b.Call(ctx, creds, model, "fields_get", []any{normalizeFields(fields)}, nil)
}

// DefaultGet returns the default values the server would apply to the named
// fields on create.
func (b *Broker) DefaultGet(ctx context.Context, creds token.Credentials, model string, fields []string) (any, error) {
	return b.Call(ctx, creds, model, "default_get", []any{normalizeFields(fields)}, nil)
}

// Create inserts one record and returns its id.
func (b *Broker) Create(ctx context.Context, creds token.Credentials, model string, values map[string]any) (any, error) {
	return b.Call(ctx, creds, model, "create", []any{values}, nil)
}

// Write updates the given records with values.
func (b *Broker) Write(ctx context.Context, creds token.Credentials, model string, ids []int64, values map[string]any) (any, error) {
	return b.Call(ctx, creds, model, "write", []any{ids, values}, nil)
}

// Unlink deletes the given records.
func (b *Broker) Unlink(ctx context.Context, creds token.Credentials, model string, ids []int64) (any, error) {
	return b.Call(ctx, creds, model, "unlink", []any{ids}, nil)
}

// normalizeDomain keeps a nil domain wire-friendly: the server expects an
// empty list, not a null.
func normalizeDomain(domain []any) []any {
	if domain == nil {
		return []any{}
	}
	return domain
}

func normalizeFields(fields []string) []string {
	if fields == nil {
		return []string{}
	}
	return fields
}
