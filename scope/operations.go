package scope

import "sort"

// operationPerms maps every operation the gateway brokers to the permission
// class it requires. Read-class operations never mutate remote state.
var operationPerms = map[string]Permission{
	"search":       Read,
	"read":         Read,
	"search_read":  Read,
	"search_count": Read,
	"fields_get":   Read,
	"default_get":  Read,
	"create":       Write,
	"write":        Write,
	"unlink":       Delete,
}

// PermissionFor returns the permission class required by an operation.
// Operations outside the catalog return a *UnknownOperationError.
func PermissionFor(operation string) (Permission, error) {
	p, ok := operationPerms[operation]
	if !ok {
		return 0, &UnknownOperationError{Operation: operation}
	}
	return p, nil
}

// Operations returns the full operation catalog, sorted.
func Operations() []string {
	ops := make([]string, 0, len(operationPerms))
	for op := range operationPerms {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Check decides whether the scope permits operation on model.
//
// The operation is resolved against the catalog before any permission logic
// runs, so an unknown operation is always *UnknownOperationError, never a
// denial. A permitted call returns nil; everything else is a *DeniedError.
func (s *Scope) Check(model, operation string) error {
	need, err := PermissionFor(operation)
	if err != nil {
		return err
	}

	perms, matched := s.Permissions(model)
	if matched && perms.Has(need) {
		return nil
	}

	return &DeniedError{
		Model:     model,
		Operation: operation,
		Need:      need,
		Matched:   matched,
	}
}
