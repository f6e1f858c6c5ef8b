package broker

import (
	"github.com/jonwraymond/odoogate/scope"
)

// ModelAccess describes what one scope rule grants.
type ModelAccess struct {
	Model       string   `json:"model"`
	Permissions string   `json:"permissions"`
	Operations  []string `json:"operations"`
}

// AccessibleModels expands a scope string into the models it names and the
// operations each grants. A wildcard rule appears under the model "*".
// Explicit rules come first, sorted by model; the wildcard entry is last.
func AccessibleModels(scopeStr string) ([]ModelAccess, error) {
	sc, err := scope.Parse(scopeStr)
	if err != nil {
		return nil, err
	}

	models := sc.Models()
	out := make([]ModelAccess, 0, len(models)+1)
	for _, m := range models {
		perms, _ := sc.Permissions(m)
		out = append(out, ModelAccess{
			Model:       m,
			Permissions: perms.String(),
			Operations:  operationsFor(perms),
		})
	}

	if sc.HasWildcard() {
		perms, _ := sc.Permissions(scope.Wildcard)
		out = append(out, ModelAccess{
			Model:       scope.Wildcard,
			Permissions: perms.String(),
			Operations:  operationsFor(perms),
		})
	}

	return out, nil
}

// operationsFor lists the catalog operations a permission set allows, in
// catalog order.
func operationsFor(perms scope.PermSet) []string {
	ops := make([]string, 0, 8)
	for _, op := range scope.Operations() {
		need, err := scope.PermissionFor(op)
		if err != nil {
			continue
		}
		if perms.Has(need) {
			ops = append(ops, op)
		}
	}
	return ops
}
