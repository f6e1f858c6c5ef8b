package server

// arguments is a decoded tool-call argument object. Accessors convert the
// raw JSON shapes (float64 numbers, []any lists) into the types the broker
// takes; required-argument and type errors surface as *BadRequestError.
type arguments map[string]any

func (a arguments) model() (string, error) {
	v, ok := a["model"]
	if !ok {
		return "", badRequest("missing argument %q", "model")
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", badRequest("argument %q must be a non-empty string", "model")
	}
	return s, nil
}

func (a arguments) ids() ([]int64, error) {
	v, ok := a["ids"]
	if !ok {
		return nil, badRequest("missing argument %q", "ids")
	}
	list, ok := v.([]any)
	if !ok {
		return nil, badRequest("argument %q must be a list of record ids", "ids")
	}
	ids := make([]int64, len(list))
	for i, e := range list {
		n, ok := asInt64(e)
		if !ok {
			return nil, badRequest("argument %q must contain only integers", "ids")
		}
		ids[i] = n
	}
	return ids, nil
}

func (a arguments) values() (map[string]any, error) {
	v, ok := a["values"]
	if !ok {
		return nil, badRequest("missing argument %q", "values")
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, badRequest("argument %q must be an object", "values")
	}
	return m, nil
}

// domain returns the search domain, or nil when absent. Malformed domains
// are left for the remote side to reject; their grammar belongs to the ERP.
func (a arguments) domain() []any {
	if list, ok := a["domain"].([]any); ok {
		return list
	}
	return nil
}

func (a arguments) fields() []string {
	list, ok := a["fields"].([]any)
	if !ok {
		return nil
	}
	fields := make([]string, 0, len(list))
	for _, e := range list {
		if s, ok := e.(string); ok {
			fields = append(fields, s)
		}
	}
	return fields
}

// paging collects the optional limit, offset and order refinements into a
// keyword map, nil when none are present.
func (a arguments) paging() map[string]any {
	kw := map[string]any{}
	if n, ok := asInt64(a["limit"]); ok {
		kw["limit"] = n
	}
	if n, ok := asInt64(a["offset"]); ok {
		kw["offset"] = n
	}
	if s, ok := a["order"].(string); ok && s != "" {
		kw["order"] = s
	}
	if len(kw) == 0 {
		return nil
	}
	return kw
}

// asInt64 accepts the numeric shapes JSON decoding produces. Fractional
// values are rejected rather than truncated.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
