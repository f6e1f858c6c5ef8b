package scope

import (
	"sort"
	"strings"
)

// Wildcard is the pattern that matches any model.
const Wildcard = "*"

// Permission is one class of operations against a model.
type Permission byte

// Permission classes, in canonical order.
const (
	Read   Permission = 'R'
	Write  Permission = 'W'
	Delete Permission = 'D'
)

// String returns the single-letter form of the permission.
func (p Permission) String() string {
	return string(p)
}

// PermSet is a set of permission classes.
type PermSet uint8

const (
	permRead PermSet = 1 << iota
	permWrite
	permDelete
)

func bit(p Permission) PermSet {
	switch p {
	case Read:
		return permRead
	case Write:
		return permWrite
	case Delete:
		return permDelete
	}
	return 0
}

// Has reports whether the set contains p.
func (s PermSet) Has(p Permission) bool {
	b := bit(p)
	return b != 0 && s&b != 0
}

// Empty reports whether the set contains no permissions.
func (s PermSet) Empty() bool {
	return s == 0
}

// String returns the canonical letter form, always in R, W, D order.
func (s PermSet) String() string {
	var b strings.Builder
	if s&permRead != 0 {
		b.WriteByte(byte(Read))
	}
	if s&permWrite != 0 {
		b.WriteByte(byte(Write))
	}
	if s&permDelete != 0 {
		b.WriteByte(byte(Delete))
	}
	return b.String()
}

// Scope is the parsed, immutable form of a scope string.
//
// Contract:
//   - Concurrency: safe for concurrent use; Parse is the only constructor
//     and a parsed Scope is never mutated.
//   - Resolution: exact rule first, wildcard second, deny otherwise.
type Scope struct {
	raw      string
	rules    map[string]PermSet
	wildcard PermSet
	hasWild  bool
}

// Parse validates a scope string against the grammar and returns its parsed
// form. Any malformed input returns a *SyntaxError: empty string, empty
// segment, missing ':' separator, empty pattern, empty permission set, or a
// permission letter outside R/W/D. Whitespace around segments, patterns and
// permission sets is ignored. A pattern appearing more than once is resolved
// by its last occurrence.
func Parse(raw string) (*Scope, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &SyntaxError{Raw: raw, Reason: "scope string is empty"}
	}

	sc := &Scope{
		raw:   raw,
		rules: make(map[string]PermSet),
	}

	for _, seg := range strings.Split(raw, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return nil, &SyntaxError{Raw: raw, Reason: "empty segment"}
		}

		pattern, letters, ok := strings.Cut(seg, ":")
		if !ok {
			return nil, &SyntaxError{Raw: raw, Segment: seg, Reason: "missing ':' separator"}
		}

		pattern = strings.TrimSpace(pattern)
		letters = strings.TrimSpace(letters)
		if pattern == "" {
			return nil, &SyntaxError{Raw: raw, Segment: seg, Reason: "pattern is empty"}
		}
		if letters == "" {
			return nil, &SyntaxError{Raw: raw, Segment: seg, Reason: "permission set is empty"}
		}

		perms, err := parsePerms(raw, seg, letters)
		if err != nil {
			return nil, err
		}

		// Last occurrence of a pattern wins.
		if pattern == Wildcard {
			sc.wildcard = perms
			sc.hasWild = true
		} else {
			sc.rules[pattern] = perms
		}
	}

	return sc, nil
}

func parsePerms(raw, seg, letters string) (PermSet, error) {
	var perms PermSet
	for _, r := range strings.ToUpper(letters) {
		b := bit(Permission(r))
		if b == 0 {
			return 0, &SyntaxError{
				Raw:     raw,
				Segment: seg,
				Reason:  "invalid permission " + string(r) + " (want R, W, or D)",
			}
		}
		perms |= b
	}
	return perms, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level declarations with fixed scope strings.
func MustParse(raw string) *Scope {
	sc, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return sc
}

// Permissions resolves the permission set for a model. The boolean reports
// whether any rule matched; a false return means deny, not "empty set".
func (s *Scope) Permissions(model string) (PermSet, bool) {
	if perms, ok := s.rules[model]; ok {
		return perms, true
	}
	if s.hasWild {
		return s.wildcard, true
	}
	return 0, false
}

// Allows reports whether the scope grants permission p on model.
func (s *Scope) Allows(model string, p Permission) bool {
	perms, ok := s.Permissions(model)
	return ok && perms.Has(p)
}

// Models returns the explicitly named (non-wildcard) model patterns, sorted.
func (s *Scope) Models() []string {
	models := make([]string, 0, len(s.rules))
	for m := range s.rules {
		models = append(models, m)
	}
	sort.Strings(models)
	return models
}

// HasWildcard reports whether the scope carries a "*" rule.
func (s *Scope) HasWildcard() bool {
	return s.hasWild
}

// String returns the scope string exactly as it was parsed. Pool keying
// relies on this being the caller-presented form, not a canonicalization.
func (s *Scope) String() string {
	return s.raw
}
