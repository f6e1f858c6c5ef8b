// Package scope implements the permission language that bounds what an
// automation caller may do against the upstream ERP.
//
// A scope string is a comma-separated list of rules. Each rule binds a model
// pattern to a set of permission letters:
//
//	res.partner:RWD,sale.order:RW,*:R
//
// The pattern is either a concrete model name (exact match) or "*" (any
// model). Permissions are drawn from R (read-class operations), W
// (write-class operations) and D (delete-class operations). Letters are
// case-insensitive on input and canonicalized to upper case.
//
// # Resolution
//
// An exact rule is authoritative for its model: when both an exact rule and
// a wildcard exist, the exact rule decides, even when it grants less than
// the wildcard. A model with no exact rule falls back to the wildcard; with
// no wildcard either, access is denied. When the same pattern appears more
// than once, the last occurrence wins.
//
// # Usage
//
//	sc, err := scope.Parse("res.partner:RWD,*:R")
//	if err != nil {
//		// *scope.SyntaxError, errors.Is(err, scope.ErrSyntax)
//	}
//	if err := sc.Check("sale.order", "create"); err != nil {
//		// *scope.DeniedError, errors.Is(err, scope.ErrDenied)
//	}
//
// Parse rejects malformed input outright: empty strings, empty segments,
// missing separators, empty permission sets and unknown letters are all
// *SyntaxError. A successfully parsed Scope is immutable and safe for
// concurrent use.
package scope
