package secret

import "context"

// Provider resolves one class of secret reference, named by the scheme it
// serves (the middle token of a secretref:provider:ref value).
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: Resolve must honor cancellation and deadlines.
//   - Errors: failures name the reference, never the material it points at;
//     secret values must not appear in errors or logs.
//   - Ownership: Close releases any backend handles held by the provider.
type Provider interface {
	// Name returns the scheme this provider serves, e.g. "env" or "file".
	Name() string

	// Resolve returns the secret the reference points at.
	Resolve(ctx context.Context, ref string) (string, error)

	// Close releases provider resources. Safe to call more than once.
	Close() error
}
