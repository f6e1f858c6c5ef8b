package odoorpc

import "context"

// Session is an authenticated connection to one database on one endpoint.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent Execute.
//   - Context: Execute honors cancellation and deadlines.
//   - Errors: Execute failures are always *RemoteError.
//   - Ownership: Close releases transport resources; the session is unusable
//     afterwards.
type Session interface {
	// UID returns the numeric user id the server assigned at login.
	UID() int64

	// Execute dispatches operation on model. The password is re-presented
	// because the server revalidates it per call; args are positional
	// operation arguments, kw the keyword arguments.
	Execute(ctx context.Context, password, model, operation string, args []any, kw map[string]any) (any, error)

	// Close releases the session's transport resources.
	Close() error
}

// Dialer establishes authenticated sessions.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Context: Authenticate honors cancellation and deadlines.
//   - Errors: failures are always *ConnectError; Authenticate never retries.
type Dialer interface {
	Authenticate(ctx context.Context, endpoint, database, username, password string) (Session, error)
}
