// Package odoorpc speaks Odoo's external XML-RPC API.
//
// Odoo exposes two endpoints: /xmlrpc/2/common for authentication and
// /xmlrpc/2/object for model operations. Authenticate exchanges credentials
// for a numeric user id; Execute runs execute_kw against a model. The
// caller's password travels with every Execute because the server
// revalidates it on each dispatch: a session is a uid plus a client, not a
// bearer of authority.
//
//	dialer := odoorpc.NewDialer(odoorpc.Config{})
//	sess, err := dialer.Authenticate(ctx, url, db, user, password)
//	if err != nil { ... } // *ConnectError
//	defer sess.Close()
//	res, err := sess.Execute(ctx, password, "res.partner", "search_read", args, kw)
//	if err != nil { ... } // *RemoteError
//
// The underlying XML-RPC client has no context support, so every call runs
// under a goroutine-and-select deadline guard; cancellation and timeouts
// return promptly even when the transport hangs.
//
// Failure taxonomy: everything that goes wrong while establishing a session
// (unreachable endpoint, rejected credentials, authentication faults) is a
// *ConnectError; everything that goes wrong dispatching an operation on an
// established session (faults, transport drops, timeouts) is a *RemoteError
// carrying the fault code and string when the server supplied one.
package odoorpc
