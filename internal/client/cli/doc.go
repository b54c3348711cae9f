// Package cli provides the interactive healthkeeper command-line client.
//
// It wires configuration, the SQLite session store, the gRPC identity
// gateway and the session resolver, then runs a REPL on top of them. On
// start the cached session, if any, is verified with auto-login so the
// user lands logged in without being prompted.
//
// Commands:
//   - login / guest / logout
//   - whoami, profile
//   - update field=value ...
//   - sync
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
