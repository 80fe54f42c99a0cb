// Package cli provides the interactive gophsession command-line client.
//
// It wires configuration, the session store (SQLite or Redis), the gRPC
// transport and the auth service, then runs a REPL. The App doubles as the
// navigation and notification collaborator of the auth service: it tracks
// the current view and prints notices as "[kind] message".
//
// Key features:
//   - Sign up / Sign in / Logout
//   - Background access-token refresh ahead of expiry
//   - whoami, status and manual refresh
//   - Online/offline indicator driven by a periodic ping
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
