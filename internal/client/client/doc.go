// Package client contains the transport side of the gophsession client.
//
// # Overview
//
// The package provides:
//  1. The Client interface: SignIn, SignUp, FetchCurrentUser, Logout, Refresh
//     and Ping, the calls the session core makes against the auth server.
//  2. GRPCClient, a gRPC implementation speaking google.protobuf.Struct
//     messages to the gophsession.v1.AuthService. An interceptor stamps each
//     call with a request id and the current access token. The refresh token
//     travels in metadata and is kept in a CookieJar, never in the session.
//  3. Local database bootstrap (InitDatabase, RunMigrations) over SQLite with
//     embedded goose migrations.
//
// # Error Handling
//
// gRPC status codes map to sentinel errors matched with errors.Is:
// ErrUnauthorized and ErrUnavailable. Other failures are wrapped as
// "rpc error: ...". Transport calls are never retried here.
package client
