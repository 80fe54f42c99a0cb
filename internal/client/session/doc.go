// Package session holds the authenticated session state: identity, access
// token, expiry timestamps and the refresh-token-expired latch.
//
// A *Session is an explicit handle; there is no package-level instance. It is
// seeded from a Store at startup with Load and mutated only through SetUser,
// SetToken and Clear, each of which writes through to the Store before the
// in-memory state changes. Readers take a State snapshot.
package session
