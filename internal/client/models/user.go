// Package models defines the client-side data models shared by the session
// core, the transport and the CLI.
package models

// User is the identity record returned by the server. The session core
// treats it as opaque and only persists it.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
}

// Credentials are the sign-in form values.
type Credentials struct {
	Email    string
	Password []byte
}

// SignUpForm are the registration form values.
type SignUpForm struct {
	Email    string
	Name     string
	Password []byte
}
