package authtest

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Memory is kept low since every sign-in in a test
// pays for one derivation.
const (
	argonTime    = 1
	argonMemory  = 8 * 1024
	argonThreads = 1
	argonKeyLen  = 32
	saltLen      = 16
)

func deriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// hashPassword returns a fresh salt and the derived key for password.
func hashPassword(password string) (salt, hash []byte, err error) {
	salt = make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, err
	}
	return salt, deriveKey([]byte(password), salt), nil
}

func verifyPassword(password string, salt, hash []byte) bool {
	return subtle.ConstantTimeCompare(deriveKey([]byte(password), salt), hash) == 1
}
