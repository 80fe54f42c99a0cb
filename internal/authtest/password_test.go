package authtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	salt, hash, err := hashPassword("correct horse")
	require.NoError(t, err)
	assert.Len(t, salt, saltLen)
	assert.Len(t, hash, argonKeyLen)

	assert.True(t, verifyPassword("correct horse", salt, hash))
	assert.False(t, verifyPassword("correct horse!", salt, hash))
}

func TestHashPassword_FreshSaltPerCall(t *testing.T) {
	s1, h1, err := hashPassword("pw")
	require.NoError(t, err)
	s2, h2, err := hashPassword("pw")
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
	assert.NotEqual(t, h1, h2)
}
