package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	hasher := NewBcryptHasher()

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	assert.True(t, hasher.Compare(hash, "correct horse battery staple"))
	assert.False(t, hasher.Compare(hash, "wrong password"))
}

func TestBcryptHasher_SaltsDiffer(t *testing.T) {
	hasher := NewBcryptHasher()

	first, err := hasher.Hash("same password")
	require.NoError(t, err)
	second, err := hasher.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Compare(first, "same password"))
	assert.True(t, hasher.Compare(second, "same password"))
}

func TestBcryptHasher_GarbageHash(t *testing.T) {
	hasher := NewBcryptHasher()
	assert.False(t, hasher.Compare("not a bcrypt hash", "anything"))
}
