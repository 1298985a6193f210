package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)

	require.NoError(t, ComparePassword(hash, "s3cret"))
	require.Error(t, ComparePassword(hash, "wrong"))
}

func TestGate(t *testing.T) {
	var open Gate
	require.False(t, open.Required())
	require.NoError(t, open.Check("anything"))

	hash, err := HashPassword("letmein")
	require.NoError(t, err)

	gate := NewGate(hash)
	require.True(t, gate.Required())
	require.NoError(t, gate.Check("letmein"))
	require.ErrorIs(t, gate.Check("nope"), ErrPasswordMismatch)

	broken := NewGate("not-a-bcrypt-hash")
	err = broken.Check("letmein")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrPasswordMismatch)
}
