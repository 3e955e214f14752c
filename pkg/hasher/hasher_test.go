package hasher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword([]byte("secret"))
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, PasswordCorrect("secret", hash))
	assert.False(t, PasswordCorrect("wrong", hash))
	assert.False(t, PasswordCorrect("secret", "not-a-hash"))
}
