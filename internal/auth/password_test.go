package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordNeverStoresCleartext(t *testing.T) {
	hash, err := HashPassword("SuperSecret1!", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "SuperSecret1!", hash)
	assert.NotContains(t, hash, "SuperSecret1!")
}

func TestComparePassword(t *testing.T) {
	hash, err := HashPassword("SuperSecret1!", 4)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "SuperSecret1!"))
	assert.Error(t, ComparePassword(hash, "wrong-password"))
}
