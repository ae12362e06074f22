package rand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHex(t *testing.T) {
	tok, err := Hex(16)
	require.NoError(t, err)
	assert.Len(t, tok, 32)
	assert.Regexp(t, "^[0-9a-f]+$", tok)

	other, err := Hex(16)
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}
