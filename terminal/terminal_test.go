package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultSize(t *testing.T) {
	term := New()
	assert.Equal(t, Size{Width: 80, Height: 24}, term.Size)
}

func TestSetSize(t *testing.T) {
	term := New()
	term.SetSize(120, 40)
	assert.Equal(t, Size{Width: 120, Height: 40}, term.Size)
}

func TestWriteAndFlush(t *testing.T) {
	term := New()
	n, err := term.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	assert.Equal(t, []byte("hello"), term.Flush())
	assert.Nil(t, term.Flush())
}

func TestDecodeDelegatesToDecoder(t *testing.T) {
	term := New()
	keys := term.Decode([]byte("a"))
	require.Len(t, keys, 1)
	assert.Equal(t, KeyChar, keys[0].Code)
}

func TestToCRLF(t *testing.T) {
	assert.Equal(t, "a\n\rb\n\r", ToCRLF("a\nb\n"))
	assert.Equal(t, "no newlines", ToCRLF("no newlines"))
}
