package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sshchat/terminal"
)

func TestHandleInputPlainLineIsPublic(t *testing.T) {
	r := New(zap.NewNop())
	alice, _, err := r.Join(1, "alice", "", "", false)
	require.NoError(t, err)
	bob, _, err := r.Join(2, "bob", "", "", false)
	require.NoError(t, err)
	drain(t, alice)
	drain(t, bob)

	term := terminal.New()
	r.HandleInput(1, term, []byte("hello everyone\r"))

	lines := drain(t, bob)
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[len(lines)-1], "hello everyone")
}

func TestHandleInputUnknownCommandEchoesThenErrors(t *testing.T) {
	r := New(zap.NewNop())
	alice, _, err := r.Join(1, "alice", "", "", false)
	require.NoError(t, err)
	drain(t, alice)

	term := terminal.New()
	r.HandleInput(1, term, []byte("/bogus\r"))

	lines := drain(t, alice)
	require.Len(t, lines, 2)
	assert.Equal(t, "/bogus", lines[0])
	assert.Contains(t, lines[1], "unknown command")
}

func TestHandleInputOperatorCommandRejectedForNonOp(t *testing.T) {
	r := New(zap.NewNop())
	alice, _, err := r.Join(1, "alice", "", "", false)
	require.NoError(t, err)
	_, _, err = r.Join(2, "bob", "", "", false)
	require.NoError(t, err)
	drain(t, alice)

	term := terminal.New()
	r.HandleInput(1, term, []byte("/mute bob\r"))

	lines := drain(t, alice)
	require.Len(t, lines, 2)
	assert.Equal(t, "/mute bob", lines[0])
	assert.Contains(t, lines[1], "operator-only")

	m, _ := r.MemberByName("bob")
	assert.False(t, m.User.Muted)
}

func TestHandleInputBackspaceAndCtrlW(t *testing.T) {
	r := New(zap.NewNop())
	_, _, err := r.Join(1, "alice", "", "", false)
	require.NoError(t, err)

	term := terminal.New()
	r.HandleInput(1, term, []byte("hello world"))
	r.HandleInput(1, term, []byte{0x7f}) // backspace
	assert.Equal(t, "hello worl", term.Input.String())

	r.HandleInput(1, term, []byte{0x17}) // ctrl-w
	assert.Equal(t, "hello ", term.Input.String())
}

func TestHandleInputEmptyLineIsNoop(t *testing.T) {
	r := New(zap.NewNop())
	alice, _, err := r.Join(1, "alice", "", "", false)
	require.NoError(t, err)
	drain(t, alice)

	term := terminal.New()
	r.HandleInput(1, term, []byte("\r"))

	assert.Empty(t, drain(t, alice))
}

func TestHandleInputHistoryRecall(t *testing.T) {
	r := New(zap.NewNop())
	alice, _, err := r.Join(1, "alice", "", "", false)
	require.NoError(t, err)
	drain(t, alice)

	term := terminal.New()
	r.HandleInput(1, term, []byte("first message\r"))
	drain(t, alice)

	r.HandleInput(1, term, []byte{0x1b, '[', 'A'}) // Up
	assert.Equal(t, "first message", term.Input.String())
}
