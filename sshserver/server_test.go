package sshserver

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	"sshchat/auth"
	"sshchat/room"
)

func newTestAuth(t *testing.T) *auth.SSHAuth {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(privateKey)
	require.NoError(t, err)
	return &auth.SSHAuth{HostSSHPrivateKey: signer}
}

func TestNewListensAndAllocatesIDs(t *testing.T) {
	r := room.New(zap.NewNop())
	s, err := New(zap.NewNop(), newTestAuth(t), r, "127.0.0.1", "0")
	require.NoError(t, err)
	require.NotNil(t, s.Addr())

	require.Equal(t, 1, s.allocateID())
	require.Equal(t, 2, s.allocateID())
	require.Equal(t, 3, s.allocateID())
}
