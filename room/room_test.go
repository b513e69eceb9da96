package room

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sshchat/message"
)

func newTestRoom() *Room {
	return New(zap.NewNop())
}

func drain(t *testing.T, m *Member) []string {
	t.Helper()
	var out []string
	for {
		select {
		case line := <-m.Outbound:
			out = append(out, line)
		default:
			return out
		}
	}
}

func TestJoinAssignsRequestedName(t *testing.T) {
	r := newTestRoom()
	m, name, err := r.Join(1, "alice", "fp1", "SSH-2.0-test", false)
	require.NoError(t, err)
	assert.Equal(t, "alice", name)
	assert.Equal(t, "alice", m.User.Username)
	assert.Equal(t, 1, r.Count())
}

func TestJoinCollisionGeneratesNewName(t *testing.T) {
	r := newTestRoom()
	_, _, err := r.Join(1, "alice", "fp1", "", false)
	require.NoError(t, err)

	_, name, err := r.Join(2, "alice", "fp2", "", false)
	require.NoError(t, err)
	assert.NotEqual(t, "alice", name)
	assert.Equal(t, 2, r.Count())
}

func TestJoinReplaysHistory(t *testing.T) {
	r := newTestRoom()
	alice, _, err := r.Join(1, "alice", "", "", false)
	require.NoError(t, err)
	drain(t, alice)

	r.SendMessage(message.Public(alice.User, "hello room"))

	bob, _, err := r.Join(2, "bob", "", "", false)
	require.NoError(t, err)

	lines := drain(t, bob)
	found := false
	for _, l := range lines {
		if strings.Contains(l, "alice") && strings.Contains(l, "hello room") {
			found = true
		}
	}
	assert.True(t, found, "expected replayed history to contain alice's message, got %v", lines)
}

func TestLeaveEmitsDurationAnnounce(t *testing.T) {
	r := newTestRoom()
	alice, _, err := r.Join(1, "alice", "", "", false)
	require.NoError(t, err)
	drain(t, alice)

	bob, _, err := r.Join(2, "bob", "", "", false)
	require.NoError(t, err)
	drain(t, bob)

	r.Leave(1, "")
	lines := drain(t, bob)
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[len(lines)-1], "left")
	assert.Equal(t, 1, r.Count())
}

func TestHistoryRingWrapsAtCapacity(t *testing.T) {
	r := newTestRoom()
	alice, _, err := r.Join(1, "alice", "", "", false)
	require.NoError(t, err)
	drain(t, alice)

	for i := 0; i < historyCap+1; i++ {
		r.SendMessage(message.Public(alice.User, "msg"))
	}
	drain(t, alice)

	assert.Equal(t, historyCap, r.hist.len())
}

func TestQuietSuppressesAnnouncements(t *testing.T) {
	r := newTestRoom()
	alice, _, err := r.Join(1, "alice", "", "", false)
	require.NoError(t, err)
	drain(t, alice)
	alice.User.SwitchQuiet()

	_, _, err = r.Join(2, "bob", "", "", false)
	require.NoError(t, err)

	lines := drain(t, alice)
	assert.Empty(t, lines, "quiet member should not receive join announce")
}

func TestIgnoreFiltersPublicMessages(t *testing.T) {
	r := newTestRoom()
	alice, _, err := r.Join(1, "alice", "", "", false)
	require.NoError(t, err)
	bob, _, err := r.Join(2, "bob", "", "", false)
	require.NoError(t, err)
	drain(t, alice)
	drain(t, bob)

	alice.User.IgnoreAdd(bob.User.ID)
	r.SendMessage(message.Public(bob.User, "hi alice"))

	assert.Empty(t, drain(t, alice))
}

func TestFocusDominatesIgnore(t *testing.T) {
	r := newTestRoom()
	alice, _, err := r.Join(1, "alice", "", "", false)
	require.NoError(t, err)
	bob, _, err := r.Join(2, "bob", "", "", false)
	require.NoError(t, err)
	carol, _, err := r.Join(3, "carol", "", "", false)
	require.NoError(t, err)
	drain(t, alice)
	drain(t, bob)
	drain(t, carol)

	alice.User.IgnoreAdd(bob.User.ID)
	alice.User.FocusAdd(bob.User.ID)
	r.SendMessage(message.Public(bob.User, "from bob"))
	r.SendMessage(message.Public(carol.User, "from carol"))

	lines := drain(t, alice)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "bob")
}

func TestMutedSenderGetsNotice(t *testing.T) {
	r := newTestRoom()
	alice, _, err := r.Join(1, "alice", "", "", false)
	require.NoError(t, err)
	drain(t, alice)

	require.NoError(t, r.Mute("alice"))
	r.SendMessage(message.Public(alice.User, "hi"))

	lines := drain(t, alice)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "muted")
}

func TestRenameRejectsCollisionAndNoop(t *testing.T) {
	r := newTestRoom()
	_, _, err := r.Join(1, "alice", "", "", false)
	require.NoError(t, err)
	_, _, err = r.Join(2, "bob", "", "", false)
	require.NoError(t, err)

	err = r.Rename(1, "bob")
	require.Error(t, err)

	err = r.Rename(1, "alice")
	require.Error(t, err)

	err = r.Rename(1, "newalice")
	require.NoError(t, err)
	m, ok := r.MemberByName("newalice")
	require.True(t, ok)
	assert.Equal(t, "newalice", m.User.Username)
}

func TestKickRemovesMember(t *testing.T) {
	r := newTestRoom()
	_, _, err := r.Join(1, "alice", "", "", false)
	require.NoError(t, err)

	require.NoError(t, r.Kick("alice"))
	assert.Equal(t, 0, r.Count())

	err = r.Kick("alice")
	assert.Error(t, err)
}

func TestBanAndIsBanned(t *testing.T) {
	r := newTestRoom()
	r.Ban("alice")
	assert.True(t, r.IsBanned("alice", ""))
	assert.True(t, r.IsBanned("ALICE", ""))
	assert.False(t, r.IsBanned("bob", ""))
	assert.Equal(t, []string{"alice"}, r.BannedList())
}

func TestMotd(t *testing.T) {
	r := newTestRoom()
	assert.Equal(t, "", r.Motd())
	r.SetMotd("welcome")
	assert.Equal(t, "welcome", r.Motd())
}

func TestUptimeIncreases(t *testing.T) {
	r := newTestRoom()
	first := r.Uptime()
	time.Sleep(2 * time.Millisecond)
	assert.Greater(t, r.Uptime(), first)
}
