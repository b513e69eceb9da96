// Package room implements the authoritative shared chat state: the member
// map, name index, bounded history, MOTD, ban list, and all
// fan-out rules, plus the input pipeline that turns a keystroke batch into
// room mutations and messages. Grounded on the original ssh-chat's
// server/room.rs and server/room/command.rs (see original_source/), kept
// under one coarse lock as the design notes (spec.md §9) prescribe.
package room

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"sshchat/message"
	"sshchat/user"
)

// outboundCap is the bounded per-member queue depth; see spec.md §5.
const outboundCap = 64

// Member owns one connected user's identity plus its session resources.
type Member struct {
	User     *user.User
	Outbound chan string
}

// Room is the single point of mutation for all chat state, protected by
// one exclusive lock (spec.md §5, §9).
type Room struct {
	mu        sync.Mutex
	log       *zap.Logger
	members   map[string]*Member // name -> member
	names     map[int]string     // id -> name
	hist      *history
	motd      string
	banned    []string // raw ban queries
	startedAt time.Time
}

// New returns an empty room with no MOTD. Operator privilege is resolved
// at join time by the caller (the whitelist/operator-file layer) and
// passed into Join, not tracked redundantly here.
func New(log *zap.Logger) *Room {
	if log == nil {
		log = zap.NewNop()
	}
	return &Room{
		log:       log,
		members:   make(map[string]*Member),
		names:     make(map[int]string),
		hist:      newHistory(),
		startedAt: time.Now(),
	}
}

// Uptime returns how long the room has been running, for /uptime.
func (r *Room) Uptime() time.Duration {
	return time.Since(r.startedAt)
}

func (r *Room) setMotdLocked(text string) {
	r.motd = text
}

// SetMotd installs the message of the day shown once at the top of each
// connected client's view.
func (r *Room) SetMotd(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setMotdLocked(text)
}

func (r *Room) motdLocked() string {
	return r.motd
}

// Motd returns the current message of the day.
func (r *Room) Motd() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.motdLocked()
}

// IsBanned reports whether username or fingerprint matches a recorded ban
// query (exact, case-insensitive match against either field — see
// DESIGN.md for why a richer query language was not implemented).
func (r *Room) IsBanned(username, fingerprint string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.banned {
		ql := strings.ToLower(q)
		if ql == strings.ToLower(username) || (fingerprint != "" && ql == strings.ToLower(fingerprint)) {
			return true
		}
	}
	return false
}

func (r *Room) banLocked(query string) {
	r.banned = append(r.banned, query)
}

// Ban records a ban query; future joins and reconnects matching it via
// IsBanned are refused by the caller (the sshserver session, before Join).
func (r *Room) Ban(query string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.banLocked(query)
}

func (r *Room) bannedListLocked() []string {
	out := make([]string, len(r.banned))
	copy(out, r.banned)
	return out
}

// BannedList returns the recorded ban queries, for /banned.
func (r *Room) BannedList() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bannedListLocked()
}

// Join inserts a new member, replays history to them, then emits their
// join Announce. If requestedName collides, a generated name is tried
// once; a second collision fails the join (spec.md §9 design notes).
func (r *Room) Join(id int, requestedName, fingerprint, sshClient string, isOp bool) (*Member, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := requestedName
	if _, taken := r.members[name]; taken {
		name = user.GenRandName()
		if _, stillTaken := r.members[name]; stillTaken {
			return nil, "", fmt.Errorf("could not allocate a unique name for %q", requestedName)
		}
	}

	u := user.New(id, name, sshClient, fingerprint, isOp)
	m := &Member{User: u, Outbound: make(chan string, outboundCap)}

	r.members[name] = m
	r.names[id] = name

	r.replayHistoryLocked(m)

	joinBody := fmt.Sprintf("joined. (Connected: %d)", len(r.members))
	r.sendMessageLocked(message.Announce(u, joinBody))

	r.log.Info("member joined", zap.Int("user_id", id), zap.String("username", name))
	return m, name, nil
}

func (r *Room) replayHistoryLocked(m *Member) {
	for _, msg := range r.hist.snapshot() {
		r.enqueueLocked(m, msg)
	}
}

func (r *Room) leaveLocked(id int, reason string) {
	name, ok := r.names[id]
	if !ok {
		return
	}
	m, ok := r.members[name]
	if !ok {
		delete(r.names, id)
		return
	}

	body := fmt.Sprintf("left: (After %s)", user.FormatDuration(m.User.ConnectedDuration()))
	if reason != "" {
		body = fmt.Sprintf("left: %s (After %s)", reason, user.FormatDuration(m.User.ConnectedDuration()))
	}

	delete(r.members, name)
	delete(r.names, id)

	r.sendMessageLocked(message.Announce(m.User, body))
	r.log.Info("member left", zap.Int("user_id", id), zap.String("username", name))
}

// Leave removes a member, emitting a leave Announce carrying their
// connected duration. Stale ignore/focus/reply_to references in other
// members are left as-is (spec.md §9).
func (r *Room) Leave(id int, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(id, reason)
}

// SendMessage applies the fan-out matrix of spec.md §3 and enqueues the
// rendered line onto each eligible recipient's outbound queue.
func (r *Room) SendMessage(msg message.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sendMessageLocked(msg)
}

func (r *Room) sendMessageLocked(msg message.Message) {
	switch msg.Kind {
	case message.KindPublic, message.KindEmote:
		if msg.From != nil && msg.From.Muted {
			r.sendMutedNoticeLocked(msg.From)
			return
		}
		r.hist.push(msg)
		for _, m := range r.members {
			if r.filteredLocked(m.User, msg.From) {
				continue
			}
			r.enqueueLocked(m, msg)
		}

	case message.KindAnnounce:
		r.hist.push(msg)
		for _, m := range r.members {
			if m.User.Quiet {
				continue
			}
			r.enqueueLocked(m, msg)
		}

	case message.KindSystem, message.KindError:
		if msg.To == nil {
			return
		}
		if m, ok := r.members[msg.To.Username]; ok {
			r.enqueueLocked(m, msg)
		}

	case message.KindCommand:
		if msg.From == nil {
			return
		}
		if m, ok := r.members[msg.From.Username]; ok {
			r.enqueueLocked(m, msg)
		}

	case message.KindPrivate:
		if msg.From != nil && msg.From.Muted {
			r.sendMutedNoticeLocked(msg.From)
			return
		}
		if msg.From != nil {
			if m, ok := r.members[msg.From.Username]; ok {
				r.enqueueLocked(m, msg)
			}
		}
		if msg.To != nil && (msg.From == nil || msg.To.ID != msg.From.ID) {
			if m, ok := r.members[msg.To.Username]; ok {
				if !m.User.IsIgnoring(msg.From.ID) {
					r.enqueueLocked(m, msg)
				}
			}
		}
	}
}

func (r *Room) sendMutedNoticeLocked(from *user.User) {
	if m, ok := r.members[from.Username]; ok {
		r.enqueueLocked(m, message.Error(from, "You are muted and cannot send messages."))
	}
}

// filteredLocked reports whether recipient should NOT receive a message
// from sender, per the ignore/focus rules (focus dominates when non-empty;
// spec.md §3 Invariants).
func (r *Room) filteredLocked(recipient, sender *user.User) bool {
	if sender == nil {
		return false
	}
	if len(recipient.Focused) > 0 {
		return !recipient.IsFocusing(sender.ID)
	}
	return recipient.IsIgnoring(sender.ID)
}

// enqueueLocked formats msg for m's current theme/timestamp mode and
// attempts a non-blocking send; a full queue means the recipient is
// considered unreachable for this message and is skipped (spec.md §5).
func (r *Room) enqueueLocked(m *Member, msg message.Message) {
	line := msg.Format(m.User)
	select {
	case m.Outbound <- line:
	default:
		r.log.Warn("dropping message to slow or stuck recipient",
			zap.Int("user_id", m.User.ID), zap.String("username", m.User.Username))
	}
}

func (r *Room) renameLocked(id int, newName string) error {
	name, ok := r.names[id]
	if !ok {
		return fmt.Errorf("not connected")
	}
	m := r.members[name]

	if m.User.Username == newName {
		return fmt.Errorf("New name is the same as the original")
	}
	if _, taken := r.members[newName]; taken {
		return fmt.Errorf("%q name is already taken", newName)
	}

	m.User.Rename(newName)
	delete(r.members, name)
	r.members[newName] = m
	r.names[id] = newName

	r.sendMessageLocked(message.Announce(m.User, fmt.Sprintf("user is now known as %s.", newName)))
	return nil
}

// Rename validates and applies a /name change, swapping the name→member
// key and updating the id→name index. Returns an error the caller renders
// as a visible Error to the sender.
func (r *Room) Rename(id int, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renameLocked(id, newName)
}

func (r *Room) memberLocked(id int) (*Member, bool) {
	name, ok := r.names[id]
	if !ok {
		return nil, false
	}
	m, ok := r.members[name]
	return m, ok
}

// Member looks up a connected member by id.
func (r *Room) Member(id int) (*Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.memberLocked(id)
}

func (r *Room) memberByNameLocked(name string) (*Member, bool) {
	m, ok := r.members[name]
	return m, ok
}

// MemberByName looks up a connected member by name.
func (r *Room) MemberByName(name string) (*Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.memberByNameLocked(name)
}

func (r *Room) namesLocked() []string {
	out := make([]string, 0, len(r.members))
	for name := range r.members {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}

// Names returns the currently connected names sorted ascending by
// lowercase, for /users.
func (r *Room) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.namesLocked()
}

// Count returns the number of connected members.
func (r *Room) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (r *Room) muteLocked(name string) error {
	m, ok := r.members[name]
	if !ok {
		return fmt.Errorf("user is not found")
	}
	m.User.SwitchMute()
	return nil
}

// Mute toggles the server-imposed mute flag for the named member.
func (r *Room) Mute(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.muteLocked(name)
}

func (r *Room) kickLocked(name string) error {
	m, ok := r.members[name]
	if !ok {
		return fmt.Errorf("user is not found")
	}
	r.leaveLocked(m.User.ID, "kicked")
	return nil
}

// Kick performs the room-side leave of the named member with a "kicked"
// reason. It does not close the member's SSH channel: the kicked client's
// session notices that it is no longer a member after its next input batch
// and closes the channel then.
func (r *Room) Kick(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.kickLocked(name)
}
