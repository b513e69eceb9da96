// Package user holds the per-connection identity and mutable preferences
// carried by a room member: status, theme, timestamp mode, quiet/mute,
// ignore/focus sets and reply target. Grounded on the original ssh-chat's
// server/room/user/user.rs, adapted to Go's explicit-mutation style instead
// of builder-style field setters.
package user

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"sshchat/theme"
)

// TimestampMode controls the optional prefix applied when formatting a
// message for this user.
type TimestampMode int

const (
	TimestampOff TimestampMode = iota
	TimestampTime
	TimestampDateTime
)

// ParseTimestampMode validates the /timestamp argument against the enum.
func ParseTimestampMode(s string) (TimestampMode, bool) {
	switch s {
	case "off":
		return TimestampOff, true
	case "time":
		return TimestampTime, true
	case "datetime":
		return TimestampDateTime, true
	default:
		return TimestampOff, false
	}
}

// Status is Active or Away{reason, since}; a user is never both.
type Status struct {
	Away   bool
	Reason string
	Since  time.Time
}

// User is the identity and mutable preferences of one connected member.
// Names are unique among connected members at any instant (enforced by
// Room, not here); Id is never reused while the process lives.
type User struct {
	ID            int
	Username      string
	ConnectedAt   time.Time
	SSHClient     string
	Fingerprint   string // "" when no public key is on record
	ReplyTo       int    // 0 means unset; 0 is never a valid user id
	Theme         string
	TimestampMode TimestampMode
	Quiet         bool
	Muted         bool
	IsOp          bool
	Status        Status
	Ignored       map[int]struct{}
	Focused       map[int]struct{}
}

// New builds the identity for a freshly joined member. id must be a stable,
// process-lifetime-unique, monotonically increasing value allocated by the
// server front and passed in through Room.Join.
func New(id int, username, sshClient, fingerprint string, isOp bool) *User {
	return &User{
		ID:          id,
		Username:    username,
		ConnectedAt: time.Now(),
		SSHClient:   sshClient,
		Fingerprint: fingerprint,
		Theme:       theme.Default,
		IsOp:        isOp,
		Status:      Status{Away: false},
		Ignored:     make(map[int]struct{}),
		Focused:     make(map[int]struct{}),
	}
}

// GoAway transitions the user to Away with the given reason and timestamp.
func (u *User) GoAway(reason string) {
	u.Status = Status{Away: true, Reason: reason, Since: time.Now()}
}

// ReturnActive clears the Away status.
func (u *User) ReturnActive() {
	u.Status = Status{Away: false}
}

// SwitchQuiet toggles the quiet flag and reports the new value.
func (u *User) SwitchQuiet() bool {
	u.Quiet = !u.Quiet
	return u.Quiet
}

// SwitchMute toggles the server-imposed mute flag and reports the new value.
func (u *User) SwitchMute() bool {
	u.Muted = !u.Muted
	return u.Muted
}

// SetTimestampMode installs a validated timestamp mode.
func (u *User) SetTimestampMode(m TimestampMode) {
	u.TimestampMode = m
}

// SetTheme installs a validated theme id.
func (u *User) SetTheme(id string) {
	u.Theme = id
}

// Rename replaces the display name. Uniqueness is the Room's
// responsibility; User itself has no veto.
func (u *User) Rename(newName string) {
	u.Username = newName
}

// SetReplyTo records the id of the user whose private message should be
// the target of a subsequent /reply. It is never eagerly cleared when the
// referenced user disconnects; stale targets are handled at dispatch.
func (u *User) SetReplyTo(id int) {
	u.ReplyTo = id
}

// IgnoreAdd adds id to the ignore set.
func (u *User) IgnoreAdd(id int) {
	u.Ignored[id] = struct{}{}
}

// IgnoreRemove removes id from the ignore set. Removing an id that was
// never ignored, or that has since disconnected, is a no-op.
func (u *User) IgnoreRemove(id int) {
	delete(u.Ignored, id)
}

// IsIgnoring reports whether id is in the ignore set.
func (u *User) IsIgnoring(id int) bool {
	_, ok := u.Ignored[id]
	return ok
}

// FocusAdd adds id to the focus set.
func (u *User) FocusAdd(id int) {
	u.Focused[id] = struct{}{}
}

// FocusRemove removes id from the focus set.
func (u *User) FocusRemove(id int) {
	delete(u.Focused, id)
}

// FocusClear empties the focus set ("$" argument to /focus).
func (u *User) FocusClear() {
	u.Focused = make(map[int]struct{})
}

// IsFocusing reports whether id is in the (non-empty) focus set.
func (u *User) IsFocusing(id int) bool {
	_, ok := u.Focused[id]
	return ok
}

// ConnectedDuration is how long the user has been in the room.
func (u *User) ConnectedDuration() time.Duration {
	return time.Since(u.ConnectedAt)
}

// String renders the /whois body for this user.
func (u *User) String() string {
	fp := u.Fingerprint
	if fp == "" {
		fp = "(no public key)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "name: %s\n", u.Username)
	fmt.Fprintf(&b, "fingerprint: %s\n", fp)
	fmt.Fprintf(&b, "client: %s\n", u.SSHClient)
	fmt.Fprintf(&b, "joined: %s ago", formatDuration(u.ConnectedDuration()))

	if u.Status.Away {
		fmt.Fprintf(&b, "\n > away (%s ago) %s", formatDuration(time.Since(u.Status.Since)), u.Status.Reason)
	}

	return b.String()
}

var adjectives = [...]string{
	"Cool", "Mighty", "Brave", "Clever", "Happy", "Calm", "Eager", "Gentle", "Kind",
	"Jolly", "Swift", "Bold", "Fierce", "Wise", "Valiant", "Bright", "Noble", "Zany", "Epic",
}

var nouns = [...]string{
	"Tiger", "Eagle", "Panda", "Shark", "Lion", "Wolf", "Dragon", "Phoenix", "Hawk",
	"Bear", "Falcon", "Panther", "Griffin", "Lynx", "Orca", "Cobra", "Jaguar", "Kraken",
	"Pegasus", "Stallion",
}

// GenRandName picks an adjective/noun pair and a number in [1, 9999] and
// concatenates them without a separator, e.g. "CoolTiger42".
func GenRandName() string {
	adj := adjectives[rand.Intn(len(adjectives))]
	noun := nouns[rand.Intn(len(nouns))]
	n := rand.Intn(9999) + 1
	return fmt.Sprintf("%s%s%d", adj, noun, n)
}

// formatDuration renders d as a compact "1h 3m 12s"-style string, trimming
// leading zero components, mirroring humantime::format_duration from the
// original Rust implementation (no equivalent ships in the retrieved Go
// pack, see DESIGN.md).
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 || h > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	parts = append(parts, fmt.Sprintf("%ds", s))
	return strings.Join(parts, " ")
}

// FormatDuration exposes the compact duration formatter for callers
// outside this package (room announcements on leave).
func FormatDuration(d time.Duration) string {
	return formatDuration(d)
}
