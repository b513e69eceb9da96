// Package message defines the tagged variant of chat message kinds and
// their rendering. Grounded on the original ssh-chat's server/room/message
// module (via command.rs and room.rs usage) and on the teacher's ui
// package, which colorized and timestamped lines the same way.
package message

import (
	"fmt"
	"time"

	"sshchat/user"
)

// Kind tags which variant a Message holds.
type Kind int

const (
	KindPublic Kind = iota
	KindEmote
	KindAnnounce
	KindSystem
	KindCommand
	KindError
	KindPrivate
)

// Message is a tagged variant. Which fields are meaningful depends on Kind:
//
//	Public   {From, Body}
//	Emote    {From, Body}
//	Announce {From, Body}
//	System   {To, Body}
//	Command  {From, Body}   (Body is the raw input line)
//	Error    {To, Body}     (To is From for parse errors)
//	Private  {From, To, Body}
type Message struct {
	Kind      Kind
	From      *user.User
	To        *user.User
	Body      string
	CreatedAt time.Time
}

func now(m Message) Message {
	m.CreatedAt = time.Now()
	return m
}

// Public builds a Public message.
func Public(from *user.User, body string) Message {
	return now(Message{Kind: KindPublic, From: from, Body: body})
}

// Emote builds an Emote (third-person action) message.
func Emote(from *user.User, body string) Message {
	return now(Message{Kind: KindEmote, From: from, Body: body})
}

// Announce builds a server-generated membership notice.
func Announce(from *user.User, body string) Message {
	return now(Message{Kind: KindAnnounce, From: from, Body: body})
}

// System builds a server reply visible only to `to`.
func System(to *user.User, body string) Message {
	return now(Message{Kind: KindSystem, To: to, Body: body})
}

// Command builds an echo of what the user typed, visible only to `from`.
func Command(from *user.User, raw string) Message {
	return now(Message{Kind: KindCommand, From: from, Body: raw})
}

// Error builds a parse/dispatch failure visible only to `to`.
func Error(to *user.User, body string) Message {
	return now(Message{Kind: KindError, To: to, Body: body})
}

// Private builds a message visible to both From and To.
func Private(from, to *user.User, body string) Message {
	return now(Message{Kind: KindPrivate, From: from, To: to, Body: body})
}

// HistoryEligible reports whether this kind belongs in the bounded room
// history ring (Public, Emote, Announce only).
func (m Message) HistoryEligible() bool {
	switch m.Kind {
	case KindPublic, KindEmote, KindAnnounce:
		return true
	default:
		return false
	}
}

// Format renders m for viewer, applying viewer's theme and timestamp mode.
// Apart from the timestamp prefix and theme colors, the same Message renders
// identically for every viewer, except Private, which reads "[PM to <to>]"
// for its sender and "[PM from <from>]" for everyone else.
func (m Message) Format(viewer *user.User) string {
	t, ok := viewerTheme(viewer)
	if !ok {
		t, _ = defaultTheme()
	}

	var line string
	switch m.Kind {
	case KindPublic:
		line = fmt.Sprintf("%s: %s", t.StyleUsername(m.From.Username), t.StylePublic(m.Body))
	case KindEmote:
		line = t.StyleEmote(fmt.Sprintf("* %s %s", m.From.Username, m.Body))
	case KindAnnounce:
		line = t.StyleAnnounce(fmt.Sprintf(" * %s %s", m.From.Username, m.Body))
	case KindSystem:
		line = t.StyleSystem(m.Body)
	case KindError:
		line = t.StyleError(m.Body)
	case KindCommand:
		line = m.Body
	case KindPrivate:
		if viewer != nil && m.From != nil && viewer.ID == m.From.ID {
			line = fmt.Sprintf("[PM to %s] %s", m.To.Username, m.Body)
		} else {
			line = fmt.Sprintf("[PM from %s] %s", m.From.Username, m.Body)
		}
	}

	prefix := timestampPrefix(viewer, m.CreatedAt)
	return prefix + line
}

func timestampPrefix(viewer *user.User, at time.Time) string {
	if viewer == nil {
		return ""
	}
	switch viewer.TimestampMode {
	case user.TimestampTime:
		return at.Format("15:04 ")
	case user.TimestampDateTime:
		return at.Format("2006-01-02 15:04:05 ")
	default:
		return ""
	}
}
