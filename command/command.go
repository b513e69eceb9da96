// Package command implements the slash-command grammar: splitting a raw
// input line into a typed command variant, or a structured parse error.
// Grounded on the original ssh-chat's server/room/command.rs, adapted from
// Rust's enum-with-derive-macro metadata into a Go struct table plus a
// type switch, which is the idiomatic equivalent for a small closed set of
// variants.
package command

import (
	"fmt"
	"sort"
	"strings"

	"sshchat/theme"
	"sshchat/user"
)

// Name enumerates the recognized commands.
type Name int

const (
	Exit Name = iota
	Away
	Back
	Rename
	Msg
	Reply
	Ignore
	Unignore
	Focus
	Users
	Whois
	Timestamp
	SetTheme
	Themes
	Quiet
	Me
	Slap
	Shrug
	Help
	Version
	Uptime
	Mute
	Kick
	Ban
	Banned
	Motd
)

// Command is a fully parsed, typed command with its arguments.
type Command struct {
	Name Name
	// Arg0 is the single first-token argument for commands with one
	// target (e.g. user name for Unignore/Mute/Kick/Whois).
	Arg0 string
	// Arg0Set reports whether an argument was given for
	// optional-first-token commands (Ignore, Focus, Slap); it is true
	// exactly when Arg0 is non-empty.
	Arg0Set bool
	// Body is the free-text remainder for commands like Away, Reply,
	// Me, Ban, Motd, or the message body for Msg.
	Body string
}

// ParseError is the structured failure taxonomy of §4.1/§7.
type ParseError struct {
	kind  parseErrorKind
	label string
}

type parseErrorKind int

const (
	errNotRecognized parseErrorKind = iota
	errUnknown
	errArgumentExpected
	errCustom
)

func (e *ParseError) Error() string {
	switch e.kind {
	case errNotRecognized:
		return "given input is not a command"
	case errUnknown:
		return "unknown command"
	case errArgumentExpected:
		return fmt.Sprintf("%s is expected", e.label)
	default:
		return e.label
	}
}

// NotRecognizedAsCommand reports whether err signals that the line was not
// a command at all (i.e. a chat message, not an error to surface).
func NotRecognizedAsCommand(err error) bool {
	pe, ok := err.(*ParseError)
	return ok && pe.kind == errNotRecognized
}

func notRecognized() error      { return &ParseError{kind: errNotRecognized} }
func unknown() error            { return &ParseError{kind: errUnknown} }
func argExpected(l string) error { return &ParseError{kind: errArgumentExpected, label: l} }
func custom(s string) error     { return &ParseError{kind: errCustom, label: s} }

// spec holds the static metadata for one command: canonical form, arg
// template, help text, operator-only flag and visibility.
type spec struct {
	name    Name
	cmd     string
	args    string
	help    string
	op      bool
	visible bool
}

var specs = []spec{
	{Exit, "/exit", "", "Exit the chat application", false, true},
	{Away, "/away", "<reason>", "Let the room know you can't make it and why", false, true},
	{Back, "/back", "", "Clear away status", false, true},
	{Rename, "/name", "<name>", "Rename yourself", false, true},
	{Msg, "/msg", "<user> <message>", "Send a private message to a user", false, true},
	{Reply, "/reply", "<message>", "Reply to the previous private message", false, true},
	{Ignore, "/ignore", "[user]", "Hide messages from a user", false, true},
	{Unignore, "/unignore", "<user>", "Stop hiding messages from a user", false, true},
	{Focus, "/focus", "[user]", "Only show messages from focused users. $ to reset", false, true},
	{Users, "/users", "", "List users who are connected", false, true},
	{Whois, "/whois", "<user>", "Information about a user", false, true},
	{Timestamp, "/timestamp", "time|datetime|off", "Prefix messages with a timestamp", false, true},
	{SetTheme, "/theme", "<theme>", "Set your color theme", false, true},
	{Themes, "/themes", "", "List supported color themes", false, true},
	{Quiet, "/quiet", "", "Silence room announcements", false, true},
	{Me, "/me", "[action]", "", false, false},
	{Slap, "/slap", "[user]", "", false, false},
	{Shrug, "/shrug", "", "", false, false},
	{Help, "/help", "", "", false, false},
	{Version, "/version", "", "", false, false},
	{Uptime, "/uptime", "", "", false, false},
	{Mute, "/mute", "<user>", "Toggle muting user, preventing messages from broadcasting", true, true},
	{Kick, "/kick", "<user>", "Kick user from the server", true, true},
	{Ban, "/ban", "<query>", "Ban user from the server", true, true},
	{Banned, "/banned", "", "List the current ban conditions", true, true},
	{Motd, "/motd", "[message]", "Set a new message of the day, or print the motd if no message", true, true},
}

var byCmd = func() map[string]spec {
	m := make(map[string]spec, len(specs))
	for _, s := range specs {
		m[s.cmd] = s
	}
	return m
}()

// Parse splits line at the first space into cmd/args and builds a typed
// Command, or a *ParseError. A line whose first token does not start with
// "/" yields NotRecognizedAsCommand(err) == true.
func Parse(line string) (Command, error) {
	cmd, args := splitFirstSpace(line)
	if !strings.HasPrefix(cmd, "/") {
		return Command{}, notRecognized()
	}
	args = strings.TrimLeft(args, " \t")

	s, ok := byCmd[cmd]
	if !ok {
		return Command{}, unknown()
	}

	switch s.name {
	case Exit, Back, Users, Themes, Quiet, Shrug, Help, Version, Uptime, Banned:
		return Command{Name: s.name}, nil

	case Away:
		if args == "" {
			return Command{}, argExpected("away reason")
		}
		return Command{Name: Away, Body: args}, nil

	case Rename:
		first := firstToken(args)
		if first == "" {
			return Command{}, argExpected("new name")
		}
		return Command{Name: Rename, Arg0: first}, nil

	case Msg:
		target, rest, ok := splitFirstSpace2(args)
		if !ok || target == "" {
			return Command{}, argExpected("user name")
		}
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			return Command{}, argExpected("message body")
		}
		return Command{Name: Msg, Arg0: target, Body: rest}, nil

	case Reply:
		if args == "" {
			return Command{}, argExpected("message body")
		}
		return Command{Name: Reply, Body: args}, nil

	case Ignore:
		first := firstToken(args)
		return Command{Name: Ignore, Arg0: first, Arg0Set: first != ""}, nil

	case Unignore:
		first := firstToken(args)
		if first == "" {
			return Command{}, argExpected("user name")
		}
		return Command{Name: Unignore, Arg0: first}, nil

	case Focus:
		first := firstToken(args)
		return Command{Name: Focus, Arg0: first, Arg0Set: first != ""}, nil

	case Whois:
		first := firstToken(args)
		if first == "" {
			return Command{}, argExpected("user name")
		}
		return Command{Name: Whois, Arg0: first}, nil

	case Timestamp:
		first := firstToken(args)
		if first == "" {
			return Command{}, custom("timestamp value must be one of: time, datetime, off")
		}
		if _, ok := user.ParseTimestampMode(first); !ok {
			return Command{}, custom("timestamp value must be one of: time, datetime, off")
		}
		return Command{Name: Timestamp, Arg0: first}, nil

	case SetTheme:
		first := firstToken(args)
		if first == "" || !theme.Valid(first) {
			return Command{}, custom(fmt.Sprintf("theme value must be one of: %s", strings.Join(theme.Names(), ", ")))
		}
		return Command{Name: SetTheme, Arg0: first}, nil

	case Me:
		if args == "" {
			return Command{Name: Me}, nil
		}
		return Command{Name: Me, Body: args}, nil

	case Slap:
		first := firstToken(args)
		return Command{Name: Slap, Arg0: first, Arg0Set: first != ""}, nil

	case Mute, Kick:
		first := firstToken(args)
		if first == "" {
			return Command{}, argExpected("user name")
		}
		return Command{Name: s.name, Arg0: first}, nil

	case Ban:
		if args == "" {
			return Command{}, argExpected("ban query")
		}
		return Command{Name: Ban, Body: args}, nil

	case Motd:
		if args == "" {
			return Command{Name: Motd}, nil
		}
		return Command{Name: Motd, Body: args}, nil
	}

	return Command{}, unknown()
}

func firstToken(s string) string {
	first, _ := splitFirstSpace(s)
	return first
}

func splitFirstSpace(s string) (first, rest string) {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

func splitFirstSpace2(s string) (first, rest string, ok bool) {
	if s == "" {
		return "", "", false
	}
	f, r := splitFirstSpace(s)
	return f, r, true
}

// HelpText renders the non-operator command table (or both tables when
// showOp is set), sorted by canonical-form length ascending, in
// "%-10s %-20s %s" columns, matching the original's to_string layout.
func HelpText(showOp bool) string {
	visible := make([]spec, 0, len(specs))
	for _, s := range specs {
		if s.visible && !s.op {
			visible = append(visible, s)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool { return len(visible[i].cmd) < len(visible[j].cmd) })

	var b strings.Builder
	b.WriteString("Available commands:\n")
	writeTable(&b, visible)

	if showOp {
		op := make([]spec, 0)
		for _, s := range specs {
			if s.visible && s.op {
				op = append(op, s)
			}
		}
		sort.SliceStable(op, func(i, j int) bool { return len(op[i].cmd) < len(op[j].cmd) })
		b.WriteString("\n\nOperator commands:\n")
		writeTable(&b, op)
	}

	return b.String()
}

// IsOp reports whether name is an operator-only command.
func IsOp(name Name) bool {
	for _, s := range specs {
		if s.name == name {
			return s.op
		}
	}
	return false
}

func writeTable(b *strings.Builder, rows []spec) {
	for i, s := range rows {
		fmt.Fprintf(b, "%-10s %-20s %s", s.cmd, s.args, s.help)
		if i != len(rows)-1 {
			b.WriteByte('\n')
		}
	}
}
