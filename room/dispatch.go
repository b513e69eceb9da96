package room

import (
	"fmt"
	"strings"

	"sshchat/command"
	"sshchat/message"
	"sshchat/theme"
	"sshchat/user"
)

// dispatch applies a parsed command's semantics against the room on behalf
// of the member identified by memberID, taking r.mu itself. Used directly
// by this package's tests; the input pipeline calls dispatchLocked instead,
// since stageDispatch already holds r.mu for the echo, operator gate and
// dispatch (see pipeline.go).
func (r *Room) dispatch(memberID int, cmd command.Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatchLocked(memberID, cmd)
}

// dispatchLocked is grounded on the original's ServerRoom::handle_input
// match over Command (see original_source/.../room.rs and
// .../room/command.rs). Assumes r.mu is already held: every user-state
// mutation here (GoAway, SwitchQuiet, FocusAdd, IgnoreAdd, ...) must happen
// under the same lock that sendMessageLocked's fan-out reads those fields
// under, or a session mutating its own user concurrently with another
// session's broadcast races on the shared User (spec.md §5).
func (r *Room) dispatchLocked(memberID int, cmd command.Command) {
	m, ok := r.memberLocked(memberID)
	if !ok {
		return
	}
	from := m.User

	switch cmd.Name {
	case command.Exit:
		r.leaveLocked(memberID, "")

	case command.Away:
		from.GoAway(cmd.Body)
		r.sendMessageLocked(message.Emote(from, fmt.Sprintf("has gone away: %q", cmd.Body)))

	case command.Back:
		if from.Status.Away {
			from.ReturnActive()
			r.sendMessageLocked(message.Emote(from, "is back"))
		}

	case command.Rename:
		if err := r.renameLocked(memberID, cmd.Arg0); err != nil {
			r.sendMessageLocked(message.Error(from, err.Error()))
		}

	case command.Msg:
		r.dispatchMsgLocked(memberID, cmd.Arg0, cmd.Body)

	case command.Reply:
		r.dispatchReplyLocked(memberID, cmd.Body)

	case command.Ignore:
		r.dispatchIgnoreLocked(from, cmd)

	case command.Unignore:
		target, ok := r.memberByNameLocked(cmd.Arg0)
		if !ok {
			r.sendMessageLocked(message.System(from, fmt.Sprintf("%s is not ignored", cmd.Arg0)))
			return
		}
		from.IgnoreRemove(target.User.ID)
		r.sendMessageLocked(message.System(from, fmt.Sprintf("No longer ignoring %s", cmd.Arg0)))

	case command.Focus:
		r.dispatchFocusLocked(from, cmd)

	case command.Users:
		r.dispatchUsersLocked(from)

	case command.Whois:
		target, ok := r.memberByNameLocked(cmd.Arg0)
		if !ok {
			r.sendMessageLocked(message.Error(from, "User is not found"))
			return
		}
		r.sendMessageLocked(message.System(from, target.User.String()))

	case command.Timestamp:
		mode, _ := user.ParseTimestampMode(cmd.Arg0)
		from.SetTimestampMode(mode)
		r.sendMessageLocked(message.System(from, fmt.Sprintf("Timestamp mode set to %s", cmd.Arg0)))

	case command.SetTheme:
		from.SetTheme(cmd.Arg0)
		r.sendMessageLocked(message.System(from, fmt.Sprintf("Theme set to %s", cmd.Arg0)))

	case command.Themes:
		r.sendMessageLocked(message.System(from, "Available themes: "+strings.Join(theme.Names(), ", ")))

	case command.Quiet:
		on := from.SwitchQuiet()
		state := "OFF"
		if on {
			state = "ON"
		}
		r.sendMessageLocked(message.System(from, "Quiet mode is toggled "+state))

	case command.Me:
		body := cmd.Body
		if body == "" {
			body = "is at a loss for words."
		}
		r.sendMessageLocked(message.Emote(from, body))

	case command.Slap:
		r.dispatchSlapLocked(from, cmd)

	case command.Shrug:
		r.sendMessageLocked(message.Emote(from, `¯\_(ツ)_/¯`))

	case command.Help:
		r.sendMessageLocked(message.System(from, command.HelpText(from.IsOp)))

	case command.Version:
		r.sendMessageLocked(message.System(from, Version))

	case command.Uptime:
		r.sendMessageLocked(message.System(from, "Uptime: "+user.FormatDuration(r.Uptime())))

	case command.Mute:
		if err := r.muteLocked(cmd.Arg0); err != nil {
			r.sendMessageLocked(message.Error(from, err.Error()))
		}

	case command.Kick:
		if err := r.kickLocked(cmd.Arg0); err != nil {
			r.sendMessageLocked(message.Error(from, err.Error()))
		}

	case command.Ban:
		r.banLocked(cmd.Body)
		r.sendMessageLocked(message.System(from, fmt.Sprintf("Banned: %s", cmd.Body)))

	case command.Banned:
		list := r.bannedListLocked()
		if len(list) == 0 {
			r.sendMessageLocked(message.System(from, "No ban conditions recorded"))
			return
		}
		r.sendMessageLocked(message.System(from, "Banned: "+strings.Join(list, ", ")))

	case command.Motd:
		if cmd.Body == "" {
			r.sendMessageLocked(message.System(from, r.motdLocked()))
			return
		}
		r.setMotdLocked(cmd.Body)
		r.sendMessageLocked(message.System(from, "MOTD updated"))
	}
}

func (r *Room) dispatchMsgLocked(memberID int, toName, body string) {
	m, ok := r.memberLocked(memberID)
	if !ok {
		return
	}
	from := m.User

	target, ok := r.memberByNameLocked(toName)
	if !ok {
		r.sendMessageLocked(message.Error(from, "User is not found"))
		return
	}
	if target.User.ID == from.ID {
		r.sendMessageLocked(message.Error(from, "You can't message yourself"))
		return
	}

	r.sendMessageLocked(message.Private(from, target.User, body))

	if target.User.Status.Away {
		r.sendMessageLocked(message.System(from, fmt.Sprintf(
			"Sent PM to %s, but they're away now: %s", target.User.Username, target.User.Status.Reason)))
	}

	target.User.SetReplyTo(from.ID)
}

func (r *Room) dispatchReplyLocked(memberID int, body string) {
	m, ok := r.memberLocked(memberID)
	if !ok {
		return
	}
	from := m.User

	if from.ReplyTo == 0 {
		r.sendMessageLocked(message.Error(from, "There is no message to reply to"))
		return
	}

	target, ok := r.memberLocked(from.ReplyTo)
	if !ok {
		r.sendMessageLocked(message.Error(from, "User already left the room"))
		return
	}

	r.sendMessageLocked(message.Private(from, target.User, body))
}

func (r *Room) dispatchIgnoreLocked(from *user.User, cmd command.Command) {
	if !cmd.Arg0Set {
		if len(from.Ignored) == 0 {
			r.sendMessageLocked(message.System(from, "Not ignoring anyone"))
			return
		}
		names := make([]string, 0, len(from.Ignored))
		for id := range from.Ignored {
			if mm, ok := r.memberLocked(id); ok {
				names = append(names, mm.User.Username)
			}
		}
		r.sendMessageLocked(message.System(from, "Ignoring: "+strings.Join(names, ", ")))
		return
	}

	target, ok := r.memberByNameLocked(cmd.Arg0)
	if !ok {
		r.sendMessageLocked(message.Error(from, "User is not found"))
		return
	}
	from.IgnoreAdd(target.User.ID)
	r.sendMessageLocked(message.System(from, fmt.Sprintf("Ignoring %s", cmd.Arg0)))
}

func (r *Room) dispatchFocusLocked(from *user.User, cmd command.Command) {
	if !cmd.Arg0Set {
		if len(from.Focused) == 0 {
			r.sendMessageLocked(message.System(from, "Not focused on anyone"))
			return
		}
		names := make([]string, 0, len(from.Focused))
		for id := range from.Focused {
			if mm, ok := r.memberLocked(id); ok {
				names = append(names, mm.User.Username)
			}
		}
		r.sendMessageLocked(message.System(from, "Focused on: "+strings.Join(names, ", ")))
		return
	}

	if cmd.Arg0 == "$" {
		from.FocusClear()
		r.sendMessageLocked(message.System(from, "Focus reset"))
		return
	}

	target, ok := r.memberByNameLocked(cmd.Arg0)
	if !ok {
		r.sendMessageLocked(message.Error(from, "User is not found"))
		return
	}
	from.FocusAdd(target.User.ID)
	r.sendMessageLocked(message.System(from, fmt.Sprintf("Focused on %s", cmd.Arg0)))
}

func (r *Room) dispatchUsersLocked(from *user.User) {
	names := r.namesLocked()
	t, ok := theme.Get(from.Theme)
	if !ok {
		t, _ = theme.Get(theme.Default)
	}

	colorized := make([]string, len(names))
	for i, n := range names {
		colorized[i] = t.StyleUsername(n)
	}

	r.sendMessageLocked(message.System(from, fmt.Sprintf("%d connected: %s", len(names), strings.Join(colorized, ", "))))
}

func (r *Room) dispatchSlapLocked(from *user.User, cmd command.Command) {
	if !cmd.Arg0Set {
		r.sendMessageLocked(message.Emote(from, "hits himself with a squishy banana."))
		return
	}

	target, ok := r.memberByNameLocked(cmd.Arg0)
	if !ok {
		r.sendMessageLocked(message.Error(from, "That slippin' monkey is not in the room"))
		return
	}
	r.sendMessageLocked(message.Emote(from, fmt.Sprintf("hits %s with a squishy banana.", target.User.Username)))
}
