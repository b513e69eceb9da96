package room

import (
	"sshchat/command"
	"sshchat/message"
	"sshchat/terminal"
)

// Version is reported by /version.
const Version = "sshchat/1.0"

// pipelineContext is the shared context threaded through the chain of
// input-pipeline stages (spec.md §4.5): command extract, command parse,
// command dispatch. The original's chain-of-responsibility is collapsed
// into a straight-line function, per spec.md §9 design notes — pluggability
// was never exploited by the source.
type pipelineContext struct {
	memberID   int
	inputStr   string
	commandStr string
	hasCommand bool
	cmd        command.Command
	parseErr   error
}

// HandleInput feeds a batch of raw keystroke bytes for memberID through the
// terminal decoder and the line-editing/command pipeline, then redraws the
// in-progress input line into the terminal's sink so the typist sees their
// own edits once the session's render loop next flushes (spec.md §4.6). The
// redraw happens here, in the same goroutine that owns term.Input, rather
// than from the render tick goroutine, which must never touch term.Input
// directly (see sshserver/session.go's renderLoop).
func (r *Room) HandleInput(memberID int, term *terminal.Terminal, data []byte) {
	keys := term.Decode(data)
	for _, key := range keys {
		switch key.Code {
		case terminal.KeyEnter:
			r.submitLine(memberID, term)
		case terminal.KeyBackspace:
			term.Input.Backspace()
		case terminal.KeyCtrlW:
			term.Input.RemoveLastWord()
		case terminal.KeyUp:
			term.Input.RecallPrevious()
		case terminal.KeyDown:
			term.Input.RecallNext()
		case terminal.KeyChar, terminal.KeySpace:
			term.Input.Append(key.Bytes)
		default:
			// ignored
		}
	}
	if len(keys) > 0 {
		term.Write([]byte("\r\x1b[K" + term.Input.String()))
	}
}

func (r *Room) submitLine(memberID int, term *terminal.Terminal) {
	line := term.Input.String()
	if line == "" {
		// Empty input on Enter is a no-op (spec.md §8 boundaries).
		return
	}

	ctx := &pipelineContext{memberID: memberID, inputStr: line}
	r.stageExtract(ctx)
	r.stageParse(ctx, term)
	r.stageDispatch(ctx)

	term.Input.PushHistory()
}

// stageExtract: if input_str starts with '/', copy it to command_str.
func (r *Room) stageExtract(ctx *pipelineContext) {
	if len(ctx.inputStr) > 0 && ctx.inputStr[0] == '/' {
		ctx.commandStr = ctx.inputStr
		ctx.hasCommand = true
	}
}

// stageParse: parse command_str if set; on NotRecognizedAsCommand clear the
// command so stageDispatch sends the line as a Public message (it is not an
// error); on other parse errors record the error, which stageDispatch
// reports as a Command echo then an Error; on success stash the parsed
// command.
func (r *Room) stageParse(ctx *pipelineContext, term *terminal.Terminal) {
	if !ctx.hasCommand {
		return
	}

	cmd, err := command.Parse(ctx.commandStr)
	if err != nil && command.NotRecognizedAsCommand(err) {
		// unreachable in practice (stageExtract only sets hasCommand for
		// lines starting with '/'), kept for defensive symmetry with the
		// original's match arm.
		ctx.hasCommand = false
		return
	}
	if err != nil {
		ctx.parseErr = err
		return
	}
	ctx.cmd = cmd
}

// stageDispatch: if command is set, emit a Command echo, then apply its
// semantics via the Room; otherwise (no leading '/') the line is a chat
// message. Holds r.mu for the whole stage so the operator-gate check, the
// command echo and the dispatched mutation are one atomic step — splitting
// them into separate locked calls would let another session's broadcast
// interleave with this one's user-state mutation (spec.md §5).
func (r *Room) stageDispatch(ctx *pipelineContext) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.memberLocked(ctx.memberID)
	if !ok {
		return
	}
	from := m.User

	if !ctx.hasCommand {
		r.sendMessageLocked(message.Public(from, ctx.inputStr))
		return
	}

	r.sendMessageLocked(message.Command(from, ctx.inputStr))

	if ctx.parseErr != nil {
		r.sendMessageLocked(message.Error(from, ctx.parseErr.Error()))
		return
	}

	if command.IsOp(ctx.cmd.Name) && !from.IsOp {
		r.sendMessageLocked(message.Error(from, "this is an operator-only command"))
		return
	}

	r.dispatchLocked(ctx.memberID, ctx.cmd)
}
