package terminal

import "unicode/utf8"

// Input is the editable line buffer for one session: current bytes plus a
// recall history of previously submitted lines.
type Input struct {
	buf     []byte
	history []string
	histPos int // index into history while recalling with Up/Down; -1 = not recalling
}

// NewInput returns an empty input buffer.
func NewInput() *Input {
	return &Input{histPos: -1}
}

// Bytes returns the raw bytes currently in the line.
func (in *Input) Bytes() []byte {
	return in.buf
}

// String returns the current line as text.
func (in *Input) String() string {
	return string(in.buf)
}

// Append adds raw bytes (a decoded char or space) to the end of the line.
func (in *Input) Append(b []byte) {
	in.buf = append(in.buf, b...)
}

// Backspace removes the last rune from the line. A no-op on an empty line.
func (in *Input) Backspace() {
	if len(in.buf) == 0 {
		return
	}
	_, size := utf8.DecodeLastRune(in.buf)
	in.buf = in.buf[:len(in.buf)-size]
}

// RemoveLastWord removes the last whitespace-delimited word, and any
// trailing whitespace before it (Ctrl-W).
func (in *Input) RemoveLastWord() {
	s := in.buf
	i := len(s)
	for i > 0 && s[i-1] == ' ' {
		i--
	}
	for i > 0 && s[i-1] != ' ' {
		i--
	}
	in.buf = s[:i]
}

// Clear empties the line without touching history.
func (in *Input) Clear() {
	in.buf = in.buf[:0]
	in.histPos = -1
}

// PushHistory records the current line (if non-empty) as a submitted
// entry, then clears the line. Call on a successful Enter.
func (in *Input) PushHistory() {
	if len(in.buf) > 0 {
		in.history = append(in.history, string(in.buf))
	}
	in.Clear()
}

// RecallPrevious moves the recall cursor one entry back in history (Up)
// and loads it into the line. A no-op at the oldest entry.
func (in *Input) RecallPrevious() {
	if len(in.history) == 0 {
		return
	}
	if in.histPos == -1 {
		in.histPos = len(in.history) - 1
	} else if in.histPos > 0 {
		in.histPos--
	}
	in.buf = []byte(in.history[in.histPos])
}

// RecallNext moves the recall cursor one entry forward (Down). Past the
// newest entry, it clears the line and stops recalling.
func (in *Input) RecallNext() {
	if in.histPos == -1 {
		return
	}
	if in.histPos >= len(in.history)-1 {
		in.histPos = -1
		in.buf = in.buf[:0]
		return
	}
	in.histPos++
	in.buf = []byte(in.history[in.histPos])
}
