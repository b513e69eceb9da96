package terminal

import (
	"bytes"
	"sync"
)

// Size is the client's negotiated terminal dimensions, updated on
// "window-change" SSH requests.
type Size struct {
	Width, Height int
}

// Terminal is the per-session keystroke-decoded input state plus the
// accumulating output sink that gets flushed as a single SSH data frame,
// mirroring the original's terminal::handle::TerminalHandle sink-then-flush
// design (see original_source/.../terminal/handle.rs).
type Terminal struct {
	mu      sync.Mutex
	Input   *Input
	decoder *Decoder
	Size    Size
	sink    bytes.Buffer
}

// New returns a fresh Terminal with an 80x24 default size, used until the
// client's first "window-change"/"pty-req" request reports otherwise.
func New() *Terminal {
	return &Terminal{
		Input:   NewInput(),
		decoder: NewDecoder(),
		Size:    Size{Width: 80, Height: 24},
	}
}

// Decode feeds raw channel bytes through the keystroke decoder.
func (t *Terminal) Decode(data []byte) []Key {
	return t.decoder.Write(data)
}

// Write implements io.Writer, appending to the accumulating sink. All
// newlines must be \n\r on the wire (spec.md §6); callers are expected to
// have already produced that line-ending convention.
func (t *Terminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sink.Write(p)
}

// Flush returns the accumulated sink bytes and empties it. Returns nil
// when nothing is pending, so callers can skip a zero-length channel
// write.
func (t *Terminal) Flush() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sink.Len() == 0 {
		return nil
	}
	out := append([]byte(nil), t.sink.Bytes()...)
	t.sink.Reset()
	return out
}

// SetSize updates the negotiated terminal dimensions.
func (t *Terminal) SetSize(w, h int) {
	t.Size = Size{Width: w, Height: h}
}

// ToCRLF rewrites bare "\n" into "\n\r" for terminal display, the one wire
// requirement of spec.md §6.
func ToCRLF(s string) string {
	var b bytes.Buffer
	for i := 0; i < len(s); i++ {
		b.WriteByte(s[i])
		if s[i] == '\n' {
			b.WriteByte('\r')
		}
	}
	return b.String()
}
