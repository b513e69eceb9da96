// Package terminal decodes raw SSH channel keystroke bytes into keycodes
// and holds the per-session editable input line, history and screen size.
// No terminal-editing library in the retrieved pack exposes per-keystroke
// events (the teacher's golang.org/x/term.Terminal.ReadLine swallows line
// editing internally); this decoder is hand-written against the standard
// library, grounded on the byte sequences handled by the original
// ssh-chat's terminal_keycode::Decoder (see original_source/.../room.rs,
// the Enter/Backspace/CtrlW/Char/Space match arms).
package terminal

// KeyCode tags one decoded keystroke.
type KeyCode int

const (
	KeyChar KeyCode = iota
	KeySpace
	KeyEnter
	KeyBackspace
	KeyCtrlW
	KeyUp
	KeyDown
	KeyOther
)

// Key is one decoded keystroke, carrying the raw bytes it was decoded from
// (meaningful for KeyChar/KeySpace, which get appended verbatim to input).
type Key struct {
	Code  KeyCode
	Bytes []byte
}

// Decoder turns a stream of raw bytes into Keys. It tracks just enough
// state to recognize the multi-byte escape sequences for arrow keys.
type Decoder struct {
	pending []byte
}

// NewDecoder returns a fresh decoder with nothing buffered.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Write feeds a chunk of raw channel bytes and returns the Keys decoded
// from it. Bytes belonging to an incomplete escape sequence are buffered
// until the next Write.
func (d *Decoder) Write(data []byte) []Key {
	d.pending = append(d.pending, data...)

	var keys []Key
	for len(d.pending) > 0 {
		b := d.pending[0]

		switch {
		case b == '\r' || b == '\n':
			keys = append(keys, Key{Code: KeyEnter})
			d.pending = d.pending[1:]

		case b == 0x7f || b == 0x08:
			keys = append(keys, Key{Code: KeyBackspace})
			d.pending = d.pending[1:]

		case b == 0x17: // Ctrl-W
			keys = append(keys, Key{Code: KeyCtrlW})
			d.pending = d.pending[1:]

		case b == ' ':
			keys = append(keys, Key{Code: KeySpace, Bytes: []byte{' '}})
			d.pending = d.pending[1:]

		case b == 0x1b: // ESC — possible arrow-key sequence "\x1b[A".."\x1b[D"
			if len(d.pending) < 3 {
				// Incomplete sequence; wait for more bytes.
				return keys
			}
			if d.pending[1] == '[' {
				switch d.pending[2] {
				case 'A':
					keys = append(keys, Key{Code: KeyUp})
				case 'B':
					keys = append(keys, Key{Code: KeyDown})
				default:
					keys = append(keys, Key{Code: KeyOther})
				}
				d.pending = d.pending[3:]
			} else {
				keys = append(keys, Key{Code: KeyOther})
				d.pending = d.pending[1:]
			}

		case b < 0x20:
			keys = append(keys, Key{Code: KeyOther})
			d.pending = d.pending[1:]

		default:
			r, size := decodeRune(d.pending)
			if r == runeError && size == 0 {
				// Incomplete UTF-8 sequence; wait for more bytes.
				return keys
			}
			keys = append(keys, Key{Code: KeyChar, Bytes: append([]byte(nil), d.pending[:size]...)})
			d.pending = d.pending[size:]
		}
	}
	return keys
}
