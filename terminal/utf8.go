package terminal

import "unicode/utf8"

const runeError = utf8.RuneError

// decodeRune decodes the first rune of buf, returning size 0 when buf does
// not yet hold a complete UTF-8 sequence (caller should wait for more
// bytes) as opposed to buf holding a genuinely invalid byte (size 1, which
// utf8.DecodeRune already reports for a single invalid byte).
func decodeRune(buf []byte) (rune, int) {
	r, size := utf8.DecodeRune(buf)
	if r == utf8.RuneError && size == 1 && !utf8.FullRune(buf) {
		return utf8.RuneError, 0
	}
	return r, size
}
