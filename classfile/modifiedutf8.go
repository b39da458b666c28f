package classfile

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeModifiedUTF8 decodes JVMS §4.4.7 modified UTF-8 into a standard Go
// string. Modified UTF-8 differs from standard UTF-8/CESU-8 in exactly two
// ways: the NUL byte is encoded as the two-byte sequence 0xC0 0x80 instead of
// a literal 0x00, and supplementary characters are encoded as a CESU-8
// surrogate pair rather than a single four-byte UTF-8 sequence. Both
// deviations are rewritten to standard UTF-8 first (the 0xC0 0x80 NUL to a
// literal 0x00, each six-byte surrogate pair to its four-byte form); the rest
// is decoded by golang.org/x/text/encoding/unicode's UTF-8 transformer.
func decodeModifiedUTF8(b []byte) string {
	rewritten := rewriteModifiedNUL(b)

	dst, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), rewritten)
	if err != nil {
		// Malformed class files are a cache-miss/Unavailable condition
		// upstream (spec §7), not a panic here: fall back to treating the
		// rewritten bytes as already-valid UTF-8 and let the caller's
		// validation layer flag it.
		return string(rewritten)
	}
	return string(dst)
}

func rewriteModifiedNUL(b []byte) []byte {
	if !hasModifiedNUL(b) && strings.IndexByte(string(b), 0xED) < 0 {
		return b
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for i := 0; i < len(b); i++ {
		if i+5 < len(b) && b[i] == 0xED && b[i+1]&0xF0 == 0xA0 && b[i+3] == 0xED && b[i+4]&0xF0 == 0xB0 {
			hi := rune(b[i+1]&0x0F)<<6 | rune(b[i+2]&0x3F)
			lo := rune(b[i+4]&0x0F)<<6 | rune(b[i+5]&0x3F)
			sb.WriteRune(0x10000 + (hi<<10 | lo))
			i += 5
			continue
		}
		if i+1 < len(b) && b[i] == 0xC0 && b[i+1] == 0x80 {
			sb.WriteByte(0)
			i++
			continue
		}
		sb.WriteByte(b[i])
	}
	return []byte(sb.String())
}

func hasModifiedNUL(b []byte) bool {
	for i := 0; i+1 < len(b); i++ {
		if b[i] == 0xC0 && b[i+1] == 0x80 {
			return true
		}
	}
	return false
}
