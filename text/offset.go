// Package text implements Nova's byte/offset/position model (spec §4.1): a
// source file's bytes are the single source of truth; line/column positions
// are a derived view recomputed from a line index, never stored in the CST or
// HIR.
package text

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

// Offset is a zero-based UTF-8 byte offset into a file's contents.
type Offset uint32

// Range is a half-open byte range [Start, End).
type Range struct {
	Start Offset
	End   Offset
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() Offset { return r.End - r.Start }

// Contains reports whether off lies within [Start, End).
func (r Range) Contains(off Offset) bool { return off >= r.Start && off < r.End }

// Covers reports whether r fully contains other.
func (r Range) Covers(other Range) bool { return r.Start <= other.Start && other.End <= r.End }

// Position is a one-based line, zero-based UTF-16 code-unit column, matching
// the LSP convention external consumers (editors) expect.
type Position struct {
	Line   uint32
	Column uint32
}

// LineIndex maps byte offsets to Positions and back in O(log n). It is built
// once per file version; an edit means building a new one.
type LineIndex struct {
	// lineStarts[i] is the byte offset of the first byte of line i (0-based
	// internally; exposed Positions are 1-based).
	lineStarts []Offset
	content    []byte
}

// NewLineIndex scans content for line starts. Both "\n" and "\r\n" line
// endings are recognized; a lone "\r" is not treated as a line break, matching
// how the lexer (§4.4) treats it as part of whitespace trivia instead.
func NewLineIndex(content []byte) *LineIndex {
	starts := []Offset{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, Offset(i+1))
		}
	}
	return &LineIndex{lineStarts: starts, content: content}
}

// Position converts a byte offset into a line/UTF-16-column Position.
func (li *LineIndex) Position(off Offset) Position {
	line := li.lineForOffset(off)
	lineStart := li.lineStarts[line]
	col := utf16Len(li.content[lineStart:off])
	return Position{Line: uint32(line) + 1, Column: col}
}

// Offset converts a Position back into a byte offset. Returns the offset of
// the end of the line if col overruns it (mirroring a common editor
// convention rather than erroring on stale positions).
func (li *LineIndex) Offset(pos Position) Offset {
	if pos.Line == 0 {
		return 0
	}
	lineIdx := int(pos.Line) - 1
	if lineIdx >= len(li.lineStarts) {
		return Offset(len(li.content))
	}
	lineStart := li.lineStarts[lineIdx]
	lineEnd := Offset(len(li.content))
	if lineIdx+1 < len(li.lineStarts) {
		lineEnd = li.lineStarts[lineIdx+1]
	}
	return advanceUTF16(li.content[lineStart:lineEnd], pos.Column) + lineStart
}

func (li *LineIndex) lineForOffset(off Offset) int {
	// lineStarts is sorted ascending; find the last start <= off.
	i := sort.Search(len(li.lineStarts), func(i int) bool { return li.lineStarts[i] > off })
	if i == 0 {
		return 0
	}
	return i - 1
}

// LineCount reports the number of lines in the indexed content.
func (li *LineIndex) LineCount() int { return len(li.lineStarts) }

func utf16Len(b []byte) uint32 {
	var n uint32
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			n++
			b = b[1:]
			continue
		}
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
		b = b[size:]
	}
	return n
}

func advanceUTF16(b []byte, units uint32) Offset {
	var off Offset
	var consumed uint32
	for len(b) > 0 && consumed < units {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			consumed++
			off++
			b = b[1:]
			continue
		}
		u := utf16.Encode([]rune{r})
		consumed += uint32(len(u))
		off += Offset(size)
		b = b[size:]
	}
	return off
}
