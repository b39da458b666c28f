package text

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineIndexPositionRoundTrip(t *testing.T) {
	src := []byte("class A {\n  int x;\n}\n")
	li := NewLineIndex(src)

	pos := li.Position(Offset(13)) // 'i' of "int"
	require.Equal(t, Position{Line: 2, Column: 2}, pos)

	off := li.Offset(pos)
	require.Equal(t, Offset(13), off)
}

func TestLineIndexFirstLine(t *testing.T) {
	src := []byte("abc\ndef")
	li := NewLineIndex(src)
	require.Equal(t, Position{Line: 1, Column: 0}, li.Position(0))
	require.Equal(t, Position{Line: 2, Column: 0}, li.Position(4))
}

func TestLineIndexSurrogatePairColumn(t *testing.T) {
	// U+1F600 (grinning face) is one rune, two UTF-16 code units, four UTF-8 bytes.
	src := []byte("a\U0001F600b\n")
	li := NewLineIndex(src)

	posB := li.Position(Offset(5)) // byte offset of 'b': 'a'(1) + emoji(4)
	require.Equal(t, uint32(3), posB.Column, "column must count UTF-16 units, not bytes or runes")

	off := li.Offset(posB)
	require.Equal(t, Offset(5), off)
}

func TestLineIndexLineCount(t *testing.T) {
	li := NewLineIndex([]byte("a\nb\nc"))
	require.Equal(t, 3, li.LineCount())
}

func TestRangeContainsAndCovers(t *testing.T) {
	r := Range{Start: 10, End: 20}
	require.True(t, r.Contains(10))
	require.False(t, r.Contains(20))
	require.True(t, r.Covers(Range{Start: 12, End: 18}))
	require.False(t, r.Covers(Range{Start: 5, End: 18}))
}
