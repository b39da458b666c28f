package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nova/text"
)

func TestToWireConvertsSpans(t *testing.T) {
	li := text.NewLineIndex([]byte("class A {\n  int x = \"s\";\n}\n"))
	d := Diagnostic{
		Code:     "incompatible-types",
		Severity: SeverityError,
		Message:  "incompatible types: String cannot be converted to int",
		Span:     text.Range{Start: 21, End: 24},
	}

	w := ToWire(d, li)
	require.Equal(t, WireVersion, w.Version)
	require.Equal(t, "error", w.Severity)
	require.Equal(t, uint32(2), w.Start.Line)
}

func TestSeverityString(t *testing.T) {
	require.Equal(t, "warning", SeverityWarning.String())
	require.Equal(t, "unknown", Severity(99).String())
}
