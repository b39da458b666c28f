// Package diagnostic defines Nova's shared diagnostic type and its stable
// wire encoding (spec §3, §6), plus the versioned wire contract supplemented
// from original_source's nova-ext-abi crate so external consumers (an LSP
// server, a CLI) can pin a schema version independent of Nova's internal
// release cadence.
package diagnostic

import "nova/text"

// Severity classifies a diagnostic for display purposes. It never affects
// whether downstream queries treat the underlying type/resolution as an
// error (spec §7's "Unknown/Error types propagate without halting").
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Code identifies a diagnostic kind stably across releases, e.g.
// "type-mismatch" or "ambiguous-call". Wire consumers may key
// suppression/quick-fix behavior off Code, so renaming one is a breaking
// change to the wire contract, not just an internal rename.
type Code string

// Diagnostic is Nova's internal representation: a precise span plus whatever
// a typeck (§4.11) or resolve (§4.8) pass attached to it. It is data returned
// from a query result, never a Go error.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Message  string
	Span     text.Range
	// RelatedSpans points at secondary locations relevant to the message,
	// e.g. the conflicting declaration in a duplicate-symbol diagnostic.
	RelatedSpans []RelatedSpan
}

// RelatedSpan is a secondary location attached to a Diagnostic.
type RelatedSpan struct {
	Message string
	Span    text.Range
}

// WireVersion is the current version of the stable wire contract. Bump it
// only when Wire's shape changes in a way old consumers can't tolerate.
const WireVersion = 1

// Wire is the stable, versioned JSON shape external consumers pin against.
// Positions are pre-converted to line/column so consumers never need Nova's
// text package to interpret them.
type Wire struct {
	Version  int            `json:"version"`
	Code     string         `json:"code"`
	Severity string         `json:"severity"`
	Message  string         `json:"message"`
	Start    text.Position  `json:"start"`
	End      text.Position  `json:"end"`
	Related  []WireRelated  `json:"related,omitempty"`
}

// WireRelated is the wire form of RelatedSpan.
type WireRelated struct {
	Message string        `json:"message"`
	Start   text.Position `json:"start"`
	End     text.Position `json:"end"`
}

// ToWire converts d to its stable wire form using li to resolve byte offsets
// to line/column positions.
func ToWire(d Diagnostic, li *text.LineIndex) Wire {
	w := Wire{
		Version:  WireVersion,
		Code:     string(d.Code),
		Severity: d.Severity.String(),
		Message:  d.Message,
		Start:    li.Position(d.Span.Start),
		End:      li.Position(d.Span.End),
	}
	for _, r := range d.RelatedSpans {
		w.Related = append(w.Related, WireRelated{
			Message: r.Message,
			Start:   li.Position(r.Span.Start),
			End:     li.Position(r.Span.End),
		})
	}
	return w
}
