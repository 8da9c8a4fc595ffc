package model

import (
	"strings"
	"time"
)

// Event is the normalized representation of a single chamber calendar
// event as produced by the feed (internal/feed). Once ingested it is
// immutable except for the label/series annotations the pipeline adds.
type Event struct {
	UID string // iCalendar UID; may be empty on malformed feeds

	Title       string
	Description string
	Location    string
	URL         string
	Category    []string

	AllDay bool

	// Start / End as parsed from the source; End may be zero.
	Start time.Time
	End   time.Time

	// Provenance.
	Source     string // feed identifier (e.g. config source ID)
	SourcePage string // event detail page the ICS was discovered on
}

// Label is the tri-state community label of an event: community (1),
// not community (0), or absent.
type Label int8

const (
	LabelAbsent       Label = -1
	LabelNotCommunity Label = 0
	LabelCommunity    Label = 1
)

// Present reports whether the label carries a value (0 or 1).
func (l Label) Present() bool {
	return l == LabelNotCommunity || l == LabelCommunity
}

// String renders the label as it appears in a table cell: "0", "1", or
// the empty string for absent.
func (l Label) String() string {
	switch l {
	case LabelNotCommunity:
		return "0"
	case LabelCommunity:
		return "1"
	default:
		return ""
	}
}

// ParseLabel interprets a table cell as a Label. The upstream corpus
// passed through spreadsheet and float round-trips, so "0", "1", "0.0"
// and "1.0" (with surrounding whitespace) are all accepted; anything
// else is absent.
func ParseLabel(s string) Label {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".0")
	switch s {
	case "0":
		return LabelNotCommunity
	case "1":
		return LabelCommunity
	default:
		return LabelAbsent
	}
}

// LabelSource records where an event's effective label came from.
type LabelSource string

const (
	SourceManual      LabelSource = "manual"
	SourceModel       LabelSource = "model_prediction"
	SourcePropagation LabelSource = "series_propagation"
	// SourceWeak marks keyword-heuristic bootstrap labels. They are an
	// approximation used only to seed training data and are never
	// treated as manual.
	SourceWeak LabelSource = "weak_keyword"
)
