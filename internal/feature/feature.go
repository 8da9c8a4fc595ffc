// Package feature converts event rows into the hybrid text + scalar
// representation the classifier consumes.
package feature

import (
	"regexp"
	"strings"
	"time"

	"eventclass/internal/dataset"
)

// Vector is the feature representation of one event. Text feeds the
// n-gram vectorizer; the remaining fields are structured scalars.
type Vector struct {
	Text string

	// Hour of day in [0,23], or -1 when the start time is absent or
	// unparseable (a sentinel, not an error).
	Hour int

	// DayOfWeek uses the Monday=0 ... Sunday=6 convention.
	DayOfWeek int

	// IsWeekend is 1 iff DayOfWeek is 5 or 6 (Saturday/Sunday), and 0
	// otherwise, including when the start time is unparseable.
	IsWeekend int

	// Venue booleans from whole-word matches against the location.
	// Independent of each other; an event can match several.
	VenueLibrary int
	VenuePark    int
	VenueChurch  int
	VenueMuseum  int
}

// ScalarNames lists the structured scalar features in the order
// Scalars emits them. DayOfWeek is intentionally not part of the model
// input; only its weekend derivation is.
func ScalarNames() []string {
	return []string{"hour", "is_weekend", "venue_library", "venue_park", "venue_church", "venue_museum"}
}

// Scalars returns the structured features in ScalarNames order.
func (v Vector) Scalars() []float64 {
	return []float64{
		float64(v.Hour),
		float64(v.IsWeekend),
		float64(v.VenueLibrary),
		float64(v.VenuePark),
		float64(v.VenueChurch),
		float64(v.VenueMuseum),
	}
}

var (
	libraryRe = regexp.MustCompile(`(?i)\blibrary\b`)
	parkRe    = regexp.MustCompile(`(?i)\bpark\b`)
	churchRe  = regexp.MustCompile(`(?i)\bchurch\b`)
	museumRe  = regexp.MustCompile(`(?i)\bmuseum\b|gallery`)
)

// startLayouts are the timestamp shapes the feed and hand-edited CSVs
// produce. Parsing tries them in order; date-only values get hour 0.
var startLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// parseStart parses a start cell, reporting ok=false when no layout
// matches.
func parseStart(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range startLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FromRow builds the feature vector for a single row. Missing cells
// read as empty strings; the caller is expected to have pre-filled the
// mapped columns (dataset.Table.EnsureColumns), so there is no
// missing-column failure mode here.
func FromRow(row dataset.Row, cols dataset.Columns) Vector {
	v := Vector{
		Text:      row.Get(cols.Title) + " " + row.Get(cols.Desc),
		Hour:      -1,
		DayOfWeek: -1,
	}

	if t, ok := parseStart(row.Get(cols.Start)); ok {
		v.Hour = t.Hour()
		// time.Weekday is Sunday=0; shift to Monday=0.
		v.DayOfWeek = (int(t.Weekday()) + 6) % 7
		if v.DayOfWeek >= 5 {
			v.IsWeekend = 1
		}
	}

	loc := row.Get(cols.Loc)
	if libraryRe.MatchString(loc) {
		v.VenueLibrary = 1
	}
	if parkRe.MatchString(loc) {
		v.VenuePark = 1
	}
	if churchRe.MatchString(loc) {
		v.VenueChurch = 1
	}
	if museumRe.MatchString(loc) {
		v.VenueMuseum = 1
	}

	return v
}

// Build converts every row of the table, order-preserving.
func Build(t *dataset.Table, cols dataset.Columns) []Vector {
	out := make([]Vector, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = FromRow(row, cols)
	}
	return out
}
