// Package series derives recurring-series identities for events and
// propagates labels across the members of a series.
package series

import (
	"regexp"
	"strings"

	"eventclass/internal/dataset"
)

// KeyColumn is the table column series keys are stored in.
const KeyColumn = "series_id"

var (
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9 ]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	queryFragRe  = regexp.MustCompile(`[?#].*$`)
)

// normalizeText lower-cases, collapses internal whitespace to single
// spaces, trims, and strips everything outside [a-z0-9 ].
func normalizeText(s string) string {
	s = strings.ToLower(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return nonAlnumRe.ReplaceAllString(s, "")
}

// normalizeURL strips the query string and fragment and removes any
// trailing slash, so detail links that differ only in tracking
// parameters collapse to the same series.
func normalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	u = queryFragRe.ReplaceAllString(u, "")
	return strings.TrimRight(u, "/")
}

// Key derives the series key for one event, first applicable rule wins:
//
//  1. trimmed uid, if non-empty
//  2. normalized url, if non-empty
//  3. normalized title + "|" + normalized location
//
// The result is deterministic in its inputs. An empty key means no
// series could be determined; such events are never propagation
// sources or targets. Rule 3 is a heuristic: distinct events with
// equal normalized title and location collapse into one series.
func Key(uid, url, title, location string) string {
	if k := strings.TrimSpace(uid); k != "" {
		return k
	}
	if k := normalizeURL(url); k != "" {
		return k
	}
	t := normalizeText(title)
	l := normalizeText(location)
	if t == "" && l == "" {
		return ""
	}
	return t + "|" + l
}

// Annotate fills the series_id column of a table from the mapped uid,
// url, title and location columns. Rows that already carry a non-empty
// series_id keep it, so re-running a stage on its own output is a
// no-op.
func Annotate(t *dataset.Table, cols dataset.Columns) {
	t.EnsureColumns(cols.ID, cols.URL, cols.Title, cols.Loc, KeyColumn)
	for _, row := range t.Rows {
		if row.Get(KeyColumn) != "" {
			continue
		}
		row[KeyColumn] = Key(
			row.Get(cols.ID),
			row.Get(cols.URL),
			row.Get(cols.Title),
			row.Get(cols.Loc),
		)
	}
}
