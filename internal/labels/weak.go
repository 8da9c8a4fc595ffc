package labels

import (
	"regexp"
	"strings"

	"eventclass/internal/dataset"
	"eventclass/internal/model"
)

// Keyword sets for bootstrap labeling. These are weak heuristics for
// seeding an initial training corpus, not trained or calibrated in any
// way; their output goes into the weak_label column and is never mixed
// into the manual label column.
var (
	communityRe = regexp.MustCompile(`(?i)(festival|parade|market|farmers|community|workshop|class|volunteer|fundraiser|family|youth|meetup|open house|concert|library|park|veterans|food truck|gallery|art\b|craft\b)`)
	businessRe  = regexp.MustCompile(`(?i)(ribbon cutting|board meeting|committee|webinar|sponsor|chamber members|leads? group|business after hours|b2b|networking)`)
)

// Weak assigns a keyword-heuristic label from the concatenated title
// and description: community keywords suggest 1, chamber-business
// keywords suggest 0 and win when both match, no match means absent.
func Weak(title, description string) model.Label {
	text := strings.ToLower(title + " " + description)
	l := model.LabelAbsent
	if communityRe.MatchString(text) {
		l = model.LabelCommunity
	}
	if businessRe.MatchString(text) {
		l = model.LabelNotCommunity
	}
	return l
}

// WeakTable fills the weak_label column for every row and returns how
// many rows matched either keyword set. Existing weak_label cells are
// recomputed; the column is pure heuristic output.
func WeakTable(t *dataset.Table, cols dataset.Columns) int {
	t.EnsureColumns(cols.Title, cols.Desc, dataset.ColWeakLabel)
	matched := 0
	for _, row := range t.Rows {
		l := Weak(row.Get(cols.Title), row.Get(cols.Desc))
		row[dataset.ColWeakLabel] = l.String()
		if l.Present() {
			matched++
		}
	}
	return matched
}
