package series

import (
	"fmt"

	"eventclass/internal/model"
)

// Mode selects the propagation behavior.
type Mode int

const (
	// ModeStrict fills gaps only when a series carries exactly one
	// distinct label value; conflicting series are skipped and
	// reported. This is the default.
	ModeStrict Mode = iota

	// ModeMajority fills gaps with the most common label even when a
	// series carries both values, first-seen value winning ties. It is
	// a lossy variant kept as an explicit alternate; conflicts are
	// still reported even though they get filled.
	ModeMajority
)

func (m Mode) String() string {
	switch m {
	case ModeMajority:
		return "majority"
	default:
		return "strict"
	}
}

// ParseMode maps a CLI/config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "strict":
		return ModeStrict, nil
	case "majority":
		return ModeMajority, nil
	default:
		return ModeStrict, fmt.Errorf("series: unknown propagation mode %q (want strict or majority)", s)
	}
}

// Entry is one event's view for propagation: its series key and its
// current effective label.
type Entry struct {
	Key   string
	Label model.Label
}

// Conflict describes a series whose members disagree on the label.
type Conflict struct {
	Key     string
	Labels  []model.Label // distinct present values, first-seen order
	Members int           // total events in the series
}

// Result carries the propagated labels plus diagnostics. Labels is
// parallel to the input; Filled marks the slots this run filled.
type Result struct {
	Labels    []model.Label
	Filled    []bool
	Conflicts []Conflict
}

// FilledCount returns the number of gaps this run filled.
func (r Result) FilledCount() int {
	n := 0
	for _, f := range r.Filled {
		if f {
			n++
		}
	}
	return n
}

// Propagate fills absent labels within each series according to the
// mode. It never overwrites a present label, only fills gaps, so
// running it twice changes nothing the second time. Entries with an
// empty series key are left untouched. Conflicts are reported in
// first-appearance order of the series key.
func Propagate(entries []Entry, mode Mode) Result {
	res := Result{
		Labels: make([]model.Label, len(entries)),
		Filled: make([]bool, len(entries)),
	}
	for i, e := range entries {
		res.Labels[i] = e.Label
	}

	// Group row indices by series key, preserving first-appearance
	// order so diagnostics and fills are deterministic.
	groups := make(map[string][]int)
	var order []string
	for i, e := range entries {
		if e.Key == "" {
			continue
		}
		if _, seen := groups[e.Key]; !seen {
			order = append(order, e.Key)
		}
		groups[e.Key] = append(groups[e.Key], i)
	}

	for _, key := range order {
		idxs := groups[key]

		// Distinct present values in first-seen order, with counts.
		var distinct []model.Label
		counts := make(map[model.Label]int)
		for _, i := range idxs {
			l := res.Labels[i]
			if !l.Present() {
				continue
			}
			if counts[l] == 0 {
				distinct = append(distinct, l)
			}
			counts[l]++
		}

		switch {
		case len(distinct) == 0:
			// Nothing to propagate from.
		case len(distinct) == 1:
			fill(&res, idxs, distinct[0])
		default:
			res.Conflicts = append(res.Conflicts, Conflict{
				Key:     key,
				Labels:  distinct,
				Members: len(idxs),
			})
			if mode == ModeMajority {
				// Modal value; first-seen wins ties because distinct
				// preserves encounter order and > is strict.
				best := distinct[0]
				for _, l := range distinct[1:] {
					if counts[l] > counts[best] {
						best = l
					}
				}
				fill(&res, idxs, best)
			}
		}
	}

	return res
}

// fill sets absent slots to v; present labels are never overwritten.
func fill(res *Result, idxs []int, v model.Label) {
	for _, i := range idxs {
		if res.Labels[i].Present() {
			continue
		}
		res.Labels[i] = v
		res.Filled[i] = true
	}
}
