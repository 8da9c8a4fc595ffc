package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventclass/internal/dataset"
	"eventclass/internal/model"
)

func TestPropagateStrictFillsAgreement(t *testing.T) {
	entries := []Entry{
		{Key: "s1", Label: model.LabelCommunity},
		{Key: "s1", Label: model.LabelAbsent},
		{Key: "s1", Label: model.LabelAbsent},
		{Key: "s2", Label: model.LabelAbsent},
	}

	res := Propagate(entries, ModeStrict)

	assert.Equal(t, model.LabelCommunity, res.Labels[1])
	assert.Equal(t, model.LabelCommunity, res.Labels[2])
	assert.Equal(t, model.LabelAbsent, res.Labels[3], "series with no labeled member stays empty")
	assert.Equal(t, 2, res.FilledCount())
	assert.Empty(t, res.Conflicts)
}

func TestPropagateStrictSkipsConflicts(t *testing.T) {
	entries := []Entry{
		{Key: "s1", Label: model.LabelCommunity},
		{Key: "s1", Label: model.LabelNotCommunity},
		{Key: "s1", Label: model.LabelAbsent},
	}

	res := Propagate(entries, ModeStrict)

	assert.Equal(t, model.LabelAbsent, res.Labels[2])
	assert.Equal(t, 0, res.FilledCount())
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "s1", res.Conflicts[0].Key)
	assert.Equal(t, []model.Label{model.LabelCommunity, model.LabelNotCommunity}, res.Conflicts[0].Labels)
	assert.Equal(t, 3, res.Conflicts[0].Members)
}

func TestPropagateMajorityFillsModal(t *testing.T) {
	entries := []Entry{
		{Key: "s1", Label: model.LabelCommunity},
		{Key: "s1", Label: model.LabelCommunity},
		{Key: "s1", Label: model.LabelNotCommunity},
		{Key: "s1", Label: model.LabelAbsent},
	}

	res := Propagate(entries, ModeMajority)

	assert.Equal(t, model.LabelCommunity, res.Labels[3])
	// The labeled minority member keeps its label.
	assert.Equal(t, model.LabelNotCommunity, res.Labels[2])
	assert.Equal(t, 1, res.FilledCount())
	assert.Len(t, res.Conflicts, 1, "majority mode still reports the disagreement")
}

func TestPropagateMajorityTieKeepsFirstSeen(t *testing.T) {
	entries := []Entry{
		{Key: "s1", Label: model.LabelNotCommunity},
		{Key: "s1", Label: model.LabelCommunity},
		{Key: "s1", Label: model.LabelAbsent},
	}

	res := Propagate(entries, ModeMajority)
	assert.Equal(t, model.LabelNotCommunity, res.Labels[2])
}

func TestPropagateNeverOverwrites(t *testing.T) {
	entries := []Entry{
		{Key: "s1", Label: model.LabelCommunity},
		{Key: "s1", Label: model.LabelNotCommunity},
	}

	res := Propagate(entries, ModeMajority)
	assert.Equal(t, model.LabelCommunity, res.Labels[0])
	assert.Equal(t, model.LabelNotCommunity, res.Labels[1])
	assert.Equal(t, 0, res.FilledCount())
}

func TestPropagateEmptyKeyUntouched(t *testing.T) {
	entries := []Entry{
		{Key: "", Label: model.LabelCommunity},
		{Key: "", Label: model.LabelAbsent},
	}

	res := Propagate(entries, ModeStrict)
	assert.Equal(t, model.LabelAbsent, res.Labels[1])
	assert.Equal(t, 0, res.FilledCount())
}

func TestPropagateIdempotent(t *testing.T) {
	entries := []Entry{
		{Key: "s1", Label: model.LabelCommunity},
		{Key: "s1", Label: model.LabelAbsent},
	}

	first := Propagate(entries, ModeStrict)
	require.Equal(t, 1, first.FilledCount())

	again := make([]Entry, len(entries))
	for i := range entries {
		again[i] = Entry{Key: entries[i].Key, Label: first.Labels[i]}
	}
	second := Propagate(again, ModeStrict)
	assert.Equal(t, 0, second.FilledCount())
	assert.Equal(t, first.Labels, second.Labels)
}

func TestPropagateTableSharedUID(t *testing.T) {
	cols := dataset.DefaultColumns()
	tbl := &dataset.Table{
		Columns: []string{cols.ID, cols.Title, cols.Label},
		Rows: []dataset.Row{
			{cols.ID: "E1", cols.Title: "Storytime", cols.Label: "1"},
			{cols.ID: "E1", cols.Title: "Storytime", cols.Label: "1"},
			{cols.ID: "E1", cols.Title: "Storytime"},
			{cols.ID: "E2", cols.Title: "Board Meeting"},
		},
	}

	res := PropagateTable(tbl, cols, cols.Label, ModeStrict)

	assert.Equal(t, 1, res.FilledCount())
	for i := 0; i < 3; i++ {
		assert.Equal(t, "1", tbl.Rows[i].Get(cols.Label))
	}
	assert.Equal(t, string(model.SourcePropagation), tbl.Rows[2].Get(dataset.ColLabelSource))
	assert.Equal(t, "", tbl.Rows[3].Get(cols.Label))
	// Pre-existing labels keep their provenance untouched.
	assert.Equal(t, "", tbl.Rows[0].Get(dataset.ColLabelSource))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeStrict, m)

	m, err = ParseMode("majority")
	require.NoError(t, err)
	assert.Equal(t, ModeMajority, m)

	_, err = ParseMode("vote")
	assert.Error(t, err)
}
