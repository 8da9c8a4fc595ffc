package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eventclass/internal/dataset"
	"eventclass/internal/model"
)

func TestMerge(t *testing.T) {
	cases := []struct {
		name              string
		manual, predicted model.Label
		want              model.Label
		wantSource        model.LabelSource
	}{
		{"manual wins", model.LabelCommunity, model.LabelNotCommunity, model.LabelCommunity, model.SourceManual},
		{"manual zero still wins", model.LabelNotCommunity, model.LabelCommunity, model.LabelNotCommunity, model.SourceManual},
		{"predicted fills gap", model.LabelAbsent, model.LabelCommunity, model.LabelCommunity, model.SourceModel},
		{"both absent", model.LabelAbsent, model.LabelAbsent, model.LabelAbsent, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Merge(c.manual, c.predicted))
			got, src := MergeWithSource(c.manual, c.predicted)
			assert.Equal(t, c.want, got)
			assert.Equal(t, c.wantSource, src)
		})
	}
}

func TestMergeTable(t *testing.T) {
	cols := dataset.DefaultColumns()
	tbl := &dataset.Table{
		Columns: []string{cols.ID, cols.Label, dataset.ColPredictedLabel},
		Rows: []dataset.Row{
			{cols.ID: "a", cols.Label: "1", dataset.ColPredictedLabel: "0"},
			{cols.ID: "b", dataset.ColPredictedLabel: "1"},
			{cols.ID: "c"},
			{cols.ID: "d", cols.Label: "0.0", dataset.ColPredictedLabel: "1"},
		},
	}

	fromModel := MergeTable(tbl, cols)

	assert.Equal(t, 1, fromModel)
	assert.Equal(t, "1", tbl.Rows[0].Get(cols.Label))
	assert.Equal(t, string(model.SourceManual), tbl.Rows[0].Get(dataset.ColLabelSource))
	assert.Equal(t, "1", tbl.Rows[1].Get(cols.Label))
	assert.Equal(t, string(model.SourceModel), tbl.Rows[1].Get(dataset.ColLabelSource))
	assert.Equal(t, "", tbl.Rows[2].Get(cols.Label))
	assert.Equal(t, "", tbl.Rows[2].Get(dataset.ColLabelSource))
	// Float-ish manual labels are still manual labels.
	assert.Equal(t, string(model.SourceManual), tbl.Rows[3].Get(dataset.ColLabelSource))

	// A second pass changes nothing.
	assert.Equal(t, 0, MergeTable(tbl, cols))
}

func TestMergeTableDoesNotRestampPropagated(t *testing.T) {
	cols := dataset.DefaultColumns()
	tbl := &dataset.Table{
		Columns: []string{cols.ID, cols.Label, dataset.ColLabelSource},
		Rows: []dataset.Row{
			{cols.ID: "a", cols.Label: "1", dataset.ColLabelSource: string(model.SourcePropagation)},
		},
	}

	MergeTable(tbl, cols)
	assert.Equal(t, string(model.SourcePropagation), tbl.Rows[0].Get(dataset.ColLabelSource))
}
