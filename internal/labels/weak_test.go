package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eventclass/internal/dataset"
	"eventclass/internal/model"
)

func TestWeak(t *testing.T) {
	cases := []struct {
		name        string
		title, desc string
		want        model.Label
	}{
		{"community keyword in title", "Spring Festival", "", model.LabelCommunity},
		{"community keyword in description", "Saturday Event", "Live concert in the park", model.LabelCommunity},
		{"business keyword", "Ribbon Cutting at Acme Realty", "", model.LabelNotCommunity},
		{"business wins over community", "Networking at the Library", "", model.LabelNotCommunity},
		{"leads group variants", "Leads Group Breakfast", "", model.LabelNotCommunity},
		{"no keywords", "Quarterly Report", "Numbers and nothing else", model.LabelAbsent},
		{"case insensitive", "FARMERS MARKET", "", model.LabelCommunity},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Weak(c.title, c.desc))
		})
	}
}

func TestWeakTable(t *testing.T) {
	cols := dataset.DefaultColumns()
	tbl := &dataset.Table{
		Columns: []string{cols.Title, cols.Desc},
		Rows: []dataset.Row{
			{cols.Title: "Food Truck Friday"},
			{cols.Title: "Board Meeting"},
			{cols.Title: "Untitled"},
		},
	}

	matched := WeakTable(tbl, cols)

	assert.Equal(t, 2, matched)
	assert.Equal(t, "1", tbl.Rows[0].Get(dataset.ColWeakLabel))
	assert.Equal(t, "0", tbl.Rows[1].Get(dataset.ColWeakLabel))
	assert.Equal(t, "", tbl.Rows[2].Get(dataset.ColWeakLabel))
}
