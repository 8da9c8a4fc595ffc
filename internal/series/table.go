package series

import (
	"eventclass/internal/dataset"
	appLog "eventclass/internal/log"
	"eventclass/internal/model"
)

// PropagateTable annotates series keys on the table, propagates the
// named label column within each series, and writes filled values back
// with label_source = series_propagation. Present labels and their
// sources are left untouched.
func PropagateTable(t *dataset.Table, cols dataset.Columns, labelCol string, mode Mode) Result {
	Annotate(t, cols)
	t.EnsureColumns(labelCol, dataset.ColLabelSource)

	entries := make([]Entry, len(t.Rows))
	for i, row := range t.Rows {
		entries[i] = Entry{
			Key:   row.Get(KeyColumn),
			Label: model.ParseLabel(row.Get(labelCol)),
		}
	}

	res := Propagate(entries, mode)

	for i, row := range t.Rows {
		if !res.Filled[i] {
			continue
		}
		row[labelCol] = res.Labels[i].String()
		row[dataset.ColLabelSource] = string(model.SourcePropagation)
	}

	for _, c := range res.Conflicts {
		appLog.Warn("series label conflict",
			"series_id", c.Key,
			"labels", c.Labels,
			"members", c.Members,
			"mode", mode.String(),
		)
	}

	return res
}

// CountLabeled returns how many rows of the column carry a 0/1 label.
func CountLabeled(t *dataset.Table, labelCol string) int {
	n := 0
	for _, row := range t.Rows {
		if model.ParseLabel(row.Get(labelCol)).Present() {
			n++
		}
	}
	return n
}
