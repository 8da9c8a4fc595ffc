// Package labels combines manual and model-predicted labels and
// provides the keyword bootstrap heuristic.
package labels

import (
	"eventclass/internal/dataset"
	"eventclass/internal/model"
)

// Merge returns the effective label for an event: the manual label if
// present, else the predicted label, else absent. Pure and total.
func Merge(manual, predicted model.Label) model.Label {
	if manual.Present() {
		return manual
	}
	if predicted.Present() {
		return predicted
	}
	return model.LabelAbsent
}

// MergeWithSource also reports which provenance won. The source is
// empty when the result is absent.
func MergeWithSource(manual, predicted model.Label) (model.Label, model.LabelSource) {
	if manual.Present() {
		return manual, model.SourceManual
	}
	if predicted.Present() {
		return predicted, model.SourceModel
	}
	return model.LabelAbsent, ""
}

// MergeTable merges the manual label column with predicted_label on
// every row, writing the effective label back into the label column
// and recording label_source. An already-present label always wins and
// keeps whatever source it has (hand-edited CSVs arrive with no source
// record; those are recorded as manual). Returns the number of rows
// whose label came from the model. Idempotent: a second pass changes
// nothing.
func MergeTable(t *dataset.Table, cols dataset.Columns) int {
	t.EnsureColumns(cols.Label, dataset.ColPredictedLabel, dataset.ColLabelSource)

	fromModel := 0
	for _, row := range t.Rows {
		if model.ParseLabel(row.Get(cols.Label)).Present() {
			if row.Get(dataset.ColLabelSource) == "" {
				row[dataset.ColLabelSource] = string(model.SourceManual)
			}
			continue
		}
		predicted := model.ParseLabel(row.Get(dataset.ColPredictedLabel))
		if !predicted.Present() {
			continue
		}
		row[cols.Label] = predicted.String()
		row[dataset.ColLabelSource] = string(model.SourceModel)
		fromModel++
	}
	return fromModel
}
