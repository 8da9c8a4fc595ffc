package classify

import (
	"math"
	"strconv"

	"eventclass/internal/dataset"
	"eventclass/internal/feature"
	"eventclass/internal/model"
)

// Prediction is the classifier output for one event.
type Prediction struct {
	Label  model.Label
	Margin float64

	// Confidence is 1/(1+|margin|): a heuristic in (0,1] that is
	// monotone non-increasing in the distance to the decision
	// boundary. It is a margin proxy, not a calibrated probability.
	Confidence float64

	NeedsReview bool
}

// Predict classifies every row using the artifact's bound column
// mapping, order-preserving. Rows whose confidence falls below the
// threshold are flagged NeedsReview.
func (a *Artifact) Predict(t *dataset.Table, threshold float64) []Prediction {
	t.EnsureColumns(a.Columns.Title, a.Columns.Desc, a.Columns.Start, a.Columns.Loc)

	vectors := feature.Build(t, a.Columns)
	out := make([]Prediction, len(vectors))
	for i, v := range vectors {
		margin := a.SVM.decision(a.encode(v))
		p := Prediction{
			Label:      model.LabelNotCommunity,
			Margin:     margin,
			Confidence: 1 / (1 + math.Abs(margin)),
		}
		if margin > 0 {
			p.Label = model.LabelCommunity
		}
		p.NeedsReview = p.Confidence < threshold
		out[i] = p
	}
	return out
}

// PredictWith validates an explicit column mapping against the bound
// one before predicting. A mismatch is a ConfigurationMismatchError,
// never coerced: the caller either uses the bound mapping (Predict) or
// supplies the identical one.
func (a *Artifact) PredictWith(t *dataset.Table, cols dataset.Columns, threshold float64) ([]Prediction, error) {
	cols.Normalize()
	if got := SchemaFingerprint(cols); got != a.SchemaHash {
		return nil, &ConfigurationMismatchError{Bound: a.SchemaHash, Got: got}
	}
	return a.Predict(t, threshold), nil
}

// Apply writes predictions into the table: predicted_label,
// svm_margin, confidence, needs_review.
func Apply(t *dataset.Table, preds []Prediction) {
	t.EnsureColumns(dataset.ColPredictedLabel, dataset.ColMargin, dataset.ColConfidence, dataset.ColNeedsReview)
	for i, p := range preds {
		row := t.Rows[i]
		row[dataset.ColPredictedLabel] = p.Label.String()
		row[dataset.ColMargin] = strconv.FormatFloat(p.Margin, 'f', 6, 64)
		row[dataset.ColConfidence] = strconv.FormatFloat(p.Confidence, 'f', 6, 64)
		row[dataset.ColNeedsReview] = strconv.FormatBool(p.NeedsReview)
	}
}
