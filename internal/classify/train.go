package classify

import (
	"math/rand"
	"time"

	"eventclass/internal/dataset"
	"eventclass/internal/feature"
	appLog "eventclass/internal/log"
	"eventclass/internal/model"
	"eventclass/internal/series"
)

// Options controls training.
type Options struct {
	Columns dataset.Columns

	// MinLabeledRows is the smallest labeled corpus Train accepts.
	// Below it Train fails with InsufficientDataError. Default 5.
	MinLabeledRows int

	// PropagateSeriesLabels runs strict series propagation on the
	// label column before selecting the labeled subset.
	PropagateSeriesLabels bool

	// CollapseSeries keeps a single representative row per series for
	// training, the one with the longest description.
	CollapseSeries bool

	// Seed drives the train/validation split and the optimizer.
	// Training is deterministic for a fixed seed. Default 42.
	Seed int64
}

const (
	defaultMinLabeledRows = 5
	defaultSeed           = 42
	validationFraction    = 0.2
	minSeriesForSplit     = 3
)

// ClassReport carries per-class held-out metrics.
type ClassReport struct {
	Class     string  `json:"class"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// TrainMetrics summarizes a training run.
type TrainMetrics struct {
	LabeledRows int `json:"labeled_rows"`
	Positives   int `json:"positives"`
	Negatives   int `json:"negatives"`

	// HeldOut reports whether a validation fold existed. When false
	// the model was fitted on all labeled rows and Confusion/Report
	// are empty.
	HeldOut   bool          `json:"held_out"`
	Confusion [2][2]int     `json:"confusion"` // [true][predicted]
	Report    []ClassReport `json:"report,omitempty"`
}

// Train fits a classifier on the labeled subset of the table and
// returns the artifact bound to opts.Columns.
//
// When the labeled subset spans at least three distinct series and
// both classes, an 80/20 group-aware split by series key holds out
// whole series for validation, so near-duplicate recurrences cannot
// leak across the split. Otherwise the model is fitted on everything
// and the metrics say so.
func Train(t *dataset.Table, opts Options) (*Artifact, error) {
	if opts.MinLabeledRows <= 0 {
		opts.MinLabeledRows = defaultMinLabeledRows
	}
	if opts.Seed == 0 {
		opts.Seed = defaultSeed
	}
	cols := opts.Columns
	cols.Normalize()

	t.EnsureColumns(cols.Title, cols.Desc, cols.Start, cols.Loc, cols.Label)
	series.Annotate(t, cols)

	if opts.PropagateSeriesLabels {
		res := series.PropagateTable(t, cols, cols.Label, series.ModeStrict)
		appLog.Info("pre-train propagation", "filled", res.FilledCount(), "conflicts", len(res.Conflicts))
	}

	// Labeled subset, in table order.
	var idxs []int
	for i, row := range t.Rows {
		if model.ParseLabel(row.Get(cols.Label)).Present() {
			idxs = append(idxs, i)
		}
	}
	if len(idxs) < opts.MinLabeledRows {
		return nil, &InsufficientDataError{Labeled: len(idxs), Min: opts.MinLabeledRows}
	}

	if opts.CollapseSeries {
		idxs = collapseSeries(t, cols, idxs)
		if len(idxs) < opts.MinLabeledRows {
			return nil, &InsufficientDataError{Labeled: len(idxs), Min: opts.MinLabeledRows}
		}
	}

	vectors := make([]feature.Vector, len(idxs))
	ys := make([]int, len(idxs))
	groups := make([]string, len(idxs))
	for k, i := range idxs {
		vectors[k] = feature.FromRow(t.Rows[i], cols)
		ys[k] = int(model.ParseLabel(t.Rows[i].Get(cols.Label)))
		groups[k] = t.Rows[i].Get(series.KeyColumn)
	}

	metrics := &TrainMetrics{LabeledRows: len(idxs)}
	for _, y := range ys {
		if y == 1 {
			metrics.Positives++
		} else {
			metrics.Negatives++
		}
	}

	trainIdx, testIdx := groupSplit(groups, ys, opts.Seed)
	metrics.HeldOut = len(testIdx) > 0

	fitIdx := trainIdx
	if !metrics.HeldOut {
		fitIdx = allIndices(len(idxs))
		appLog.Info("training on all labeled rows (not enough series/classes for a held-out split)",
			"labeled", len(idxs))
	}

	a := &Artifact{
		Version:    artifactVersion,
		CreatedAt:  time.Now().UTC(),
		Columns:    cols,
		SchemaHash: SchemaFingerprint(cols),
		Vectorizer: newVectorizer(),
		Scaler:     &Scaler{},
		Metrics:    metrics,
	}

	// Fit the feature transforms on the training fold only, exactly as
	// they will be applied at predict time.
	texts := make([]string, len(fitIdx))
	scalars := make([][]float64, len(fitIdx))
	fitYs := make([]int, len(fitIdx))
	for k, i := range fitIdx {
		texts[k] = vectors[i].Text
		scalars[k] = vectors[i].Scalars()
		fitYs[k] = ys[i]
	}
	a.Vectorizer.Fit(texts)
	a.Scaler.Fit(scalars)

	xs := make([]sparseVec, len(fitIdx))
	for k, i := range fitIdx {
		xs[k] = a.encode(vectors[i])
	}
	a.SVM = trainSVM(xs, fitYs, a.dim(), balancedClassWeights(fitYs), opts.Seed)

	if metrics.HeldOut {
		evaluate(a, vectors, ys, testIdx, metrics)
	}

	return a, nil
}

// collapseSeries reduces the labeled subset to one row per series, the
// row with the longest description (first wins ties). Rows without a
// series key all survive.
func collapseSeries(t *dataset.Table, cols dataset.Columns, idxs []int) []int {
	best := make(map[string]int)
	var out []int
	for _, i := range idxs {
		key := t.Rows[i].Get(series.KeyColumn)
		if key == "" {
			out = append(out, i)
			continue
		}
		j, seen := best[key]
		if !seen || len(t.Rows[i].Get(cols.Desc)) > len(t.Rows[j].Get(cols.Desc)) {
			best[key] = i
		}
	}
	for _, i := range idxs {
		if j, ok := best[t.Rows[i].Get(series.KeyColumn)]; ok && j == i {
			out = append(out, i)
		}
	}
	return out
}

// groupSplit holds out whole series for validation. Returns empty
// testIdx when the corpus cannot support a split: fewer than three
// distinct series, a single class, or a split that would leave the
// training fold without both classes.
func groupSplit(groups []string, ys []int, seed int64) (trainIdx, testIdx []int) {
	distinct := make(map[string][]int)
	var order []string
	for i, g := range groups {
		if _, ok := distinct[g]; !ok {
			order = append(order, g)
		}
		distinct[g] = append(distinct[g], i)
	}
	if len(order) < minSeriesForSplit || !bothClasses(ys, allIndices(len(ys))) {
		return nil, nil
	}

	rng := rand.New(rand.NewSource(seed))
	shuffled := make([]string, len(order))
	copy(shuffled, order)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	target := int(validationFraction*float64(len(ys)) + 0.5)
	if target < 1 {
		target = 1
	}

	test := make(map[string]bool)
	count := 0
	for _, g := range shuffled {
		if count >= target {
			break
		}
		test[g] = true
		count += len(distinct[g])
	}

	for i, g := range groups {
		if test[g] {
			testIdx = append(testIdx, i)
		} else {
			trainIdx = append(trainIdx, i)
		}
	}
	if len(trainIdx) == 0 || !bothClasses(ys, trainIdx) {
		return nil, nil
	}
	return trainIdx, testIdx
}

func bothClasses(ys []int, idxs []int) bool {
	seen := map[int]bool{}
	for _, i := range idxs {
		seen[ys[i]] = true
	}
	return seen[0] && seen[1]
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// evaluate fills the confusion matrix and per-class report from the
// held-out fold.
func evaluate(a *Artifact, vectors []feature.Vector, ys []int, testIdx []int, m *TrainMetrics) {
	for _, i := range testIdx {
		pred := 0
		if a.SVM.decision(a.encode(vectors[i])) > 0 {
			pred = 1
		}
		m.Confusion[ys[i]][pred]++
	}

	names := [2]string{"not_community", "community"}
	for c := 0; c < 2; c++ {
		tp := float64(m.Confusion[c][c])
		fp := float64(m.Confusion[1-c][c])
		fn := float64(m.Confusion[c][1-c])
		support := m.Confusion[c][0] + m.Confusion[c][1]

		var precision, recall, f1 float64
		if tp+fp > 0 {
			precision = tp / (tp + fp)
		}
		if tp+fn > 0 {
			recall = tp / (tp + fn)
		}
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		m.Report = append(m.Report, ClassReport{
			Class:     names[c],
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   support,
		})
	}
}
