package classify

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	appLog "eventclass/internal/log"
)

// sparseVec is a sparse feature vector with strictly ascending indices.
type sparseVec struct {
	idx []int
	val []float64
}

// Vectorizer is a tf-idf bag of unigrams and bigrams: sublinear term
// frequency, smoothed idf, L2-normalized rows. Document-frequency
// pruning drops terms seen in fewer than MinDF documents or in more
// than MaxDFRatio of them.
type Vectorizer struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	MinDF      int            `json:"min_df"`
	MaxDFRatio float64        `json:"max_df_ratio"`
}

func newVectorizer() *Vectorizer {
	return &Vectorizer{MinDF: 2, MaxDFRatio: 0.9}
}

// Fit builds the vocabulary and idf weights from the training texts.
// Vocabulary indices are assigned in sorted term order, so fitting the
// same corpus twice yields identical vectorizers.
func (v *Vectorizer) Fit(texts []string) {
	df := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, g := range ngrams(tokenize(text)) {
			seen[g] = struct{}{}
		}
		for g := range seen {
			df[g]++
		}
	}

	n := len(texts)
	maxDF := v.MaxDFRatio * float64(n)

	terms := make([]string, 0, len(df))
	for g, c := range df {
		if c >= v.MinDF && float64(c) <= maxDF {
			terms = append(terms, g)
		}
	}
	if len(terms) == 0 {
		// A corpus too small for the pruning thresholds. Keep every
		// term instead of fitting an empty vocabulary.
		appLog.Warn("vectorizer: document-frequency pruning removed every term, keeping all",
			"documents", n, "terms", len(df))
		for g := range df {
			terms = append(terms, g)
		}
	}
	sort.Strings(terms)

	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, g := range terms {
		v.Vocabulary[g] = i
		v.IDF[i] = math.Log(float64(1+n)/float64(1+df[g])) + 1
	}
}

// Transform maps one text into its tf-idf vector.
func (v *Vectorizer) Transform(text string) sparseVec {
	counts := make(map[int]int)
	for _, g := range ngrams(tokenize(text)) {
		if i, ok := v.Vocabulary[g]; ok {
			counts[i]++
		}
	}
	if len(counts) == 0 {
		return sparseVec{}
	}

	sv := sparseVec{
		idx: make([]int, 0, len(counts)),
		val: make([]float64, 0, len(counts)),
	}
	for i := range counts {
		sv.idx = append(sv.idx, i)
	}
	sort.Ints(sv.idx)
	for _, i := range sv.idx {
		tf := 1 + math.Log(float64(counts[i]))
		sv.val = append(sv.val, tf*v.IDF[i])
	}

	if n := floats.Norm(sv.val, 2); n > 0 {
		floats.Scale(1/n, sv.val)
	}
	return sv
}

// Size is the dimensionality of the text part of the feature space.
func (v *Vectorizer) Size() int {
	return len(v.IDF)
}
