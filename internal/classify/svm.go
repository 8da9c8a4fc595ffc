package classify

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// linearSVM is a linear-margin binary classifier. The decision value
// is the signed distance proxy w·x + b; its sign picks the class and
// its magnitude feeds the confidence heuristic.
type linearSVM struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

const (
	svmLambda = 1e-4
	svmEpochs = 40
)

// trainSVM fits the classifier with a pegasos-style subgradient loop
// on the hinge loss. ys holds class labels 0/1; classWeight corrects
// class imbalance (inverse-frequency weights). The loop is fully
// deterministic for a given seed.
func trainSVM(xs []sparseVec, ys []int, dim int, classWeight map[int]float64, seed int64) *linearSVM {
	w := make([]float64, dim)
	var b float64

	rng := rand.New(rand.NewSource(seed))
	n := len(xs)
	t := 0

	for epoch := 0; epoch < svmEpochs; epoch++ {
		for _, i := range rng.Perm(n) {
			t++
			eta := 1 / (svmLambda * float64(t))
			y := float64(2*ys[i] - 1) // 0/1 -> -1/+1

			margin := y * (dotSparse(w, xs[i]) + b)

			// Weight decay from the L2 regularizer.
			floats.Scale(1-eta*svmLambda, w)

			if margin < 1 {
				step := eta * classWeight[ys[i]] * y
				for k, j := range xs[i].idx {
					w[j] += step * xs[i].val[k]
				}
				b += step
			}
		}
	}

	return &linearSVM{Weights: w, Bias: b}
}

// decision returns the signed margin for one sample.
func (m *linearSVM) decision(x sparseVec) float64 {
	return dotSparse(m.Weights, x) + m.Bias
}

func dotSparse(w []float64, x sparseVec) float64 {
	var sum float64
	for k, j := range x.idx {
		sum += w[j] * x.val[k]
	}
	return sum
}

// balancedClassWeights computes inverse-frequency weights:
// n_samples / (n_classes * count(class)).
func balancedClassWeights(ys []int) map[int]float64 {
	counts := map[int]int{}
	for _, y := range ys {
		counts[y]++
	}
	w := make(map[int]float64, len(counts))
	for c, cnt := range counts {
		w[c] = float64(len(ys)) / (float64(len(counts)) * float64(cnt))
	}
	return w
}
