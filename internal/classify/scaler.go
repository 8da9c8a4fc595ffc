package classify

import "gonum.org/v1/gonum/stat"

// Scaler divides each structured scalar by its training-set standard
// deviation. No centering: the text block of the feature space is
// sparse and centering would densify it.
type Scaler struct {
	Scale []float64 `json:"scale"`
}

// Fit computes per-column population standard deviations. Constant
// columns get scale 1 so they pass through unchanged.
func (s *Scaler) Fit(rows [][]float64) {
	if len(rows) == 0 {
		return
	}
	dim := len(rows[0])
	s.Scale = make([]float64, dim)

	col := make([]float64, len(rows))
	for j := 0; j < dim; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		sd := stat.PopStdDev(col, nil)
		if sd == 0 {
			sd = 1
		}
		s.Scale[j] = sd
	}
}

// Transform scales one scalar row.
func (s *Scaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = v / s.Scale[j]
	}
	return out
}
