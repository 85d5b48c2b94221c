package estimator

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/vk/perfgrid/internal/table"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// KNN predicts the mean label of the k nearest training rows in the
// standardized feature space.
type KNN struct {
	Label   string
	K       int
	Scaler  *Scaler
	points  *mat.Dense
	targets []float64
}

// FitKNN memorizes the training rows. k is capped at the number of rows.
func FitKNN(t *table.Table, label string, k int) (*KNN, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", k)
	}
	s, x, y, err := trainingSet(t, label)
	if err != nil {
		return nil, err
	}
	return &KNN{Label: label, K: min(k, len(y)), Scaler: s, points: x, targets: y}, nil
}

func (m *KNN) Name() string { return "knn" }

func (m *KNN) Features() []string { return slices.Clone(m.Scaler.Columns) }

func (m *KNN) Predict(t *table.Table) ([]float64, error) {
	if t.Len() == 0 {
		return []float64{}, nil
	}
	x, err := m.Scaler.Transform(t)
	if err != nil {
		return nil, err
	}

	type neighbour struct {
		index int
		dist  float64
	}
	n, _ := m.points.Dims()
	near := make([]neighbour, n)
	nearest := make([]float64, m.K)
	preds := make([]float64, t.Len())
	for i := range preds {
		row := mat.Row(nil, i, x)
		for j := range near {
			near[j] = neighbour{index: j, dist: floats.Distance(row, m.points.RawRowView(j), 2)}
		}
		slices.SortFunc(near, func(a, b neighbour) int {
			return cmp.Or(cmp.Compare(a.dist, b.dist), cmp.Compare(a.index, b.index))
		})
		for j := range nearest {
			nearest[j] = m.targets[near[j].index]
		}
		preds[i] = stat.Mean(nearest, nil)
	}
	return preds, nil
}
