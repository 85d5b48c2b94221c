package estimator

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/vk/perfgrid/internal/table"
)

// Importance is the mean RMSE increase caused by shuffling one feature.
type Importance struct {
	Feature string
	Score   float64
}

// PermutationImportance shuffles each feature of t in turn and measures how
// much the model's RMSE grows. Results are sorted by descending score, then
// by feature name. The same seed always yields the same shuffles.
func PermutationImportance(m Model, t *table.Table, label string, repeats int, seed uint64) ([]Importance, error) {
	if repeats < 1 {
		return nil, fmt.Errorf("repeats must be at least 1, got %d", repeats)
	}
	actual, err := t.Numeric(label)
	if err != nil {
		return nil, err
	}
	baseline, err := rmse(m, t, actual)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]Importance, 0, len(m.Features()))
	for _, f := range m.Features() {
		values, err := t.Numeric(f)
		if err != nil {
			return nil, err
		}
		shuffled := slices.Clone(values)
		total := 0.0
		for range repeats {
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
			permuted, err := t.With(table.NewNumeric(f, shuffled))
			if err != nil {
				return nil, err
			}
			score, err := rmse(m, permuted, actual)
			if err != nil {
				return nil, err
			}
			total += score - baseline
		}
		out = append(out, Importance{Feature: f, Score: total / float64(repeats)})
	}
	slices.SortFunc(out, func(a, b Importance) int {
		return cmp.Or(cmp.Compare(b.Score, a.Score), cmp.Compare(a.Feature, b.Feature))
	})
	return out, nil
}

func rmse(m Model, t *table.Table, actual []float64) (float64, error) {
	preds, err := m.Predict(t)
	if err != nil {
		return 0, err
	}
	scores, err := Evaluate(actual, preds)
	if err != nil {
		return 0, err
	}
	return scores.RMSE, nil
}
