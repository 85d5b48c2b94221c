package estimator

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Scores summarizes how well predictions match the actual labels.
type Scores struct {
	Accuracy float64
	MAE      float64
	RMSE     float64
}

// Evaluate compares actual and predicted values. Accuracy is the share of
// predictions that equal the actual value once rounded to the nearest
// integer, which is how exam scores are recorded.
func Evaluate(actual, predicted []float64) (Scores, error) {
	if len(actual) != len(predicted) {
		return Scores{}, fmt.Errorf("got %d actual values but %d predictions", len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return Scores{}, errors.New("no predictions to evaluate")
	}
	n := float64(len(actual))
	hits := 0
	for i := range actual {
		if math.Round(predicted[i]) == math.Round(actual[i]) {
			hits++
		}
	}
	return Scores{
		Accuracy: float64(hits) / n,
		MAE:      floats.Distance(actual, predicted, 1) / n,
		RMSE:     floats.Distance(actual, predicted, 2) / math.Sqrt(n),
	}, nil
}
