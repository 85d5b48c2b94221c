package estimator

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/vk/perfgrid/internal/table"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrNoFeatures is returned when a training table has no usable feature column.
var ErrNoFeatures = errors.New("no usable feature columns")

// Model is a fitted regressor.
type Model interface {
	// Name identifies the model in reports.
	Name() string
	// Features lists the columns the model reads, in training order.
	Features() []string
	// Predict returns one prediction per row of t.
	Predict(t *table.Table) ([]float64, error)
}

// FeatureColumns returns the numeric columns of t other than label.
func FeatureColumns(t *table.Table, label string) []string {
	var features []string
	for _, name := range t.NumericColumns() {
		if name != label {
			features = append(features, name)
		}
	}
	return features
}

// Scaler standardizes feature columns with statistics from the training rows.
type Scaler struct {
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
}

// fitScaler keeps only the features that vary across the training rows.
func fitScaler(t *table.Table, features []string) (*Scaler, error) {
	s := &Scaler{}
	for _, f := range features {
		col, err := t.Numeric(f)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", f, err)
		}
		present := presentValues(col)
		if len(present) < 2 {
			continue
		}
		mean, std := stat.MeanStdDev(present, nil)
		if std == 0 || math.IsNaN(std) {
			continue
		}
		s.Columns = append(s.Columns, f)
		s.Mean = append(s.Mean, mean)
		s.Scale = append(s.Scale, std)
	}
	if len(s.Columns) == 0 {
		return nil, ErrNoFeatures
	}
	return s, nil
}

// Transform returns the standardized design matrix for t. Missing values map
// to zero, the training mean after scaling.
func (s *Scaler) Transform(t *table.Table) (*mat.Dense, error) {
	if t.Len() == 0 {
		return nil, errors.New("table has no rows")
	}
	x := mat.NewDense(t.Len(), len(s.Columns), nil)
	for j, f := range s.Columns {
		col, err := t.Numeric(f)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", f, err)
		}
		for i, v := range col {
			if math.IsNaN(v) {
				continue
			}
			x.Set(i, j, (v-s.Mean[j])/s.Scale[j])
		}
	}
	return x, nil
}

// trainingSet drops the rows without a label and returns the scaler, the
// design matrix and the label vector.
func trainingSet(t *table.Table, label string) (*Scaler, *mat.Dense, []float64, error) {
	if !t.Has(label) {
		return nil, nil, nil, fmt.Errorf("label column %q not found", label)
	}
	labelled, err := t.DropNull(label)
	if err != nil {
		return nil, nil, nil, err
	}
	if labelled.Len() == 0 {
		return nil, nil, nil, fmt.Errorf("label column %q has no values", label)
	}
	y, err := labelled.Numeric(label)
	if err != nil {
		return nil, nil, nil, err
	}
	s, err := fitScaler(labelled, FeatureColumns(labelled, label))
	if err != nil {
		return nil, nil, nil, err
	}
	x, err := s.Transform(labelled)
	if err != nil {
		return nil, nil, nil, err
	}
	return s, x, slices.Clone(y), nil
}

func presentValues(col []float64) []float64 {
	out := make([]float64, 0, len(col))
	for _, v := range col {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
