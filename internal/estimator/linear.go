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

// Linear is a least squares regressor with an optional L2 penalty on the
// coefficients. The intercept is not penalized.
type Linear struct {
	Label     string    `json:"label"`
	Alpha     float64   `json:"alpha"`
	Scaler    *Scaler   `json:"scaler"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// FitLinear fits ordinary least squares when alpha is zero and ridge
// regression otherwise.
func FitLinear(t *table.Table, label string, alpha float64) (*Linear, error) {
	if alpha < 0 || math.IsNaN(alpha) {
		return nil, fmt.Errorf("alpha must be a non-negative number, got %v", alpha)
	}
	s, x, y, err := trainingSet(t, label)
	if err != nil {
		return nil, err
	}
	n, p := x.Dims()
	yMean := stat.Mean(y, nil)

	// The penalty is applied by appending sqrt(alpha)*I below the design
	// matrix and zeros below the centered labels.
	rows := n
	if alpha > 0 {
		rows += p
	}
	a := mat.NewDense(rows, p, nil)
	a.Slice(0, n, 0, p).(*mat.Dense).Copy(x)
	b := mat.NewVecDense(rows, nil)
	for i, v := range y {
		b.SetVec(i, v-yMean)
	}
	if alpha > 0 {
		penalty := math.Sqrt(alpha)
		for j := 0; j < p; j++ {
			a.Set(n+j, j, penalty)
		}
	}

	var beta mat.VecDense
	if err := beta.SolveVec(a, b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("failed to solve least squares: %w", err)
		}
	}
	coef := make([]float64, p)
	for j := range coef {
		coef[j] = beta.AtVec(j)
		if math.IsNaN(coef[j]) || math.IsInf(coef[j], 0) {
			return nil, errors.New("design matrix is singular, use a positive alpha")
		}
	}
	return &Linear{Label: label, Alpha: alpha, Scaler: s, Coef: coef, Intercept: yMean}, nil
}

func (m *Linear) Name() string {
	if m.Alpha > 0 {
		return "ridge"
	}
	return "linear"
}

func (m *Linear) Features() []string { return slices.Clone(m.Scaler.Columns) }

func (m *Linear) Predict(t *table.Table) ([]float64, error) {
	if t.Len() == 0 {
		return []float64{}, nil
	}
	x, err := m.Scaler.Transform(t)
	if err != nil {
		return nil, err
	}
	var out mat.VecDense
	out.MulVec(x, mat.NewVecDense(len(m.Coef), slices.Clone(m.Coef)))
	preds := make([]float64, t.Len())
	for i := range preds {
		preds[i] = out.AtVec(i) + m.Intercept
	}
	return preds, nil
}
