package data_processing

import (
	"fmt"
	"math"

	"github.com/vk/perfgrid/internal/table"
	"gonum.org/v1/gonum/stat"
)

// RequiredColumns are the columns whose missing values cannot be synthesized.
var RequiredColumns = []string{"Parental_Education_Level", "Teacher_Quality", "Distance_from_Home"}

// TargetColumn is the label the correlation summaries compare against.
const TargetColumn = "Exam_Score"

// Encodings maps each categorical column to its ordered levels. A value is
// encoded as its index in the list.
var Encodings = map[string][]string{
	"Parental_Involvement":       {"Low", "Medium", "High"},
	"Access_to_Resources":        {"Low", "Medium", "High"},
	"Extracurricular_Activities": {"No", "Yes"},
	"Motivation_Level":           {"Low", "Medium", "High"},
	"Internet_Access":            {"No", "Yes"},
	"Family_Income":              {"Low", "Medium", "High"},
	"School_Type":                {"Public", "Private"},
	"Peer_Influence":             {"Negative", "Neutral", "Positive"},
	"Learning_Disabilities":      {"No", "Yes"},
	"Gender":                     {"Female", "Male"},
}

// Encode replaces the known categorical columns with their ordinal codes.
func Encode(t *table.Table) *table.Table {
	return t.Encode(Encodings)
}

// PreprocessStudentPerformanceFactors drops the rows with a missing value in
// any of the required columns.
func PreprocessStudentPerformanceFactors(raw *table.Table) (*table.Table, error) {
	clean, err := raw.DropNull(RequiredColumns...)
	if err != nil {
		return nil, fmt.Errorf("failed to preprocess student performance factors: %w", err)
	}
	return clean, nil
}

// CorrelationMatrix returns the pairwise Pearson correlation of every numeric
// column. Each pair uses the rows where both values are present. The first
// column names the feature of each row.
func CorrelationMatrix(t *table.Table) (*table.Table, error) {
	names := t.NumericColumns()
	if len(names) == 0 {
		return nil, fmt.Errorf("table has no numeric columns")
	}
	values := make([][]float64, len(names))
	for i, name := range names {
		values[i], _ = t.Numeric(name)
	}

	cols := []*table.Column{table.NewCategorical("Feature", names)}
	for j, name := range names {
		corr := make([]float64, len(names))
		for i := range names {
			corr[i] = pearson(values[i], values[j])
		}
		cols = append(cols, table.NewNumeric(name, corr))
	}
	return table.New(cols...)
}

// CorrelationMatrixEncoded is CorrelationMatrix over the encoded table, so the
// ordinal categorical columns take part too.
func CorrelationMatrixEncoded(t *table.Table) (*table.Table, error) {
	return CorrelationMatrix(Encode(t))
}

// ExamCorrelation returns a node function that summarizes how feature relates
// to the exam score: Pearson correlation plus the least squares line.
func ExamCorrelation(feature string) func(*table.Table) (*table.Table, error) {
	return func(t *table.Table) (*table.Table, error) {
		x, err := t.Numeric(feature)
		if err != nil {
			return nil, err
		}
		y, err := t.Numeric(TargetColumn)
		if err != nil {
			return nil, err
		}
		xs, ys := complete(x, y)
		if len(xs) < 2 {
			return nil, fmt.Errorf("need at least two complete rows of %q and %q, got %d", feature, TargetColumn, len(xs))
		}
		intercept, slope := stat.LinearRegression(xs, ys, nil, false)
		return table.New(
			table.NewCategorical("Feature", []string{feature}),
			table.NewCategorical("Target", []string{TargetColumn}),
			table.NewNumeric("Rows", []float64{float64(len(xs))}),
			table.NewNumeric("Pearson", []float64{stat.Correlation(xs, ys, nil)}),
			table.NewNumeric("Slope", []float64{slope}),
			table.NewNumeric("Intercept", []float64{intercept}),
		)
	}
}

func pearson(x, y []float64) float64 {
	xs, ys := complete(x, y)
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// complete keeps the positions where neither value is missing.
func complete(x, y []float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}
