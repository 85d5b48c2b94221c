package data_science_pred

import (
	"fmt"

	"github.com/vk/perfgrid/internal/estimator"
	"github.com/vk/perfgrid/internal/table"
	"github.com/vk/perfgrid/modules/data_processing"
)

// Columns added to the test data by GeneratePredictions.
const (
	PredictionColumn = "Pred_Score"
	ActualColumn     = "Actual_Score"
)

// PredictInput holds the keyword inputs of GeneratePredictions.
type PredictInput struct {
	Predictor   estimator.Model `pipe:"predictor"`
	TestData    *table.Table    `pipe:"test_data"`
	LabelColumn string          `pipe:"label_column"`
}

// GeneratePredictions predicts the label of every test row. The result is the
// test data plus the prediction and the actual label.
func GeneratePredictions(in PredictInput) (*table.Table, error) {
	if in.Predictor == nil || in.TestData == nil {
		return nil, fmt.Errorf("predictor and test data are required")
	}
	actual, err := in.TestData.Numeric(in.LabelColumn)
	if err != nil {
		return nil, fmt.Errorf("the specified label column '%s' is not in the test data: %w", in.LabelColumn, err)
	}

	features := data_processing.Encode(in.TestData.Drop(in.LabelColumn))
	preds, err := in.Predictor.Predict(features)
	if err != nil {
		return nil, fmt.Errorf("%s model failed to predict: %w", in.Predictor.Name(), err)
	}

	results, err := in.TestData.With(table.NewNumeric(PredictionColumn, preds))
	if err != nil {
		return nil, err
	}
	return results.With(table.NewNumeric(ActualColumn, actual))
}
