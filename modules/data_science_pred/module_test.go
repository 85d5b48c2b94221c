package data_science_pred

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/perfgrid/internal/catalog"
	"github.com/vk/perfgrid/internal/estimator"
	"github.com/vk/perfgrid/internal/runner"
	"github.com/vk/perfgrid/internal/testutil"
	"github.com/vk/perfgrid/modules/data_processing"
)

func fitLinear(t *testing.T) estimator.Model {
	t.Helper()
	model, err := estimator.FitLinear(data_processing.Encode(testutil.Students(30)), "Exam_Score", 0)
	require.NoError(t, err)
	return model
}

func TestGeneratePredictions(t *testing.T) {
	// --- Arrange ---
	test := testutil.Students(6)

	// --- Act ---
	results, err := GeneratePredictions(PredictInput{Predictor: fitLinear(t), TestData: test, LabelColumn: "Exam_Score"})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 6, results.Len())
	assert.Equal(t, append(test.Columns(), PredictionColumn, ActualColumn), results.Columns())
	actual, _ := results.Numeric(ActualColumn)
	score, _ := test.Numeric("Exam_Score")
	assert.Equal(t, score, actual)
	preds, _ := results.Numeric(PredictionColumn)
	assert.InDeltaSlice(t, score, preds, 2, "linear data is predicted closely")
}

func TestGeneratePredictions_Errors(t *testing.T) {
	_, err := GeneratePredictions(PredictInput{Predictor: fitLinear(t), TestData: testutil.Students(3), LabelColumn: "Grade"})
	assert.ErrorContains(t, err, "the specified label column 'Grade' is not in the test data")

	_, err = GeneratePredictions(PredictInput{TestData: testutil.Students(3), LabelColumn: "Exam_Score"})
	assert.ErrorContains(t, err, "predictor and test data are required")

	_, err = GeneratePredictions(PredictInput{Predictor: fitLinear(t), TestData: testutil.Students(3).Drop("Attendance"), LabelColumn: "Exam_Score"})
	assert.ErrorContains(t, err, "linear model failed to predict")
}

func TestPipeline(t *testing.T) {
	// --- Arrange ---
	p := Pipeline()
	model := fitLinear(t)
	store := catalog.NewStore()
	for _, name := range Models {
		store.Seed(name+"_model", model)
	}
	store.Seed("student_performance_factors_test_data", testutil.Students(4))
	store.Seed("params:label_column", "Exam_Score")

	// --- Act ---
	out, err := runner.NewSequential().Run(context.Background(), p, store)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"knn_predictions", "linear_predictions", "ridge_predictions"}, p.Outputs())
	for _, name := range p.Outputs() {
		assert.True(t, out.Has(name), name)
	}
}
