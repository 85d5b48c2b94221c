package data_science_prep

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/perfgrid/internal/catalog"
	"github.com/vk/perfgrid/internal/runner"
	"github.com/vk/perfgrid/internal/table"
	"github.com/vk/perfgrid/internal/testutil"
)

func TestSplitData(t *testing.T) {
	// --- Arrange ---
	data := testutil.Students(30)
	in := SplitInput{Data: data, TrainSize: 0.9, TestSize: 0.1, Seed: 42}

	// --- Act ---
	out, err := SplitData(in)
	require.NoError(t, err)
	again, err := SplitData(in)
	require.NoError(t, err)

	// --- Assert ---
	assert.Equal(t, 27, out["train"].Len())
	assert.Equal(t, 3, out["test"].Len())
	assert.Equal(t, out["test"].Records(), again["test"].Records(), "same seed, same split")

	hours, _ := data.Numeric("Hours_Studied")
	train, _ := out["train"].Numeric("Hours_Studied")
	test, _ := out["test"].Numeric("Hours_Studied")
	assert.ElementsMatch(t, hours, append(append([]float64{}, train...), test...), "every row lands in exactly one partition")
}

func TestSplitData_Errors(t *testing.T) {
	data := testutil.Students(10)
	testCases := []struct {
		name    string
		in      SplitInput
		wantErr string
	}{
		{"no data", SplitInput{TrainSize: 0.9, TestSize: 0.1}, "no data to split"},
		{"sum is not one", SplitInput{Data: data, TrainSize: 0.8, TestSize: 0.1}, "must sum to 1.0"},
		{"non-positive size", SplitInput{Data: data, TrainSize: 1, TestSize: 0}, "must be positive"},
		{"empty train partition", SplitInput{Data: table.MustNew(table.NewNumeric("x", []float64{1})), TrainSize: 0.5, TestSize: 0.5}, "cannot split 1 rows"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SplitData(tc.in)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestPipeline_BindsParameters(t *testing.T) {
	// --- Arrange ---
	p := Pipeline()
	store := catalog.NewStore()
	store.Seed("student_performance_factors_preprocessed", testutil.Students(20))
	store.Seed("params:train_size", 0.75)
	store.Seed("params:test_size", 0.25)
	store.Seed("params:random_seed", 7.0)

	// --- Act ---
	out, err := runner.NewSequential().Run(context.Background(), p, store)

	// --- Assert ---
	require.NoError(t, err)
	train, err := out.Get("student_performance_factors_train_data")
	require.NoError(t, err)
	test, err := out.Get("student_performance_factors_test_data")
	require.NoError(t, err)
	assert.Equal(t, 15, train.(*table.Table).Len())
	assert.Equal(t, 5, test.(*table.Table).Len())
}
