package reporting

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/vk/perfgrid/internal/estimator"
	"github.com/vk/perfgrid/internal/table"
	"github.com/vk/perfgrid/modules/data_processing"
	"github.com/vk/perfgrid/modules/data_science_pred"
)

// ImportanceRepeats is how often each feature is shuffled when measuring
// permutation importance.
const ImportanceRepeats = 5

// CalculateAccuracies scores the predictions of each model. The model
// columns follow the order of data_science_pred.Models.
func CalculateAccuracies(linear, ridge, knn *table.Table) (*table.Table, error) {
	n := len(data_science_pred.Models)
	names := make([]string, 0, n)
	accuracy := make([]float64, 0, n)
	mae := make([]float64, 0, n)
	rmse := make([]float64, 0, n)

	for i, predictions := range []*table.Table{linear, ridge, knn} {
		model := data_science_pred.Models[i]
		actual, err := predictions.Numeric(data_science_pred.ActualColumn)
		if err != nil {
			return nil, fmt.Errorf("%s predictions: %w", model, err)
		}
		predicted, err := predictions.Numeric(data_science_pred.PredictionColumn)
		if err != nil {
			return nil, fmt.Errorf("%s predictions: %w", model, err)
		}
		scores, err := estimator.Evaluate(actual, predicted)
		if err != nil {
			return nil, fmt.Errorf("%s predictions: %w", model, err)
		}
		names = append(names, model)
		accuracy = append(accuracy, scores.Accuracy)
		mae = append(mae, scores.MAE)
		rmse = append(rmse, scores.RMSE)
	}

	return table.New(
		table.NewCategorical("Model", names),
		table.NewNumeric("Accuracy", accuracy),
		table.NewNumeric("MAE", mae),
		table.NewNumeric("RMSE", rmse),
	)
}

// ReportInput is the argument of BestModelReport. GenerateBestModelReport
// fills it from the node's positional inputs.
type ReportInput struct {
	Accuracies *table.Table
	Models     map[string]estimator.Model
	TestData   *table.Table
	Label      string
	Seed       uint64
}

// GenerateBestModelReport is the node function behind the report. It ranks
// the models and explains the best one.
func GenerateBestModelReport(
	accuracies *table.Table,
	linear, ridge, knn estimator.Model,
	testData *table.Table,
	label string,
	seed uint64,
) (*table.Table, *table.Table, error) {
	return BestModelReport(ReportInput{
		Accuracies: accuracies,
		Models:     map[string]estimator.Model{"linear": linear, "ridge": ridge, "knn": knn},
		TestData:   testData,
		Label:      label,
		Seed:       seed,
	})
}

// BestModelReport returns the leaderboard, ranked by accuracy and then by
// RMSE, and the permutation importance of the top ranked model.
func BestModelReport(in ReportInput) (*table.Table, *table.Table, error) {
	type entry struct {
		model              string
		accuracy, mae, rms float64
	}

	records := in.Accuracies.Records()
	entries := make([]entry, 0, len(records))
	for _, rec := range records {
		name, _ := rec["Model"].(string)
		acc, okAcc := rec["Accuracy"].(float64)
		mae, okMAE := rec["MAE"].(float64)
		rms, okRMSE := rec["RMSE"].(float64)
		if name == "" || !okAcc || !okMAE || !okRMSE {
			return nil, nil, fmt.Errorf("incomplete accuracy record %v", rec)
		}
		entries = append(entries, entry{model: name, accuracy: acc, mae: mae, rms: rms})
	}
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("no model accuracies to rank")
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		return cmp.Or(cmp.Compare(b.accuracy, a.accuracy), cmp.Compare(a.rms, b.rms))
	})

	rank := make([]float64, len(entries))
	models := make([]string, len(entries))
	accuracy := make([]float64, len(entries))
	mae := make([]float64, len(entries))
	rmse := make([]float64, len(entries))
	for i, e := range entries {
		rank[i], models[i], accuracy[i], mae[i], rmse[i] = float64(i+1), e.model, e.accuracy, e.mae, e.rms
	}
	leaderboard, err := table.New(
		table.NewNumeric("Rank", rank),
		table.NewCategorical("Model", models),
		table.NewNumeric("Accuracy", accuracy),
		table.NewNumeric("MAE", mae),
		table.NewNumeric("RMSE", rmse),
	)
	if err != nil {
		return nil, nil, err
	}

	best, ok := in.Models[models[0]]
	if !ok || best == nil {
		return nil, nil, fmt.Errorf("best model %q was not trained", models[0])
	}
	importances, err := estimator.PermutationImportance(best, data_processing.Encode(in.TestData), in.Label, ImportanceRepeats, in.Seed)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to explain %s model: %w", models[0], err)
	}
	features := make([]string, len(importances))
	scores := make([]float64, len(importances))
	for i, imp := range importances {
		features[i], scores[i] = imp.Feature, imp.Score
	}
	importance, err := table.New(
		table.NewCategorical("Model", slices.Repeat([]string{models[0]}, len(importances))),
		table.NewCategorical("Feature", features),
		table.NewNumeric("Importance", scores),
	)
	if err != nil {
		return nil, nil, err
	}
	return leaderboard, importance, nil
}
