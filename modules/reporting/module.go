package reporting

import (
	"github.com/vk/perfgrid/internal/node"
	"github.com/vk/perfgrid/internal/pipeline"
	"github.com/vk/perfgrid/internal/registry"
)

// Name is the pipeline name this module registers.
const Name = "reporting"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Pipeline compares the models and reports on the best one.
func Pipeline() *pipeline.Pipeline {
	return pipeline.MustNew(
		node.MustNew(
			"calculate_accuracies_node",
			CalculateAccuracies,
			node.Positional("linear_predictions", "ridge_predictions", "knn_predictions"),
			node.Single("model_accuracies"),
			node.WithTags("reporting"),
		),
		node.MustNew(
			"generate_best_model_report_node",
			GenerateBestModelReport,
			node.Positional(
				"model_accuracies",
				"linear_model",
				"ridge_model",
				"knn_model",
				"student_performance_factors_test_data",
				"params:label_column",
				"params:random_seed",
			),
			node.Positional("best_model_leaderboard", "best_model_feature_importance"),
			node.WithTags("reporting"),
		),
	)
}

// Register registers the pipeline with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterPipeline(Name, Pipeline())
}
