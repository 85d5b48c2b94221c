package data_science_training

import (
	"maps"

	"github.com/vk/perfgrid/internal/node"
	"github.com/vk/perfgrid/internal/pipeline"
	"github.com/vk/perfgrid/internal/registry"
)

// Name is the pipeline name this module registers.
const Name = "data_science_training"

// Module implements the registry.Module interface for this package.
type Module struct{}

func inputs(extra map[string]string) node.Spec {
	bindings := map[string]string{
		"train_data":   "student_performance_factors_train_data",
		"label_column": "params:label_column",
	}
	maps.Copy(bindings, extra)
	return node.Keyword(bindings)
}

// Pipeline trains the three regressors on the same training data.
func Pipeline() *pipeline.Pipeline {
	return pipeline.MustNew(
		node.MustNew(
			"train_linear_model_node",
			TrainLinearModel,
			inputs(nil),
			node.Single("linear_model"),
			node.WithTags("training"),
		),
		node.MustNew(
			"train_ridge_model_node",
			TrainRidgeModel,
			inputs(map[string]string{"alpha": "params:ridge_alpha"}),
			node.Single("ridge_model"),
			node.WithTags("training"),
		),
		node.MustNew(
			"train_knn_model_node",
			TrainKNNModel,
			inputs(map[string]string{"neighbors": "params:knn_neighbors"}),
			node.Single("knn_model"),
			node.WithTags("training"),
		),
	)
}

// Register registers the pipeline with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterPipeline(Name, Pipeline())
}
