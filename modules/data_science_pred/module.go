package data_science_pred

import (
	"github.com/vk/perfgrid/internal/node"
	"github.com/vk/perfgrid/internal/pipeline"
	"github.com/vk/perfgrid/internal/registry"
)

// Name is the pipeline name this module registers.
const Name = "data_science_pred"

// Models are the trained models this pipeline predicts with.
var Models = []string{"linear", "ridge", "knn"}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Pipeline runs every trained model on the test data.
func Pipeline() *pipeline.Pipeline {
	nodes := make([]*node.Node, 0, len(Models))
	for _, model := range Models {
		nodes = append(nodes, node.MustNew(
			"generate_"+model+"_predictions_node",
			GeneratePredictions,
			node.Keyword(map[string]string{
				"predictor":    model + "_model",
				"test_data":    "student_performance_factors_test_data",
				"label_column": "params:label_column",
			}),
			node.Single(model+"_predictions"),
			node.WithTags("prediction"),
		))
	}
	return pipeline.MustNew(nodes...)
}

// Register registers the pipeline with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterPipeline(Name, Pipeline())
}
