package data_science_prep

import (
	"github.com/vk/perfgrid/internal/node"
	"github.com/vk/perfgrid/internal/pipeline"
	"github.com/vk/perfgrid/internal/registry"
)

// Name is the pipeline name this module registers.
const Name = "data_science_prep"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Pipeline splits the preprocessed table into train and test data.
func Pipeline() *pipeline.Pipeline {
	return pipeline.MustNew(
		node.MustNew(
			"split_data_node",
			SplitData,
			node.Keyword(map[string]string{
				"data":        "student_performance_factors_preprocessed",
				"train_size":  "params:train_size",
				"test_size":   "params:test_size",
				"random_seed": "params:random_seed",
			}),
			node.Keyword(map[string]string{
				"train": "student_performance_factors_train_data",
				"test":  "student_performance_factors_test_data",
			}),
			node.WithTags("training"),
		),
	)
}

// Register registers the pipeline with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterPipeline(Name, Pipeline())
}
