package data_processing

import (
	"github.com/vk/perfgrid/internal/node"
	"github.com/vk/perfgrid/internal/pipeline"
	"github.com/vk/perfgrid/internal/registry"
)

// Name is the pipeline name this module registers.
const Name = "data_processing"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Pipeline cleans the raw table and derives the exploratory summaries.
func Pipeline() *pipeline.Pipeline {
	preprocessed := node.Single("student_performance_factors_preprocessed")
	return pipeline.MustNew(
		node.MustNew(
			"preprocess_student_performance_factors_node",
			PreprocessStudentPerformanceFactors,
			node.Single("student_performance_factors"),
			preprocessed,
			node.WithTags("preprocessing"),
		),
		node.MustNew(
			"generate_correlation_matrix_node",
			CorrelationMatrix,
			preprocessed,
			node.Single("correlation_matrix"),
			node.WithTags("eda"),
		),
		node.MustNew(
			"generate_correlation_matrix_encoded_node",
			CorrelationMatrixEncoded,
			preprocessed,
			node.Single("correlation_matrix_encoded"),
			node.WithTags("eda"),
		),
		node.MustNew(
			"generate_attendance_exam_correlation_node",
			ExamCorrelation("Attendance"),
			preprocessed,
			node.Single("attendance_exam_correlation"),
			node.WithTags("eda"),
		),
		node.MustNew(
			"generate_hours_studied_exam_correlation_node",
			ExamCorrelation("Hours_Studied"),
			preprocessed,
			node.Single("hours_studied_exam_correlation"),
			node.WithTags("eda"),
		),
	)
}

// Register registers the pipeline with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterPipeline(Name, Pipeline())
}
