package data_science_training

import (
	"fmt"

	"github.com/vk/perfgrid/internal/estimator"
	"github.com/vk/perfgrid/internal/table"
	"github.com/vk/perfgrid/modules/data_processing"
)

// TrainInput holds the inputs shared by every trainer.
type TrainInput struct {
	TrainData   *table.Table `pipe:"train_data"`
	LabelColumn string       `pipe:"label_column"`
}

// RidgeInput adds the L2 penalty.
type RidgeInput struct {
	TrainInput
	Alpha float64 `pipe:"alpha"`
}

// KNNInput adds the neighbour count.
type KNNInput struct {
	TrainInput
	Neighbors int `pipe:"neighbors"`
}

func (in TrainInput) encoded() (*table.Table, error) {
	if in.TrainData == nil {
		return nil, fmt.Errorf("no training data")
	}
	return data_processing.Encode(in.TrainData), nil
}

// TrainLinearModel fits ordinary least squares on the encoded training data.
func TrainLinearModel(in TrainInput) (estimator.Model, error) {
	data, err := in.encoded()
	if err != nil {
		return nil, err
	}
	return estimator.FitLinear(data, in.LabelColumn, 0)
}

// TrainRidgeModel fits ridge regression on the encoded training data.
func TrainRidgeModel(in RidgeInput) (estimator.Model, error) {
	data, err := in.encoded()
	if err != nil {
		return nil, err
	}
	return estimator.FitLinear(data, in.LabelColumn, in.Alpha)
}

// TrainKNNModel fits a k-nearest neighbours regressor on the encoded
// training data.
func TrainKNNModel(in KNNInput) (estimator.Model, error) {
	data, err := in.encoded()
	if err != nil {
		return nil, err
	}
	return estimator.FitKNN(data, in.LabelColumn, in.Neighbors)
}
