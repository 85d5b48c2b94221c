package data_science_prep

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/vk/perfgrid/internal/table"
)

// SplitInput holds the keyword inputs of SplitData.
type SplitInput struct {
	Data      *table.Table `pipe:"data"`
	TrainSize float64      `pipe:"train_size"`
	TestSize  float64      `pipe:"test_size"`
	Seed      uint64       `pipe:"random_seed"`
}

// SplitData shuffles the rows with the given seed and splits them into a
// training and a test table. The test partition takes ceil(test_size * rows)
// rows. Both partitions must end up non-empty.
func SplitData(in SplitInput) (map[string]*table.Table, error) {
	if in.Data == nil {
		return nil, fmt.Errorf("no data to split")
	}
	if in.TrainSize <= 0 || in.TestSize <= 0 {
		return nil, fmt.Errorf("train and test proportions must be positive, got %v and %v", in.TrainSize, in.TestSize)
	}
	if math.Abs(in.TrainSize+in.TestSize-1) > 1e-9 {
		return nil, fmt.Errorf("train and test proportions must sum to 1.0, got %v", in.TrainSize+in.TestSize)
	}

	rows := in.Data.Len()
	// The tolerance keeps 0.1*30 from rounding up to 4.
	nTest := int(math.Ceil(in.TestSize*float64(rows) - 1e-9))
	if nTest == 0 || nTest >= rows {
		return nil, fmt.Errorf("cannot split %d rows with test size %v", rows, in.TestSize)
	}

	perm := rand.New(rand.NewPCG(in.Seed, 0)).Perm(rows)
	return map[string]*table.Table{
		"train": in.Data.Take(perm[nTest:]),
		"test":  in.Data.Take(perm[:nTest]),
	}, nil
}
