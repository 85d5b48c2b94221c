package app

import (
	"github.com/vk/perfgrid/internal/registry"
	"github.com/vk/perfgrid/modules/data_processing"
	"github.com/vk/perfgrid/modules/data_science_pred"
	"github.com/vk/perfgrid/modules/data_science_prep"
	"github.com/vk/perfgrid/modules/data_science_training"
	"github.com/vk/perfgrid/modules/reporting"
)

// coreModules is the definitive list of all modules that are compiled into
// the perfgrid binary. Registration order is the order of the default
// pipeline.
var coreModules = []registry.Module{
	&data_processing.Module{},
	&data_science_prep.Module{},
	&data_science_training.Module{},
	&data_science_pred.Module{},
	&reporting.Module{},
}
