package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Datasets   []*DatasetBlock    `hcl:"dataset,block"`
	Parameters []*ParametersBlock `hcl:"parameters,block"`
	Runs       []*RunBlock        `hcl:"run,block"`
	Remain     hcl.Body           `hcl:",remain"`
}

// DatasetBlock is a `dataset "<name>" { ... }` block.
type DatasetBlock struct {
	Name     string  `hcl:"name,label"`
	Type     string  `hcl:"type"`
	Filepath *string `hcl:"filepath,optional"`
	URL      *string `hcl:"url,optional"`
	Format   *string `hcl:"format,optional"`
	Timeout  *string `hcl:"timeout,optional"`
}

// ParametersBlock holds arbitrary attributes, decoded lazily so values may
// be any HCL type.
type ParametersBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// RunBlock is the `run { ... }` block with the default run settings.
type RunBlock struct {
	Pipeline *string `hcl:"pipeline,optional"`
	Runner   *string `hcl:"runner,optional"`
	Workers  *int    `hcl:"workers,optional"`
}
