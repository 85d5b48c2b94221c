// Package config defines the format-agnostic configuration model for the
// application, along with the Loader interface for reading it from various
// sources.
//
// The `config.Model` is the single source of truth for the dataset catalog,
// the project parameters and the default run settings. Concrete loaders,
// such as the HCL one, are provided in separate packages.
package config
