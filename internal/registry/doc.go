// Package registry provides the central "glue" for the module system.
//
// Modules contribute named pipelines at startup through Register. The
// registry keeps them in registration order and derives the "__default__"
// pipeline as the sum of everything registered, mirroring how a project
// exposes one pipeline per stage plus an all-in-one default.
//
// During application startup the registry is validated against the loaded
// project configuration, so that a pipeline referring to a parameter or
// dataset nobody defines fails before any node runs.
package registry
