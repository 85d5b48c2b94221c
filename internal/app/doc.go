// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle, decoupled
// from any specific entrypoint like a CLI or server.
//
// NewApp loads the project configuration, registers the pipeline modules and
// checks that every pipeline input is either a declared dataset or a known
// parameter. Run then selects and filters a pipeline, builds a runner with
// the logging, metrics and (optionally) tracing hooks, and executes it in a
// fresh session.
package app
