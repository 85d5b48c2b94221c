package hcl_adapter

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/perfgrid/internal/config"
	"github.com/vk/perfgrid/internal/ctxlog"
	"github.com/vk/perfgrid/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load orchestrates the entire HCL configuration loading process. It is
// agnostic to the origin of the paths and parses any valid block from any file.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := config.NewModel()

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	evalCtx := evalContext()
	runSeen := false

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		// Translate and merge all discovered blocks into the model.
		for _, ds := range root.Datasets {
			model.Datasets = append(model.Datasets, translateDataset(file, ds))
		}
		for _, block := range root.Parameters {
			if err := l.mergeParameters(ctx, model.Parameters, block, evalCtx); err != nil {
				return nil, fmt.Errorf("in %s: %w", file, err)
			}
		}
		for _, run := range root.Runs {
			if runSeen {
				return nil, fmt.Errorf("in %s: only one run block is allowed", file)
			}
			runSeen = true
			model.Run = translateRun(run)
		}
	}

	if err := model.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.", "datasets", len(model.Datasets), "parameters", len(model.Parameters))
	return model, nil
}

// translateDataset resolves a relative filepath against the directory of
// the file that declares it.
func translateDataset(file string, b *DatasetBlock) *config.Dataset {
	ds := &config.Dataset{Name: b.Name, Type: b.Type}
	if b.Filepath != nil {
		ds.Filepath = *b.Filepath
		if ds.Filepath != "" && !filepath.IsAbs(ds.Filepath) {
			ds.Filepath = filepath.Join(filepath.Dir(file), ds.Filepath)
		}
	}
	if b.URL != nil {
		ds.URL = *b.URL
	}
	if b.Format != nil {
		ds.Format = *b.Format
	}
	if b.Timeout != nil {
		ds.Timeout = *b.Timeout
	}
	return ds
}

func translateRun(b *RunBlock) *config.RunSettings {
	rs := &config.RunSettings{}
	if b.Pipeline != nil {
		rs.Pipeline = *b.Pipeline
	}
	if b.Runner != nil {
		rs.Runner = *b.Runner
	}
	if b.Workers != nil {
		rs.Workers = *b.Workers
	}
	return rs
}

// mergeParameters evaluates every attribute of a parameters block into dst.
// A key defined by two blocks is an error.
func (l *Loader) mergeParameters(ctx context.Context, dst map[string]any, b *ParametersBlock, evalCtx *hcl.EvalContext) error {
	logger := ctxlog.FromContext(ctx)

	attrs, diags := b.Body.JustAttributes()
	if diags.HasErrors() {
		return fmt.Errorf("invalid parameters block: %w", diags)
	}

	for name, attr := range attrs {
		if _, dup := dst[name]; dup {
			return fmt.Errorf("parameter '%s' is defined more than once", name)
		}
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return fmt.Errorf("invalid value for parameter '%s': %w", name, diags)
		}
		native, err := ctyToNative(val)
		if err != nil {
			return fmt.Errorf("parameter '%s': %w", name, err)
		}
		logger.Debug("Loaded parameter.", "name", name, "type", val.Type().FriendlyName())
		dst[name] = native
	}
	return nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		files, err := fsutil.FindConfigFiles(path)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return allFiles, nil
}

var _ config.Loader = (*Loader)(nil)
