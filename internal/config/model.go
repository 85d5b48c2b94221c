package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vk/perfgrid/internal/catalog"
)

// Model is the unified, format-agnostic representation of a project
// configuration.
type Model struct {
	Datasets   []*Dataset `validate:"dive"`
	Parameters map[string]any
	Run        *RunSettings
}

// Dataset is the format-agnostic representation of a `dataset` block.
type Dataset struct {
	Name     string `validate:"required"`
	Type     string `validate:"required,oneof=csv json memory http"`
	Filepath string
	// URL, Format and Timeout describe an http dataset.
	URL     string `validate:"omitempty,url"`
	Format  string `validate:"omitempty,oneof=csv json"`
	Timeout string
}

// location reports the field a dataset of this type cannot do without.
func (d *Dataset) location() (field, value string) {
	switch d.Type {
	case catalog.TypeCSV, catalog.TypeJSON:
		return "Filepath", d.Filepath
	case catalog.TypeHTTP:
		return "URL", d.URL
	}
	return "", "set"
}

// RunSettings holds the defaults of a `run` block. Empty fields fall back
// to the application defaults.
type RunSettings struct {
	Pipeline string
	Runner   string `validate:"omitempty,oneof=sequential parallel"`
	Workers  int    `validate:"gte=0,lte=1024"`
}

var validate = validator.New()

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		Parameters: make(map[string]any),
		Run:        &RunSettings{},
	}
}

// Validate checks the model for structural errors and duplicate dataset
// names.
func (m *Model) Validate() error {
	if err := validate.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	seen := make(map[string]struct{}, len(m.Datasets))
	for i, ds := range m.Datasets {
		if field, value := ds.location(); value == "" {
			return fmt.Errorf("invalid configuration: Model.Datasets[%d].%s failed on 'required'", i, field)
		}
		if ds.Timeout != "" {
			if _, err := time.ParseDuration(ds.Timeout); err != nil {
				return fmt.Errorf("invalid configuration: dataset %q has an invalid timeout: %w", ds.Name, err)
			}
		}
		if _, dup := seen[ds.Name]; dup {
			return fmt.Errorf("invalid configuration: dataset %q is defined more than once", ds.Name)
		}
		seen[ds.Name] = struct{}{}
	}
	return nil
}

// DatasetNames returns the declared dataset names in declaration order.
func (m *Model) DatasetNames() []string {
	names := make([]string, len(m.Datasets))
	for i, ds := range m.Datasets {
		names[i] = ds.Name
	}
	return names
}

// Catalog builds the dataset catalog described by the model.
func (m *Model) Catalog() (*catalog.Catalog, error) {
	defs := make([]catalog.Definition, len(m.Datasets))
	for i, ds := range m.Datasets {
		defs[i] = catalog.Definition{Name: ds.Name, Type: ds.Type, Filepath: ds.Filepath, URL: ds.URL, Format: ds.Format}
		if ds.Timeout != "" {
			timeout, err := time.ParseDuration(ds.Timeout)
			if err != nil {
				return nil, fmt.Errorf("dataset %q: invalid timeout: %w", ds.Name, err)
			}
			defs[i].Timeout = timeout
		}
	}
	return catalog.New(defs...)
}
