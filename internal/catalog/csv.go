package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/perfgrid/internal/table"
)

// CSVDataset stores a *table.Table as a CSV file.
type CSVDataset struct {
	path string
}

// NewCSVDataset returns a dataset backed by the CSV file at path.
func NewCSVDataset(path string) *CSVDataset {
	return &CSVDataset{path: path}
}

func (d *CSVDataset) Load(ctx context.Context) (any, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return table.ReadCSV(f)
}

func (d *CSVDataset) Save(ctx context.Context, value any) error {
	tbl, ok := value.(*table.Table)
	if !ok {
		return fmt.Errorf("csv dataset expects *table.Table, got %T", value)
	}
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(d.path)
	if err != nil {
		return err
	}
	if err := tbl.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (d *CSVDataset) Describe() string { return "csv:" + d.path }
