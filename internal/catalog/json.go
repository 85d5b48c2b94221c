package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/vk/perfgrid/internal/table"
)

// JSONDataset stores a value as an indented JSON document. Tables are written
// as a list of records.
type JSONDataset struct {
	path string
}

// NewJSONDataset returns a dataset backed by the JSON file at path.
func NewJSONDataset(path string) *JSONDataset {
	return &JSONDataset{path: path}
}

// Load decodes the file into generic JSON values (maps, slices, float64, ...).
func (d *JSONDataset) Load(ctx context.Context) (any, error) {
	raw, err := os.ReadFile(d.path)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (d *JSONDataset) Save(ctx context.Context, value any) error {
	raw, err := encodeJSON(value)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(d.path, raw, 0o644)
}

func encodeJSON(value any) ([]byte, error) {
	if tbl, ok := value.(*table.Table); ok {
		value = tbl.Records()
	}
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(raw, '\n'), nil
}

func (d *JSONDataset) Describe() string { return "json:" + d.path }
