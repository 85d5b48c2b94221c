package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// nullTokens are the cell values read as missing.
var nullTokens = map[string]struct{}{
	"":    {},
	"NA":  {},
	"NaN": {},
	"nan": {},
}

// ReadCSV parses a CSV document with a header row. A column is numeric when
// every non-missing cell parses as a float, categorical otherwise.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("csv has no header row")
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	raw := make([][]string, len(header))
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		for i := range header {
			raw[i] = append(raw[i], strings.TrimSpace(rec[i]))
		}
	}

	cols := make([]*Column, len(header))
	for i, name := range header {
		cols[i] = inferColumn(strings.TrimSpace(name), raw[i])
	}
	return New(cols...)
}

func inferColumn(name string, cells []string) *Column {
	nums := make([]float64, len(cells))
	numeric := true
	for i, cell := range cells {
		if _, null := nullTokens[cell]; null {
			nums[i] = math.NaN()
			continue
		}
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			numeric = false
			break
		}
		nums[i] = f
	}
	if numeric {
		return &Column{Name: name, Kind: Numeric, Num: nums}
	}

	strs := make([]string, len(cells))
	for i, cell := range cells {
		if _, null := nullTokens[cell]; !null {
			strs[i] = cell
		}
	}
	return &Column{Name: name, Kind: Categorical, Str: strs}
}

// WriteCSV writes the table with a header row. Missing values are written as
// empty cells.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns()); err != nil {
		return err
	}
	rec := make([]string, len(t.columns))
	for r := 0; r < t.rows; r++ {
		for i, c := range t.columns {
			switch {
			case c.IsNull(r):
				rec[i] = ""
			case c.Kind == Numeric:
				rec[i] = strconv.FormatFloat(c.Num[r], 'f', -1, 64)
			default:
				rec[i] = c.Str[r]
			}
		}
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
