package parcels

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// Cell texts read as missing, matching what the training pipeline treated as NA.
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-NaN": {}, "-nan": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// LoadCSV reads a CSV parcel table with a header row. Only the requested
// columns that exist in the header are kept (all columns when columns is
// empty). Cells are kept as text; NA markers become nil.
func LoadCSV(path string, columns []string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening parcel table: %w", err)
	}
	defer f.Close() // nolint:errcheck

	records, selected, err := ReadCSV(f, columns)
	if err != nil {
		return nil, fmt.Errorf("error reading parcel table %s: %w", path, err)
	}
	return NewTable(records, selected), nil
}

// ReadCSV parses CSV parcel rows from r. See LoadCSV.
func ReadCSV(r io.Reader, columns []string) ([]Record, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("missing header row")
		}
		return nil, nil, err
	}
	header = slices.Clone(header)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var selected []string
	var positions []int
	for i, name := range header {
		if len(columns) == 0 || slices.Contains(columns, name) {
			selected = append(selected, name)
			positions = append(positions, i)
		}
	}

	var out []Record
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		rec := make(Record, len(selected))
		for j, pos := range positions {
			if pos >= len(fields) {
				rec[selected[j]] = nil
				continue
			}
			rec[selected[j]] = cellValue(fields[pos])
		}
		out = append(out, rec)
	}

	return out, selected, nil
}

func cellValue(s string) any {
	if _, ok := naValues[strings.TrimSpace(s)]; ok {
		return nil
	}
	return s
}
