package rawtable

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadCSVDir reads every *.csv file in dir into a RawTable named after the
// file's base name. Tables are returned sorted by name so a run over the same
// directory is deterministic regardless of filesystem ordering.
func LoadCSVDir(dir string) ([]RawTable, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read csv dir: %w", err)
	}

	var tables []RawTable
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		t, err := loadCSVFile(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		tables = append(tables, t)
	}

	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables, nil
}

// loadCSVFile parses one CSV file into a RawTable.
//
// Parsing is best-effort in the same way sampling is: records with the wrong
// field count are skipped rather than failing the whole file.
func loadCSVFile(path string) (RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return RawTable{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // we validate manually
	r.LazyQuotes = true

	headers, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return RawTable{Name: tableNameFromPath(path)}, nil
		}
		return RawTable{}, err
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	rows := make([][]string, 0, 1024)
	for {
		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return RawTable{}, err
		}
		if len(rec) != len(headers) {
			continue
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		rows = append(rows, rec)
	}

	return New(tableNameFromPath(path), headers, rows), nil
}

func tableNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
