// Package dataset loads the inputs of batch runs: CSV files of
// original/normalized text pairs and plain-text files of one text per line.
package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/ctalab/ctaeval/internal/models"
)

// Column names of a dataset CSV. The name column is optional.
const (
	ColumnName       = "name"
	ColumnOriginal   = "original"
	ColumnNormalized = "normalized"
)

// Row represents a single CSV row with column name to value mapping.
type Row map[string]string

// LoadCSV reads a CSV file and returns rows as maps of column to value.
// The first row is treated as headers; header names are trimmed and
// lower-cased, and a leading byte order mark is ignored.
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %s is empty (no header row)", path)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	rows := make([]Row, 0, len(records)-1)

	for i, record := range records[1:] {
		if len(record) != len(headers) {
			return nil, fmt.Errorf("csv: row %d has %d columns, expected %d", i+2, len(record), len(headers))
		}
		row := make(Row, len(headers))
		for j, h := range headers {
			row[h] = record[j]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// LoadCSVRange reads rows in the given range [start, end] (1-based, inclusive).
// Row 1 is the first data row (after headers).
func LoadCSVRange(path string, start, end int) ([]Row, error) {
	if start < 1 {
		return nil, fmt.Errorf("csv: range start must be >= 1, got %d", start)
	}
	if end < start {
		return nil, fmt.Errorf("csv: range end (%d) must be >= start (%d)", end, start)
	}

	allRows, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}

	// Clamp end to available rows
	if end > len(allRows) {
		end = len(allRows)
	}

	// If start is beyond available rows, return empty
	if start > len(allRows) {
		return []Row{}, nil
	}

	return allRows[start-1 : end], nil
}

// Datasets converts rows to text pairs. Rows with both texts blank are
// skipped; unnamed rows keep an empty name and are labelled by the batch
// runner.
func Datasets(rows []Row) ([]models.Dataset, error) {
	if len(rows) > 0 {
		for _, col := range []string{ColumnOriginal, ColumnNormalized} {
			if _, ok := rows[0][col]; !ok {
				return nil, fmt.Errorf("csv: missing %q column (want %s,%s,%s)", col, ColumnName, ColumnOriginal, ColumnNormalized)
			}
		}
	}

	out := make([]models.Dataset, 0, len(rows))
	for _, r := range rows {
		d := models.Dataset{
			Name:       strings.TrimSpace(r[ColumnName]),
			Original:   strings.TrimSpace(r[ColumnOriginal]),
			Normalized: strings.TrimSpace(r[ColumnNormalized]),
		}
		if d.Original == "" && d.Normalized == "" {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// LoadDatasets reads a name,original,normalized CSV file.
func LoadDatasets(path string) ([]models.Dataset, error) {
	rows, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}
	return Datasets(rows)
}

// LoadLines reads one text per non-blank line.
func LoadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}
