package db

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ColumnType is the SQLite storage class chosen for an imported column.
type ColumnType string

const (
	TypeInteger ColumnType = "INTEGER"
	TypeReal    ColumnType = "REAL"
	TypeText    ColumnType = "TEXT"
)

// Table is a parsed delimited file ready for Import.
type Table struct {
	Columns []string
	Types   []ColumnType
	Rows    [][]any
}

// ReadCSV parses a delimited file whose first row is the header.
// Each column gets the narrowest type that fits every non-empty cell;
// empty cells become NULL.
func ReadCSV(r io.Reader, delimiter rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := headerNames(header)

	var cells [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(cells)+2, err)
		}
		cells = append(cells, row)
	}

	types := make([]ColumnType, len(columns))
	for i := range columns {
		types[i] = inferType(cells, i)
	}

	rows := make([][]any, len(cells))
	for r, row := range cells {
		values := make([]any, len(columns))
		for i, cell := range row {
			values[i] = convert(cell, types[i])
		}
		rows[r] = values
	}

	return &Table{Columns: columns, Types: types, Rows: rows}, nil
}

// headerNames trims the header, names blank columns and de-duplicates repeats.
func headerNames(header []string) []string {
	seen := make(map[string]int, len(header))
	names := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		base := name
		for n := 2; seen[name] > 0; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		seen[name]++
		names[i] = name
	}
	return names
}

func inferType(cells [][]string, col int) ColumnType {
	typ := TypeInteger
	filled := false
	for _, row := range cells {
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			continue
		}
		filled = true
		if typ == TypeInteger {
			if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
				continue
			}
			typ = TypeReal
		}
		if _, ok := parseReal(cell); !ok {
			return TypeText
		}
	}
	if !filled {
		return TypeText
	}
	return typ
}

// parseReal accepts finite numbers only; "inf" and "NaN" stay text.
func parseReal(cell string) (float64, bool) {
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func convert(cell string, typ ColumnType) any {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return nil
	}
	switch typ {
	case TypeInteger:
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return n
		}
	case TypeReal:
		if f, ok := parseReal(trimmed); ok {
			return f
		}
	}
	return cell
}
