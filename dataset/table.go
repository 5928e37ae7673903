// Package dataset loads regression tables: every column numeric, the last
// column is the response and the preceding ones are features.
package dataset

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/electrospin/pkg/errors"
	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/mat"
)

// Table is a dense numeric table with positional column names X1..Xn.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// ColumnNames returns X1..Xn.
func ColumnNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = "X" + strconv.Itoa(i+1)
	}
	return names
}

// FromRows builds a table from numeric rows. Rows are copied.
func FromRows(rows [][]float64) (*Table, error) {
	if len(rows) == 0 {
		return nil, errors.NewEmptyDatasetError(0, 0)
	}
	n := len(rows[0])
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != n {
			return nil, errors.NewNonNumericDataError(i+1, min(len(row), n)+1, columnName(min(len(row), n)), "")
		}
		out[i] = append([]float64(nil), row...)
	}
	t := &Table{Columns: ColumnNames(n), Rows: out}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// FromRecords parses string records. When header is true the first record
// is dropped and fixes the column count; original column names are never
// kept. Cells are trimmed and parsed as float64. Blank records are skipped.
func FromRecords(records [][]string, header bool) (*Table, error) {
	width := 0
	if header && len(records) > 0 {
		width = len(records[0])
		records = records[1:]
	}

	data := make([][]string, 0, len(records))
	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		if width == 0 {
			width = len(rec)
		}
		data = append(data, rec)
	}
	if len(data) == 0 {
		return nil, errors.NewEmptyDatasetError(0, width)
	}

	rows := make([][]float64, len(data))
	for i, rec := range data {
		row := make([]float64, width)
		for j := 0; j < width; j++ {
			if j >= len(rec) {
				return nil, errors.NewNonNumericDataError(i+1, j+1, columnName(j), "")
			}
			cell := strings.TrimSpace(rec[j])
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.NewNonNumericDataError(i+1, j+1, columnName(j), cell)
			}
			row[j] = v
		}
		// 余分なセルは空でなければ不正
		for j := width; j < len(rec); j++ {
			if cell := strings.TrimSpace(rec[j]); cell != "" {
				return nil, errors.NewNonNumericDataError(i+1, j+1, columnName(j), cell)
			}
		}
		rows[i] = row
	}

	t := &Table{Columns: ColumnNames(width), Rows: rows}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func columnName(j int) string {
	return "X" + strconv.Itoa(j+1)
}

// Validate checks the shape and that every cell is a finite number.
func (t *Table) Validate() error {
	if t == nil {
		return errors.NewEmptyDatasetError(0, 0)
	}
	if len(t.Rows) == 0 || len(t.Columns) < 2 {
		return errors.NewEmptyDatasetError(len(t.Rows), len(t.Columns))
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return errors.NewDimensionError("dataset.Validate", len(t.Columns), len(row), 1)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.NewNonNumericDataError(i+1, j+1, t.Columns[j], strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
	}
	return nil
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumCols returns the number of columns, response included.
func (t *Table) NumCols() int { return len(t.Columns) }

// Column returns a copy of column j.
func (t *Table) Column(j int) []float64 {
	col := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		col[i] = row[j]
	}
	return col
}

// Features returns the feature column names (all but the last).
func (t *Table) Features() []string {
	return append([]string(nil), t.Columns[:len(t.Columns)-1]...)
}

// Target returns the response column.
func (t *Table) Target() []float64 {
	return t.Column(len(t.Columns) - 1)
}

// FeatureMatrix returns the feature columns as an n×k matrix.
func (t *Table) FeatureMatrix() *mat.Dense {
	k := len(t.Columns) - 1
	m := mat.NewDense(len(t.Rows), k, nil)
	for i, row := range t.Rows {
		m.SetRow(i, row[:k])
	}
	return m
}

// Fingerprint hashes the shape and every cell bit pattern. Equal tables
// always have equal fingerprints.
func (t *Table) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(t.Columns)))
	_, _ = h.Write(buf[:])
	for _, row := range t.Rows {
		for _, v := range row {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			_, _ = h.Write(buf[:])
		}
	}
	return h.Sum64()
}

// String summarises the table shape.
func (t *Table) String() string {
	return fmt.Sprintf("Table(rows=%d, cols=%d)", t.NumRows(), t.NumCols())
}
