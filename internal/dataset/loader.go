// Package dataset implements loading and preprocessing of tabular
// classification data: the delimited-file loader, class-label encoding,
// feature scaling and stratified fold splitting.
package dataset

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Table holds a loaded dataset: a numeric feature matrix and the aligned
// class labels.
//
// Invariant: the number of matrix rows equals len(Labels), and row i of X
// belongs to Labels[i].
type Table struct {
	X      *mat.Dense // [num_samples, num_features]
	Labels []string   // [num_samples]
}

// Load reads a delimited text file where every row holds the same number
// of numeric feature fields followed by one trailing class-label field.
// There is no header row.
//
// Fields are split on commas when the first data line contains one,
// otherwise on whitespace. The feature count is fixed by the first
// non-empty line; rows with a different field count or non-numeric
// feature fields produce a *ParseError. Blank lines are skipped.
func Load(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	var (
		features  [][]float64
		labels    []string
		numFields = -1
		row       int
	)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		row++

		fields := splitRow(line)
		if numFields == -1 {
			numFields = len(fields)
			if numFields < 2 {
				return nil, &ParseError{Path: path, Row: row,
					Msg: fmt.Sprintf("need at least one feature and a label, got %d field(s)", numFields)}
			}
		}
		if len(fields) != numFields {
			return nil, &ParseError{Path: path, Row: row,
				Msg: fmt.Sprintf("inconsistent field count: got %d, want %d", len(fields), numFields)}
		}

		vec := make([]float64, numFields-1)
		for j := 0; j < numFields-1; j++ {
			v, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return nil, &ParseError{Path: path, Row: row, Col: j + 1,
					Msg: fmt.Sprintf("non-numeric feature %q", fields[j])}
			}
			vec[j] = v
		}
		features = append(features, vec)
		labels = append(labels, fields[numFields-1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if len(features) == 0 {
		return nil, &ParseError{Path: path, Row: 0, Msg: "empty dataset"}
	}

	x := mat.NewDense(len(features), numFields-1, nil)
	for i, vec := range features {
		x.SetRow(i, vec)
	}
	return &Table{X: x, Labels: labels}, nil
}

// splitRow splits a data line on commas if present, otherwise on
// whitespace.
func splitRow(line string) []string {
	if strings.Contains(line, ",") {
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		return fields
	}
	return strings.Fields(line)
}

// NumSamples returns the number of rows in the table.
func (t *Table) NumSamples() int {
	return len(t.Labels)
}

// NumFeatures returns the number of feature columns.
func (t *Table) NumFeatures() int {
	_, c := t.X.Dims()
	return c
}

// Select returns a new table holding the given rows, in order.
//
// The feature data is copied; mutations of the selection do not affect
// the source table.
func (t *Table) Select(indices []int) *Table {
	x := mat.NewDense(len(indices), t.NumFeatures(), nil)
	labels := make([]string, len(indices))
	for i, idx := range indices {
		x.SetRow(i, t.X.RawRowView(idx))
		labels[i] = t.Labels[idx]
	}
	return &Table{X: x, Labels: labels}
}
