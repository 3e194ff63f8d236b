package strategy

import (
	"fmt"

	"studygen/internal/canon"
)

// Matrix is the raw generation output: one column per parameter in schema
// declaration order, one row per prospective parameter set. Rows may contain
// duplicates; deduplication happens during identity assignment, not here.
type Matrix struct {
	Names []string
	Rows  [][]canon.Value
}

// NewMatrix allocates a matrix for the given column names.
func NewMatrix(names []string) *Matrix {
	return &Matrix{Names: append([]string(nil), names...)}
}

// Append adds one row. The row length must match the column count.
func (m *Matrix) Append(row []canon.Value) error {
	if len(row) != len(m.Names) {
		return fmt.Errorf("row has %d values, matrix has %d columns", len(row), len(m.Names))
	}
	m.Rows = append(m.Rows, row)
	return nil
}

// Len returns the number of rows.
func (m *Matrix) Len() int { return len(m.Rows) }

// Row materializes row i as a name-to-value object, the form the identity
// engine hashes.
func (m *Matrix) Row(i int) canon.Object {
	obj := make(canon.Object, len(m.Names))
	for j, name := range m.Names {
		obj[name] = m.Rows[i][j]
	}
	return obj
}
