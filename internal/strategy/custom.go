package strategy

import (
	"fmt"

	"studygen/internal/canon"
	"studygen/internal/schema"
)

// Custom passes through a caller-supplied matrix after validating it
// against the schema: exact parameter name coverage, uniform row arity,
// and every value inside its parameter's declared domain. It is the escape
// hatch for studies the other strategies cannot express.
type Custom struct{}

// Name implements Strategy.
func (Custom) Name() string { return NameCustom }

// Generate implements Strategy. Row order is preserved exactly as supplied;
// the caller's ordering becomes the initial ordinal assignment.
func (Custom) Generate(s *schema.Schema, opts Options) (*Matrix, error) {
	if opts.Custom == nil {
		return nil, newError(ErrCodeBadMatrix, NameCustom, "", "custom strategy requires a supplied matrix")
	}
	if opts.Count != 0 && opts.Count != opts.Custom.Len() {
		return nil, newError(ErrCodeBadCount, NameCustom, "",
			fmt.Sprintf("requested count %d does not match supplied matrix rows %d", opts.Count, opts.Custom.Len()))
	}

	supplied := opts.Custom
	if len(supplied.Rows) == 0 {
		return nil, newError(ErrCodeBadMatrix, NameCustom, "", "supplied matrix has no rows")
	}

	// Exact name coverage: no missing parameters, no strays.
	colIndex := make(map[string]int, len(supplied.Names))
	for i, name := range supplied.Names {
		if _, dup := colIndex[name]; dup {
			return nil, newError(ErrCodeBadMatrix, NameCustom, name, "duplicate column in supplied matrix")
		}
		colIndex[name] = i
	}
	for _, name := range supplied.Names {
		if _, ok := s.Get(name); !ok {
			return nil, newError(ErrCodeBadMatrix, NameCustom, name, "column is not a schema parameter")
		}
	}
	for _, name := range s.Names() {
		if _, ok := colIndex[name]; !ok {
			return nil, newError(ErrCodeBadMatrix, NameCustom, name, "schema parameter missing from supplied matrix")
		}
	}

	// Re-project columns into declaration order and validate domains.
	params := s.Parameters()
	m := NewMatrix(s.Names())
	m.Rows = make([][]canon.Value, 0, len(supplied.Rows))
	for i, srcRow := range supplied.Rows {
		if len(srcRow) != len(supplied.Names) {
			return nil, newError(ErrCodeBadMatrix, NameCustom, "",
				fmt.Sprintf("row %d has %d values, expected %d", i, len(srcRow), len(supplied.Names)))
		}
		row := make([]canon.Value, len(params))
		for j, p := range params {
			v := srcRow[colIndex[p.Name]]
			if v == nil {
				return nil, newError(ErrCodeBadMatrix, NameCustom, p.Name,
					fmt.Sprintf("row %d is missing a value", i))
			}
			if !schema.Contains(p, v) {
				return nil, newError(ErrCodeBadMatrix, NameCustom, p.Name,
					fmt.Sprintf("row %d value outside declared domain", i))
			}
			row[j] = v
		}
		m.Rows = append(m.Rows, row)
	}

	return m, nil
}
