package strategy

import (
	"fmt"

	"studygen/internal/canon"
	"studygen/internal/schema"
)

// Cartesian emits the full cross-product of every parameter's discrete
// value list. Continuous ranges are discretized through their declared
// sample count first.
//
// Ordering contract: nested-loop order with the first-declared parameter
// varying slowest. This is load-bearing - it fixes the initial ordinal of
// every set, and ordinals are what the build system keys artifacts to.
type Cartesian struct{}

// Name implements Strategy.
func (Cartesian) Name() string { return NameCartesian }

// Generate implements Strategy. The output row count is exactly the product
// of the per-parameter cardinalities.
func (Cartesian) Generate(s *schema.Schema, opts Options) (*Matrix, error) {
	if opts.Count != 0 {
		return nil, newError(ErrCodeBadCount, NameCartesian, "",
			fmt.Sprintf("cartesian derives its count from the schema, got explicit count %d", opts.Count))
	}

	values, err := resolveValues(NameCartesian, s)
	if err != nil {
		return nil, err
	}

	total := 1
	for _, vals := range values {
		total *= len(vals)
	}

	m := NewMatrix(s.Names())
	m.Rows = make([][]canon.Value, 0, total)

	// Odometer over value indices: last-declared parameter ticks fastest,
	// so the first-declared varies slowest.
	indices := make([]int, len(values))
	for {
		row := make([]canon.Value, len(values))
		for j, vals := range values {
			row[j] = vals[indices[j]]
		}
		m.Rows = append(m.Rows, row)

		j := len(indices) - 1
		for j >= 0 {
			indices[j]++
			if indices[j] < len(values[j]) {
				break
			}
			indices[j] = 0
			j--
		}
		if j < 0 {
			break
		}
	}

	return m, nil
}
