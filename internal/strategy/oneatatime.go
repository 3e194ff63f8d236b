package strategy

import (
	"fmt"

	"studygen/internal/canon"
	"studygen/internal/schema"
)

// OneAtATime perturbs a single parameter per set while holding every other
// parameter at its nominal value. The nominal value of a parameter is its
// first sample: the first declared choice, the first discretized range
// sample, or the fixed value.
//
// Output: the all-nominal set first, then one set per extra sample value,
// walking parameters in declaration order and a parameter's extra samples
// in their declared order. Total count is 1 + sum(cardinality - 1).
type OneAtATime struct{}

// Name implements Strategy.
func (OneAtATime) Name() string { return NameOneAtATime }

// Generate implements Strategy.
func (OneAtATime) Generate(s *schema.Schema, opts Options) (*Matrix, error) {
	if opts.Count != 0 {
		return nil, newError(ErrCodeBadCount, NameOneAtATime, "",
			fmt.Sprintf("one-at-a-time derives its count from the schema, got explicit count %d", opts.Count))
	}

	values, err := resolveValues(NameOneAtATime, s)
	if err != nil {
		return nil, err
	}

	nominal := make([]canon.Value, len(values))
	for j, vals := range values {
		nominal[j] = vals[0]
	}

	m := NewMatrix(s.Names())
	m.Rows = append(m.Rows, append([]canon.Value(nil), nominal...))

	for j, vals := range values {
		for _, extra := range vals[1:] {
			row := append([]canon.Value(nil), nominal...)
			row[j] = extra
			m.Rows = append(m.Rows, row)
		}
	}

	return m, nil
}
