package strategy

import (
	"fmt"
	"math/bits"

	"studygen/internal/canon"
	"studygen/internal/schema"
)

// Sobol draws points from a low-discrepancy Sobol sequence over the unit
// hypercube of dimension equal to the number of varying parameters, then
// maps each dimension into its parameter's range through the inverse CDF.
//
// Extension contract: the Skip option selects the sequence starting index,
// and the generator is strictly sequential, so generating [0, 8) followed
// by [8, 16) produces exactly the points of a single [0, 16) call. This is
// what lets a study grow without displacing previously generated sets.
//
// Direction numbers are the Joe-Kuo values embedded in sobol_table.go,
// which bound the supported dimension count; exceeding it fails with
// DIMENSION_LIMIT rather than degrading sample quality.
type Sobol struct{}

// Name implements Strategy.
func (Sobol) Name() string { return NameSobol }

// Generate implements Strategy.
func (Sobol) Generate(s *schema.Schema, opts Options) (*Matrix, error) {
	if opts.Count < 1 {
		return nil, newError(ErrCodeBadCount, NameSobol, "",
			fmt.Sprintf("sobol requires a positive set count, got %d", opts.Count))
	}
	if opts.Skip < 0 {
		return nil, newError(ErrCodeBadCount, NameSobol, "",
			fmt.Sprintf("sobol skip must be non-negative, got %d", opts.Skip))
	}

	varying := s.Varying()
	if len(varying) == 0 {
		return nil, newError(ErrCodeUnsupportedSchema, NameSobol, "",
			"schema has no varying parameters to sample")
	}
	if len(varying) > MaxSobolDimensions {
		return nil, newError(ErrCodeDimensionLimit, NameSobol, "",
			fmt.Sprintf("%d varying parameters exceed the %d-dimension direction table", len(varying), MaxSobolDimensions))
	}
	for _, p := range varying {
		if _, ok := p.Spec.(schema.Range); !ok {
			return nil, newError(ErrCodeUnsupportedSchema, NameSobol, p.Name,
				"sobol samples continuous ranges; discrete parameters cannot vary under it")
		}
	}

	seq := newSobolSequence(len(varying))
	points := seq.generate(opts.Skip, opts.Count)

	columns := make(map[string][]canon.Value, len(varying))
	for d, p := range varying {
		rspec := p.Spec.(schema.Range)
		column := make([]canon.Value, opts.Count)
		for i := 0; i < opts.Count; i++ {
			x, err := rspec.Dist.InverseCDF(points[i][d], rspec.Low, rspec.High)
			if err != nil {
				return nil, newError(ErrCodeUnsupportedSchema, NameSobol, p.Name, err.Error())
			}
			column[i] = canon.Float(x)
		}
		columns[p.Name] = column
	}

	return assembleSampledMatrix(NameSobol, s, opts.Count, columns)
}

const sobolBits = 32

// sobolSequence is a Gray-code Sobol generator. The state after emitting
// index i is a pure function of i, so skipping is a fast-forward, not a
// different sequence.
type sobolSequence struct {
	dim int
	// v[d][k] is direction number k (0-based) for dimension d, scaled to
	// the top bits of a 32-bit word.
	v [][]uint32
	// x is the current Gray-code state per dimension.
	x []uint32
}

func newSobolSequence(dim int) *sobolSequence {
	seq := &sobolSequence{
		dim: dim,
		v:   make([][]uint32, dim),
		x:   make([]uint32, dim),
	}

	// Dimension 0: v_k = 2^(31-k), the van der Corput sequence in base 2.
	seq.v[0] = make([]uint32, sobolBits)
	for k := 0; k < sobolBits; k++ {
		seq.v[0][k] = 1 << (31 - k)
	}

	for d := 1; d < dim; d++ {
		seq.v[d] = directionNumbers(sobolDirections[d-1])
	}

	return seq
}

// directionNumbers expands one table entry's initial values m into the full
// 32 direction numbers via the primitive-polynomial recurrence
// v_k = v_{k-s} ^ (v_{k-s} >> s) ^ sum of a-selected v_{k-i}.
func directionNumbers(e sobolEntry) []uint32 {
	sdeg := len(e.m)
	v := make([]uint32, sobolBits)
	for k := 0; k < sdeg; k++ {
		v[k] = e.m[k] << (31 - k)
	}
	for k := sdeg; k < sobolBits; k++ {
		v[k] = v[k-sdeg] ^ (v[k-sdeg] >> uint(sdeg))
		for i := 1; i < sdeg; i++ {
			if (e.a>>(sdeg-1-i))&1 == 1 {
				v[k] ^= v[k-i]
			}
		}
	}
	return v
}

// generate returns points [skip, skip+count) of the sequence, each in
// [0, 1)^dim. Index 0 is the origin.
func (s *sobolSequence) generate(skip, count int) [][]float64 {
	points := make([][]float64, 0, count)

	emit := func() []float64 {
		pt := make([]float64, s.dim)
		for d := 0; d < s.dim; d++ {
			pt[d] = float64(s.x[d]) / (1 << sobolBits)
		}
		return pt
	}

	// Index 0 is the all-zero state.
	if skip == 0 {
		points = append(points, emit())
	}

	last := skip + count - 1
	for i := 1; i <= last; i++ {
		// Gray-code step: flip the direction number at the position of the
		// lowest zero bit of i-1 (equivalently trailing ones of i-1).
		c := bits.TrailingZeros32(^uint32(i - 1))
		for d := 0; d < s.dim; d++ {
			s.x[d] ^= s.v[d][c]
		}
		if i >= skip {
			points = append(points, emit())
		}
	}

	return points
}
