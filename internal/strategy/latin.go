package strategy

import (
	"fmt"
	"math/rand/v2"

	"studygen/internal/canon"
	"studygen/internal/schema"
)

// LatinHypercube stratifies each varying parameter's range into Count
// equal-probability strata, draws one random value inside every stratum,
// and independently permutes the per-parameter stratum assignment across
// sets so that every one-dimensional projection is a Latin square.
//
// Determinism contract: identical (seed, schema, count) reproduces the
// matrix bit for bit. The generator is rand.NewPCG, whose stream is pinned
// by the language spec and does not drift across Go releases.
//
// Every varying parameter must be a Range; discrete varying parameters are
// a schema/strategy mismatch. Fixed and single-valued parameters ride along
// at their one value.
type LatinHypercube struct{}

// Name implements Strategy.
func (LatinHypercube) Name() string { return NameLatinHypercube }

// Generate implements Strategy.
func (LatinHypercube) Generate(s *schema.Schema, opts Options) (*Matrix, error) {
	if opts.Count < 1 {
		return nil, newError(ErrCodeBadCount, NameLatinHypercube, "",
			fmt.Sprintf("latin hypercube requires a positive set count, got %d", opts.Count))
	}
	if !opts.SeedSet {
		return nil, newError(ErrCodeMissingSeed, NameLatinHypercube, "",
			"latin hypercube requires an explicit seed for reproducibility")
	}

	varying := s.Varying()
	if len(varying) == 0 {
		return nil, newError(ErrCodeUnsupportedSchema, NameLatinHypercube, "",
			"schema has no varying parameters to sample")
	}
	for _, p := range varying {
		if _, ok := p.Spec.(schema.Range); !ok {
			return nil, newError(ErrCodeUnsupportedSchema, NameLatinHypercube, p.Name,
				"latin hypercube samples continuous ranges; discrete parameters cannot vary under it")
		}
	}

	n := opts.Count
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))

	// Per varying parameter: one value per stratum, then a permutation that
	// scatters the strata across sets. Parameters are processed in
	// declaration order so the consumed random stream is stable.
	columns := make(map[string][]canon.Value, len(varying))
	for _, p := range varying {
		rspec := p.Spec.(schema.Range)

		column := make([]canon.Value, n)
		for i := 0; i < n; i++ {
			u := (float64(i) + rng.Float64()) / float64(n)
			x, err := rspec.Dist.InverseCDF(u, rspec.Low, rspec.High)
			if err != nil {
				return nil, newError(ErrCodeUnsupportedSchema, NameLatinHypercube, p.Name, err.Error())
			}
			column[i] = canon.Float(x)
		}

		perm := rng.Perm(n)
		scattered := make([]canon.Value, n)
		for i, stratum := range perm {
			scattered[i] = column[stratum]
		}
		columns[p.Name] = scattered
	}

	return assembleSampledMatrix(NameLatinHypercube, s, n, columns)
}

// assembleSampledMatrix builds the output matrix for a space-filling
// strategy: sampled columns for the varying parameters, the single resolved
// value for everything else.
func assembleSampledMatrix(strat string, s *schema.Schema, n int, columns map[string][]canon.Value) (*Matrix, error) {
	params := s.Parameters()

	held := make([]canon.Value, len(params))
	for j, p := range params {
		if _, sampled := columns[p.Name]; sampled {
			continue
		}
		vals, err := schema.Values(p)
		if err != nil {
			return nil, err
		}
		if len(vals) == 0 {
			return nil, newError(ErrCodeEmptyDomain, strat, p.Name, "parameter resolves to zero values")
		}
		held[j] = vals[0]
	}

	m := NewMatrix(s.Names())
	m.Rows = make([][]canon.Value, 0, n)
	for i := 0; i < n; i++ {
		row := make([]canon.Value, len(params))
		for j, p := range params {
			if col, sampled := columns[p.Name]; sampled {
				row[j] = col[i]
			} else {
				row[j] = held[j]
			}
		}
		m.Rows = append(m.Rows, row)
	}
	return m, nil
}
