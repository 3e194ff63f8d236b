package strategy

import (
	"fmt"

	"studygen/internal/canon"
	"studygen/internal/schema"
)

// Strategy names understood by New.
const (
	NameCartesian      = "cartesian"
	NameOneAtATime     = "one_at_a_time"
	NameLatinHypercube = "latin_hypercube"
	NameSobol          = "sobol"
	NameCustom         = "custom"
)

// Options carries per-invocation strategy parameters. Which fields matter
// depends on the strategy; a strategy fails with BAD_COUNT or MISSING_SEED
// rather than guessing when a required field is absent.
type Options struct {
	// Count is the number of sets requested from a space-filling strategy.
	// Cartesian and one-at-a-time derive their count from the schema and
	// reject a non-zero Count.
	Count int

	// Seed drives Latin hypercube sampling. SeedSet distinguishes an
	// explicit zero seed from an absent one: LHS refuses to run unseeded.
	Seed    uint64
	SeedSet bool

	// Skip is the Sobol starting index. Generating Count sets at Skip s
	// yields exactly the points [s, s+Count) of the sequence, which is what
	// makes deterministic extension possible.
	Skip int

	// Custom is the caller-supplied matrix for the custom strategy.
	Custom *Matrix
}

// Strategy is the single generation capability: schema in, raw matrix out.
// Implementations are stateless; all run-to-run variation flows through
// Options.
type Strategy interface {
	// Name returns the registry name recorded in the lineage. Merging two
	// runs with different names is refused downstream.
	Name() string

	// Generate produces the raw matrix. Row order is part of the contract.
	Generate(s *schema.Schema, opts Options) (*Matrix, error)
}

// New returns the strategy registered under name.
func New(name string) (Strategy, error) {
	switch name {
	case NameCartesian:
		return Cartesian{}, nil
	case NameOneAtATime:
		return OneAtATime{}, nil
	case NameLatinHypercube:
		return LatinHypercube{}, nil
	case NameSobol:
		return Sobol{}, nil
	case NameCustom:
		return Custom{}, nil
	default:
		return nil, newError(ErrCodeUnknownStrategy, name, "", fmt.Sprintf("no strategy registered under %q", name))
	}
}

// Names lists the registered strategy names.
func Names() []string {
	return []string{NameCartesian, NameOneAtATime, NameLatinHypercube, NameSobol, NameCustom}
}

// AppendOnlySafe reports whether regenerating with a grown schema can only
// append or drop whole points, never displace surviving ones, so hash-based
// merge reconciliation alone is sufficient. The order-sensitive space-filling
// strategies are not in this set: they extend through their own
// deterministic continuation (same seed, larger count) instead.
func AppendOnlySafe(name string) bool {
	return name == NameCartesian || name == NameOneAtATime || name == NameCustom
}

// resolveValues resolves every parameter's discrete value list, failing with
// EMPTY_DOMAIN if any list is empty. Schema validation already guarantees
// non-emptiness; this guard keeps the strategy honest when called with a
// hand-built schema.
func resolveValues(strat string, s *schema.Schema) ([][]canon.Value, error) {
	params := s.Parameters()
	values := make([][]canon.Value, len(params))
	for i, p := range params {
		vals, err := schema.Values(p)
		if err != nil {
			return nil, err
		}
		if len(vals) == 0 {
			return nil, newError(ErrCodeEmptyDomain, strat, p.Name, "parameter resolves to zero values")
		}
		values[i] = vals
	}
	return values, nil
}
