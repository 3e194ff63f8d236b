package schema

import (
	"fmt"
	"math"
)

// Distribution names the probability law a Range is sampled under.
type Distribution string

const (
	// DistUniform samples the interval with constant density.
	DistUniform Distribution = "uniform"

	// DistLogUniform samples uniformly in log space. Requires low > 0.
	DistLogUniform Distribution = "loguniform"
)

// validate checks distribution-specific bound constraints.
func (d Distribution) validate(name string, low, high float64) error {
	switch d {
	case DistUniform:
		return nil
	case DistLogUniform:
		if low <= 0 {
			return newError(ErrCodeInvalidBounds, name,
				fmt.Sprintf("loguniform requires low > 0, got %v", low))
		}
		return nil
	case "":
		return newError(ErrCodeInvalidSpec, name, "range is missing a distribution")
	default:
		return newError(ErrCodeInvalidSpec, name, fmt.Sprintf("unknown distribution %q", d))
	}
}

// InverseCDF maps a unit-interval quantile u into [low, high] under the
// distribution. This is the single point where space-filling strategies
// (Latin hypercube, Sobol) touch the parameter's probability law.
func (d Distribution) InverseCDF(u, low, high float64) (float64, error) {
	if u < 0 || u > 1 {
		return 0, fmt.Errorf("quantile %v outside [0,1]", u)
	}
	switch d {
	case DistUniform:
		return low + u*(high-low), nil
	case DistLogUniform:
		if low <= 0 {
			return 0, fmt.Errorf("loguniform requires low > 0, got %v", low)
		}
		return math.Exp(math.Log(low) + u*(math.Log(high)-math.Log(low))), nil
	default:
		return 0, fmt.Errorf("unknown distribution %q", d)
	}
}
