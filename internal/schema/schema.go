package schema

import (
	"fmt"
	"math"

	"studygen/internal/canon"
)

// Spec is a sealed interface over the three specification variants a
// parameter may carry. Only Fixed, Range, and Choices implement it.
type Spec interface {
	spec() // Sealed - only these types implement it
}

// Fixed pins a parameter to a single value. The parameter still appears in
// every generated set but contributes no variation.
type Fixed struct {
	Value canon.Value
}

func (Fixed) spec() {}

// Range describes a continuous interval that strategies sample from.
// Count is the discretization cardinality used by the discrete strategies
// (cartesian, one-at-a-time); the space-filling strategies sample the
// interval directly through InverseCDF.
type Range struct {
	Dist  Distribution
	Low   float64
	High  float64
	Count int
}

func (Range) spec() {}

// Choices enumerates an explicit discrete value list. The first declared
// choice is the parameter's nominal value for one-at-a-time generation.
type Choices struct {
	Values []canon.Value
}

func (Choices) spec() {}

// Parameter is one named entry of a Schema.
type Parameter struct {
	Name string
	Spec Spec
}

// Schema is a validated, immutable parameter schema. Parameters keeps
// declaration order; lookup by name goes through Get.
type Schema struct {
	params []Parameter
	byName map[string]int
}

// New builds and validates a Schema from parameters in declaration order.
// Fails with *Error on the first invalid parameter; no partially valid
// Schema is ever returned.
func New(params []Parameter) (*Schema, error) {
	if len(params) == 0 {
		return nil, newError(ErrCodeEmptySchema, "", "schema declares no parameters")
	}

	byName := make(map[string]int, len(params))
	for i, p := range params {
		if p.Name == "" {
			return nil, newError(ErrCodeEmptyName, "", fmt.Sprintf("parameter at position %d has an empty name", i))
		}
		if _, dup := byName[p.Name]; dup {
			return nil, newError(ErrCodeDuplicateName, p.Name, "parameter name declared twice")
		}
		if err := validateSpec(p.Name, p.Spec); err != nil {
			return nil, err
		}
		byName[p.Name] = i
	}

	return &Schema{params: append([]Parameter(nil), params...), byName: byName}, nil
}

// validateSpec checks internal consistency of one specification variant.
func validateSpec(name string, s Spec) error {
	switch spec := s.(type) {
	case Fixed:
		return validateValue(name, spec.Value)

	case Range:
		if !isFinite(spec.Low) || !isFinite(spec.High) {
			return newError(ErrCodeInvalidBounds, name, "range bounds must be finite")
		}
		if spec.Low > spec.High {
			return newError(ErrCodeInvalidBounds, name,
				fmt.Sprintf("range low %v exceeds high %v", spec.Low, spec.High))
		}
		if spec.Count < 1 {
			return newError(ErrCodeInvalidCount, name,
				fmt.Sprintf("sample count %d is below one", spec.Count))
		}
		if err := spec.Dist.validate(name, spec.Low, spec.High); err != nil {
			return err
		}
		return nil

	case Choices:
		if len(spec.Values) == 0 {
			return newError(ErrCodeEmptyChoices, name, "choices list is empty")
		}
		for _, v := range spec.Values {
			if err := validateValue(name, v); err != nil {
				return err
			}
		}
		return nil

	case nil:
		return newError(ErrCodeInvalidSpec, name, "parameter carries no specification")

	default:
		return newError(ErrCodeInvalidSpec, name, fmt.Sprintf("unknown specification type %T", s))
	}
}

func validateValue(name string, v canon.Value) error {
	switch val := v.(type) {
	case canon.Float:
		if !isFinite(float64(val)) {
			return newError(ErrCodeInvalidValue, name, fmt.Sprintf("non-finite value %v", float64(val)))
		}
		return nil
	case canon.Str, canon.Int, canon.Bool:
		return nil
	case nil:
		return newError(ErrCodeInvalidValue, name, "value is missing")
	default:
		return newError(ErrCodeInvalidValue, name, fmt.Sprintf("unsupported value type %T", v))
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Len returns the number of declared parameters.
func (s *Schema) Len() int { return len(s.params) }

// Parameters returns the parameters in declaration order. The returned
// slice is a copy; the Schema stays immutable.
func (s *Schema) Parameters() []Parameter {
	return append([]Parameter(nil), s.params...)
}

// Names returns parameter names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.params))
	for i, p := range s.params {
		names[i] = p.Name
	}
	return names
}

// Get returns the parameter with the given name.
func (s *Schema) Get(name string) (Parameter, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Parameter{}, false
	}
	return s.params[i], true
}

// Varying returns the parameters that contribute more than one value,
// in declaration order. Space-filling strategies sample exactly these
// dimensions and hold the rest at their single value.
func (s *Schema) Varying() []Parameter {
	var varying []Parameter
	for _, p := range s.params {
		if cardinality(p.Spec) > 1 {
			varying = append(varying, p)
		}
	}
	return varying
}

func cardinality(s Spec) int {
	switch spec := s.(type) {
	case Fixed:
		return 1
	case Range:
		return spec.Count
	case Choices:
		return len(spec.Values)
	default:
		return 0
	}
}

// Values resolves a parameter's explicit discrete value list:
// a fixed value yields a single-element list, choices yield the declared
// list, and a range is discretized into Count quantile samples.
// Every valid specification resolves to at least one value.
func Values(p Parameter) ([]canon.Value, error) {
	switch spec := p.Spec.(type) {
	case Fixed:
		return []canon.Value{spec.Value}, nil
	case Choices:
		return append([]canon.Value(nil), spec.Values...), nil
	case Range:
		return spec.Samples()
	default:
		return nil, newError(ErrCodeInvalidSpec, p.Name, fmt.Sprintf("unknown specification type %T", p.Spec))
	}
}

// Samples discretizes the range into Count values at evenly spaced
// quantiles: the midpoints of Count equal-probability strata. A Count of
// one yields the distribution median.
func (r Range) Samples() ([]canon.Value, error) {
	values := make([]canon.Value, r.Count)
	for i := 0; i < r.Count; i++ {
		u := (float64(i) + 0.5) / float64(r.Count)
		x, err := r.Dist.InverseCDF(u, r.Low, r.High)
		if err != nil {
			return nil, err
		}
		values[i] = canon.Float(x)
	}
	return values, nil
}

// Contains reports whether a value lies inside the parameter's declared
// domain. Used by the custom-study strategy to validate caller-supplied
// matrices.
func Contains(p Parameter, v canon.Value) bool {
	switch spec := p.Spec.(type) {
	case Fixed:
		return canon.Equal(spec.Value, v)
	case Choices:
		for _, c := range spec.Values {
			if canon.Equal(c, v) {
				return true
			}
		}
		return false
	case Range:
		f, ok := v.(canon.Float)
		if !ok {
			if i, isInt := v.(canon.Int); isInt {
				f = canon.Float(float64(i))
			} else {
				return false
			}
		}
		return float64(f) >= spec.Low && float64(f) <= spec.High
	default:
		return false
	}
}

// Canonical renders the schema as canonical JSON: an object keyed by
// parameter name whose entries describe each specification. Used for the
// lineage record's schema fingerprint.
func (s *Schema) Canonical() ([]byte, error) {
	// Each spec is flattened to scalar fields so the canon encoding applies.
	parts := make([]byte, 0, 256)
	parts = append(parts, '{')
	for i, p := range s.params {
		if i > 0 {
			parts = append(parts, ',')
		}
		entry, err := canonicalSpec(p)
		if err != nil {
			return nil, err
		}
		name, err := canon.CanonicalString(p.Name)
		if err != nil {
			return nil, err
		}
		parts = append(parts, name...)
		parts = append(parts, ':')
		parts = append(parts, entry...)
	}
	parts = append(parts, '}')
	return parts, nil
}

// Hash returns the schema's content-addressed fingerprint.
func (s *Schema) Hash() (string, error) {
	c, err := s.Canonical()
	if err != nil {
		return "", err
	}
	return canon.SchemaHash(c), nil
}

func canonicalSpec(p Parameter) ([]byte, error) {
	switch spec := p.Spec.(type) {
	case Fixed:
		return canon.MarshalCanonical(canon.Object{
			"kind":  canon.Str("fixed"),
			"value": spec.Value,
		})
	case Range:
		return canon.MarshalCanonical(canon.Object{
			"kind":  canon.Str("range"),
			"dist":  canon.Str(string(spec.Dist)),
			"low":   canon.Float(spec.Low),
			"high":  canon.Float(spec.High),
			"count": canon.Int(int64(spec.Count)),
		})
	case Choices:
		// Choice lists are order-sensitive (first value is nominal), so the
		// encoding indexes each value explicitly.
		obj := canon.Object{"kind": canon.Str("choices")}
		for i, v := range spec.Values {
			obj[fmt.Sprintf("c%04d", i)] = v
		}
		return canon.MarshalCanonical(obj)
	default:
		return nil, newError(ErrCodeInvalidSpec, p.Name, fmt.Sprintf("unknown specification type %T", p.Spec))
	}
}
