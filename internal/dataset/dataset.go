package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"studygen/internal/canon"
	"studygen/internal/study"
)

// Column is one variable of the dataset: a parameter's value across all
// sets, indexed like Sets/Ordinals/Hashes.
type Column []canon.Value

// MarshalJSON renders the column with each scalar in canonical form, so
// floats keep their fixed-precision encoding and stay distinguishable from
// ints after a round trip.
func (c Column) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := canon.MarshalValue(v)
		if err != nil {
			return nil, fmt.Errorf("column index %d: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a column, inverting MarshalJSON's typed encoding.
func (c *Column) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = make(Column, len(raw))
	for i, r := range raw {
		v, err := canon.UnmarshalValue(r)
		if err != nil {
			return fmt.Errorf("column index %d: %w", i, err)
		}
		(*c)[i] = v
	}
	return nil
}

// Dataset is the materialized form of a study. Sets, Ordinals and Hashes are
// parallel coordinates in final ordinal order; Variables holds one column per
// parameter. Parameters records the declaration order for consumers that
// care; Variables is keyed by name and order-independent.
type Dataset struct {
	Study      string            `json:"study"`
	Strategy   string            `json:"strategy"`
	SchemaHash string            `json:"schema_hash"`
	Sets       []string          `json:"sets"`
	Ordinals   []int             `json:"ordinals"`
	Hashes     []string          `json:"hashes"`
	Parameters []string          `json:"parameters"`
	Variables  map[string]Column `json:"variables"`
}

// FromStudy materializes a study into columns. parameters fixes the declared
// column order; pass nil to fall back to canonical key order. Every set must
// bind exactly the given parameter names.
func FromStudy(st *study.Study, parameters []string) (*Dataset, error) {
	if parameters == nil && len(st.Sets) > 0 {
		parameters = st.Sets[0].Values.SortedKeys()
	}

	d := &Dataset{
		Study:      st.Name,
		Strategy:   st.Strategy,
		SchemaHash: st.SchemaHash,
		Sets:       make([]string, 0, len(st.Sets)),
		Ordinals:   make([]int, 0, len(st.Sets)),
		Hashes:     make([]string, 0, len(st.Sets)),
		Parameters: parameters,
		Variables:  make(map[string]Column, len(parameters)),
	}
	for _, name := range parameters {
		d.Variables[name] = make(Column, 0, len(st.Sets))
	}

	for _, set := range st.Sets {
		if len(set.Values) != len(parameters) {
			return nil, fmt.Errorf("set %s binds %d parameters, dataset has %d",
				set.Name(), len(set.Values), len(parameters))
		}
		d.Sets = append(d.Sets, set.Name())
		d.Ordinals = append(d.Ordinals, set.Ordinal)
		d.Hashes = append(d.Hashes, set.Hash)
		for _, name := range parameters {
			v, ok := set.Values[name]
			if !ok {
				return nil, fmt.Errorf("set %s is missing parameter %q", set.Name(), name)
			}
			d.Variables[name] = append(d.Variables[name], v)
		}
	}
	return d, nil
}

// ToStudy reconstructs the study this dataset was materialized from. Each
// row's values are re-hashed and checked against the stored hash, so a
// hand-edited artifact cannot silently seed a merge with wrong identities.
func (d *Dataset) ToStudy() (*study.Study, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	st := &study.Study{
		Name:       d.Study,
		Strategy:   d.Strategy,
		SchemaHash: d.SchemaHash,
	}
	for i := range d.Sets {
		values := make(canon.Object, len(d.Parameters))
		for _, name := range d.Parameters {
			values[name] = d.Variables[name][i]
		}
		hash, err := canon.SetHash(values)
		if err != nil {
			return nil, fmt.Errorf("set %s: %w", d.Sets[i], err)
		}
		if hash != d.Hashes[i] {
			return nil, fmt.Errorf("set %s: stored hash does not match its values", d.Sets[i])
		}
		st.Sets = append(st.Sets, study.ParameterSet{
			Ordinal: d.Ordinals[i],
			Hash:    d.Hashes[i],
			Values:  values,
		})
	}
	return st, nil
}

// validate checks the parallel-array shape after an untrusted decode.
func (d *Dataset) validate() error {
	n := len(d.Sets)
	if len(d.Ordinals) != n || len(d.Hashes) != n {
		return fmt.Errorf("dataset coordinates disagree: %d sets, %d ordinals, %d hashes",
			n, len(d.Ordinals), len(d.Hashes))
	}
	if len(d.Variables) != len(d.Parameters) {
		return fmt.Errorf("dataset has %d variables for %d parameters",
			len(d.Variables), len(d.Parameters))
	}
	if !slices.IsSortedFunc(d.Ordinals, func(a, b int) int { return a - b }) {
		return fmt.Errorf("dataset ordinals are not in ascending order")
	}
	for _, name := range d.Parameters {
		col, ok := d.Variables[name]
		if !ok {
			return fmt.Errorf("dataset is missing variable %q", name)
		}
		if len(col) != n {
			return fmt.Errorf("variable %q has %d values for %d sets", name, len(col), n)
		}
	}
	return nil
}
