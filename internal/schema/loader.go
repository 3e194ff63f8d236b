package schema

import (
	"fmt"
	"os"
	"strconv"

	_ "embed"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"studygen/internal/canon"
)

//go:embed studyschema.cue
var constraintCUE string

// LoadError represents a failure to read or structurally validate a schema
// file, before parameter-level validation runs.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants for schema loading.
const (
	ErrCodeNotFound    = "E001" // schema file not found
	ErrCodeParseFailed = "E002" // YAML parse error
	ErrCodeShapeFailed = "E003" // CUE constraint violation
	ErrCodeBadValue    = "E004" // unrepresentable scalar value
)

// Load reads a YAML schema file, checks its shape against the embedded CUE
// constraint, and builds a validated Schema. Parameter declaration order in
// the file is preserved - it determines generation ordering downstream.
//
// File format:
//
//	parameters:
//	  width:
//	    choices: [1, 2]
//	  length:
//	    range: {distribution: uniform, low: 0.5, high: 2.5, samples: 4}
//	  material:
//	    fixed: steel
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema file not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return Parse(data)
}

// Parse builds a validated Schema from YAML bytes. See Load.
func Parse(data []byte) (*Schema, error) {
	if err := checkShape(data); err != nil {
		return nil, err
	}

	// Decode through yaml.Node so mapping order survives; plain map
	// decoding would scramble declaration order.
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing YAML: %v", err)}
	}
	if len(root.Content) == 0 {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: "schema file is empty"}
	}

	doc := root.Content[0]
	paramsNode := mappingValue(doc, "parameters")
	if paramsNode == nil {
		return nil, &LoadError{Code: ErrCodeShapeFailed, Message: "schema file has no parameters section"}
	}

	params, err := decodeParameters(paramsNode)
	if err != nil {
		return nil, err
	}

	return New(params)
}

// checkShape validates the raw document against the embedded CUE constraint.
// This catches structural problems (unknown spec kinds, wrong field types)
// with better messages than ad-hoc node walking would produce.
func checkShape(data []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing YAML: %v", err)}
	}

	ctx := cuecontext.New()
	constraint := ctx.CompileString(constraintCUE)
	if err := constraint.Err(); err != nil {
		return &LoadError{Code: ErrCodeShapeFailed, Message: fmt.Sprintf("internal constraint error: %v", err)}
	}

	def := constraint.LookupPath(cue.ParsePath("#StudySchema"))
	unified := def.Unify(ctx.Encode(raw))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &LoadError{Code: ErrCodeShapeFailed, Message: fmt.Sprintf("schema shape invalid: %v", err)}
	}
	return nil
}

// decodeParameters walks the parameters mapping in document order.
func decodeParameters(node *yaml.Node) ([]Parameter, error) {
	if node.Kind != yaml.MappingNode {
		return nil, &LoadError{Code: ErrCodeShapeFailed, Message: "parameters section is not a mapping"}
	}

	var params []Parameter
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		spec, err := decodeSpec(name, node.Content[i+1])
		if err != nil {
			return nil, err
		}
		params = append(params, Parameter{Name: name, Spec: spec})
	}
	return params, nil
}

func decodeSpec(name string, node *yaml.Node) (Spec, error) {
	if node.Kind != yaml.MappingNode {
		return nil, &LoadError{Code: ErrCodeShapeFailed,
			Message: fmt.Sprintf("parameter %q: specification is not a mapping", name)}
	}

	if fixed := mappingValue(node, "fixed"); fixed != nil {
		v, err := scalarValue(name, fixed)
		if err != nil {
			return nil, err
		}
		return Fixed{Value: v}, nil
	}

	if choices := mappingValue(node, "choices"); choices != nil {
		if choices.Kind != yaml.SequenceNode {
			return nil, &LoadError{Code: ErrCodeShapeFailed,
				Message: fmt.Sprintf("parameter %q: choices is not a list", name)}
		}
		values := make([]canon.Value, 0, len(choices.Content))
		for _, c := range choices.Content {
			v, err := scalarValue(name, c)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return Choices{Values: values}, nil
	}

	if rng := mappingValue(node, "range"); rng != nil {
		var raw struct {
			Distribution string  `yaml:"distribution"`
			Low          float64 `yaml:"low"`
			High         float64 `yaml:"high"`
			Samples      int     `yaml:"samples"`
		}
		if err := rng.Decode(&raw); err != nil {
			return nil, &LoadError{Code: ErrCodeShapeFailed,
				Message: fmt.Sprintf("parameter %q: decoding range: %v", name, err)}
		}
		return Range{
			Dist:  Distribution(raw.Distribution),
			Low:   raw.Low,
			High:  raw.High,
			Count: raw.Samples,
		}, nil
	}

	return nil, &LoadError{Code: ErrCodeShapeFailed,
		Message: fmt.Sprintf("parameter %q: specification must be one of fixed, choices, range", name)}
}

// scalarValue converts a YAML scalar node to a canonical value, preserving
// the int/float distinction the YAML author wrote.
func scalarValue(name string, node *yaml.Node) (canon.Value, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, &LoadError{Code: ErrCodeBadValue,
			Message: fmt.Sprintf("parameter %q: value is not a scalar", name)}
	}

	switch node.Tag {
	case "!!int":
		i, err := strconv.ParseInt(node.Value, 10, 64)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadValue,
				Message: fmt.Sprintf("parameter %q: integer %q out of range", name, node.Value)}
		}
		return canon.Int(i), nil
	case "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadValue,
				Message: fmt.Sprintf("parameter %q: bad float %q", name, node.Value)}
		}
		return canon.Float(f), nil
	case "!!bool":
		b, err := strconv.ParseBool(node.Value)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadValue,
				Message: fmt.Sprintf("parameter %q: bad bool %q", name, node.Value)}
		}
		return canon.Bool(b), nil
	case "!!str":
		return canon.Str(node.Value), nil
	default:
		return nil, &LoadError{Code: ErrCodeBadValue,
			Message: fmt.Sprintf("parameter %q: unsupported YAML tag %s", name, node.Tag)}
	}
}

// mappingValue returns the value node for key in a mapping node, or nil.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
