package canon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"unicode/utf16"
)

// Value is a sealed interface over the scalar types a parameter may take.
// Only Str, Int, Float, and Bool implement it. There is no null and there
// are no composite values: a parameter set binds each name to one scalar.
type Value interface {
	value() // Sealed - only these types implement it
}

// Str is a string parameter value.
type Str string

func (Str) value() {}

// Int is an integer parameter value. Always int64, never a narrower type,
// so the canonical encoding is unambiguous.
type Int int64

func (Int) value() {}

// Float is a floating-point parameter value. It must be finite; NaN and
// infinities are rejected at schema validation and again at marshal time.
type Float float64

func (Float) value() {}

// Bool is a boolean parameter value.
type Bool bool

func (Bool) value() {}

// Object maps parameter names to values. One Object is one parameter set.
// Use SortedKeys for deterministic iteration.
type Object map[string]Value

// FloatPrecision is the number of significant digits after the leading digit
// in the canonical float encoding. Two floats that agree to this precision
// are the same parameter value for identity purposes.
const FloatPrecision = 12

// FormatFloat renders a float in its canonical fixed-precision form.
// The same value always produces the same bytes, and the encoding is
// independent of how the value was computed.
func FormatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("non-finite float %v is forbidden in canonical form", f)
	}
	// Normalize negative zero so -0.0 and 0.0 share an identity.
	if f == 0 {
		f = 0
	}
	return strconv.FormatFloat(f, 'e', FloatPrecision, 64), nil
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings uses UTF-8 byte order, which differs for characters
// outside the BMP, so the comparison must go through utf16.Encode.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units as required by
// RFC 8785 canonical JSON.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := len(a16)
	if len(b16) < minLen {
		minLen = len(b16)
	}
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	if len(a16) < len(b16) {
		return -1
	}
	if len(a16) > len(b16) {
		return 1
	}
	return 0
}

// FromGo converts a plain Go scalar to a Value. Used at the boundaries where
// values arrive from YAML or CUE decoding.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case Value:
		return val, nil
	case string:
		return Str(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case bool:
		return Bool(val), nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("non-finite float %v", val)
		}
		return Float(val), nil
	case float32:
		return FromGo(float64(val))
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q is neither int64 nor float64", val)
		}
		return FromGo(f)
	case nil:
		return nil, fmt.Errorf("null is forbidden: parameter values are scalars")
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// ToGo converts a Value back to the plain Go scalar it wraps.
func ToGo(v Value) any {
	switch val := v.(type) {
	case Str:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	default:
		return nil
	}
}

// Equal reports whether two values are identical under the canonical
// encoding. Floats compare by their fixed-precision form, not bit pattern.
func Equal(a, b Value) bool {
	ab, errA := marshalValue(a)
	bb, errB := marshalValue(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// MarshalJSON implements json.Marshaler for Object with sorted keys.
// NOTE: this is display JSON, not the canonical form - use MarshalCanonical
// for anything that feeds a hash.
func (obj Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := marshalValue(obj[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalValue decodes a single JSON scalar into a Value. Numbers decode
// via json.Number: an exact int64 becomes Int, anything else becomes Float,
// which is the inverse of MarshalValue's encoding.
func UnmarshalValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return FromGo(raw)
}

// UnmarshalJSON implements json.Unmarshaler for Object. Numbers decode via
// json.Number so large integers survive without float64 precision loss.
func (obj *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	*obj = make(Object, len(raw))
	for k, v := range raw {
		val, err := FromGo(v)
		if err != nil {
			return fmt.Errorf("object key %q: %w", k, err)
		}
		(*obj)[k] = val
	}
	return nil
}
