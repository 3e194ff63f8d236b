package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studygen/internal/canon"
)

const sampleSchema = `
parameters:
  width:
    choices: [1, 2]
  length:
    range:
      distribution: uniform
      low: 0.5
      high: 2.5
      samples: 4
  material:
    fixed: steel
  polish:
    fixed: true
`

func TestParse_PreservesDeclarationOrder(t *testing.T) {
	s, err := Parse([]byte(sampleSchema))
	require.NoError(t, err)

	assert.Equal(t, []string{"width", "length", "material", "polish"}, s.Names())
}

func TestParse_DecodesSpecVariants(t *testing.T) {
	s, err := Parse([]byte(sampleSchema))
	require.NoError(t, err)

	width, _ := s.Get("width")
	choices, ok := width.Spec.(Choices)
	require.True(t, ok)
	assert.Equal(t, []canon.Value{canon.Int(1), canon.Int(2)}, choices.Values)

	length, _ := s.Get("length")
	rng, ok := length.Spec.(Range)
	require.True(t, ok)
	assert.Equal(t, DistUniform, rng.Dist)
	assert.Equal(t, 0.5, rng.Low)
	assert.Equal(t, 2.5, rng.High)
	assert.Equal(t, 4, rng.Count)

	material, _ := s.Get("material")
	fixed, ok := material.Spec.(Fixed)
	require.True(t, ok)
	assert.Equal(t, canon.Str("steel"), fixed.Value)

	polish, _ := s.Get("polish")
	fixedBool, ok := polish.Spec.(Fixed)
	require.True(t, ok)
	assert.Equal(t, canon.Bool(true), fixedBool.Value)
}

func TestParse_RejectsUnknownSpecKind(t *testing.T) {
	_, err := Parse([]byte(`
parameters:
  width:
    sweep: [1, 2]
`))
	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeShapeFailed, le.Code)
}

func TestParse_RejectsMissingParameters(t *testing.T) {
	_, err := Parse([]byte(`studies: {}`))
	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
}

func TestParse_SemanticErrorsSurfaceAsSchemaErrors(t *testing.T) {
	// Shape is fine, semantics are not: low > high.
	_, err := Parse([]byte(`
parameters:
  x:
    range:
      distribution: uniform
      low: 5.0
      high: 1.0
      samples: 3
`))
	requireSchemaCode(t, err, ErrCodeInvalidBounds)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestLoad_RoundTripThroughFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSchema), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())
}
