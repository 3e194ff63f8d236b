package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studygen/internal/canon"
	"studygen/internal/schema"
)

func mustSchema(t *testing.T, params ...schema.Parameter) *schema.Schema {
	t.Helper()
	s, err := schema.New(params)
	require.NoError(t, err)
	return s
}

func choices(vals ...int64) schema.Spec {
	values := make([]canon.Value, len(vals))
	for i, v := range vals {
		values[i] = canon.Int(v)
	}
	return schema.Choices{Values: values}
}

func uniformRange(low, high float64, count int) schema.Spec {
	return schema.Range{Dist: schema.DistUniform, Low: low, High: high, Count: count}
}

func TestNew_KnownAndUnknownNames(t *testing.T) {
	for _, name := range Names() {
		st, err := New(name)
		require.NoError(t, err)
		assert.Equal(t, name, st.Name())
	}

	_, err := New("halton")
	requireGenerationCode(t, err, ErrCodeUnknownStrategy)
}

func TestCartesian_CountIsProductOfCardinalities(t *testing.T) {
	s := mustSchema(t,
		schema.Parameter{Name: "width", Spec: choices(1, 2)},
		schema.Parameter{Name: "height", Spec: choices(10, 20, 30)},
		schema.Parameter{Name: "material", Spec: schema.Fixed{Value: canon.Str("steel")}},
	)

	m, err := Cartesian{}.Generate(s, Options{})
	require.NoError(t, err)
	assert.Equal(t, 6, m.Len())
}

func TestCartesian_FirstDeclaredVariesSlowest(t *testing.T) {
	s := mustSchema(t,
		schema.Parameter{Name: "width", Spec: choices(1, 2)},
		schema.Parameter{Name: "height", Spec: choices(10, 20)},
	)

	m, err := Cartesian{}.Generate(s, Options{})
	require.NoError(t, err)
	require.Equal(t, 4, m.Len())

	expected := []canon.Object{
		{"width": canon.Int(1), "height": canon.Int(10)},
		{"width": canon.Int(1), "height": canon.Int(20)},
		{"width": canon.Int(2), "height": canon.Int(10)},
		{"width": canon.Int(2), "height": canon.Int(20)},
	}
	for i, want := range expected {
		got := m.Row(i)
		for k, v := range want {
			assert.True(t, canon.Equal(v, got[k]), "row %d key %s", i, k)
		}
	}
}

func TestCartesian_RejectsExplicitCount(t *testing.T) {
	s := mustSchema(t, schema.Parameter{Name: "w", Spec: choices(1, 2)})
	_, err := Cartesian{}.Generate(s, Options{Count: 4})
	requireGenerationCode(t, err, ErrCodeBadCount)
}

func TestOneAtATime_CountFormula(t *testing.T) {
	// 1 nominal + (2-1) + (3-1) + (1-1) = 4
	s := mustSchema(t,
		schema.Parameter{Name: "a", Spec: choices(1, 2)},
		schema.Parameter{Name: "b", Spec: choices(10, 20, 30)},
		schema.Parameter{Name: "c", Spec: schema.Fixed{Value: canon.Int(7)}},
	)

	m, err := OneAtATime{}.Generate(s, Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, m.Len())
}

func TestOneAtATime_NominalFirstThenDeclarationOrder(t *testing.T) {
	s := mustSchema(t,
		schema.Parameter{Name: "a", Spec: choices(1, 2)},
		schema.Parameter{Name: "b", Spec: choices(10, 20, 30)},
	)

	m, err := OneAtATime{}.Generate(s, Options{})
	require.NoError(t, err)
	require.Equal(t, 4, m.Len())

	expected := []canon.Object{
		{"a": canon.Int(1), "b": canon.Int(10)}, // nominal
		{"a": canon.Int(2), "b": canon.Int(10)}, // a perturbed
		{"a": canon.Int(1), "b": canon.Int(20)}, // b extras in declared order
		{"a": canon.Int(1), "b": canon.Int(30)},
	}
	for i, want := range expected {
		got := m.Row(i)
		for k, v := range want {
			assert.True(t, canon.Equal(v, got[k]), "row %d key %s", i, k)
		}
	}
}

func TestLatinHypercube_SeedDeterminism(t *testing.T) {
	s := mustSchema(t,
		schema.Parameter{Name: "x", Spec: uniformRange(0, 1, 8)},
		schema.Parameter{Name: "y", Spec: uniformRange(-5, 5, 8)},
	)
	opts := Options{Count: 8, Seed: 42, SeedSet: true}

	first, err := LatinHypercube{}.Generate(s, opts)
	require.NoError(t, err)

	for run := 0; run < 3; run++ {
		again, err := LatinHypercube{}.Generate(s, opts)
		require.NoError(t, err)
		require.Equal(t, first.Len(), again.Len())
		for i := range first.Rows {
			for j := range first.Rows[i] {
				assert.True(t, canon.Equal(first.Rows[i][j], again.Rows[i][j]),
					"row %d col %d differs across identical runs", i, j)
			}
		}
	}

	different, err := LatinHypercube{}.Generate(s, Options{Count: 8, Seed: 43, SeedSet: true})
	require.NoError(t, err)
	same := true
	for i := range first.Rows {
		for j := range first.Rows[i] {
			if !canon.Equal(first.Rows[i][j], different.Rows[i][j]) {
				same = false
			}
		}
	}
	assert.False(t, same, "different seeds should produce different matrices")
}

func TestLatinHypercube_OneValuePerStratum(t *testing.T) {
	const n = 16
	s := mustSchema(t, schema.Parameter{Name: "x", Spec: uniformRange(0, 1, n)})

	m, err := LatinHypercube{}.Generate(s, Options{Count: n, Seed: 7, SeedSet: true})
	require.NoError(t, err)
	require.Equal(t, n, m.Len())

	// Each of the n equal-probability strata of [0,1) must hold exactly one sample.
	seen := make([]bool, n)
	for i := 0; i < n; i++ {
		x := float64(m.Row(i)["x"].(canon.Float))
		stratum := int(x * n)
		require.GreaterOrEqual(t, stratum, 0)
		require.Less(t, stratum, n)
		assert.False(t, seen[stratum], "stratum %d sampled twice", stratum)
		seen[stratum] = true
	}
}

func TestLatinHypercube_RequiresSeedAndCount(t *testing.T) {
	s := mustSchema(t, schema.Parameter{Name: "x", Spec: uniformRange(0, 1, 4)})

	_, err := LatinHypercube{}.Generate(s, Options{Count: 4})
	requireGenerationCode(t, err, ErrCodeMissingSeed)

	_, err = LatinHypercube{}.Generate(s, Options{Seed: 1, SeedSet: true})
	requireGenerationCode(t, err, ErrCodeBadCount)
}

func TestLatinHypercube_RejectsDiscreteVarying(t *testing.T) {
	s := mustSchema(t, schema.Parameter{Name: "w", Spec: choices(1, 2)})
	_, err := LatinHypercube{}.Generate(s, Options{Count: 4, Seed: 1, SeedSet: true})
	requireGenerationCode(t, err, ErrCodeUnsupportedSchema)
}

func TestSobol_FirstPointsMatchKnownSequence(t *testing.T) {
	s := mustSchema(t,
		schema.Parameter{Name: "x", Spec: uniformRange(0, 1, 8)},
		schema.Parameter{Name: "y", Spec: uniformRange(0, 1, 8)},
	)

	m, err := Sobol{}.Generate(s, Options{Count: 4})
	require.NoError(t, err)
	require.Equal(t, 4, m.Len())

	// The 2-D Sobol sequence opens (0,0), (1/2,1/2), (3/4,1/4), (1/4,3/4).
	expected := [][2]float64{{0, 0}, {0.5, 0.5}, {0.75, 0.25}, {0.25, 0.75}}
	for i, want := range expected {
		row := m.Row(i)
		assert.InDelta(t, want[0], float64(row["x"].(canon.Float)), 1e-12, "row %d x", i)
		assert.InDelta(t, want[1], float64(row["y"].(canon.Float)), 1e-12, "row %d y", i)
	}
}

func TestSobol_SkipComposesWithSingleCall(t *testing.T) {
	s := mustSchema(t,
		schema.Parameter{Name: "x", Spec: uniformRange(0, 1, 8)},
		schema.Parameter{Name: "y", Spec: uniformRange(2, 6, 8)},
		schema.Parameter{Name: "z", Spec: uniformRange(-1, 1, 8)},
	)

	whole, err := Sobol{}.Generate(s, Options{Count: 16})
	require.NoError(t, err)

	head, err := Sobol{}.Generate(s, Options{Count: 8})
	require.NoError(t, err)
	tail, err := Sobol{}.Generate(s, Options{Count: 8, Skip: 8})
	require.NoError(t, err)

	require.Equal(t, 16, whole.Len())
	require.Equal(t, 8, head.Len())
	require.Equal(t, 8, tail.Len())

	for i := 0; i < 8; i++ {
		for j := range whole.Rows[i] {
			assert.True(t, canon.Equal(whole.Rows[i][j], head.Rows[i][j]), "head row %d col %d", i, j)
			assert.True(t, canon.Equal(whole.Rows[i+8][j], tail.Rows[i][j]), "tail row %d col %d", i, j)
		}
	}
}

func TestSobol_DimensionLimit(t *testing.T) {
	params := make([]schema.Parameter, MaxSobolDimensions+1)
	for i := range params {
		params[i] = schema.Parameter{
			Name: string(rune('a'+i/26)) + string(rune('a'+i%26)),
			Spec: uniformRange(0, 1, 4),
		}
	}
	s := mustSchema(t, params...)

	_, err := Sobol{}.Generate(s, Options{Count: 4})
	requireGenerationCode(t, err, ErrCodeDimensionLimit)
}

func TestSobol_HoldsNonVaryingAtSingleValue(t *testing.T) {
	s := mustSchema(t,
		schema.Parameter{Name: "x", Spec: uniformRange(0, 1, 8)},
		schema.Parameter{Name: "material", Spec: schema.Fixed{Value: canon.Str("steel")}},
	)

	m, err := Sobol{}.Generate(s, Options{Count: 4})
	require.NoError(t, err)
	for i := 0; i < m.Len(); i++ {
		assert.Equal(t, canon.Str("steel"), m.Row(i)["material"])
	}
}

func TestCustom_PassthroughPreservesRowOrder(t *testing.T) {
	s := mustSchema(t,
		schema.Parameter{Name: "width", Spec: choices(1, 2, 3)},
		schema.Parameter{Name: "height", Spec: choices(10, 20, 30)},
	)

	supplied := NewMatrix([]string{"height", "width"}) // column order differs from schema
	require.NoError(t, supplied.Append([]canon.Value{canon.Int(30), canon.Int(1)}))
	require.NoError(t, supplied.Append([]canon.Value{canon.Int(10), canon.Int(3)}))

	m, err := Custom{}.Generate(s, Options{Custom: supplied})
	require.NoError(t, err)
	require.Equal(t, 2, m.Len())

	assert.Equal(t, []string{"width", "height"}, m.Names)
	assert.Equal(t, canon.Int(1), m.Row(0)["width"])
	assert.Equal(t, canon.Int(30), m.Row(0)["height"])
	assert.Equal(t, canon.Int(3), m.Row(1)["width"])
	assert.Equal(t, canon.Int(10), m.Row(1)["height"])
}

func TestCustom_Validation(t *testing.T) {
	s := mustSchema(t,
		schema.Parameter{Name: "width", Spec: choices(1, 2)},
		schema.Parameter{Name: "height", Spec: choices(10, 20)},
	)

	t.Run("missing matrix", func(t *testing.T) {
		_, err := Custom{}.Generate(s, Options{})
		requireGenerationCode(t, err, ErrCodeBadMatrix)
	})

	t.Run("missing column", func(t *testing.T) {
		m := NewMatrix([]string{"width"})
		require.NoError(t, m.Append([]canon.Value{canon.Int(1)}))
		_, err := Custom{}.Generate(s, Options{Custom: m})
		requireGenerationCode(t, err, ErrCodeBadMatrix)
	})

	t.Run("stray column", func(t *testing.T) {
		m := NewMatrix([]string{"width", "height", "depth"})
		require.NoError(t, m.Append([]canon.Value{canon.Int(1), canon.Int(10), canon.Int(5)}))
		_, err := Custom{}.Generate(s, Options{Custom: m})
		requireGenerationCode(t, err, ErrCodeBadMatrix)
	})

	t.Run("value outside domain", func(t *testing.T) {
		m := NewMatrix([]string{"width", "height"})
		require.NoError(t, m.Append([]canon.Value{canon.Int(9), canon.Int(10)}))
		_, err := Custom{}.Generate(s, Options{Custom: m})
		var ge *GenerationError
		require.ErrorAs(t, err, &ge)
		assert.Equal(t, ErrCodeBadMatrix, ge.Code)
		assert.Equal(t, "width", ge.Param)
	})
}

func TestAppendOnlySafe(t *testing.T) {
	assert.True(t, AppendOnlySafe(NameCartesian))
	assert.True(t, AppendOnlySafe(NameOneAtATime))
	assert.True(t, AppendOnlySafe(NameCustom))
	assert.False(t, AppendOnlySafe(NameSobol))
	assert.False(t, AppendOnlySafe(NameLatinHypercube))
}

func requireGenerationCode(t *testing.T, err error, code GenerationErrorCode) {
	t.Helper()
	require.Error(t, err)
	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, code, ge.Code)
	assert.True(t, IsGenerationError(err))
}
