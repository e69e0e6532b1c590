package param_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/soypat/meisseli/param"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOrder(t *testing.T) {
	// Declared out of dependency order on purpose.
	s := param.NewSet().
		DeriveExpr("total", "a + b + margin").
		DeriveExpr("b", "a * 2").
		Base("a", 1.5).
		Base("margin", 2).
		Derive("half", []string{"total"}, func(in ...float64) float64 { return in[0] / 2 })
	v, err := s.Resolve()
	require.NoError(t, err)
	want := map[string]float64{"a": 1.5, "b": 3, "margin": 2, "total": 6.5, "half": 3.25}
	if diff := cmp.Diff(want, v.Map(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("resolved table mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"a", "b", "half", "margin", "total"}, v.Names())
	assert.Equal(t, "total=6.5 b=3 a=1.5 margin=2 half=3.25", v.Summary())
}

func TestResolveDeterministic(t *testing.T) {
	build := func() *param.Set {
		return param.NewSet().
			Base("x", 3).
			DeriveExpr("y", "x * 11 * 2.54").
			DeriveExpr("z", "max(x, y) - min(x, y)")
	}
	v1, err := build().Resolve()
	require.NoError(t, err)
	v2, err := build().Resolve()
	require.NoError(t, err)
	if diff := cmp.Diff(v1.Map(), v2.Map()); diff != "" {
		t.Errorf("resolution not deterministic:\n%s", diff)
	}
	assert.Equal(t, v1.Summary(), v2.Summary())
}

func TestUnknownParameter(t *testing.T) {
	s := param.NewSet().Base("a", 1).DeriveExpr("b", "a + c")
	_, err := s.Resolve()
	var unknown *param.UnknownParameterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "c", unknown.Name)
	assert.Equal(t, "b", unknown.Referrer)

	err = s.Override("nope", 3)
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Name)

	s = param.NewSet().Base("a", 1).Constrain("positive", "d > 0")
	_, err = s.Resolve()
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "positive", unknown.Referrer)
}

func TestCyclicDependency(t *testing.T) {
	s := param.NewSet().
		Base("base", 1).
		DeriveExpr("a", "b + base").
		DeriveExpr("b", "c * 2").
		DeriveExpr("c", "a - 1")
	_, err := s.Resolve()
	var cyclic *param.CyclicDependencyError
	require.ErrorAs(t, err, &cyclic)
	require.Len(t, cyclic.Cycles, 1)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, cyclic.Cycles[0])

	s = param.NewSet().DeriveExpr("self", "self + 1")
	_, err = s.Resolve()
	require.ErrorAs(t, err, &cyclic)
	assert.Equal(t, [][]string{{"self"}}, cyclic.Cycles)
}

func TestValidation(t *testing.T) {
	s := param.NewSet().
		Base("outer_d", 24.5).
		Base("wall", 1.5).
		Constrain("wall_fits", "wall < outer_d / 2").
		Constrain("wall_positive", "wall > 0")
	_, err := s.Resolve()
	require.NoError(t, err)

	require.NoError(t, s.Override("wall", 12.25))
	_, err = s.Resolve()
	var verr *param.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "wall_fits", verr.Violations[0].Name)

	require.NoError(t, s.Override("wall", -1))
	_, err = s.Resolve()
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Violations, 1, "negative wall still fits, but is not positive")
}

func TestNonFiniteIsValidationError(t *testing.T) {
	s := param.NewSet().Base("zero", 0).DeriveExpr("inf", "1 / zero")
	_, err := s.Resolve()
	var verr *param.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "inf", verr.Violations[0].Name)
}

func TestDeclarationErrors(t *testing.T) {
	s := param.NewSet().Base("a", 1).Base("a", 2)
	_, err := s.Resolve()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declared twice")

	s = param.NewSet().DeriveExpr("bad", "1 +")
	require.Error(t, s.Err())

	s = param.NewSet().Base("a", 1).DeriveExpr("b", "a")
	err = s.Override("b", 3)
	require.Error(t, err)
	var unknown *param.UnknownParameterError
	assert.False(t, errors.As(err, &unknown))
	assert.True(t, s.IsBase("a"))
	assert.False(t, s.IsBase("b"))
}
