package enclosure_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/soypat/meisseli/enclosure"
	"github.com/soypat/meisseli/feature"
	"github.com/soypat/meisseli/internal/backlog"
	"github.com/soypat/meisseli/param"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestParameterDefaults(t *testing.T) {
	v, err := enclosure.Parameters().Resolve()
	require.NoError(t, err)
	got := map[string]float64{}
	want := map[string]float64{
		"outer_d":   24.5,
		"inner_r":   10.75,
		"boxh":      21.5,
		"pcb_len":   29.94,
		"wall1_x":   84.7,
		"total_len": 146.14,
	}
	for name := range want {
		got[name] = v.Get(name)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("resolved table mismatch (-want +got):\n%s", diff)
	}
	parts := []string{"mount_len", "pcb_thk", "batt_len", "spring_len", "wall", "pcb_len", "motor_len", "end_wall_extra"}
	var sum float64
	for _, name := range parts {
		sum += v.Get(name)
	}
	assert.InDelta(t, sum, v.Get("total_len"), 1e-9)
}

func TestParameterOverrides(t *testing.T) {
	s := enclosure.Parameters()
	require.NoError(t, s.Override("pcb_margin", 3))
	v, err := s.Resolve()
	require.NoError(t, err)
	assert.InDelta(t, 147.14, v.Get("total_len"), 1e-9)

	assert.Error(t, s.Override("total_len", 100))
	var unknown *param.UnknownParameterError
	assert.ErrorAs(t, s.Override("wal", 2), &unknown)
}

func TestRunValidatesBeforeGeometry(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stl")
	var bl bytes.Buffer
	_, err := enclosure.Run(enclosure.Config{
		Overrides: map[string]float64{"wall": 13},
		Export:    true,
		Dir:       dir,
		Backlog:   &bl,
	})
	var verr *param.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Violations)
	_, statErr := os.Stat(dir)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "output directory must not be created")
	assert.Contains(t, bl.String(), "run failed")
	assert.NotContains(t, bl.String(), "part built")
}

func TestRunFailureBacklog(t *testing.T) {
	var bl bytes.Buffer
	_, err := enclosure.Run(enclosure.Config{
		Overrides: map[string]float64{"sleeve_len": 0},
		Backlog:   &bl,
	})
	var serr *feature.StepError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "bottom", serr.Part)

	log := bl.String()
	// The resolved table and model dimensions precede the failure.
	for _, want := range []string{"boxh=21.5", "outer_d=24.5", "pcb_len=29.94", "model", `"boxh": `} {
		assert.Contains(t, log, want)
	}
	assert.Contains(t, log, "Solid(size=")
	assert.Contains(t, log, "step failed")
	assert.Less(t, strings.Index(log, "step failed"), strings.Index(log, "run failed"))
}

func TestRunNegativeVersion(t *testing.T) {
	var bl bytes.Buffer
	_, err := enclosure.Run(enclosure.Config{Version: -1, Backlog: &bl})
	assert.ErrorContains(t, err, "negative file version")
	assert.NotContains(t, bl.String(), "resolved")
}

func TestRunUnknownOverride(t *testing.T) {
	_, err := enclosure.Run(enclosure.Config{Overrides: map[string]float64{"nope": 1}})
	var unknown *param.UnknownParameterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Name)
}

func TestNewLogger(t *testing.T) {
	var live bytes.Buffer
	var bl backlog.Backlog
	log := enclosure.NewLogger(&live, zap.DebugLevel, &bl)
	log.Debug("step")
	log.Info("part built")
	assert.Contains(t, live.String(), "step")
	assert.Contains(t, live.String(), "part built")
	assert.Equal(t, 1, bl.Lines())

	// Neither destination set still gives a usable logger.
	enclosure.NewLogger(nil, zap.InfoLevel, nil).Info("discarded")
}

func TestRunWithoutExport(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the full model")
	}
	dir := filepath.Join(t.TempDir(), "stl")
	var bl bytes.Buffer
	res, err := enclosure.Run(enclosure.Config{Dir: dir, Backlog: &bl})
	require.NoError(t, err)
	assert.Equal(t, []string{"bottom", "button", "lid", "holder4", "holder635"}, res.Collection.Names())
	assert.Empty(t, res.Paths)
	_, statErr := os.Stat(dir)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
	for _, it := range res.Collection.Items() {
		assert.False(t, it.Solid.IsZero(), it.Name)
		assert.Greater(t, it.Solid.Volume(), 0.0, it.Name)
	}

	log := bl.String()
	assert.Contains(t, log, "total_len")
	assert.Equal(t, 6, strings.Count(log, "part built"), "blank and five parts")
	assert.Contains(t, log, "took")
}

func TestModelGeometry(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the full model")
	}
	v, err := enclosure.Parameters().Resolve()
	require.NoError(t, err)
	coll, err := enclosure.Build(v, nil)
	require.NoError(t, err)

	inside := func(name string, p r3.Vec) bool {
		t.Helper()
		it, ok := coll.Get(name)
		require.True(t, ok, name)
		return it.Placed.SDF().Evaluate(p) < 0
	}
	// Battery space and the shell around it.
	assert.False(t, inside("bottom", r3.Vec{X: 50, Y: 0, Z: -5}))
	assert.True(t, inside("bottom", r3.Vec{X: 50, Y: 11.5, Z: -1}))
	// Heat set insert hole in the end wall.
	assert.False(t, inside("bottom", r3.Vec{X: 4, Y: 0, Z: 7}))
	assert.True(t, inside("bottom", r3.Vec{X: 4, Y: 3, Z: 7}))
	// The lid is moved by -40 in Y and flipped about X, so its top shell
	// at (50, 0, 10) lands at (50, 40, -10).
	assert.True(t, inside("lid", r3.Vec{X: 50, Y: 40, Z: -10}))
	assert.False(t, inside("lid", r3.Vec{X: 50, Y: 0, Z: 10}))
	assert.False(t, inside("lid", r3.Vec{X: 50, Y: 40, Z: 10}))

	// The switch label is engraved 0.5 deep into the end face: along the
	// center line some points are cut at the surface but solid further in.
	var engraved int
	for y := -9.0; y <= 9; y += 0.1 {
		if inside("bottom", r3.Vec{X: 0.75, Y: y}) && !inside("bottom", r3.Vec{X: 0.25, Y: y}) {
			engraved++
		}
	}
	assert.Greater(t, engraved, 5)
}

func TestRunDeterministic(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and exports the full model twice")
	}
	run := func() []string {
		// Version is left unset and defaults to DefaultVersion.
		res, err := enclosure.Run(enclosure.Config{
			Export: true,
			Dir:    t.TempDir(),
			Cells:  48,
		})
		require.NoError(t, err)
		require.Len(t, res.Paths, 5)
		return res.Paths
	}
	first, second := run(), run()
	for i := range first {
		assert.Equal(t, filepath.Base(first[i]), filepath.Base(second[i]))
		b1, err := os.ReadFile(first[i])
		require.NoError(t, err)
		b2, err := os.ReadFile(second[i])
		require.NoError(t, err)
		assert.True(t, bytes.Equal(b1, b2), "%s differs between runs", filepath.Base(first[i]))
	}
	assert.Equal(t, "meisseli_bottom_v1.stl", filepath.Base(first[0]))
}

func TestCompensateMaterial(t *testing.T) {
	var bl bytes.Buffer
	// wall=13 stops the run after resolution so no geometry is built.
	_, err := enclosure.Run(enclosure.Config{
		Material:  "pla",
		Overrides: map[string]float64{"wall": 13},
		Backlog:   &bl,
	})
	var verr *param.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 4, strings.Count(bl.String(), "compensated"))

	_, err = enclosure.Run(enclosure.Config{Material: "unobtainium"})
	assert.ErrorContains(t, err, "unknown material")
}
