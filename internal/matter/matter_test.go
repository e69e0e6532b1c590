package matter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternal(t *testing.T) {
	pla, err := Lookup("PLA")
	require.NoError(t, err)
	got, err := pla.Internal(2.9)
	require.NoError(t, err)
	assert.InDelta(t, 2.9*1.002+0.45, got, 1e-12)

	_, err = pla.Internal(0)
	assert.Error(t, err)
	_, err = Lookup("abs")
	assert.ErrorContains(t, err, "pla")
	assert.Equal(t, []string{"petg", "pla"}, Names())
}
