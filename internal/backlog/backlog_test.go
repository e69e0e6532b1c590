package backlog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBacklogFlush(t *testing.T) {
	var b Backlog
	log := zap.New(b.Core(zap.InfoLevel))
	log.Debug("hidden")
	log.Info("resolved", zap.Float64("total_len", 146.14))
	log.Warn("careful")
	assert.Equal(t, 2, b.Lines())

	var out bytes.Buffer
	require.NoError(t, b.Flush(&out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "INFO\tresolved"), lines[0])
	assert.Contains(t, lines[0], `"total_len": 146.14`)
	assert.Equal(t, 0, b.Lines())

	out.Reset()
	require.NoError(t, b.Flush(&out))
	assert.Empty(t, out.String())
}
