// Package backlog retains log lines in memory so a run can print its
// construction log at the end, or when it fails.
package backlog

import (
	"bytes"
	"io"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Backlog is a zapcore.WriteSyncer that keeps everything written to it.
type Backlog struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	lines int
}

// Core returns a console encoding core writing to b. Entries carry no
// timestamp so the backlog of identical runs is identical.
func (b *Backlog) Core(level zapcore.LevelEnabler) zapcore.Core {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""
	cfg.CallerKey = ""
	cfg.StacktraceKey = ""
	return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), b, level)
}

func (b *Backlog) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines += bytes.Count(p, []byte{'\n'})
	return b.buf.Write(p)
}

// Sync is a no-op; the lines stay in memory until Flush.
func (b *Backlog) Sync() error { return nil }

// Lines returns the number of retained lines.
func (b *Backlog) Lines() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lines
}

// Flush writes the retained lines to w and empties the backlog.
func (b *Backlog) Flush(w io.Writer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := b.buf.WriteTo(w)
	b.buf.Reset()
	b.lines = 0
	return err
}
