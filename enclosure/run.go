package enclosure

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/soypat/meisseli/assembly"
	"github.com/soypat/meisseli/export"
	"github.com/soypat/meisseli/internal/backlog"
	"github.com/soypat/meisseli/internal/matter"
	"github.com/soypat/meisseli/param"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls a run of the enclosure pipeline.
type Config struct {
	// Overrides replace base parameter values before resolution.
	Overrides map[string]float64
	// Material, when set, widens the hole parameters to compensate for
	// shrinkage of the named print material.
	Material string
	// Export writes the STL files. When false the collection is still
	// fully built.
	Export  bool
	Dir     string
	Project string
	// Version numbers the exported files. Zero means DefaultVersion.
	Version int
	Cells   int
	// PreviewDir receives a PNG preview of each part when not empty.
	PreviewDir string
	// Log receives the live log. Nil discards it.
	Log   io.Writer
	Level zapcore.Level
	// Backlog receives the retained info log once the run ends.
	Backlog io.Writer
}

// DefaultVersion is the file version used when Config.Version is zero.
const DefaultVersion = 1

// Result is what a successful run produced.
type Result struct {
	Values     param.Values
	Collection *assembly.Collection
	// Paths lists the written files in part order.
	Paths []string
}

// NewLogger returns a logger writing console lines at level to w and
// retaining info lines in b. Either destination may be nil.
func NewLogger(w io.Writer, level zapcore.Level, b *backlog.Backlog) *zap.Logger {
	var cores []zapcore.Core
	if w != nil {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), level))
	}
	if b != nil {
		cores = append(cores, b.Core(zapcore.InfoLevel))
	}
	return zap.New(zapcore.NewTee(cores...))
}

// Run resolves the parameters, builds every part and exports the
// collection when cfg.Export is set.
func Run(cfg Config) (res *Result, err error) {
	start := time.Now()
	var bl backlog.Backlog
	log := NewLogger(cfg.Log, cfg.Level, &bl)
	defer func() {
		if err != nil {
			log.Error("run failed", zap.Error(err))
		} else {
			log.Info("took", zap.Duration("elapsed", time.Since(start)))
		}
		if cfg.Backlog != nil {
			if ferr := bl.Flush(cfg.Backlog); ferr != nil && err == nil {
				err = fmt.Errorf("flushing backlog: %w", ferr)
			}
		}
	}()

	if cfg.Version < 0 {
		return nil, fmt.Errorf("negative file version %d", cfg.Version)
	}
	_, values, err := Resolve(cfg, log)
	if err != nil {
		return nil, err
	}

	coll, err := Build(values, log)
	if err != nil {
		return nil, err
	}
	res = &Result{Values: values, Collection: coll}

	project := cfg.Project
	if project == "" {
		project = Project
	}
	version := cfg.Version
	if version == 0 {
		version = DefaultVersion
	}
	gate := export.Gate{
		Dir:     cfg.Dir,
		Project: project,
		Version: version,
		Cells:   cfg.Cells,
		Verify:  true,
		Logger:  log,
	}
	if cfg.PreviewDir != "" {
		gate.Viewer = export.PNGViewer{Dir: cfg.PreviewDir}
	}
	switch {
	case cfg.Export:
		res.Paths, err = gate.Export(coll)
		if err != nil {
			return nil, err
		}
	case gate.Viewer != nil:
		if err = gate.Preview(coll); err != nil {
			return nil, err
		}
	default:
		log.Info("export disabled", zap.Strings("parts", coll.Names()))
	}
	return res, nil
}

// Resolve applies the overrides and the material compensation of cfg to
// the default parameter set and resolves it. Overrides apply in name order
// and compensation applies to the overridden hole sizes.
func Resolve(cfg Config, log *zap.Logger) (*param.Set, param.Values, error) {
	if log == nil {
		log = zap.NewNop()
	}
	set := Parameters()
	names := make([]string, 0, len(cfg.Overrides))
	for name := range cfg.Overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := set.Override(name, cfg.Overrides[name]); err != nil {
			return nil, param.Values{}, err
		}
		log.Info("override", zap.String("name", name), zap.Float64("value", cfg.Overrides[name]))
	}
	if cfg.Material != "" {
		if err := compensate(set, cfg.Material, log); err != nil {
			return nil, param.Values{}, err
		}
	}
	values, err := set.Resolve()
	if err != nil {
		return nil, param.Values{}, err
	}
	log.Info("resolved", zap.Int("parameters", len(values.Names())), zap.Float64("total_len", values.Get("total_len")))
	log.Info("parameters", zap.String("values", values.Summary()))
	return set, values, nil
}

// holeParameters are the base parameters that size printed holes.
var holeParameters = []string{"m2_hsi_hole_d", "m1_6_hole", "lid_screw_d", "shaft_d"}

func compensate(set *param.Set, material string, log *zap.Logger) error {
	m, err := matter.Lookup(material)
	if err != nil {
		return err
	}
	for _, name := range holeParameters {
		size, ok := set.BaseValue(name)
		if !ok {
			return &param.UnknownParameterError{Name: name}
		}
		d, err := m.Internal(size)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := set.Override(name, d); err != nil {
			return err
		}
		log.Info("compensated", zap.String("material", m.Name), zap.String("name", name),
			zap.Float64("real", size), zap.Float64("model", d))
	}
	return nil
}
