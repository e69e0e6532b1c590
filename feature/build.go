package feature

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// Part is a named, ordered list of features. Its solid is the fold of the
// steps over the empty accumulator.
type Part struct {
	Name  string
	Steps []Feature
}

// StepError reports the step of a part that failed.
type StepError struct {
	Part    string
	Index   int
	Feature string
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("part %q step %d (%s): %v", e.Part, e.Index, e.Feature, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

var errNoSteps = errors.New("part has no steps")

// Build runs the steps of p in order. Every intermediate solid must enclose
// volume. The first failing step stops the build.
func Build(p Part, log *zap.Logger) (Solid, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(p.Steps) == 0 {
		return Solid{}, &StepError{Part: p.Name, Index: -1, Err: errNoSteps}
	}
	var acc Solid
	for i, step := range p.Steps {
		next, err := step.Apply(acc)
		if err == nil && isEmpty(next.s) {
			err = &GeometryError{Op: step.String(), Msg: "result is empty"}
		}
		if err != nil {
			log.Warn("step failed", zap.String("part", p.Name), zap.Int("step", i), zap.Stringer("feature", step),
				zap.Stringer("solid", acc), zap.Error(err))
			return Solid{}, &StepError{Part: p.Name, Index: i, Feature: step.String(), Err: err}
		}
		acc = next
		log.Debug("step", zap.String("part", p.Name), zap.Int("step", i), zap.Stringer("feature", step), boxField("bounds", acc.Bounds()))
	}
	log.Info("part built", zap.String("part", p.Name), zap.Int("steps", len(p.Steps)),
		zap.Stringer("solid", acc), boxField("bounds", acc.Bounds()))
	return acc, nil
}

func boxField(key string, bb r3.Box) zap.Field {
	return zap.String(key, fmt.Sprintf("[%.4g %.4g %.4g]..[%.4g %.4g %.4g]",
		bb.Min.X, bb.Min.Y, bb.Min.Z, bb.Max.X, bb.Max.Y, bb.Max.Z))
}
