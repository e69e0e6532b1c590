package param

import (
	"fmt"
	"strings"
)

// UnknownParameterError is returned when a formula or override names
// a parameter that was never declared.
type UnknownParameterError struct {
	Name string
	// Referrer is the parameter or constraint whose formula holds the
	// reference. Empty for overrides.
	Referrer string
}

func (e *UnknownParameterError) Error() string {
	if e.Referrer == "" {
		return fmt.Sprintf("unknown parameter %q", e.Name)
	}
	return fmt.Sprintf("unknown parameter %q referenced by %q", e.Name, e.Referrer)
}

// CyclicDependencyError is returned when derived parameters depend on
// each other in a loop.
type CyclicDependencyError struct {
	// Cycles holds the names of each strongly connected group of parameters
	// that could not be ordered.
	Cycles [][]string
}

func (e *CyclicDependencyError) Error() string {
	parts := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		parts[i] = strings.Join(c, " -> ")
	}
	return "cyclic parameter dependency: " + strings.Join(parts, "; ")
}

// ValidationError lists every constraint a resolved parameter table violates.
type ValidationError struct {
	Violations []Violation
}

// Violation is a single failed constraint.
type Violation struct {
	Name string
	Rule string
	// Err is set when the rule could not be evaluated.
	Err error
}

func (v Violation) String() string {
	if v.Err != nil {
		return fmt.Sprintf("%s (%s): %v", v.Name, v.Rule, v.Err)
	}
	return fmt.Sprintf("%s (%s)", v.Name, v.Rule)
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "parameter validation failed: " + strings.Join(parts, ", ")
}
