// Package param resolves a table of named physical dimensions. Base
// parameters are literals. Derived parameters are expressions or functions
// of other parameters and are resolved in dependency order.
package param

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

type kind int

const (
	kindBase kind = iota
	kindExpr
	kindFunc
)

// Func computes a derived parameter from the values of its declared inputs,
// given in declaration order.
type Func func(in ...float64) float64

type decl struct {
	name   string
	kind   kind
	value  float64
	source string
	fn     Func
	deps   []string
}

type constraint struct {
	name   string
	source string
	deps   []string
}

// Set is an unresolved parameter table. The zero value is not usable,
// create one with NewSet.
type Set struct {
	decls       []decl
	index       map[string]int
	constraints []constraint
	err         error
}

// NewSet returns an empty parameter set.
func NewSet() *Set {
	return &Set{index: make(map[string]int)}
}

// Base declares a literal parameter.
func (s *Set) Base(name string, v float64) *Set {
	return s.declare(decl{name: name, kind: kindBase, value: v})
}

// DeriveExpr declares a parameter computed by an expression over other
// parameter names, for example "mount_len + pcb_thk". Arithmetic operators
// and the expr builtins (min, max, abs, ...) are available.
func (s *Set) DeriveExpr(name, expression string) *Set {
	deps, err := identifiers(expression)
	if err != nil {
		return s.fail(fmt.Errorf("parameter %q: %w", name, err))
	}
	return s.declare(decl{name: name, kind: kindExpr, source: expression, deps: deps})
}

// Derive declares a parameter computed by fn. inputs lists the parameters
// passed to fn, in order.
func (s *Set) Derive(name string, inputs []string, fn Func) *Set {
	if fn == nil {
		return s.fail(fmt.Errorf("parameter %q: nil function", name))
	}
	deps := append([]string(nil), inputs...)
	return s.declare(decl{name: name, kind: kindFunc, fn: fn, deps: deps})
}

// Constrain declares a boolean rule checked after the whole table resolves,
// for example "wall < outer_d / 2". name labels the rule in errors.
func (s *Set) Constrain(name, rule string) *Set {
	if s.err != nil {
		return s
	}
	deps, err := identifiers(rule)
	if err != nil {
		return s.fail(fmt.Errorf("constraint %q: %w", name, err))
	}
	s.constraints = append(s.constraints, constraint{name: name, source: rule, deps: deps})
	return s
}

// Override replaces the literal value of a declared base parameter.
func (s *Set) Override(name string, v float64) error {
	i, ok := s.index[name]
	if !ok {
		return &UnknownParameterError{Name: name}
	}
	if s.decls[i].kind != kindBase {
		return fmt.Errorf("parameter %q is derived and cannot be overridden", name)
	}
	s.decls[i].value = v
	return nil
}

// Names returns the declared parameter names in declaration order.
func (s *Set) Names() []string {
	names := make([]string, len(s.decls))
	for i := range s.decls {
		names[i] = s.decls[i].name
	}
	return names
}

// BaseValue returns the current literal value of a base parameter.
func (s *Set) BaseValue(name string) (float64, bool) {
	i, ok := s.index[name]
	if !ok || s.decls[i].kind != kindBase {
		return 0, false
	}
	return s.decls[i].value, true
}

// IsBase reports whether name is a declared base parameter.
func (s *Set) IsBase(name string) bool {
	i, ok := s.index[name]
	return ok && s.decls[i].kind == kindBase
}

// Err returns the first declaration error, if any.
func (s *Set) Err() error { return s.err }

func (s *Set) declare(d decl) *Set {
	if s.err != nil {
		return s
	}
	if d.name == "" {
		return s.fail(errors.New("empty parameter name"))
	}
	if _, dup := s.index[d.name]; dup {
		return s.fail(fmt.Errorf("parameter %q declared twice", d.name))
	}
	s.index[d.name] = len(s.decls)
	s.decls = append(s.decls, d)
	return s
}

func (s *Set) fail(err error) *Set {
	if s.err == nil {
		s.err = err
	}
	return s
}

// identifiers returns the variable names referenced by an expression,
// in order of first appearance.
func identifiers(expression string) ([]string, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil, err
	}
	v := &identVisitor{seen: make(map[string]bool), callee: make(map[string]bool)}
	ast.Walk(&tree.Node, v)
	var names []string
	for _, name := range v.names {
		if !v.callee[name] {
			names = append(names, name)
		}
	}
	return names, nil
}

type identVisitor struct {
	names  []string
	seen   map[string]bool
	callee map[string]bool
}

func (v *identVisitor) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if !v.seen[n.Value] {
			v.seen[n.Value] = true
			v.names = append(v.names, n.Value)
		}
	case *ast.CallNode:
		if id, ok := n.Callee.(*ast.IdentifierNode); ok {
			v.callee[id.Value] = true
		}
	}
}

func compileFloat(source string, env map[string]any) (*vm.Program, error) {
	return expr.Compile(source, expr.Env(env), expr.AsFloat64())
}

func compileBool(source string, env map[string]any) (*vm.Program, error) {
	return expr.Compile(source, expr.Env(env), expr.AsBool())
}
