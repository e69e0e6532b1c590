package param

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Values is a fully resolved parameter table.
type Values struct {
	v     map[string]float64
	order []string
}

// Get returns the value of a resolved parameter. It panics on undeclared
// names since every name a model reads is fixed at compile time.
func (v Values) Get(name string) float64 {
	f, ok := v.v[name]
	if !ok {
		panic("param: undeclared parameter " + strconv.Quote(name))
	}
	return f
}

// Lookup returns the value of name and whether it was declared.
func (v Values) Lookup(name string) (float64, bool) {
	f, ok := v.v[name]
	return f, ok
}

// Names returns the parameter names sorted alphabetically.
func (v Values) Names() []string {
	names := append([]string(nil), v.order...)
	sort.Strings(names)
	return names
}

// Map returns a copy of the table.
func (v Values) Map() map[string]float64 {
	m := make(map[string]float64, len(v.v))
	for k, f := range v.v {
		m[k] = f
	}
	return m
}

// Summary formats the table as space separated name=value pairs in
// declaration order.
func (v Values) Summary() string {
	var b strings.Builder
	for i, name := range v.order {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(v.v[name], 'g', 6, 64))
	}
	return b.String()
}

// Resolve computes every derived parameter in dependency order and then
// checks the declared constraints. The Set is not modified.
func (s *Set) Resolve() (Values, error) {
	if s.err != nil {
		return Values{}, s.err
	}
	if err := s.checkReferences(); err != nil {
		return Values{}, err
	}
	order, err := s.order()
	if err != nil {
		return Values{}, err
	}
	vals := Values{v: make(map[string]float64, len(s.decls))}
	for i := range s.decls {
		vals.order = append(vals.order, s.decls[i].name)
	}
	var bad []Violation
	for _, i := range order {
		d := &s.decls[i]
		f, err := s.evaluate(d, vals.v)
		if err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
			err = fmt.Errorf("evaluated to %v", f)
		}
		if err != nil {
			bad = append(bad, Violation{Name: d.name, Rule: d.source, Err: err})
			f = math.NaN()
		}
		vals.v[d.name] = f
	}
	if len(bad) > 0 {
		return Values{}, &ValidationError{Violations: bad}
	}
	for _, c := range s.constraints {
		env := envOf(c.deps, vals.v)
		prog, err := compileBool(c.source, env)
		if err != nil {
			bad = append(bad, Violation{Name: c.name, Rule: c.source, Err: err})
			continue
		}
		out, err := expr.Run(prog, env)
		if err != nil {
			bad = append(bad, Violation{Name: c.name, Rule: c.source, Err: err})
			continue
		}
		if ok, _ := out.(bool); !ok {
			bad = append(bad, Violation{Name: c.name, Rule: c.source})
		}
	}
	if len(bad) > 0 {
		return Values{}, &ValidationError{Violations: bad}
	}
	return vals, nil
}

func (s *Set) evaluate(d *decl, resolved map[string]float64) (float64, error) {
	switch d.kind {
	case kindBase:
		return d.value, nil
	case kindFunc:
		in := make([]float64, len(d.deps))
		for i, dep := range d.deps {
			in[i] = resolved[dep]
		}
		return d.fn(in...), nil
	}
	env := envOf(d.deps, resolved)
	prog, err := compileFloat(d.source, env)
	if err != nil {
		return 0, err
	}
	out, err := expr.Run(prog, env)
	if err != nil {
		return 0, err
	}
	f, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("expression result %T is not a number", out)
	}
	return f, nil
}

func envOf(names []string, resolved map[string]float64) map[string]any {
	env := make(map[string]any, len(names))
	for _, name := range names {
		env[name] = resolved[name]
	}
	return env
}

func (s *Set) checkReferences() error {
	for _, d := range s.decls {
		for _, dep := range d.deps {
			if _, ok := s.index[dep]; !ok {
				return &UnknownParameterError{Name: dep, Referrer: d.name}
			}
		}
	}
	for _, c := range s.constraints {
		for _, dep := range c.deps {
			if _, ok := s.index[dep]; !ok {
				return &UnknownParameterError{Name: dep, Referrer: c.name}
			}
		}
	}
	return nil
}

// order returns declaration indices sorted so that every parameter comes
// after its dependencies. Ties keep declaration order.
func (s *Set) order() ([]int, error) {
	g := simple.NewDirectedGraph()
	for i := range s.decls {
		g.AddNode(simple.Node(i))
	}
	var selfRefs [][]string
	for i, d := range s.decls {
		for _, dep := range d.deps {
			j := s.index[dep]
			if j == i {
				selfRefs = append(selfRefs, []string{d.name})
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(j), simple.Node(i)))
		}
	}
	sorted, err := topo.SortStabilized(g, byID)
	if err != nil || len(selfRefs) > 0 {
		cycles := selfRefs
		if unorderable, ok := err.(topo.Unorderable); ok {
			for _, component := range unorderable {
				byID(component)
				names := make([]string, len(component))
				for k, n := range component {
					names[k] = s.decls[n.ID()].name
				}
				cycles = append(cycles, names)
			}
		} else if err != nil {
			return nil, err
		}
		return nil, &CyclicDependencyError{Cycles: cycles}
	}
	order := make([]int, len(sorted))
	for i, n := range sorted {
		order[i] = int(n.ID())
	}
	return order, nil
}

func byID(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}
