// Package dynsys defines the symbolic dynamical-system artifact shared
// by the model builder and the function compiler: an ordered set of
// state variables, an ordered set of inputs, one right-hand-side
// equation per state, and a complete map of default values.
package dynsys

import (
	"fmt"

	"github.com/flightdyn/gtm/internal/symbolic"
)

// System is a finalized first-order ODE system d/dt x = f(x, u).
// It is immutable once constructed; accessors return copies where a
// caller could otherwise mutate shared slices or maps.
type System struct {
	name     string
	states   []string
	inputs   []string
	rhs      []symbolic.Expr
	defaults map[string]float64
}

// New validates and assembles a system. Every state must have exactly
// one equation, every symbol referenced by an equation must be a
// declared state or input, and every declared symbol must carry a
// default value.
func New(name string, states, inputs []string, rhs []symbolic.Expr, defaults map[string]float64) (*System, error) {
	if len(rhs) != len(states) {
		return nil, &SystemError{System: name, Wrapped: fmt.Errorf("%w: %d states, %d equations",
			ErrInconsistentSystem, len(states), len(rhs))}
	}

	declared := make(map[string]bool, len(states)+len(inputs))
	for _, n := range states {
		if declared[n] {
			return nil, &SystemError{System: name, Wrapped: fmt.Errorf("%w: %s", ErrDuplicateSymbol, n)}
		}
		declared[n] = true
	}
	for _, n := range inputs {
		if declared[n] {
			return nil, &SystemError{System: name, Wrapped: fmt.Errorf("%w: %s", ErrDuplicateSymbol, n)}
		}
		declared[n] = true
	}

	referenced := make(map[string]bool)
	for _, e := range rhs {
		e.Vars(referenced)
	}
	for n := range referenced {
		if !declared[n] {
			return nil, &SystemError{System: name, Wrapped: fmt.Errorf("%w: %s", ErrUnboundSymbol, n)}
		}
	}
	for n := range declared {
		if _, ok := defaults[n]; !ok {
			return nil, &SystemError{System: name, Wrapped: fmt.Errorf("%w: %s", ErrMissingDefault, n)}
		}
	}

	d := make(map[string]float64, len(defaults))
	for k, v := range defaults {
		if declared[k] {
			d[k] = v
		}
	}
	return &System{
		name:     name,
		states:   append([]string(nil), states...),
		inputs:   append([]string(nil), inputs...),
		rhs:      append([]symbolic.Expr(nil), rhs...),
		defaults: d,
	}, nil
}

func (s *System) Name() string   { return s.name }
func (s *System) StateDim() int  { return len(s.states) }
func (s *System) InputDim() int  { return len(s.inputs) }

// States returns the ordered state names. The order defines the index
// convention for every numeric state vector derived from this system.
func (s *System) States() []string { return append([]string(nil), s.states...) }

// Inputs returns the ordered input names.
func (s *System) Inputs() []string { return append([]string(nil), s.inputs...) }

// RHS returns the right-hand-side expressions, ordered as States().
// Expressions are immutable, so the slice copy is shallow.
func (s *System) RHS() []symbolic.Expr { return append([]symbolic.Expr(nil), s.rhs...) }

// Defaults returns a copy of the default-value map.
func (s *System) Defaults() map[string]float64 {
	d := make(map[string]float64, len(s.defaults))
	for k, v := range s.defaults {
		d[k] = v
	}
	return d
}

// Default returns the default value for one symbol.
func (s *System) Default(name string) (float64, bool) {
	v, ok := s.defaults[name]
	return v, ok
}

// DefaultState returns the default values of the states, in order.
func (s *System) DefaultState() []float64 {
	x := make([]float64, len(s.states))
	for i, n := range s.states {
		x[i] = s.defaults[n]
	}
	return x
}

// DefaultInput returns the default values of the inputs, in order.
func (s *System) DefaultInput() []float64 {
	u := make([]float64, len(s.inputs))
	for i, n := range s.inputs {
		u[i] = s.defaults[n]
	}
	return u
}

// Equations renders the system as "d/dt name = rhs" lines.
func (s *System) Equations() []string {
	eqs := make([]string, len(s.states))
	for i, n := range s.states {
		eqs[i] = fmt.Sprintf("d/dt %s = %s", n, s.rhs[i])
	}
	return eqs
}
