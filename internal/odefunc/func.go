// Package odefunc compiles a symbolic dynsys.System into a numerically
// callable ODE right-hand side, optionally with an analytic Jacobian
// derived by symbolic differentiation. The compiled function is what an
// external integrator consumes; this package performs no integration
// itself.
package odefunc

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/flightdyn/gtm/internal/dynsys"
	"github.com/flightdyn/gtm/internal/symbolic"
)

// OptAnalyticJacobian toggles symbolic Jacobian compilation. It is on
// by default; caller-supplied values take precedence.
const OptAnalyticJacobian = "analytic_jacobian"

// recognized is the full set of pass-through option keys the compiler
// accepts. Anything else is a configuration error, not ignored.
var recognized = map[string]bool{
	OptAnalyticJacobian: true,
}

var (
	// ErrUnknownOption indicates an unrecognized compile option key.
	ErrUnknownOption = errors.New("odefunc: unknown compile option")

	// ErrNoJacobian indicates a Jacobian request on a function compiled
	// with analytic_jacobian disabled.
	ErrNoJacobian = errors.New("odefunc: function compiled without analytic jacobian")
)

// Func is a compiled numeric evaluation of a dynamical system. It
// holds an immutable reference to the system it was compiled from and
// never mutates it. Func values are safe for concurrent use.
type Func struct {
	sys    *dynsys.System
	states []string
	inputs []string
	rhs    []symbolic.Expr
	jac    [][]symbolic.Expr // nil unless analytic jacobian was requested
}

// Compile turns a finalized system plus an option map into a callable
// function. Recognized options: OptAnalyticJacobian (default true).
// Unknown keys fail immediately with ErrUnknownOption.
func Compile(sys *dynsys.System, opts map[string]bool) (*Func, error) {
	merged := map[string]bool{OptAnalyticJacobian: true}
	for k, v := range opts {
		if !recognized[k] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownOption, k)
		}
		merged[k] = v
	}

	f := &Func{
		sys:    sys,
		states: sys.States(),
		inputs: sys.Inputs(),
		rhs:    sys.RHS(),
	}
	if merged[OptAnalyticJacobian] {
		f.jac = symbolic.Jacobian(f.rhs, f.states)
	}
	return f, nil
}

// System returns the system this function was compiled from.
func (f *Func) System() *dynsys.System { return f.sys }

// HasJacobian reports whether Jacobian evaluation is available.
func (f *Func) HasJacobian() bool { return f.jac != nil }

// StateDim returns the length Eval expects of the state vector.
func (f *Func) StateDim() int { return len(f.states) }

// InputDim returns the length Eval expects of the input vector.
func (f *Func) InputDim() int { return len(f.inputs) }

// Eval computes the state derivative at (x, u, t). Vectors are ordered
// exactly as the system's state and input lists. The dynamics are
// autonomous, so t does not enter the equations; the parameter keeps
// the conventional ODE signature.
func (f *Func) Eval(x, u []float64, t float64) ([]float64, error) {
	env, err := f.env(x, u)
	if err != nil {
		return nil, err
	}
	dx := make([]float64, len(f.rhs))
	for i, e := range f.rhs {
		dx[i], err = e.Eval(env)
		if err != nil {
			return nil, err
		}
	}
	return dx, nil
}

// Jacobian evaluates the analytic Jacobian d f / d x at (x, u, t).
func (f *Func) Jacobian(x, u []float64, t float64) (*mat.Dense, error) {
	if f.jac == nil {
		return nil, ErrNoJacobian
	}
	env, err := f.env(x, u)
	if err != nil {
		return nil, err
	}
	n := len(f.states)
	jac := mat.NewDense(n, n, nil)
	for i, row := range f.jac {
		for j, e := range row {
			v, err := e.Eval(env)
			if err != nil {
				return nil, err
			}
			jac.Set(i, j, v)
		}
	}
	return jac, nil
}

func (f *Func) env(x, u []float64) (map[string]float64, error) {
	if len(x) != len(f.states) || len(u) != len(f.inputs) {
		return nil, fmt.Errorf("%w: got %d states and %d inputs, want %d and %d",
			dynsys.ErrDimensionMismatch, len(x), len(u), len(f.states), len(f.inputs))
	}
	env := make(map[string]float64, len(x)+len(u))
	for i, n := range f.states {
		env[n] = x[i]
	}
	for i, n := range f.inputs {
		env[n] = u[i]
	}
	return env, nil
}
