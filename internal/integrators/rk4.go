// Package integrators provides the external consumers of compiled
// model functions. The model pipeline itself never integrates; these
// steppers exist for the CLI and for trajectory-level tests.
package integrators

// Derivable is the slice of a compiled function a stepper needs.
type Derivable interface {
	Eval(x, u []float64, t float64) ([]float64, error)
}

// RK4 is a classic fourth-order Runge-Kutta stepper. Scratch slices
// are reused across steps, so an RK4 value is not safe for concurrent
// use.
type RK4 struct {
	scratch []float64
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.scratch) != n {
		r.scratch = make([]float64, n)
	}
}

// Step advances the state by one interval of dt.
func (r *RK4) Step(f Derivable, x, u []float64, t, dt float64) ([]float64, error) {
	n := len(x)
	r.ensureScratch(n)

	k1, err := f.Eval(x, u, t)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*k1[i]
	}
	k2, err := f.Eval(r.scratch, u, t+dt*0.5)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*k2[i]
	}
	k3, err := f.Eval(r.scratch, u, t+dt*0.5)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*k3[i]
	}
	k4, err := f.Eval(r.scratch, u, t+dt)
	if err != nil {
		return nil, err
	}

	result := make([]float64, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return result, nil
}
