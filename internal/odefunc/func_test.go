package odefunc

import (
	"errors"
	"math"
	"testing"

	"github.com/flightdyn/gtm/internal/dynsys"
	"github.com/flightdyn/gtm/internal/gtm"
)

func compileGTM(t *testing.T, build gtm.Options, opts map[string]bool) *Func {
	t.Helper()
	f, err := NewCompiler(gtm.NewBuilder()).Compile(build, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return f
}

// Regression values for the derivative at the canonical trim point,
// fixed from a reference evaluation of the coefficient tables. Any
// drift here means a transcription error in the tables or a change in
// evaluation order.
var trimDerivative = []float64{
	0.23050968840182806,    // d/dt V
	0.003533038852860937,   // d/dt alpha
	-0.0004971220029651446, // d/dt q
	0,                      // d/dt theta
}

func TestTrimPointRegression(t *testing.T) {
	f := compileGTM(t, gtm.Options{Simplify: false, Name: gtm.DefaultName}, nil)
	sys := f.System()

	dx, err := f.Eval(sys.DefaultState(), sys.DefaultInput(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dx) != len(trimDerivative) {
		t.Fatalf("expected %d derivatives, got %d", len(trimDerivative), len(dx))
	}
	for i, want := range trimDerivative {
		if math.Abs(dx[i]-want) > 1e-12 {
			t.Errorf("d/dt %s: expected %.17g, got %.17g", sys.States()[i], want, dx[i])
		}
	}

	// Same run, same bits.
	again, err := f.Eval(sys.DefaultState(), sys.DefaultInput(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range dx {
		if again[i] != dx[i] {
			t.Errorf("evaluation not reproducible at index %d", i)
		}
	}
}

func TestJacobianMatchesFiniteDifference(t *testing.T) {
	f := compileGTM(t, gtm.Options{Simplify: true, Name: gtm.DefaultName}, nil)

	x := []float64{30.0, 0.2, 0.05, 0.02}
	u := []float64{0.01, 10.0}

	jac, err := f.Jacobian(x, u, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const h = 1e-6
	n := f.StateDim()
	for j := 0; j < n; j++ {
		xp := append([]float64(nil), x...)
		xm := append([]float64(nil), x...)
		xp[j] += h
		xm[j] -= h
		fp, err := f.Eval(xp, u, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		fm, err := f.Eval(xm, u, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := 0; i < n; i++ {
			fd := (fp[i] - fm[i]) / (2 * h)
			got := jac.At(i, j)
			tol := 1e-5 * math.Max(1, math.Abs(got))
			if math.Abs(got-fd) > tol {
				t.Errorf("jac[%d][%d]: analytic %v vs finite-difference %v", i, j, got, fd)
			}
		}
	}
}

func TestSTMBlockPropagatesJacobian(t *testing.T) {
	// At the initial condition Phi = I, so d/dt Phi = A: the augmented
	// derivative's Phi block must equal the base Jacobian.
	base := compileGTM(t, gtm.Options{Simplify: true, Name: gtm.DefaultName}, nil)
	aug := compileGTM(t, gtm.Options{AugmentSTM: true, Simplify: true, Name: gtm.DefaultName}, nil)

	sys := aug.System()
	dx, err := aug.Eval(sys.DefaultState(), sys.DefaultInput(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bsys := base.System()
	a, err := base.Jacobian(bsys.DefaultState(), bsys.DefaultInput(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			got := dx[4+i*4+j]
			want := a.At(i, j)
			if math.Abs(got-want) > 1e-12 {
				t.Errorf("phi%d%d derivative: expected %v, got %v", i+1, j+1, want, got)
			}
		}
	}
}

func TestSimplifyFlagEquivalence(t *testing.T) {
	raw := compileGTM(t, gtm.Options{Simplify: false, Name: gtm.DefaultName}, nil)
	red := compileGTM(t, gtm.Options{Simplify: true, Name: gtm.DefaultName}, nil)

	x := []float64{28.0, 0.12, -0.03, 0.05}
	u := []float64{0.02, 11.0}

	dxRaw, err := raw.Eval(x, u, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dxRed, err := red.Eval(x, u, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rawStates := raw.System().States()
	rawIdx := make(map[string]int, len(rawStates))
	for i, n := range rawStates {
		rawIdx[n] = i
	}
	for i, n := range red.System().States() {
		j, ok := rawIdx[n]
		if !ok {
			t.Fatalf("reduced system invented state %q", n)
		}
		if dxRed[i] != dxRaw[j] {
			t.Errorf("state %s: reduced %v vs raw %v", n, dxRed[i], dxRaw[j])
		}
	}
}

func TestUnknownOptionRejected(t *testing.T) {
	sys, err := gtm.NewBuilder().Build(gtm.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = Compile(sys, map[string]bool{"fast_math": true})
	if !errors.Is(err, ErrUnknownOption) {
		t.Errorf("expected ErrUnknownOption, got %v", err)
	}

	_, err = NewCompiler(gtm.NewBuilder()).Compile(gtm.DefaultOptions(), map[string]bool{"fast_math": true})
	if !errors.Is(err, ErrUnknownOption) {
		t.Errorf("expected ErrUnknownOption from compiler, got %v", err)
	}
}

func TestJacobianDisabled(t *testing.T) {
	f := compileGTM(t, gtm.DefaultOptions(), map[string]bool{OptAnalyticJacobian: false})
	if f.HasJacobian() {
		t.Error("expected jacobian compilation to be skipped")
	}
	_, err := f.Jacobian(f.System().DefaultState(), f.System().DefaultInput(), 0)
	if !errors.Is(err, ErrNoJacobian) {
		t.Errorf("expected ErrNoJacobian, got %v", err)
	}
}

func TestDimensionMismatch(t *testing.T) {
	f := compileGTM(t, gtm.DefaultOptions(), nil)
	_, err := f.Eval([]float64{1, 2}, f.System().DefaultInput(), 0)
	if !errors.Is(err, dynsys.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	_, err = f.Eval(f.System().DefaultState(), []float64{1}, 0)
	if !errors.Is(err, dynsys.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestCompilerMemoization(t *testing.T) {
	c := NewCompiler(gtm.NewBuilder())
	opts := gtm.DefaultOptions()

	first, err := c.Compile(opts, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Compile(opts, map[string]bool{OptAnalyticJacobian: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Error("explicit default option must hit the same cache entry")
	}

	noJac, err := c.Compile(opts, map[string]bool{OptAnalyticJacobian: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if noJac == first {
		t.Error("distinct compile options must not share a cache entry")
	}
}

func TestCompiledFunctionsShareSystem(t *testing.T) {
	b := gtm.NewBuilder()
	c := NewCompiler(b)
	f, err := c.Compile(gtm.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sys, err := b.Build(gtm.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.System() != sys {
		t.Error("compiled function does not reference the cached system")
	}
}
