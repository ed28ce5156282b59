package dynsys

import (
	"errors"
	"testing"

	"github.com/flightdyn/gtm/internal/symbolic"
)

func twoState(t *testing.T) *System {
	t.Helper()
	sys, err := New("test",
		[]string{"x", "v"},
		[]string{"u"},
		[]symbolic.Expr{
			symbolic.V("v"),
			symbolic.Sum(symbolic.Prod(symbolic.C(-1), symbolic.V("x")), symbolic.V("u")),
		},
		map[string]float64{"x": 1, "v": 0, "u": 0},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return sys
}

func TestNewValid(t *testing.T) {
	sys := twoState(t)
	if sys.StateDim() != 2 || sys.InputDim() != 1 {
		t.Errorf("unexpected dims: %d states, %d inputs", sys.StateDim(), sys.InputDim())
	}
	if got := sys.DefaultState(); got[0] != 1 || got[1] != 0 {
		t.Errorf("unexpected default state: %v", got)
	}
}

func TestNewEquationCountMismatch(t *testing.T) {
	_, err := New("bad", []string{"x", "v"}, nil,
		[]symbolic.Expr{symbolic.V("v")},
		map[string]float64{"x": 0, "v": 0})
	if !errors.Is(err, ErrInconsistentSystem) {
		t.Errorf("expected ErrInconsistentSystem, got %v", err)
	}
}

func TestNewUnboundSymbol(t *testing.T) {
	_, err := New("bad", []string{"x"}, nil,
		[]symbolic.Expr{symbolic.V("ghost")},
		map[string]float64{"x": 0})
	if !errors.Is(err, ErrUnboundSymbol) {
		t.Errorf("expected ErrUnboundSymbol, got %v", err)
	}
}

func TestNewMissingDefault(t *testing.T) {
	_, err := New("bad", []string{"x"}, []string{"u"},
		[]symbolic.Expr{symbolic.V("u")},
		map[string]float64{"x": 0})
	if !errors.Is(err, ErrMissingDefault) {
		t.Errorf("expected ErrMissingDefault, got %v", err)
	}
}

func TestNewDuplicateSymbol(t *testing.T) {
	_, err := New("bad", []string{"x"}, []string{"x"},
		[]symbolic.Expr{symbolic.C(0)},
		map[string]float64{"x": 0})
	if !errors.Is(err, ErrDuplicateSymbol) {
		t.Errorf("expected ErrDuplicateSymbol, got %v", err)
	}
}

func TestErrorNamesSystem(t *testing.T) {
	_, err := New("culprit", []string{"x"}, nil, nil, nil)
	var se *SystemError
	if !errors.As(err, &se) {
		t.Fatalf("expected SystemError, got %T", err)
	}
	if se.System != "culprit" {
		t.Errorf("expected system name in error, got %q", se.System)
	}
}

func TestAccessorsCopy(t *testing.T) {
	sys := twoState(t)
	sys.States()[0] = "mutated"
	if sys.States()[0] != "x" {
		t.Error("States() leaked internal slice")
	}
	sys.Defaults()["x"] = 99
	if v, _ := sys.Default("x"); v != 1 {
		t.Error("Defaults() leaked internal map")
	}
}

func TestReduceDropsInertState(t *testing.T) {
	sys, err := New("inert",
		[]string{"x", "dead"},
		nil,
		[]symbolic.Expr{
			symbolic.Prod(symbolic.C(-0.5), symbolic.V("x")),
			symbolic.Sum(symbolic.V("x"), symbolic.Prod(symbolic.C(-1), symbolic.V("x"))), // simplifies to 0
		},
		map[string]float64{"x": 2, "dead": 0},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	red, err := Reduce(sys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if red.StateDim() != 1 || red.States()[0] != "x" {
		t.Fatalf("expected only x retained, got %v", red.States())
	}

	// Retained dynamics are unchanged.
	env := map[string]float64{"x": 3}
	want, _ := sys.RHS()[0].Eval(env)
	got, _ := red.RHS()[0].Eval(env)
	if got != want {
		t.Errorf("retained dynamics changed: %v vs %v", got, want)
	}
}

func TestReduceKeepsReferencedZeroState(t *testing.T) {
	// b has zero dynamics but a depends on it, so it must survive.
	sys, err := New("ref",
		[]string{"a", "b"},
		nil,
		[]symbolic.Expr{symbolic.V("b"), symbolic.C(0)},
		map[string]float64{"a": 0, "b": 1},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	red, err := Reduce(sys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if red.StateDim() != 2 {
		t.Errorf("expected both states retained, got %v", red.States())
	}
}

func TestReduceDropsAllInertStates(t *testing.T) {
	sys, err := New("multi",
		[]string{"a", "p", "r"},
		nil,
		[]symbolic.Expr{symbolic.V("a"), symbolic.C(0), symbolic.C(0)},
		map[string]float64{"a": 1, "p": 0, "r": 0},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	red, err := Reduce(sys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if red.StateDim() != 1 || red.States()[0] != "a" {
		t.Errorf("expected only a retained, got %v", red.States())
	}
}

func TestReduceIdempotent(t *testing.T) {
	sys := twoState(t)
	once, err := Reduce(sys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := Reduce(once)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(once.States()) != len(twice.States()) {
		t.Fatalf("reduction not idempotent: %v vs %v", once.States(), twice.States())
	}
	for i, e := range once.RHS() {
		if !e.Equal(twice.RHS()[i]) {
			t.Errorf("equation %d changed on second reduction", i)
		}
	}
}
