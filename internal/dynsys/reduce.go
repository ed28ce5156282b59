package dynsys

import (
	"github.com/flightdyn/gtm/internal/symbolic"
)

// Reduce applies structural simplification: every equation is
// algebraically collected, then states that have become inert (zero
// dynamics and no remaining equation refers to them) are eliminated.
// The result is a consistent system with equal behavior on every
// retained state. Reducing an already reduced system is a no-op.
func Reduce(sys *System) (*System, error) {
	states := sys.States()
	rhs := sys.RHS()
	for i := range rhs {
		rhs[i] = rhs[i].Simplify()
	}

	keep := make([]bool, len(states))
	for i := range keep {
		keep[i] = true
	}
	for changed := true; changed; {
		changed = false
		referenced := make(map[string]bool)
		for i := range rhs {
			if keep[i] {
				rhs[i].Vars(referenced)
			}
		}
		for i, name := range states {
			if keep[i] && isZero(rhs[i]) && !referenced[name] {
				keep[i] = false
				changed = true
			}
		}
	}

	outStates := make([]string, 0, len(states))
	outRHS := make([]symbolic.Expr, 0, len(rhs))
	for i := range states {
		if keep[i] {
			outStates = append(outStates, states[i])
			outRHS = append(outRHS, rhs[i])
		}
	}
	return New(sys.Name(), outStates, sys.Inputs(), outRHS, sys.Defaults())
}

func isZero(e symbolic.Expr) bool {
	n, ok := e.(*symbolic.Num)
	return ok && n.Value() == 0
}
