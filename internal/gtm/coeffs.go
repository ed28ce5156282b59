package gtm

import "github.com/flightdyn/gtm/internal/symbolic"

// term is one monomial of a right-hand-side polynomial: a coefficient
// times powers of the four states and two inputs.
type term struct {
	c                   float64
	v, a, q, th, de, dt int
}

// Polynomial approximation of the GTM longitudinal dynamics,
// transcribed from the published coefficient tables. The tables are
// data, not design: they are assembled once and never recomputed.
var vDotTerms = []term{
	{c: 1.233e-8, v: 4, q: 2},
	{c: 4.853e-9, a: 3, dt: 3},
	{c: 3.705e-5, v: 3, a: 1, q: 1},
	{c: -2.184e-6, v: 3, q: 2},
	{c: 2.203e-2, v: 2, a: 3},
	{c: -2.836e-6, a: 3, dt: 2},
	{c: 3.885e-7, a: 2, dt: 3},
	{c: -1.069e-6, v: 3, q: 1},
	{c: -4.517e-2, v: 2, a: 2},
	{c: -2.140e-1, a: 3},
	{c: -2.431e-2, a: 2, de: 1},
	{c: -3.256e-5, v: 2, a: 1, q: 1},
	{c: -9.824e-3, v: 2, a: 1},
	{c: -3.298e-3, v: 2},
	{c: 3.045e-1, dt: 1},
	{c: 9.597e0, a: 1},
	{c: -9.597e0, th: 1},
}

var alphaDotTerms = []term{
	{c: -3.620e-2, v: 1, a: 2},
	{c: -2.931e-2, v: 1, a: 1},
	{c: -3.254e-3, v: 1},
	{c: -7.286e-4, v: 1, de: 1},
	{c: 3.354e-1, a: 3},
	{c: 1.0, q: 1},
	{c: -8.398e-4, a: 1, dt: 1},
	{c: 2.632e-1},
	{c: -3.240e-3, th: 1},
	// Published value, kept verbatim. Far below every neighboring
	// coefficient and almost certainly a transcription artifact in the
	// source tables; it underflows to zero at any physical state.
	{c: 2.410e-74, v: 3, q: 3},
}

var qDotTerms = []term{
	{c: -1.271e-4, v: 2, a: 1},
	{c: 2.491e-5, v: 2, a: 2},
	{c: -2.029e-4, v: 2, de: 1},
	{c: -3.285e-3, v: 1, q: 1},
	{c: 1.587e-3, v: 2, a: 3},
	{c: -2.923e-1, a: 1, q: 1},
	{c: 1.504e-5, v: 2},
}

// Canonical trim condition used as default initial state and inputs.
const (
	trimAirspeed    = 29.6  // m/s
	trimAlphaDeg    = 9.0   // deg
	trimThetaDeg    = 0.0   // deg
	trimElevatorDeg = 0.68  // deg
	trimThrottle    = 12.7  // percent
)

// polynomial assembles a term table into a symbolic expression. Term
// order is preserved, so evaluation order is identical on every build.
func polynomial(terms []term) symbolic.Expr {
	exprs := make([]symbolic.Expr, 0, len(terms))
	for _, t := range terms {
		factors := []symbolic.Expr{symbolic.C(t.c)}
		for _, f := range []struct {
			name string
			exp  int
		}{
			{stateAirspeed, t.v},
			{stateAlpha, t.a},
			{statePitchRate, t.q},
			{statePitchAngle, t.th},
			{inputElevator, t.de},
			{inputThrottle, t.dt},
		} {
			if f.exp > 0 {
				factors = append(factors, symbolic.Power(symbolic.V(f.name), f.exp))
			}
		}
		exprs = append(exprs, symbolic.Prod(factors...))
	}
	return symbolic.Sum(exprs...)
}
