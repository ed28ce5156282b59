// Package gtm builds a symbolic model of the longitudinal dynamics of
// NASA's Generic Transport Model, a sub-scale research aircraft. The
// model is a fixed polynomial approximation in four states and two
// inputs:
//
//   - V     airspeed (m/s)
//   - alpha angle of attack (rad)
//   - q     pitch rate (rad/s)
//   - theta pitch angle (rad)
//
//   - delta_e elevator deflection (rad)
//   - delta_t throttle setting (percent)
//
// [Build] assembles the equations, attaches a canonical trim condition
// as default values, and optionally augments the system with a 4x4
// state-transition-matrix block governed by d/dt Phi = A*Phi, where A
// is the symbolic Jacobian of the base dynamics. All coefficients are
// literal published constants; nothing is fitted or estimated here.
//
// Construction is memoized per [Options]: repeated calls with the same
// configuration return the identical artifact without redoing the
// symbolic differentiation and simplification work. A [Builder] owns
// its cache, so tests can isolate state by constructing their own.
package gtm
