// Package symbolic implements the small expression algebra the model
// builder needs: named scalar variables, floating-point constants, and
// polynomial combinations of them.
//
// Expressions are immutable trees behind the [Expr] interface. The
// constructors ([C], [V], [Sum], [Prod], [Power]) simplify eagerly, so
// a freshly built expression is always in collected form: constants
// folded, nested sums and products flattened, like terms merged, and
// powers of a common base combined. Term order is first-seen order,
// which keeps evaluation deterministic across builds.
//
// Differentiation and substitution return new trees:
//
//	V := symbolic.V("V")
//	drag := symbolic.Prod(symbolic.C(-3.298e-3), symbolic.Power(V, 2))
//	dDragDV := drag.Diff("V") // -0.006596*V
//
// [Jacobian] lifts Diff to equation sets and is what the STM
// augmentation and the analytic-Jacobian compiler are built on.
package symbolic
