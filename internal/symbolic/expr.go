package symbolic

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnboundVar is returned by Eval when the environment is missing a
// variable that appears in the expression.
var ErrUnboundVar = errors.New("symbolic: unbound variable")

// Expr is a node in an immutable expression tree.
type Expr interface {
	// Simplify returns an algebraically collected form of the expression.
	// Constructor-built expressions are already simplified.
	Simplify() Expr
	// Diff returns the partial derivative with respect to the named variable.
	Diff(name string) Expr
	// Sub replaces every occurrence of the named variable with value.
	Sub(name string, value Expr) Expr
	// Eval computes the numeric value of the expression under env.
	Eval(env map[string]float64) (float64, error)
	// Equal reports structural equality.
	Equal(other Expr) bool
	// Vars adds every variable name in the expression to set.
	Vars(set map[string]bool)
	String() string
}

// Num is a floating-point constant.
type Num struct{ val float64 }

// C builds a constant.
func C(v float64) *Num { return &Num{val: v} }

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Diff(string) Expr      { return C(0) }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Vars(map[string]bool)  {}
func (n *Num) Value() float64        { return n.val }

func (n *Num) Eval(map[string]float64) (float64, error) {
	return n.val, nil
}

func (n *Num) Equal(other Expr) bool {
	o, ok := other.(*Num)
	return ok && o.val == n.val
}

func (n *Num) String() string { return strconv.FormatFloat(n.val, 'g', -1, 64) }

// Var is a named scalar variable.
type Var struct{ name string }

// V builds a variable reference.
func V(name string) *Var { return &Var{name: name} }

func (v *Var) Simplify() Expr { return v }
func (v *Var) Name() string   { return v.name }
func (v *Var) String() string { return v.name }

func (v *Var) Diff(name string) Expr {
	if v.name == name {
		return C(1)
	}
	return C(0)
}

func (v *Var) Sub(name string, value Expr) Expr {
	if v.name == name {
		return value
	}
	return v
}

func (v *Var) Eval(env map[string]float64) (float64, error) {
	val, ok := env[v.name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnboundVar, v.name)
	}
	return val, nil
}

func (v *Var) Equal(other Expr) bool {
	o, ok := other.(*Var)
	return ok && o.name == v.name
}

func (v *Var) Vars(set map[string]bool) { set[v.name] = true }

// Add is an n-ary sum.
type Add struct{ terms []Expr }

// Sum builds the simplified sum of terms.
func Sum(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// addEntry tracks one collected term; key "" marks the constant slot.
type addEntry struct {
	key  string
	coef float64
	rest Expr
}

func (a *Add) Simplify() Expr {
	var flat []Expr
	var push func(e Expr)
	push = func(e Expr) {
		if inner, ok := e.(*Add); ok {
			for _, t := range inner.terms {
				push(t)
			}
			return
		}
		flat = append(flat, e)
	}
	for _, t := range a.terms {
		push(t.Simplify())
	}

	// Collect like terms preserving first-seen order so evaluation
	// order is stable across builds.
	var order []addEntry
	index := map[string]int{}
	add := func(key string, coef float64, rest Expr) {
		if i, ok := index[key]; ok {
			order[i].coef += coef
			return
		}
		index[key] = len(order)
		order = append(order, addEntry{key: key, coef: coef, rest: rest})
	}
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			add("", n.val, nil)
			continue
		}
		c, rest := splitCoef(t)
		add(rest.String(), c, rest)
	}

	out := make([]Expr, 0, len(order))
	for _, e := range order {
		if e.coef == 0 {
			continue
		}
		if e.key == "" {
			out = append(out, C(e.coef))
			continue
		}
		out = append(out, withCoef(e.coef, e.rest))
	}
	switch len(out) {
	case 0:
		return C(0)
	case 1:
		return out[0]
	}
	return &Add{terms: out}
}

// splitCoef peels the leading numeric coefficient off a collected product.
func splitCoef(e Expr) (float64, Expr) {
	m, ok := e.(*Mul)
	if !ok || len(m.factors) == 0 {
		return 1, e
	}
	n, ok := m.factors[0].(*Num)
	if !ok {
		return 1, e
	}
	rest := m.factors[1:]
	if len(rest) == 1 {
		return n.val, rest[0]
	}
	return n.val, &Mul{factors: rest}
}

// withCoef reattaches a coefficient to the symbolic part of a term.
func withCoef(c float64, rest Expr) Expr {
	if c == 1 {
		return rest
	}
	if m, ok := rest.(*Mul); ok {
		factors := append([]Expr{C(c)}, m.factors...)
		return &Mul{factors: factors}
	}
	return &Mul{factors: []Expr{C(c), rest}}
}

func (a *Add) Diff(name string) Expr {
	terms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		terms[i] = t.Diff(name)
	}
	return Sum(terms...)
}

func (a *Add) Sub(name string, value Expr) Expr {
	terms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		terms[i] = t.Sub(name, value)
	}
	return Sum(terms...)
}

func (a *Add) Eval(env map[string]float64) (float64, error) {
	s := 0.0
	for _, t := range a.terms {
		v, err := t.Eval(env)
		if err != nil {
			return 0, err
		}
		s += v
	}
	return s, nil
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(o.terms) != len(a.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) Vars(set map[string]bool) {
	for _, t := range a.terms {
		t.Vars(set)
	}
}

func (a *Add) Terms() []Expr { return a.terms }

func (a *Add) String() string {
	var b strings.Builder
	for i, t := range a.terms {
		s := t.String()
		if i == 0 {
			b.WriteString(s)
			continue
		}
		if rest, neg := strings.CutPrefix(s, "-"); neg {
			b.WriteString(" - ")
			b.WriteString(rest)
		} else {
			b.WriteString(" + ")
			b.WriteString(s)
		}
	}
	return b.String()
}

// Mul is an n-ary product with at most one leading numeric coefficient.
type Mul struct{ factors []Expr }

// Prod builds the simplified product of factors.
func Prod(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

type mulEntry struct {
	key  string
	base Expr
	exp  int
}

func (m *Mul) Simplify() Expr {
	var flat []Expr
	var push func(e Expr)
	push = func(e Expr) {
		if inner, ok := e.(*Mul); ok {
			for _, f := range inner.factors {
				push(f)
			}
			return
		}
		flat = append(flat, e)
	}
	for _, f := range m.factors {
		push(f.Simplify())
	}

	coef := 1.0
	var order []mulEntry
	index := map[string]int{}
	add := func(base Expr, exp int) {
		key := base.String()
		if i, ok := index[key]; ok {
			order[i].exp += exp
			return
		}
		index[key] = len(order)
		order = append(order, mulEntry{key: key, base: base, exp: exp})
	}
	for _, f := range flat {
		switch t := f.(type) {
		case *Num:
			coef *= t.val
		case *Pow:
			add(t.base, t.exp)
		default:
			add(f, 1)
		}
	}
	if coef == 0 {
		return C(0)
	}

	out := make([]Expr, 0, len(order)+1)
	for _, e := range order {
		p := Power(e.base, e.exp)
		if n, ok := p.(*Num); ok {
			coef *= n.val
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return C(coef)
	}
	if coef != 1 {
		out = append([]Expr{C(coef)}, out...)
	}
	if len(out) == 1 {
		return out[0]
	}
	return &Mul{factors: out}
}

func (m *Mul) Diff(name string) Expr {
	// Product rule: sum over factors with one factor differentiated.
	terms := make([]Expr, 0, len(m.factors))
	for i := range m.factors {
		factors := make([]Expr, 0, len(m.factors))
		for j, f := range m.factors {
			if j == i {
				factors = append(factors, f.Diff(name))
			} else {
				factors = append(factors, f)
			}
		}
		terms = append(terms, Prod(factors...))
	}
	return Sum(terms...)
}

func (m *Mul) Sub(name string, value Expr) Expr {
	factors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		factors[i] = f.Sub(name, value)
	}
	return Prod(factors...)
}

func (m *Mul) Eval(env map[string]float64) (float64, error) {
	r := 1.0
	for _, f := range m.factors {
		v, err := f.Eval(env)
		if err != nil {
			return 0, err
		}
		r *= v
	}
	return r, nil
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(o.factors) != len(m.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) Vars(set map[string]bool) {
	for _, f := range m.factors {
		f.Vars(set)
	}
}

func (m *Mul) Factors() []Expr { return m.factors }

func (m *Mul) String() string {
	factors := m.factors
	prefix := ""
	if n, ok := factors[0].(*Num); ok && n.val == -1 && len(factors) > 1 {
		prefix = "-"
		factors = factors[1:]
	}
	parts := make([]string, len(factors))
	for i, f := range factors {
		s := f.String()
		if _, ok := f.(*Add); ok {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return prefix + strings.Join(parts, "*")
}

// Pow raises a base expression to an integer power.
type Pow struct {
	base Expr
	exp  int
}

// Power builds the simplified integer power of base.
func Power(base Expr, exp int) Expr {
	b := base.Simplify()
	if exp == 0 {
		return C(1)
	}
	if exp == 1 {
		return b
	}
	switch t := b.(type) {
	case *Num:
		return C(powInt(t.val, exp))
	case *Pow:
		return Power(t.base, t.exp*exp)
	case *Mul:
		factors := make([]Expr, len(t.factors))
		for i, f := range t.factors {
			factors[i] = Power(f, exp)
		}
		return Prod(factors...)
	}
	return &Pow{base: b, exp: exp}
}

// powInt multiplies out an integer power; kept as repeated
// multiplication so evaluation is reproducible term by term.
func powInt(b float64, n int) float64 {
	if n < 0 {
		return 1 / powInt(b, -n)
	}
	r := 1.0
	for i := 0; i < n; i++ {
		r *= b
	}
	return r
}

func (p *Pow) Simplify() Expr { return Power(p.base, p.exp) }

func (p *Pow) Diff(name string) Expr {
	// d/dx b^n = n*b^(n-1)*b'
	return Prod(C(float64(p.exp)), Power(p.base, p.exp-1), p.base.Diff(name))
}

func (p *Pow) Sub(name string, value Expr) Expr {
	return Power(p.base.Sub(name, value), p.exp)
}

func (p *Pow) Eval(env map[string]float64) (float64, error) {
	b, err := p.base.Eval(env)
	if err != nil {
		return 0, err
	}
	return powInt(b, p.exp), nil
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && o.exp == p.exp && p.base.Equal(o.base)
}

func (p *Pow) Vars(set map[string]bool) { p.base.Vars(set) }

func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) Exponent() int { return p.exp }

func (p *Pow) String() string {
	s := p.base.String()
	switch p.base.(type) {
	case *Add, *Mul:
		s = "(" + s + ")"
	}
	return s + "^" + strconv.Itoa(p.exp)
}
