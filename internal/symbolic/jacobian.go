package symbolic

// Jacobian returns the matrix of partial derivatives J[i][j] =
// d exprs[i] / d vars[j]. Entries are simplified as they are built.
func Jacobian(exprs []Expr, vars []string) [][]Expr {
	jac := make([][]Expr, len(exprs))
	for i, e := range exprs {
		row := make([]Expr, len(vars))
		for j, v := range vars {
			row[j] = e.Diff(v)
		}
		jac[i] = row
	}
	return jac
}
