package cdcl

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/limaJavier/satkit/pkg/proof"
	"github.com/limaJavier/satkit/pkg/sat"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// giniBackend feeds clauses to gini literal by literal.
type giniBackend struct {
	g      *gini.Gini
	buffer []z.Lit
}

func newGiniBackend() *giniBackend {
	return &giniBackend{g: gini.New()}
}

func toZ(m sat.Lit) z.Lit {
	return z.Dimacs2Lit(int(m.Dimacs()))
}

func (b *giniBackend) add(clause sat.Clause) {
	for _, m := range clause {
		b.g.Add(toZ(m))
	}
	b.g.Add(z.LitNull)
}

func (b *giniBackend) solve(vars int, assumptions []sat.Lit, _ *proof.Recorder) (sat.Solution, error) {
	b.buffer = b.buffer[:0]
	for _, m := range assumptions {
		b.buffer = append(b.buffer, toZ(m))
	}
	b.g.Assume(b.buffer...)

	switch b.g.Solve() {
	case satisfiable:
		// gini only knows the variables it has seen in a clause.
		maxVar := b.g.MaxVar()
		assignment := make([]bool, vars)
		for i := range assignment {
			v := z.Var(i + 1)
			if v <= maxVar {
				assignment[i] = b.g.Value(v.Pos())
			}
		}
		return sat.SatSolution(assignment), nil
	case unsatisfiable:
		return sat.UnsatSolution(), nil
	}
	return sat.UnknownSolution(), nil
}
