package sat

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// SATSolution is a model in signed DIMACS form, one literal per variable.
type SATSolution []int64

// SAT is a clause-list instance. Literals use the signed 1-based DIMACS
// encoding, so every literal must satisfy 0 < |literal| <= Variables.
type SAT struct {
	Variables uint64
	Clauses   [][]int64
}

func (s SAT) ToDIMACS() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "p cnf %d %d\n", s.Variables, len(s.Clauses))
	for _, clause := range s.Clauses {
		for _, literal := range clause {
			fmt.Fprintf(&builder, "%d ", literal)
		}
		builder.WriteString("0\n")
	}
	return builder.String()
}

// Validate checks that every literal references a declared variable.
func (s SAT) Validate() error {
	for i, clause := range s.Clauses {
		for _, literal := range clause {
			if literal == 0 {
				return errors.Errorf("clause %d: zero literal inside clause", i+1)
			}
			if abs(literal) > int64(s.Variables) {
				return errors.Errorf("clause %d: literal %d references a variable beyond %d", i+1, literal, s.Variables)
			}
		}
	}
	return nil
}

// Lits returns clause i in literal form.
func (s SAT) Lits(i int) Clause {
	clause := make(Clause, len(s.Clauses[i]))
	for j, literal := range s.Clauses[i] {
		clause[j] = LitFromDimacs(literal)
	}
	return clause
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
