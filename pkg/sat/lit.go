package sat

import (
	"strconv"
	"strings"
)

// Var is a 0-based variable index. Its external DIMACS name is Var+1.
type Var uint32

// Pos returns the positive literal of v.
func (v Var) Pos() Lit {
	return Lit(v << 1)
}

// Neg returns the negated literal of v.
func (v Var) Neg() Lit {
	return Lit(v<<1 | 1)
}

// Dimacs returns the 1-based external name of v.
func (v Var) Dimacs() int64 {
	return int64(v) + 1
}

// Lit is a (variable, polarity) pair packed as 2*var+neg.
type Lit uint32

// NewLit returns the literal of v, negated when neg is set.
func NewLit(v Var, neg bool) Lit {
	if neg {
		return v.Neg()
	}
	return v.Pos()
}

// LitFromDimacs decodes a non-zero signed DIMACS literal.
func LitFromDimacs(m int64) Lit {
	if m < 0 {
		return Var(-m - 1).Neg()
	}
	return Var(m - 1).Pos()
}

func (m Lit) Var() Var {
	return Var(m >> 1)
}

// IsNeg reports whether m is a negated variable.
func (m Lit) IsNeg() bool {
	return m&1 == 1
}

func (m Lit) Not() Lit {
	return m ^ 1
}

// Dimacs returns the signed 1-based encoding of m.
func (m Lit) Dimacs() int64 {
	if m.IsNeg() {
		return -m.Var().Dimacs()
	}
	return m.Var().Dimacs()
}

func (m Lit) String() string {
	return strconv.FormatInt(m.Dimacs(), 10)
}

// Clause is an ordered disjunction of literals.
type Clause []Lit

// ClauseFromDimacs decodes a clause given in signed DIMACS form.
func ClauseFromDimacs(literals []int64) Clause {
	clause := make(Clause, len(literals))
	for i, literal := range literals {
		clause[i] = LitFromDimacs(literal)
	}
	return clause
}

// Dimacs returns the clause in signed DIMACS form, without the terminating 0.
func (c Clause) Dimacs() []int64 {
	literals := make([]int64, len(c))
	for i, m := range c {
		literals[i] = m.Dimacs()
	}
	return literals
}

func (c Clause) String() string {
	var builder strings.Builder
	for _, m := range c {
		builder.WriteString(m.String())
		builder.WriteByte(' ')
	}
	builder.WriteByte('0')
	return builder.String()
}
