package sat

// Status tags a Solution.
type Status int

const (
	Unknown Status = iota
	Unsat
	Sat
	// Best carries a candidate assignment that is neither proven to satisfy
	// nor to optimize the instance.
	Best
)

func (s Status) String() string {
	switch s {
	case Unsat:
		return "unsat"
	case Sat:
		return "sat"
	case Best:
		return "best"
	default:
		return "unknown"
	}
}

// Solution is the tagged result of an engine. Assignment is only set for Sat
// and Best; position i holds the value of external variable i+1.
type Solution struct {
	Status     Status
	Assignment []bool
}

func UnsatSolution() Solution {
	return Solution{Status: Unsat}
}

func UnknownSolution() Solution {
	return Solution{Status: Unknown}
}

func SatSolution(assignment []bool) Solution {
	return Solution{Status: Sat, Assignment: assignment}
}

func BestSolution(assignment []bool) Solution {
	return Solution{Status: Best, Assignment: assignment}
}

// HasAssignment reports whether the solution carries an assignment.
func (s Solution) HasAssignment() bool {
	return s.Status == Sat || s.Status == Best
}

// Literals returns the assignment in signed DIMACS form.
func (s Solution) Literals() SATSolution {
	literals := make(SATSolution, len(s.Assignment))
	for i, value := range s.Assignment {
		literals[i] = int64(i + 1)
		if !value {
			literals[i] = -literals[i]
		}
	}
	return literals
}

// Satisfies reports whether the assignment makes every clause of instance true.
func (s Solution) Satisfies(instance SAT) bool {
	if !s.HasAssignment() {
		return false
	}
	for _, clause := range instance.Clauses {
		satisfied := false
		for _, literal := range clause {
			v := abs(literal) - 1
			if v >= int64(len(s.Assignment)) {
				continue
			}
			if s.Assignment[v] == (literal > 0) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}
	return true
}
