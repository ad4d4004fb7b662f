package sls

import (
	"context"
	"math/rand/v2"

	"github.com/limaJavier/satkit/pkg/sat"
)

// Flips between two cancellation checks.
const checkEvery = 1024

// walk is the state of a single search. It is owned by one goroutine.
type walk struct {
	s     *Solver
	rng   *rand.Rand
	score ScoreFn

	assignment []bool
	trueCount  []int32 // true literals per clause
	unsat      []int32 // indices of unsatisfied clauses
	unsatPos   []int32 // position in unsat, -1 when satisfied
	scores     []float64
	weights    []float64

	best     []bool
	bestLeft int
}

func newWalk(s *Solver, score ScoreFn, rng *rand.Rand) *walk {
	return &walk{
		s:          s,
		rng:        rng,
		score:      score,
		assignment: make([]bool, s.vars),
		trueCount:  make([]int32, len(s.clauses)),
		unsat:      make([]int32, 0, len(s.clauses)),
		unsatPos:   make([]int32, len(s.clauses)),
		scores:     score.table(64),
		best:       make([]bool, s.vars),
		bestLeft:   -1,
	}
}

// try restarts from a random assignment and flips until every clause is
// satisfied or maxFlips is reached.
func (w *walk) try(ctx context.Context, maxFlips uint32) bool {
	w.randomize()
	w.bestLeft = -1
	w.keepBest()
	for flip := uint32(0); len(w.unsat) > 0 && flip < maxFlips; flip++ {
		if flip%checkEvery == 0 && ctx.Err() != nil {
			return false
		}
		w.step()
		w.keepBest()
	}
	return len(w.unsat) == 0
}

func (w *walk) randomize() {
	for v := range w.assignment {
		w.assignment[v] = w.rng.IntN(2) == 1
	}
	w.unsat = w.unsat[:0]
	for c, clause := range w.s.clauses {
		var count int32
		for _, m := range clause {
			if w.isTrue(m) {
				count++
			}
		}
		w.trueCount[c] = count
		w.unsatPos[c] = -1
		if count == 0 {
			w.markUnsat(int32(c))
		}
	}
}

func (w *walk) keepBest() {
	if w.bestLeft >= 0 && len(w.unsat) >= w.bestLeft {
		return
	}
	w.bestLeft = len(w.unsat)
	copy(w.best, w.assignment)
}

// step flips one variable of a random unsatisfied clause, chosen with
// probability proportional to its score.
func (w *walk) step() {
	clause := w.s.clauses[w.unsat[w.rng.IntN(len(w.unsat))]]

	w.weights = w.weights[:0]
	var total float64
	for _, m := range clause {
		weight := w.scoreOf(w.breakCount(m.Var()))
		w.weights = append(w.weights, weight)
		total += weight
	}

	pick := len(clause) - 1
	threshold := w.rng.Float64() * total
	for i, weight := range w.weights {
		if threshold < weight {
			pick = i
			break
		}
		threshold -= weight
	}
	w.flip(clause[pick].Var())
}

func (w *walk) scoreOf(breaks int) float64 {
	if breaks < len(w.scores) {
		return w.scores[breaks]
	}
	return w.score.Score(breaks)
}

// breakCount counts the clauses in which v holds the only true literal.
func (w *walk) breakCount(v sat.Var) int {
	breaks := 0
	for _, c := range w.s.occurrences[w.trueLit(v)] {
		if w.trueCount[c] == 1 {
			breaks++
		}
	}
	return breaks
}

func (w *walk) flip(v sat.Var) {
	falsified := w.trueLit(v)
	for _, c := range w.s.occurrences[falsified] {
		w.trueCount[c]--
		if w.trueCount[c] == 0 {
			w.markUnsat(c)
		}
	}
	w.assignment[v] = !w.assignment[v]
	for _, c := range w.s.occurrences[falsified.Not()] {
		w.trueCount[c]++
		if w.trueCount[c] == 1 {
			w.markSat(c)
		}
	}
}

func (w *walk) trueLit(v sat.Var) sat.Lit {
	return sat.NewLit(v, !w.assignment[v])
}

func (w *walk) isTrue(m sat.Lit) bool {
	return w.assignment[m.Var()] != m.IsNeg()
}

func (w *walk) markUnsat(c int32) {
	w.unsatPos[c] = int32(len(w.unsat))
	w.unsat = append(w.unsat, c)
}

func (w *walk) markSat(c int32) {
	i := w.unsatPos[c]
	last := w.unsat[len(w.unsat)-1]
	w.unsat[i] = last
	w.unsatPos[last] = i
	w.unsat = w.unsat[:len(w.unsat)-1]
	w.unsatPos[c] = -1
}
