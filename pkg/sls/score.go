package sls

import "math"

// ScoreFn weighs a flip candidate by its break count, the number of clauses
// that would become unsatisfied by flipping it. Higher scores are picked
// more often.
type ScoreFn int

const (
	// ScoreExp is cb^-break with cb = 2.5.
	ScoreExp ScoreFn = iota
	// ScorePoly is (eps+break)^-cb with eps = 1 and cb = 2.38.
	ScorePoly
)

const (
	expBase   = 2.5
	polyEps   = 1.0
	polyPower = 2.38
)

func (f ScoreFn) Score(breaks int) float64 {
	switch f {
	case ScorePoly:
		return math.Pow(polyEps+float64(breaks), -polyPower)
	default:
		return math.Pow(expBase, -float64(breaks))
	}
}

func (f ScoreFn) String() string {
	if f == ScorePoly {
		return "poly"
	}
	return "exp"
}

// table caches scores for small break counts.
func (f ScoreFn) table(size int) []float64 {
	scores := make([]float64, size)
	for b := range scores {
		scores[b] = f.Score(b)
	}
	return scores
}
