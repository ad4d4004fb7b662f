package cdcl

import (
	"strconv"
	"strings"

	"github.com/crillab/gophersat/solver"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/limaJavier/satkit/pkg/proof"
	"github.com/limaJavier/satkit/pkg/sat"
)

// gophersatBackend runs gophersat in certified mode. Its certificate lines
// arrive on a channel while the search runs and are recorded as they come.
type gophersatBackend struct {
	log     logrus.FieldLogger
	clauses [][]int
}

func newGophersatBackend(log logrus.FieldLogger) *gophersatBackend {
	return &gophersatBackend{log: log}
}

func (b *gophersatBackend) add(clause sat.Clause) {
	literals := make([]int, len(clause))
	for i, m := range clause {
		literals[i] = int(m.Dimacs())
	}
	b.clauses = append(b.clauses, literals)
}

func (b *gophersatBackend) solve(vars int, assumptions []sat.Lit, recorder *proof.Recorder) (sat.Solution, error) {
	cnf := b.clauses
	if len(assumptions) > 0 {
		cnf = make([][]int, len(b.clauses), len(b.clauses)+len(assumptions))
		copy(cnf, b.clauses)
		for _, m := range assumptions {
			cnf = append(cnf, []int{int(m.Dimacs())})
		}
	}

	s := solver.New(solver.ParseSlice(cnf))
	if recorder == nil {
		return toSolution(s, s.Solve(), vars), nil
	}
	s.Certified = true
	s.CertChan = make(chan string, 256)

	var status solver.Status
	go func() {
		status = s.Solve()
		close(s.CertChan)
	}()

	// The channel must be drained even after a recording failure, otherwise
	// the search blocks forever.
	var recordErr error
	for line := range s.CertChan {
		if recordErr != nil {
			continue
		}
		e, ok, err := parseCertificateLine(line)
		if err != nil {
			recordErr = err
			continue
		}
		if !ok {
			continue
		}
		recordErr = recorder.Record(e)
	}
	if recordErr != nil {
		b.log.WithError(recordErr).Warn("proof trace incomplete")
	}
	return toSolution(s, status, vars), recordErr
}

func toSolution(s *solver.Solver, status solver.Status, vars int) sat.Solution {
	switch status {
	case solver.Sat:
		model := s.Model()
		assignment := make([]bool, vars)
		copy(assignment, model)
		return sat.SatSolution(assignment)
	case solver.Unsat:
		return sat.UnsatSolution()
	}
	return sat.UnknownSolution()
}

// parseCertificateLine decodes a certificate line of the form "l1 l2 ... 0"
// or "d l1 l2 ... 0". Blank and comment lines are skipped.
func parseCertificateLine(line string) (proof.Event, bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] == "c" {
		return proof.Event{}, false, nil
	}

	e := proof.Event{Kind: proof.Add}
	if fields[0] == "d" {
		e.Kind = proof.Delete
		fields = fields[1:]
	}
	e.Clause = make(sat.Clause, 0, len(fields))
	for i, field := range fields {
		literal, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return proof.Event{}, false, errors.Wrapf(err, "invalid certificate line %q", line)
		}
		if literal == 0 {
			if i != len(fields)-1 {
				return proof.Event{}, false, errors.Errorf("invalid certificate line %q: literals after 0", line)
			}
			return e, true, nil
		}
		e.Clause = append(e.Clause, sat.LitFromDimacs(literal))
	}
	return proof.Event{}, false, errors.Errorf("invalid certificate line %q: missing terminating 0", line)
}
