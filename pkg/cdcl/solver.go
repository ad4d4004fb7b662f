// Package cdcl adapts conflict-driven SAT solvers to an incremental
// interface: allocate variables, add clauses in order, solve under
// assumptions and, when asked to, capture the proof trace of the search.
package cdcl

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/limaJavier/satkit/pkg/proof"
	"github.com/limaJavier/satkit/pkg/sat"
)

type Options struct {
	// CaptureProof records every clause the search adds or deletes. It
	// selects the certifying backend.
	CaptureProof bool
	// SpoolDir holds the proof spool; empty means the system temp directory.
	SpoolDir string
	Logger   logrus.FieldLogger
}

type backend interface {
	add(clause sat.Clause)
	solve(vars int, assumptions []sat.Lit, recorder *proof.Recorder) (sat.Solution, error)
}

// Solver is a complete search engine. It is not safe for concurrent use.
type Solver struct {
	options  Options
	log      logrus.FieldLogger
	vars     int
	clauses  int
	empty    bool
	backend  backend
	trace    *proof.Trace
	traceErr error
}

func New(options Options) *Solver {
	s := &Solver{
		options: options,
		log:     options.Logger,
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if options.CaptureProof {
		s.backend = newGophersatBackend(s.log)
	} else {
		s.backend = newGiniBackend()
	}
	return s
}

// NewVar allocates the next variable. Variables are numbered from 0 in
// allocation order.
func (s *Solver) NewVar() sat.Var {
	v := sat.Var(s.vars)
	s.vars++
	return v
}

// Vars returns the number of allocated variables.
func (s *Solver) Vars() int {
	return s.vars
}

// AddClause adds clause to the formula. Clauses are handed to the backend in
// insertion order. Every literal must reference an allocated variable.
func (s *Solver) AddClause(clause sat.Clause) {
	if len(clause) == 0 {
		s.empty = true
	}
	s.clauses++
	s.backend.add(clause)
}

// Solve searches for a model of the formula under assumptions. The returned
// assignment has one entry per allocated variable.
func (s *Solver) Solve(assumptions []sat.Lit) sat.Solution {
	s.discardTrace()

	var recorder *proof.Recorder
	if s.options.CaptureProof {
		var err error
		if recorder, err = proof.NewRecorder(s.options.SpoolDir); err != nil {
			s.traceErr = err
			s.log.WithError(err).Warn("proof capture disabled")
		}
	}

	start := time.Now()
	var solution sat.Solution
	if s.empty {
		solution = sat.UnsatSolution()
	} else {
		var err error
		solution, err = s.backend.solve(s.vars, assumptions, recorder)
		if err != nil && s.traceErr == nil {
			s.traceErr = err
		}
	}

	if recorder != nil {
		if s.traceErr != nil {
			recorder.Discard()
		} else {
			s.trace, s.traceErr = recorder.Finish()
		}
	}

	entry := s.log.WithFields(logrus.Fields{
		"vars":     s.vars,
		"clauses":  s.clauses,
		"result":   solution.Status,
		"duration": time.Since(start),
	})
	if s.trace != nil {
		entry = entry.WithField("proofEvents", s.trace.Len())
	}
	entry.Debug("cdcl search finished")
	return solution
}

// ProofTrace returns the trace captured by the last Solve. Without capture it
// is empty. The trace belongs to the caller once returned.
func (s *Solver) ProofTrace() (*proof.Trace, error) {
	if s.traceErr != nil {
		return nil, s.traceErr
	}
	if s.trace == nil {
		return proof.EmptyTrace(), nil
	}
	trace := s.trace
	s.trace = nil
	return trace, nil
}

// Close releases a trace that was never handed out.
func (s *Solver) Close() error {
	return s.discardTrace()
}

func (s *Solver) discardTrace() error {
	s.traceErr = nil
	if s.trace == nil {
		return nil
	}
	trace := s.trace
	s.trace = nil
	return trace.Close()
}
