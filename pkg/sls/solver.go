// Package sls is a stochastic local-search engine in the probSAT family. It
// is incomplete: it can find models but never proves unsatisfiability.
package sls

import (
	"context"
	"io"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/limaJavier/satkit/pkg/sat"
)

// Solver holds an instance in the layout the walks need: flat clauses and,
// for every literal, the clauses it occurs in.
type Solver struct {
	vars        int
	clauses     []sat.Clause
	occurrences [][]int32
	hasEmpty    bool

	seed       uint64
	reportBest bool
	workers    int
	log        logrus.FieldLogger
}

type Option func(s *Solver)

// WithSeed fixes the random seed. Zero picks a random one.
func WithSeed(seed uint64) Option {
	return func(s *Solver) {
		s.seed = seed
	}
}

// WithReportBest makes an unsuccessful search return the best assignment
// seen instead of an unknown result.
func WithReportBest(reportBest bool) Option {
	return func(s *Solver) {
		s.reportBest = reportBest
	}
}

// WithWorkers sets the number of concurrent walks of a parallel search.
func WithWorkers(workers int) Option {
	return func(s *Solver) {
		s.workers = workers
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Solver) {
		s.log = log
	}
}

var defaults = []Option{
	func(s *Solver) {
		if s.seed == 0 {
			s.seed = rand.Uint64() | 1
		}
	},
	func(s *Solver) {
		if s.workers <= 0 {
			s.workers = runtime.NumCPU()
		}
	},
	func(s *Solver) {
		if s.log == nil {
			s.log = logrus.StandardLogger()
		}
	},
}

// NewFromFile reads the instance straight from a DIMACS source, see sat.Open.
func NewFromFile(fileName string, options ...Option) (*Solver, error) {
	reader, err := sat.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return NewFromReader(reader, options...)
}

func NewFromReader(reader io.Reader, options ...Option) (*Solver, error) {
	s := &Solver{}
	loader := &loader{s: s}
	if err := sat.ReadCNF(reader, loader); err != nil {
		return nil, err
	}
	if loader.err != nil {
		return nil, loader.err
	}
	if len(loader.clause) != 0 {
		return nil, errors.New("cannot read dimacs: last clause is not terminated by 0")
	}
	if len(s.clauses) != loader.declared {
		return nil, errors.Errorf("cannot read dimacs: problem line declares %d clauses, found %d", loader.declared, len(s.clauses))
	}
	for _, option := range append(options, defaults...) {
		option(s)
	}
	return s, nil
}

type loader struct {
	s        *Solver
	declared int
	clause   sat.Clause
	err      error
}

func (l *loader) Init(variables, clauses int) {
	if variables < 0 || clauses < 0 {
		l.err = errors.Errorf("cannot read dimacs: negative count in problem line %d %d", variables, clauses)
		return
	}
	l.s.vars = variables
	l.declared = clauses
	l.s.clauses = make([]sat.Clause, 0, min(clauses, 1<<16))
	l.s.occurrences = make([][]int32, 2*variables)
}

func (l *loader) Add(m z.Lit) {
	if m != z.LitNull {
		l.clause = append(l.clause, sat.LitFromDimacs(int64(m.Dimacs())))
		return
	}
	index := int32(len(l.s.clauses))
	for _, lit := range l.clause {
		if int(lit.Var()) >= l.s.vars {
			if l.err == nil {
				l.err = errors.Errorf("clause %d: literal %s references a variable beyond %d", index+1, lit, l.s.vars)
			}
			continue
		}
		l.s.occurrences[lit] = append(l.s.occurrences[lit], index)
	}
	if len(l.clause) == 0 {
		l.s.hasEmpty = true
	}
	l.s.clauses = append(l.s.clauses, l.clause)
	l.clause = nil
}

func (l *loader) Eof() {}

// Vars returns the number of variables of the instance.
func (s *Solver) Vars() int {
	return s.vars
}

var errSolved = errors.New("model found")

// LocalSearch runs at most maxTries restarts of at most maxFlips flips each
// and returns as soon as a model is found. In parallel mode the try budget is
// shared among concurrent walks.
func (s *Solver) LocalSearch(maxTries, maxFlips uint32, score ScoreFn, parallel bool) sat.Solution {
	start := time.Now()
	log := s.log.WithFields(logrus.Fields{
		"maxTries": maxTries,
		"maxFlips": maxFlips,
		"score":    score,
		"parallel": parallel,
	})
	if s.hasEmpty {
		log.Debug("instance contains the empty clause")
		return sat.UnknownSolution()
	}

	workers := 1
	if parallel {
		workers = s.workers
	}

	var (
		tries    atomic.Uint32
		mu       sync.Mutex
		model    []bool
		best     []bool
		bestLeft = -1
	)
	group, ctx := errgroup.WithContext(context.Background())
	for i := range workers {
		group.Go(func() error {
			w := newWalk(s, score, rand.New(rand.NewPCG(s.seed, uint64(i))))
			for ctx.Err() == nil && tries.Add(1) <= maxTries {
				found := w.try(ctx, maxFlips)

				mu.Lock()
				if found {
					model = w.assignment
				} else if bestLeft < 0 || w.bestLeft < bestLeft {
					bestLeft = w.bestLeft
					best = append(best[:0], w.best...)
				}
				mu.Unlock()

				if found {
					return errSolved
				}
			}
			return nil
		})
	}
	group.Wait()

	log = log.WithField("duration", time.Since(start))
	switch {
	case model != nil:
		log.Debug("local search found a model")
		return sat.SatSolution(model)
	case s.reportBest && best != nil:
		log.WithField("unsatisfied", bestLeft).Debug("local search budget exhausted")
		return sat.BestSolution(best)
	}
	log.Debug("local search budget exhausted")
	return sat.UnknownSolution()
}
