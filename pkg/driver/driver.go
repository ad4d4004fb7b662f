// Package driver routes a DIMACS instance to one of the solving engines and
// emits the refutation certificate of an unsatisfiable result on request.
package driver

import (
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/limaJavier/satkit/pkg/cdcl"
	"github.com/limaJavier/satkit/pkg/proof"
	"github.com/limaJavier/satkit/pkg/sat"
	"github.com/limaJavier/satkit/pkg/sls"
)

// CompleteEngine is an incremental engine that decides satisfiability.
type CompleteEngine interface {
	NewVar() sat.Var
	AddClause(clause sat.Clause)
	Solve(assumptions []sat.Lit) sat.Solution
	ProofTrace() (*proof.Trace, error)
	Close() error
}

// LocalEngine is an incomplete engine that reads its instance itself.
type LocalEngine interface {
	LocalSearch(maxTries, maxFlips uint32, score sls.ScoreFn, parallel bool) sat.Solution
}

// Engines builds the engines a Driver runs.
type Engines struct {
	NewComplete    func(options cdcl.Options) CompleteEngine
	NewLocalSearch func(path string, options ...sls.Option) (LocalEngine, error)
}

// DefaultEngines are backed by pkg/cdcl and pkg/sls.
func DefaultEngines() Engines {
	return Engines{
		NewComplete: func(options cdcl.Options) CompleteEngine {
			return cdcl.New(options)
		},
		NewLocalSearch: func(path string, options ...sls.Option) (LocalEngine, error) {
			solver, err := sls.NewFromFile(path, options...)
			if err != nil {
				return nil, err
			}
			return solver, nil
		},
	}
}

type Driver struct {
	engines Engines
	log     logrus.FieldLogger
}

type Option func(d *Driver)

func WithEngines(engines Engines) Option {
	return func(d *Driver) {
		d.engines = engines
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(d *Driver) {
		d.log = log
	}
}

func New(options ...Option) *Driver {
	d := &Driver{engines: DefaultEngines()}
	for _, option := range options {
		option(d)
	}
	if d.log == nil {
		d.log = logrus.StandardLogger()
	}
	return d
}

// Run solves the instance at path as cfg says. A Config not built by
// Configure is rejected.
func (d *Driver) Run(path string, cfg Config) (sat.Solution, error) {
	log := d.log.WithFields(logrus.Fields{
		"path":      path,
		"algorithm": cfg.alg,
	})
	switch cfg.alg {
	case Complete:
		return d.runComplete(log, path, cfg)
	case LocalSearch:
		return d.runLocalSearch(log, path, cfg)
	}
	return sat.Solution{}, newError(InvalidAlgorithm, pkgerrors.New("configuration was not built by Configure"))
}

func (d *Driver) runComplete(log logrus.FieldLogger, path string, cfg Config) (sat.Solution, error) {
	start := time.Now()
	instance, err := sat.ParseDIMACSFile(path)
	if err != nil {
		return sat.Solution{}, newError(InvalidInputFormat, err)
	}
	log.WithFields(logrus.Fields{
		"vars":     instance.Variables,
		"clauses":  len(instance.Clauses),
		"duration": time.Since(start),
	}).Debug("instance parsed")

	engine := d.engines.NewComplete(cdcl.Options{
		CaptureProof: cfg.proofPath != "",
		Logger:       log,
	})
	defer engine.Close()

	for range instance.Variables {
		engine.NewVar()
	}
	for i := range instance.Clauses {
		engine.AddClause(instance.Lits(i))
	}

	start = time.Now()
	solution := engine.Solve(nil)
	log.WithFields(logrus.Fields{
		"result":   solution.Status,
		"duration": time.Since(start),
	}).Debug("search finished")

	if solution.Status != sat.Unsat || cfg.proofPath == "" {
		return solution, nil
	}
	if err := d.emit(log, engine, cfg.proofPath); err != nil {
		return sat.Solution{}, err
	}
	return solution, nil
}

func (d *Driver) emit(log logrus.FieldLogger, engine CompleteEngine, path string) error {
	start := time.Now()
	trace, err := engine.ProofTrace()
	if err != nil {
		return newError(FileCreationError, pkgerrors.Wrap(err, "proof capture failed"))
	}
	events := trace.Len()
	if err := proof.Emit(path, trace); err != nil {
		var createErr *proof.CreateError
		if errors.As(err, &createErr) {
			return newError(FileCreationError, createErr)
		}
		return newError(FileCreationError, pkgerrors.Wrapf(err, "cannot write proof to %q", path))
	}
	log.WithFields(logrus.Fields{
		"proof":    path,
		"events":   events,
		"duration": time.Since(start),
	}).Debug("proof emitted")
	return nil
}

func (d *Driver) runLocalSearch(log logrus.FieldLogger, path string, cfg Config) (sat.Solution, error) {
	start := time.Now()
	engine, err := d.engines.NewLocalSearch(path,
		sls.WithSeed(cfg.seed),
		sls.WithReportBest(cfg.reportBest),
		sls.WithLogger(log),
	)
	if err != nil {
		return sat.Solution{}, newError(InvalidInputFormat, err)
	}
	log.WithField("duration", time.Since(start)).Debug("instance loaded")

	return engine.LocalSearch(cfg.maxTries, cfg.maxFlips, sls.ScoreExp, cfg.parallel), nil
}
