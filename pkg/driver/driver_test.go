package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limaJavier/satkit/pkg/cdcl"
	"github.com/limaJavier/satkit/pkg/proof"
	"github.com/limaJavier/satkit/pkg/sat"
	"github.com/limaJavier/satkit/pkg/sls"
)

const testDirectory = "../../test/cnfs/"

type stubComplete struct {
	options     cdcl.Options
	vars        int
	clauses     []sat.Clause
	assumptions []sat.Lit
	solution    sat.Solution
	trace       *proof.Trace
	traceCalls  int
	closed      bool
}

func (s *stubComplete) NewVar() sat.Var {
	v := sat.Var(s.vars)
	s.vars++
	return v
}

func (s *stubComplete) AddClause(clause sat.Clause) {
	s.clauses = append(s.clauses, clause)
}

func (s *stubComplete) Solve(assumptions []sat.Lit) sat.Solution {
	s.assumptions = assumptions
	return s.solution
}

func (s *stubComplete) ProofTrace() (*proof.Trace, error) {
	s.traceCalls++
	if s.trace == nil {
		return proof.EmptyTrace(), nil
	}
	return s.trace, nil
}

func (s *stubComplete) Close() error {
	s.closed = true
	return nil
}

type stubLocal struct {
	path     string
	options  int
	maxTries uint32
	maxFlips uint32
	score    sls.ScoreFn
	parallel bool
	solution sat.Solution
}

func (s *stubLocal) LocalSearch(maxTries, maxFlips uint32, score sls.ScoreFn, parallel bool) sat.Solution {
	s.maxTries, s.maxFlips, s.score, s.parallel = maxTries, maxFlips, score, parallel
	return s.solution
}

// stubEngines counts every engine construction.
type stubEngines struct {
	complete         *stubComplete
	local            *stubLocal
	completeBuilt    int
	localSearchBuilt int
}

func newStubs(completeSolution, localSolution sat.Solution) *stubEngines {
	return &stubEngines{
		complete: &stubComplete{solution: completeSolution},
		local:    &stubLocal{solution: localSolution},
	}
}

func (s *stubEngines) driver() *Driver {
	return New(WithEngines(Engines{
		NewComplete: func(options cdcl.Options) CompleteEngine {
			s.completeBuilt++
			s.complete.options = options
			return s.complete
		},
		NewLocalSearch: func(path string, options ...sls.Option) (LocalEngine, error) {
			s.localSearchBuilt++
			s.local.path = path
			s.local.options = len(options)
			return s.local, nil
		},
	}))
}

func writeCNF(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "instance.cnf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func recordedTrace(t *testing.T, events ...proof.Event) *proof.Trace {
	t.Helper()
	recorder, err := proof.NewRecorder(t.TempDir())
	require.NoError(t, err)
	for _, e := range events {
		require.NoError(t, recorder.Record(e))
	}
	trace, err := recorder.Finish()
	require.NoError(t, err)
	return trace
}

func TestConfigure(t *testing.T) {
	cfg, err := Configure(Complete, Params{ProofPath: "proof.drat"})
	require.NoError(t, err)
	assert.Equal(t, Complete, cfg.Algorithm())
	assert.Equal(t, "proof.drat", cfg.ProofPath())
	assert.False(t, cfg.Parallel())

	cfg, err = Configure(LocalSearch, Params{Parallel: true, Seed: 9, ReportBest: true})
	require.NoError(t, err)
	assert.Equal(t, LocalSearch, cfg.Algorithm())
	assert.True(t, cfg.Parallel())
	assert.Equal(t, DefaultMaxTries, cfg.MaxTries())
	assert.Equal(t, DefaultMaxFlips, cfg.MaxFlips())
	assert.Equal(t, uint64(9), cfg.Seed())
	assert.True(t, cfg.ReportBest())

	cfg, err = Configure(LocalSearch, Params{MaxTries: 3, MaxFlips: 7})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), cfg.MaxTries())
	assert.Equal(t, uint32(7), cfg.MaxFlips())
}

func TestConfigureRejectsInvalidAlgorithm(t *testing.T) {
	for _, alg := range []Algorithm{0, 3, -1} {
		_, err := Configure(alg, Params{})
		assert.ErrorIs(t, err, InvalidAlgorithm, alg.String())
	}
}

func TestParallelCompleteIsRejectedBeforeConstruction(t *testing.T) {
	stubs := newStubs(sat.UnsatSolution(), sat.UnknownSolution())
	stubs.driver()

	_, err := Configure(Complete, Params{Parallel: true})

	assert.ErrorIs(t, err, UnsupportedConfiguration)
	assert.Zero(t, stubs.completeBuilt)
	assert.Zero(t, stubs.localSearchBuilt)
}

func TestRunRejectsZeroConfig(t *testing.T) {
	stubs := newStubs(sat.UnsatSolution(), sat.UnknownSolution())

	_, err := stubs.driver().Run(filepath.Join(testDirectory, "satisfiable", "scenario_a.cnf"), Config{})

	assert.ErrorIs(t, err, InvalidAlgorithm)
	assert.Zero(t, stubs.completeBuilt)
	assert.Zero(t, stubs.localSearchBuilt)
}

func TestCompleteForwardsProblemInOrder(t *testing.T) {
	//** Arrange
	model := []bool{true, false, true, false}
	stubs := newStubs(sat.SatSolution(model), sat.UnknownSolution())
	path := writeCNF(t, "c ordered\np cnf 4 3\n3 -1 0\n-4 2 1 0\n4 0\n")
	cfg, err := Configure(Complete, Params{})
	require.NoError(t, err)

	//** Act
	solution, err := stubs.driver().Run(path, cfg)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, sat.SatSolution(model), solution)
	assert.Equal(t, 1, stubs.completeBuilt)
	assert.False(t, stubs.complete.options.CaptureProof)
	assert.Equal(t, 4, stubs.complete.vars)
	assert.Equal(t, []sat.Clause{
		sat.ClauseFromDimacs([]int64{3, -1}),
		sat.ClauseFromDimacs([]int64{-4, 2, 1}),
		sat.ClauseFromDimacs([]int64{4}),
	}, stubs.complete.clauses)
	assert.Empty(t, stubs.complete.assumptions)
	assert.True(t, stubs.complete.closed)
	assert.Zero(t, stubs.complete.traceCalls)
}

func TestCompleteInvalidInput(t *testing.T) {
	for name, content := range map[string]string{
		"no header":         "1 2 0\n",
		"variable overflow": "p cnf 1 1\n2 0\n",
		"clause count":      "p cnf 2 3\n1 0\n2 0\n",
	} {
		t.Run(name, func(t *testing.T) {
			stubs := newStubs(sat.UnsatSolution(), sat.UnknownSolution())
			cfg, err := Configure(Complete, Params{})
			require.NoError(t, err)

			_, err = stubs.driver().Run(writeCNF(t, content), cfg)

			assert.ErrorIs(t, err, InvalidInputFormat)
			assert.Zero(t, stubs.completeBuilt)
		})
	}

	cfg, err := Configure(Complete, Params{})
	require.NoError(t, err)
	_, err = New().Run(filepath.Join(t.TempDir(), "missing.cnf"), cfg)
	assert.ErrorIs(t, err, InvalidInputFormat)
}

func TestProofIsOnlyEmittedForUnsat(t *testing.T) {
	for _, solution := range []sat.Solution{sat.SatSolution([]bool{true}), sat.UnknownSolution()} {
		stubs := newStubs(solution, sat.UnknownSolution())
		proofPath := filepath.Join(t.TempDir(), "proof.drat")
		cfg, err := Configure(Complete, Params{ProofPath: proofPath})
		require.NoError(t, err)

		result, err := stubs.driver().Run(writeCNF(t, "p cnf 1 1\n1 0\n"), cfg)

		require.NoError(t, err)
		assert.Equal(t, solution, result)
		assert.True(t, stubs.complete.options.CaptureProof)
		assert.Zero(t, stubs.complete.traceCalls)
		assert.NoFileExists(t, proofPath)
	}
}

func TestUnsatWithoutProofPathSkipsEmission(t *testing.T) {
	stubs := newStubs(sat.UnsatSolution(), sat.UnknownSolution())
	cfg, err := Configure(Complete, Params{})
	require.NoError(t, err)

	solution, err := stubs.driver().Run(writeCNF(t, "p cnf 1 2\n1 0\n-1 0\n"), cfg)

	require.NoError(t, err)
	assert.Equal(t, sat.UnsatSolution(), solution)
	assert.Zero(t, stubs.complete.traceCalls)
}

func TestUnsatEmitsTraceInOrder(t *testing.T) {
	//** Arrange
	stubs := newStubs(sat.UnsatSolution(), sat.UnknownSolution())
	stubs.complete.trace = recordedTrace(t,
		proof.AddEvent(sat.ClauseFromDimacs([]int64{2, -1})),
		proof.DeleteEvent(sat.ClauseFromDimacs([]int64{1, 2})),
		proof.AddEvent(sat.ClauseFromDimacs([]int64{-2})),
		proof.AddEvent(nil),
	)
	proofPath := filepath.Join(t.TempDir(), "proof.drat")
	cfg, err := Configure(Complete, Params{ProofPath: proofPath})
	require.NoError(t, err)

	//** Act
	solution, err := stubs.driver().Run(writeCNF(t, "p cnf 2 2\n1 2 0\n-2 0\n"), cfg)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, sat.Unsat, solution.Status)
	content, err := os.ReadFile(proofPath)
	require.NoError(t, err)
	assert.Equal(t, "2 -1 0\nd 1 2 0\n-2 0\n0\n", string(content))
}

func TestUnsatWithEmptyTraceWritesEmptyFile(t *testing.T) {
	stubs := newStubs(sat.UnsatSolution(), sat.UnknownSolution())
	proofPath := filepath.Join(t.TempDir(), "proof.drat")
	cfg, err := Configure(Complete, Params{ProofPath: proofPath})
	require.NoError(t, err)

	_, err = stubs.driver().Run(writeCNF(t, "p cnf 1 2\n1 0\n-1 0\n"), cfg)

	require.NoError(t, err)
	content, err := os.ReadFile(proofPath)
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestProofFileCreationFailure(t *testing.T) {
	stubs := newStubs(sat.UnsatSolution(), sat.UnknownSolution())
	stubs.complete.trace = recordedTrace(t, proof.AddEvent(nil))
	proofPath := filepath.Join(t.TempDir(), "missing", "proof.drat")
	cfg, err := Configure(Complete, Params{ProofPath: proofPath})
	require.NoError(t, err)

	solution, err := stubs.driver().Run(writeCNF(t, "p cnf 1 2\n1 0\n-1 0\n"), cfg)

	require.ErrorIs(t, err, FileCreationError)
	assert.Equal(t, sat.Solution{}, solution)
	var createErr *proof.CreateError
	assert.True(t, errors.As(err, &createErr))
	assert.Equal(t, proofPath, createErr.Path)
}

func TestLocalSearchForwardsBudget(t *testing.T) {
	model := []bool{false, true}
	stubs := newStubs(sat.UnknownSolution(), sat.SatSolution(model))
	cfg, err := Configure(LocalSearch, Params{Parallel: true, MaxTries: 5, MaxFlips: 50})
	require.NoError(t, err)

	solution, err := stubs.driver().Run("instance.cnf", cfg)

	require.NoError(t, err)
	assert.Equal(t, sat.SatSolution(model), solution)
	assert.Zero(t, stubs.completeBuilt)
	assert.Equal(t, 1, stubs.localSearchBuilt)
	assert.Equal(t, "instance.cnf", stubs.local.path)
	assert.Equal(t, 3, stubs.local.options)
	assert.Equal(t, uint32(5), stubs.local.maxTries)
	assert.Equal(t, uint32(50), stubs.local.maxFlips)
	assert.Equal(t, sls.ScoreExp, stubs.local.score)
	assert.True(t, stubs.local.parallel)
}

func TestLocalSearchInvalidInput(t *testing.T) {
	cfg, err := Configure(LocalSearch, Params{})
	require.NoError(t, err)

	_, err = New().Run(writeCNF(t, "p cnf x y\n"), cfg)
	assert.ErrorIs(t, err, InvalidInputFormat)

	_, err = New().Run(filepath.Join(t.TempDir(), "missing.cnf"), cfg)
	assert.ErrorIs(t, err, InvalidInputFormat)
}

func TestScenarioCompleteSatisfiable(t *testing.T) {
	path := filepath.Join(testDirectory, "satisfiable", "scenario_a.cnf")
	instance, err := sat.ParseDIMACSFile(path)
	require.NoError(t, err)
	cfg, err := Configure(Complete, Params{})
	require.NoError(t, err)

	solution, err := New().Run(path, cfg)

	require.NoError(t, err)
	require.Equal(t, sat.Sat, solution.Status)
	assert.Len(t, solution.Assignment, 3)
	assert.True(t, sat.AssertSATSolution(instance, solution.Literals()))
}

func TestScenarioLocalSearchTinyBudget(t *testing.T) {
	cfg, err := Configure(LocalSearch, Params{MaxTries: 1, MaxFlips: 1})
	require.NoError(t, err)

	solution, err := New().Run(writeCNF(t, "p cnf 1 0\n"), cfg)

	require.NoError(t, err)
	assert.Contains(t, []sat.Status{sat.Sat, sat.Unknown}, solution.Status)
}

func TestDeclaredButUnusedVariablesOnBothEngines(t *testing.T) {
	path := writeCNF(t, "c variables 2 and 3 never occur\np cnf 3 1\n1 0\n")
	complete, err := Configure(Complete, Params{})
	require.NoError(t, err)
	local, err := Configure(LocalSearch, Params{MaxTries: 10, MaxFlips: 10, Seed: 9})
	require.NoError(t, err)

	for _, cfg := range []Config{complete, local} {
		solution, err := New().Run(path, cfg)

		require.NoError(t, err)
		require.Equal(t, sat.Sat, solution.Status)
		require.Len(t, solution.Assignment, 3)
		assert.True(t, solution.Assignment[0])
	}
}

func TestScenarioCompleteUnsatWithProof(t *testing.T) {
	for _, name := range []string{"contradiction.cnf", "all_binary.cnf", "pigeonhole_4_3.cnf"} {
		t.Run(name, func(t *testing.T) {
			proofPath := filepath.Join(t.TempDir(), "proof.drat")
			cfg, err := Configure(Complete, Params{ProofPath: proofPath})
			require.NoError(t, err)

			solution, err := New().Run(filepath.Join(testDirectory, "unsatisfiable", name), cfg)

			require.NoError(t, err)
			assert.Equal(t, sat.UnsatSolution(), solution)
			content, err := os.ReadFile(proofPath)
			require.NoError(t, err)
			for _, line := range strings.Split(strings.TrimSuffix(string(content), "\n"), "\n") {
				if line == "" {
					continue
				}
				assert.True(t, line == "0" || strings.HasSuffix(line, " 0"), line)
			}
		})
	}
}

func TestLocalSearchOnRealEngine(t *testing.T) {
	path := filepath.Join(testDirectory, "satisfiable", "planted_40_160.cnf")
	instance, err := sat.ParseDIMACSFile(path)
	require.NoError(t, err)
	cfg, err := Configure(LocalSearch, Params{MaxTries: 100, MaxFlips: 100000, Seed: 3})
	require.NoError(t, err)

	solution, err := New().Run(path, cfg)

	require.NoError(t, err)
	require.Equal(t, sat.Sat, solution.Status)
	assert.True(t, solution.Satisfies(instance))
}

func TestErrorMessages(t *testing.T) {
	err := newError(FileCreationError, errors.New("permission denied"))

	assert.Equal(t, "file creation error: permission denied", err.Error())
	assert.Equal(t, "unimplemented feature", (&Error{Kind: UnimplementedFeature}).Error())
	assert.ErrorIs(t, err, FileCreationError)
	assert.NotErrorIs(t, err, InvalidInputFormat)
}
