package driver

import (
	"github.com/pkg/errors"
)

// Algorithm selects the engine a Config runs.
type Algorithm int

const (
	Complete    Algorithm = 1
	LocalSearch Algorithm = 2
)

func (a Algorithm) String() string {
	switch a {
	case Complete:
		return "complete"
	case LocalSearch:
		return "local-search"
	default:
		return "invalid"
	}
}

const (
	DefaultMaxTries uint32 = 100
	DefaultMaxFlips uint32 = 1000
)

// Params are the raw knobs accepted by Configure.
type Params struct {
	Parallel bool
	// MaxTries and MaxFlips bound local search; zero means the default.
	MaxTries uint32
	MaxFlips uint32
	// ReportBest turns an exhausted local search into a Best result.
	ReportBest bool
	// Seed fixes the local-search random seed; zero picks one.
	Seed uint64
	// ProofPath is where a refutation certificate is written. Empty
	// disables proof capture.
	ProofPath string
}

// Config is a validated, immutable run configuration.
type Config struct {
	alg        Algorithm
	parallel   bool
	maxTries   uint32
	maxFlips   uint32
	reportBest bool
	seed       uint64
	proofPath  string
}

// Configure validates params for alg. Parallelism is only supported by local
// search.
func Configure(alg Algorithm, params Params) (Config, error) {
	switch alg {
	case Complete:
		if params.Parallel {
			return Config{}, newError(UnsupportedConfiguration, errors.New("parallel mode is only available for local search"))
		}
		return Config{alg: alg, proofPath: params.ProofPath}, nil
	case LocalSearch:
		cfg := Config{
			alg:        alg,
			parallel:   params.Parallel,
			maxTries:   params.MaxTries,
			maxFlips:   params.MaxFlips,
			reportBest: params.ReportBest,
			seed:       params.Seed,
			proofPath:  params.ProofPath,
		}
		if cfg.maxTries == 0 {
			cfg.maxTries = DefaultMaxTries
		}
		if cfg.maxFlips == 0 {
			cfg.maxFlips = DefaultMaxFlips
		}
		return cfg, nil
	}
	return Config{}, newError(InvalidAlgorithm, errors.Errorf("unknown algorithm %d", int(alg)))
}

func (c Config) Algorithm() Algorithm { return c.alg }
func (c Config) Parallel() bool       { return c.parallel }
func (c Config) MaxTries() uint32     { return c.maxTries }
func (c Config) MaxFlips() uint32     { return c.maxFlips }
func (c Config) ReportBest() bool     { return c.reportBest }
func (c Config) Seed() uint64         { return c.seed }
func (c Config) ProofPath() string    { return c.proofPath }
