package cli

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/limaJavier/satkit/pkg/config"
	"github.com/limaJavier/satkit/pkg/driver"
	"github.com/limaJavier/satkit/pkg/output"
)

// RsatOptions holds the flags of the rsat command.
type RsatOptions struct {
	Alg      int
	Parallel bool
	MaxTries uint32
	MaxFlips uint32
	Drat     string
	Best     bool
	Seed     uint64
}

// NewRsatCommand creates the rsat command.
func NewRsatCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RsatOptions{}

	cmd := &cobra.Command{
		Use:   "rsat <file>",
		Short: "Solve a DIMACS CNF instance",
		Long: `Solve a DIMACS CNF instance and print the result as an "s" status line
followed, for models, by a "v" value line.

Algorithms:
  1  complete CDCL search, can prove unsatisfiability (--drat writes the proof)
  2  stochastic local search, bounded by --max-tries and --max-flips

Use "-" to read the instance from standard input. Files ending in .gz or
.bz2 are decompressed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRsat(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Alg, "alg", "a", int(driver.Complete), "algorithm: 1 complete, 2 local search")
	cmd.Flags().BoolVarP(&opts.Parallel, "parallel", "p", false, "run local-search walks on every CPU")
	cmd.Flags().Uint32Var(&opts.MaxTries, "max-tries", driver.DefaultMaxTries, "local-search restarts")
	cmd.Flags().Uint32Var(&opts.MaxFlips, "max-flips", driver.DefaultMaxFlips, "local-search flips per restart")
	cmd.Flags().StringVar(&opts.Drat, "drat", "", "write the DRAT proof of an unsatisfiable instance to this file")
	cmd.Flags().BoolVar(&opts.Best, "best", false, "print the best local-search assignment when no model is found")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "local-search random seed, 0 picks one")

	return cmd
}

// merge fills every flag not set on the command line from settings.
func (o *RsatOptions) merge(cmd *cobra.Command, settings config.Settings) {
	flags := cmd.Flags()
	use := func(flag, key string) bool {
		return !flags.Changed(flag) && settings.Has(key)
	}
	if use("alg", config.KeyAlg) {
		o.Alg = settings.Alg
	}
	if use("parallel", config.KeyParallel) {
		o.Parallel = settings.Parallel
	}
	if use("max-tries", config.KeyMaxTries) {
		o.MaxTries = settings.MaxTries
	}
	if use("max-flips", config.KeyMaxFlips) {
		o.MaxFlips = settings.MaxFlips
	}
	if use("drat", config.KeyDrat) {
		o.Drat = settings.Drat
	}
	if use("best", config.KeyBest) {
		o.Best = settings.Best
	}
	if use("seed", config.KeySeed) {
		o.Seed = settings.Seed
	}
}

// checkBudget rejects a zero local-search budget. The flags default to
// non-zero values, so a zero here was asked for explicitly.
func (o *RsatOptions) checkBudget() error {
	var name string
	switch {
	case o.MaxTries == 0:
		name = "max-tries"
	case o.MaxFlips == 0:
		name = "max-flips"
	default:
		return nil
	}
	return &driver.Error{
		Kind: driver.UnsupportedConfiguration,
		Err:  errors.Errorf("%s must be positive", name),
	}
}

func runRsat(rootOpts *RootOptions, opts *RsatOptions, path string, cmd *cobra.Command) error {
	opts.merge(cmd, rootOpts.settings)
	if err := opts.checkBudget(); err != nil {
		return err
	}

	cfg, err := driver.Configure(driver.Algorithm(opts.Alg), driver.Params{
		Parallel:   opts.Parallel,
		MaxTries:   opts.MaxTries,
		MaxFlips:   opts.MaxFlips,
		ReportBest: opts.Best,
		Seed:       opts.Seed,
		ProofPath:  opts.Drat,
	})
	if err != nil {
		return err
	}

	var options []driver.Option
	if rootOpts.log != nil {
		options = append(options, driver.WithLogger(rootOpts.log))
	}
	solution, err := driver.New(options...).Run(path, cfg)
	if err != nil {
		return err
	}
	return output.Write(cmd.OutOrStdout(), solution)
}
