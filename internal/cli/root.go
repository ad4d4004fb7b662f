package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/limaJavier/satkit/pkg/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	ConfigPath string

	settings config.Settings
	log      *logrus.Logger
}

// NewRootCommand creates the root command of satkit.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "satkit",
		Short: "satkit - a SAT solving toolkit",
		Long: `Solve DIMACS CNF instances with a complete CDCL engine or with
stochastic local search, and emit DRAT certificates for refutations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log every solving phase on stderr")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "settings file (.json, .yaml or .yml) providing flag defaults")

	cmd.AddCommand(NewRsatCommand(opts))
	cmd.AddCommand(NewMsatCommand(opts))

	return cmd
}

func (o *RootOptions) setup(cmd *cobra.Command) error {
	o.log = logrus.New()
	o.log.SetOutput(cmd.ErrOrStderr())
	o.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	o.log.SetLevel(logrus.WarnLevel)
	if o.Verbose {
		o.log.SetLevel(logrus.DebugLevel)
	}

	if o.ConfigPath == "" {
		return nil
	}
	settings, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	o.settings = settings
	o.log.WithField("config", o.ConfigPath).Debug("settings loaded")
	return nil
}
