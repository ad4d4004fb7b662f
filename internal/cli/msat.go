package cli

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/limaJavier/satkit/pkg/driver"
)

// NewMsatCommand creates the msat command. MaxSAT solving is not available
// yet, so the command always fails.
func NewMsatCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "msat <file>",
		Short:         "Solve a weighted MaxSAT instance (not implemented)",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rootOpts.log != nil {
				rootOpts.log.Debug("msat requested")
			}
			return &driver.Error{
				Kind: driver.UnimplementedFeature,
				Err:  errors.New("msat is not implemented"),
			}
		},
	}
}
