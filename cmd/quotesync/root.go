package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotesync/internal/platform/config"
)

// envProfile selects the config profile when --profile is not given.
const envProfile = "APP_ENVIRONMENT"

// options carries state shared by every subcommand.
type options struct {
	profile string
	cfg     *config.Config
}

func defaultProfile() string {
	if p := os.Getenv(envProfile); p != "" {
		return p
	}

	return "local"
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "quotesync",
		Short: "Quote store with periodic reconciliation against a remote quote server",
		Long: `quotesync keeps a local collection of quotes, persists it, and merges it
with a remote quote server. Remote entries win on conflicts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}

			// Load and validate configuration (fail fast)
			cfg, err := config.Load(opts.profile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			opts.cfg = cfg

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.profile, "profile", defaultProfile(),
		"config profile, loads configs/<profile>.yaml over configs/base.yaml")

	cmd.AddCommand(
		newServeCmd(opts),
		newSyncCmd(opts),
		newAddCmd(opts),
		newListCmd(opts),
		newVersionCmd(),
	)

	return cmd
}
