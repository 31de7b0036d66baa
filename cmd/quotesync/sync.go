package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/app"
)

func newSyncCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one reconciliation cycle against the remote quote server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(opts.cfg, cmd.ErrOrStderr())

			c, err := build(cmd.Context(), opts.cfg, logger)
			if err != nil {
				return err
			}
			defer closeQuietly(c)

			result, cycleErr := c.reconciler.RunCycle(cmd.Context())

			if err := printSyncResult(cmd.OutOrStdout(), output, result); err != nil {
				return err
			}

			if cycleErr != nil {
				return fmt.Errorf("sync %s: %w", result.Outcome, cycleErr)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text or json")

	return cmd
}

func printSyncResult(w io.Writer, format string, result app.CycleResult) error {
	if format == outputJSON {
		return writeJSON(w, dto.SyncResultFromApp(result))
	}

	fmt.Fprintf(w, "cycle %s: %s\n", result.ID, result.Outcome)

	if !result.Outcome.Succeeded() {
		return nil
	}

	fmt.Fprintf(w, "fetched %d, added %d, updated %d, total %d\n",
		result.Fetched, result.Merge.Added, result.Merge.Updated, len(result.Merge.Quotes))

	if result.Merge.Conflicted {
		fmt.Fprintln(w, "conflicts resolved (server version kept)")
	}

	if result.PushErr != nil {
		fmt.Fprintf(w, "push failed: %v\n", result.PushErr)
	} else if result.Pushed {
		fmt.Fprintln(w, "pushed merged snapshot")
	}

	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	return nil
}
