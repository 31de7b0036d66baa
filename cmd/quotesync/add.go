package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAddCmd(opts *options) *cobra.Command {
	var text, category string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add one quote to the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := build(cmd.Context(), opts.cfg, newLogger(opts.cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer closeQuietly(c)

			q, err := c.quotes.AddQuote(cmd.Context(), text, category)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "added %s [%s] %q\n", q.ID, q.Category, q.Text)

			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "quote text")
	cmd.Flags().StringVar(&category, "category", "", "quote category")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}
