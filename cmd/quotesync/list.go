package main

import (
	"cmp"
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

// Output formats.
const (
	outputText   = "text"
	outputJSON   = "json"
	outputPretty = "pretty"
)

func newListCmd(opts *options) *cobra.Command {
	var category, output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the quotes in the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := build(cmd.Context(), opts.cfg, newLogger(opts.cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer closeQuietly(c)

			quotes := c.quotes.ListQuotes(cmd.Context(), category)

			switch output {
			case outputJSON:
				return writeJSON(cmd.OutOrStdout(), dto.NewQuoteListResponse(quotes))
			case outputPretty:
				printPretty(cmd.OutOrStdout(), sortedByCategory(quotes))
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tORIGIN\tTEXT")

			for _, q := range quotes {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", q.Category, q.Origin, q.Text)
			}

			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "only quotes in this category")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json or pretty")

	return cmd
}

// sortedByCategory groups quotes by category, keeping store order within one.
func sortedByCategory(quotes []domain.Quote) []domain.Quote {
	out := slices.Clone(quotes)
	slices.SortStableFunc(out, func(a, b domain.Quote) int {
		return cmp.Compare(a.Category, b.Category)
	})

	return out
}
