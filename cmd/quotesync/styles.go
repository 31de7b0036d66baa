package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

var (
	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	remoteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Italic(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	textStyle = lipgloss.NewStyle().
			PaddingLeft(2)
)

// printPretty renders quotes grouped under their category headings.
func printPretty(w io.Writer, quotes []domain.Quote) {
	if len(quotes) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no quotes"))
		return
	}

	last := ""

	for _, q := range quotes {
		if q.Category != last {
			if last != "" {
				fmt.Fprintln(w)
			}

			fmt.Fprintln(w, categoryStyle.Render(q.Category))
			last = q.Category
		}

		line := textStyle.Render(fmt.Sprintf("%q", q.Text))
		if q.Origin == domain.OriginRemote {
			line += " " + remoteStyle.Render("(server)")
		}

		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d quotes", len(quotes))))
}
