package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/cheerioskun/testtool/internal/instrument"
	"github.com/cheerioskun/testtool/internal/models"
	"github.com/spf13/cobra"
)

// Styles for explain output
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	structuralStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	tracedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("111"))
)

// explainCmd represents the explain command
var explainCmd = &cobra.Command{
	Use:   "explain [file]",
	Short: "Show how each line of a file is classified",
	Long: `Show the classification of every line without generating the harness.

For each input line this prints its input and output line numbers, whether
it gets a trace call, and the name of the structural pattern it matched.

Examples:
  test_tool explain snippet.c
  test_tool explain ./explain   # a file literally named "explain"`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	path := args[0]
	rewriter := newRewriter()
	summary := models.NewSummary(path)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%5s %5s  %-6s %-13s %s", "IN", "OUT", "CLASS", "PATTERN", "TEXT")))

	err := rewriter.WalkFile(cmd.Context(), path, func(line models.SourceLine) error {
		summary.Add(line)
		_, err := fmt.Fprintln(out, formatExplainLine(line))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to explain %s: %w", path, err)
	}

	printExplainSummary(out, summary, rewriter.Patterns())
	return nil
}

// formatExplainLine renders one classified line as a table row
func formatExplainLine(line models.SourceLine) string {
	if line.Structural {
		return structuralStyle.Render(fmt.Sprintf("%5d %5d  %-6s %-13s %s",
			line.Number, line.OutputLine, "skip", line.Pattern, line.Text))
	}
	return tracedStyle.Render(fmt.Sprintf("%5d %5d  %-6s %-13s %s",
		line.Number, line.OutputLine, "trace", "-", line.Text))
}

// printExplainSummary prints totals and per-pattern hits in pattern order
func printExplainSummary(out io.Writer, summary *models.Summary, patterns *instrument.PatternSet) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, summaryStyle.Render(fmt.Sprintf("%d lines: %d traced, %d structural",
		summary.Lines, summary.Instrumented, summary.Structural)))

	for _, name := range patterns.Names() {
		if hits := summary.PatternHits[name]; hits > 0 {
			fmt.Fprintf(out, "  %-13s %d\n", name, hits)
		}
	}
}
