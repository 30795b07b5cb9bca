package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cheerioskun/testtool/internal/instrument"
	"github.com/cheerioskun/testtool/internal/models"
	"github.com/cheerioskun/testtool/internal/utils"
	"github.com/cheerioskun/testtool/ui/preview"
	"github.com/spf13/cobra"
)

// previewCmd represents the preview command
var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Browse the instrumented output in the terminal",
	Long: `Open an interactive viewer over the instrumented translation unit.

Traced lines are highlighted and structural lines are dimmed. Nothing is
written to stdout; use the root command to generate the file.

Examples:
  test_tool preview snippet.c
  test_tool preview snippet.c --literal-lines`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	path := args[0]

	rows, summary, err := buildPreviewRows(cmd, path)
	if err != nil {
		return err
	}

	utils.Debug("previewing %s: %d rows", path, len(rows))

	program := tea.NewProgram(preview.NewModel(path, rows, summary), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// buildPreviewRows lays out the generated file as preview rows
func buildPreviewRows(cmd *cobra.Command, path string) ([]preview.Row, *models.Summary, error) {
	rewriter := newRewriter()
	summary := models.NewSummary(path)

	var rows []preview.Row
	for i, line := range instrument.Preamble() {
		rows = append(rows, preview.Row{Number: i + 1, Text: line, Kind: preview.HarnessRow})
	}

	err := rewriter.WalkFile(cmd.Context(), path, func(line models.SourceLine) error {
		summary.Add(line)
		kind := preview.StructuralRow
		if line.Instrumented() {
			kind = preview.TracedRow
		}
		rows = append(rows, preview.Row{Number: line.OutputLine, Text: rewriter.Render(line), Kind: kind})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to preview %s: %w", path, err)
	}

	rows = append(rows, preview.Row{Number: len(rows) + 1, Text: instrument.PostambleLine, Kind: preview.HarnessRow})
	return rows, summary, nil
}
