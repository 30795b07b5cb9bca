package cmd

import (
	"fmt"
	"os"

	"github.com/cheerioskun/testtool/internal/instrument"
	"github.com/cheerioskun/testtool/internal/utils"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// usageLine is printed on stdout, with a success exit, when the argument count is wrong
const usageLine = "./test_tool filename"

var (
	verbose      bool
	logFile      string
	literalLines bool

	// appFs is the filesystem input files are read from
	appFs = afero.NewOsFs()
)

// rootCmd instruments the given file when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "test_tool filename",
	Short: "Instrument a C-like source file for line tracing",
	Long: `Instrument a C-like source file for line-coverage debugging.

Every line that is not structural (a lone brace, a lone ';', a 'do {' opener,
a comment close or a blank line) gets a trace call appended that prints its
line number to stderr when the generated program runs. The result is wrapped
in a minimal main() harness and written to stdout:

  #include <stdio.h>
  int main() {
  int x = 1;fprintf(stderr, "%d ", __LINE__ - 2);
  }

Examples:
  test_tool snippet.c > traced.c
  test_tool snippet.c --literal-lines
  test_tool explain snippet.c
  test_tool preview snippet.c
  test_tool -- -odd-name.c`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := utils.Configure(logPath(), viper.GetBool("verbose")); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	RunE: runInstrument,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write debug entries to the log file")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append log entries to this file (implied "+utils.DefaultLogPath+" with --verbose)")
	rootCmd.PersistentFlags().BoolVar(&literalLines, "literal-lines", false, "inject literal line numbers instead of __LINE__")

	// Bind flags to viper
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("literal-lines", rootCmd.PersistentFlags().Lookup("literal-lines"))
}

// logPath returns where log entries go; empty means nowhere
func logPath() string {
	if path := viper.GetString("log-file"); path != "" {
		return path
	}
	if viper.GetBool("verbose") {
		return utils.DefaultLogPath
	}
	return ""
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	_ = utils.GetLogger().Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRewriter() *instrument.Rewriter {
	return instrument.NewRewriter(appFs, instrument.WithLiteralLines(viper.GetBool("literal-lines")))
}

func runInstrument(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(cmd.OutOrStdout(), usageLine)
		return nil
	}

	path := args[0]
	summary, err := newRewriter().RewriteFile(cmd.Context(), cmd.OutOrStdout(), path)
	if err != nil {
		utils.Error("instrumenting %s failed: %v", path, err)
		return err
	}

	utils.Debug("wrote %d body lines for %s (%d traced)", summary.Lines, path, summary.Instrumented)
	return nil
}
