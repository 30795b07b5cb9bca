package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cheerioskun/testtool/internal/utils"
	"github.com/cheerioskun/testtool/ui/preview"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trace = `fprintf(stderr, "%d ", __LINE__ - 2);`

const scenario = "int x = 1;\nif (x) {\nprintf(\"hi\");\n}\n"

// execute runs the root command against fs and returns everything it printed
func execute(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()

	prev := appFs
	appFs = fs
	t.Cleanup(func() {
		appFs = prev
		reset := func(f *pflag.Flag) {
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				_ = sv.Replace(nil)
			} else {
				_ = f.Value.Set(f.DefValue)
			}
			f.Changed = false
		}
		rootCmd.PersistentFlags().VisitAll(reset)
		scanCmd.Flags().VisitAll(reset)
		_ = utils.Configure("", false)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func scenarioFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/scenario.c", []byte(scenario), 0644))
	return fs
}

func TestRootUsage(t *testing.T) {
	tests := map[string][]string{
		"no arguments":   {},
		"two arguments":  {"a.c", "b.c"},
		"many arguments": {"a.c", "b.c", "c.c"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := execute(t, afero.NewMemMapFs(), args...)

			require.NoError(t, err)
			assert.Equal(t, "./test_tool filename\n", out)
		})
	}
}

func TestRootInstrumentsFile(t *testing.T) {
	out, err := execute(t, scenarioFs(t), "/work/scenario.c")
	require.NoError(t, err)

	want := "#include <stdio.h>\n" +
		"int main() {\n" +
		"int x = 1;" + trace + "\n" +
		"if (x) {" + trace + "\n" +
		"printf(\"hi\");" + trace + "\n" +
		"}\n" +
		"}\n"
	assert.Equal(t, want, out)
}

func TestRootMissingFile(t *testing.T) {
	out, err := execute(t, afero.NewMemMapFs(), "/work/missing.c")

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, out)
}

func TestRootLiteralLines(t *testing.T) {
	t.Run("flag", func(t *testing.T) {
		out, err := execute(t, scenarioFs(t), "--literal-lines", "/work/scenario.c")
		require.NoError(t, err)

		assert.Contains(t, out, "int x = 1;fprintf(stderr, \"%d \", 1);\n")
		assert.Contains(t, out, "printf(\"hi\");fprintf(stderr, \"%d \", 3);\n")
		assert.NotContains(t, out, "__LINE__")
	})

	t.Run("environment is ignored", func(t *testing.T) {
		t.Setenv("TESTTOOL_LITERAL_LINES", "true")

		out, err := execute(t, scenarioFs(t), "/work/scenario.c")
		require.NoError(t, err)

		assert.Contains(t, out, "if (x) {"+trace+"\n")
		assert.NotContains(t, out, "fprintf(stderr, \"%d \", 2);")
	})

	t.Run("default", func(t *testing.T) {
		out, err := execute(t, scenarioFs(t), "/work/scenario.c")
		require.NoError(t, err)

		assert.Contains(t, out, "int x = 1;"+trace+"\n")
	})
}

func TestRootWritesNoLogByDefault(t *testing.T) {
	_ = os.Remove(utils.DefaultLogPath)

	_, err := execute(t, scenarioFs(t), "/work/scenario.c")
	require.NoError(t, err)

	assert.NoFileExists(t, utils.DefaultLogPath)
}

func TestRootLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")

	out, err := execute(t, scenarioFs(t), "--verbose", "--log-file", path, "/work/scenario.c")
	require.NoError(t, err)
	require.NoError(t, utils.GetLogger().Close())

	assert.Contains(t, out, "int x = 1;"+trace+"\n")
	assert.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "wrote 4 body lines for /work/scenario.c")
}

func TestRootFileNamedLikeFlag(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "-x.c", []byte("go();\n"), 0644))

	t.Run("after double dash", func(t *testing.T) {
		out, err := execute(t, fs, "--", "-x.c")
		require.NoError(t, err)
		assert.Equal(t, "#include <stdio.h>\nint main() {\ngo();"+trace+"\n}\n", out)
	})

	t.Run("bare", func(t *testing.T) {
		_, err := execute(t, fs, "-x.c")
		assert.Error(t, err)
	})
}

func TestRootFileNamedLikeSubcommand(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "explain", []byte("go();\n"), 0644))

	out, err := execute(t, fs, "./explain")
	require.NoError(t, err)

	assert.Equal(t, "#include <stdio.h>\nint main() {\ngo();"+trace+"\n}\n", out)
}

func TestExplain(t *testing.T) {
	out, err := execute(t, scenarioFs(t), "explain", "/work/scenario.c")
	require.NoError(t, err)

	assert.Contains(t, out, "PATTERN")
	assert.Contains(t, out, "    1     3  trace  -             int x = 1;")
	assert.Contains(t, out, "    4     6  skip   close-brace   }")
	assert.Contains(t, out, "4 lines: 3 traced, 1 structural")
	assert.Contains(t, out, "  close-brace   1\n")
	assert.NotContains(t, out, "#include")
}

func TestExplainErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, afero.NewMemMapFs(), "explain", "/work/missing.c")

		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("wrong argument count", func(t *testing.T) {
		_, err := execute(t, afero.NewMemMapFs(), "explain")
		assert.Error(t, err)
	})
}

func TestBuildPreviewRows(t *testing.T) {
	prev := appFs
	appFs = scenarioFs(t)
	t.Cleanup(func() { appFs = prev })

	c := &cobra.Command{}
	c.SetContext(context.Background())

	rows, summary, err := buildPreviewRows(c, "/work/scenario.c")
	require.NoError(t, err)

	assert.Equal(t, []preview.Row{
		{Number: 1, Text: "#include <stdio.h>", Kind: preview.HarnessRow},
		{Number: 2, Text: "int main() {", Kind: preview.HarnessRow},
		{Number: 3, Text: "int x = 1;" + trace, Kind: preview.TracedRow},
		{Number: 4, Text: "if (x) {" + trace, Kind: preview.TracedRow},
		{Number: 5, Text: "printf(\"hi\");" + trace, Kind: preview.TracedRow},
		{Number: 6, Text: "}", Kind: preview.StructuralRow},
		{Number: 7, Text: "}", Kind: preview.HarnessRow},
	}, rows)
	assert.Equal(t, 3, summary.Instrumented)

	_, _, err = buildPreviewRows(c, "/work/missing.c")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScan(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/a.c", []byte(scenario), 0644))
	require.NoError(t, afero.WriteFile(fs, "/proj/inc/b.h", []byte("{\n}\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/proj/notes.txt", []byte("todo\n"), 0644))

	out, err := execute(t, fs, "scan", "/proj")
	require.NoError(t, err)

	assert.Contains(t, out, "      4       3       1  a.c\n")
	assert.Contains(t, out, "      2       0       2  inc/b.h\n")
	assert.NotContains(t, out, "notes.txt")
	assert.Contains(t, out, "2 files, 6 lines: 3 traced, 3 structural")
}

func TestScanMaxDepth(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/a.c", []byte(scenario), 0644))
	require.NoError(t, afero.WriteFile(fs, "/proj/inc/b.h", []byte("{\n}\n"), 0644))

	out, err := execute(t, fs, "scan", "--max-depth", "0", "/proj")
	require.NoError(t, err)

	assert.NotContains(t, out, "inc/b.h")
	assert.Contains(t, out, "1 files, 4 lines: 3 traced, 1 structural")
}

func TestScanNotADirectory(t *testing.T) {
	_, err := execute(t, scenarioFs(t), "scan", "/work/scenario.c")
	assert.ErrorContains(t, err, "is not a directory")
}

func TestScanExtraExtension(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/a.c", []byte(scenario), 0644))
	require.NoError(t, afero.WriteFile(fs, "/proj/table.inc", []byte("a();\n"), 0644))

	out, err := execute(t, fs, "scan", "--ext", "inc", "/proj")
	require.NoError(t, err)

	assert.Contains(t, out, "      1       1       0  table.inc\n")
	assert.Contains(t, out, "2 files, 5 lines: 4 traced, 1 structural")

	out, err = execute(t, fs, "scan", "/proj")
	require.NoError(t, err)
	assert.NotContains(t, out, "table.inc")
}
