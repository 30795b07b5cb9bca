package instrument

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/cheerioskun/testtool/internal/models"
	"github.com/cheerioskun/testtool/internal/utils"
	"github.com/spf13/afero"
)

// Harness lines wrapped around the instrumented body
const (
	IncludeLine   = "#include <stdio.h>"
	MainOpenLine  = "int main() {"
	PostambleLine = "}"
)

var preamble = [...]string{IncludeLine, MainOpenLine}

// LineOffset is the number of preamble lines preceding the body
const LineOffset = len(preamble)

// Preamble returns a copy of the harness lines emitted before the body
func Preamble() []string {
	return append([]string(nil), preamble[:]...)
}

// ErrInvalidEncoding is wrapped by Walk when a line is not valid UTF-8
var ErrInvalidEncoding = errors.New("invalid UTF-8")

// TraceCall returns the statement appended to the line at outputLine.
// With literal set the line number is injected directly instead of relying on __LINE__.
func TraceCall(outputLine int, literal bool) string {
	if literal {
		return fmt.Sprintf(`fprintf(stderr, "%%d ", %d);`, outputLine-LineOffset)
	}
	return fmt.Sprintf(`fprintf(stderr, "%%d ", __LINE__ - %d);`, LineOffset)
}

// Rewriter classifies source lines and emits the instrumented translation unit
type Rewriter struct {
	fs           afero.Fs
	patterns     *PatternSet
	literalLines bool
}

// Option configures a Rewriter
type Option func(*Rewriter)

// withPatterns replaces the default structural pattern set
func withPatterns(ps *PatternSet) Option {
	return func(r *Rewriter) {
		if ps != nil {
			r.patterns = ps
		}
	}
}

// WithLiteralLines makes trace calls carry the literal line number
func WithLiteralLines(literal bool) Option {
	return func(r *Rewriter) {
		r.literalLines = literal
	}
}

// NewRewriter creates a new Rewriter reading input through the given filesystem
func NewRewriter(fs afero.Fs, opts ...Option) *Rewriter {
	r := &Rewriter{
		fs:       fs,
		patterns: DefaultPatterns(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Patterns returns the structural pattern set in use
func (r *Rewriter) Patterns() *PatternSet {
	return r.patterns
}

// Classify strips a raw input line and matches it against the structural patterns
func (r *Rewriter) Classify(number int, raw string) models.SourceLine {
	text := strings.TrimSpace(raw)
	name, structural := r.patterns.Match(text)
	return models.SourceLine{
		Number:     number,
		OutputLine: number + LineOffset,
		Text:       text,
		Structural: structural,
		Pattern:    name,
	}
}

// Render returns the output text for a classified line, without the newline
func (r *Rewriter) Render(line models.SourceLine) string {
	if line.Structural {
		return line.Text
	}
	return line.Text + TraceCall(line.OutputLine, r.literalLines)
}

// Walk classifies every line read from src in order, calling fn for each one.
// Lines have no length limit; a line that is not valid UTF-8 stops the walk.
func (r *Rewriter) Walk(ctx context.Context, src io.Reader, fn func(models.SourceLine) error) error {
	reader := bufio.NewReader(src)

	number := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return fmt.Errorf("failed to read line %d: %w", number+1, readErr)
		}
		if raw == "" {
			return nil
		}

		number++
		if !utf8.ValidString(raw) {
			return fmt.Errorf("failed to decode line %d: %w", number, ErrInvalidEncoding)
		}

		line := r.Classify(number, raw)
		utils.Debug("line %d structural=%t pattern=%q", line.Number, line.Structural, line.Pattern)

		if err := fn(line); err != nil {
			return err
		}

		if readErr == io.EOF {
			return nil
		}
	}
}

// WalkFile opens path and classifies its lines; the file is closed on every exit path
func (r *Rewriter) WalkFile(ctx context.Context, path string, fn func(models.SourceLine) error) error {
	file, err := r.fs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return r.Walk(ctx, file, fn)
}

// Rewrite writes the harnessed, instrumented form of src to dst
func (r *Rewriter) Rewrite(ctx context.Context, dst io.Writer, src io.Reader) (*models.Summary, error) {
	return r.rewrite(dst, "", func(fn func(models.SourceLine) error) error {
		return r.Walk(ctx, src, fn)
	})
}

// RewriteFile writes the harnessed, instrumented form of the file at path to dst
func (r *Rewriter) RewriteFile(ctx context.Context, dst io.Writer, path string) (*models.Summary, error) {
	// Open before emitting anything so a missing file produces no harness
	file, err := r.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return r.rewrite(dst, path, func(fn func(models.SourceLine) error) error {
		return r.Walk(ctx, file, fn)
	})
}

func (r *Rewriter) rewrite(dst io.Writer, path string, walk func(func(models.SourceLine) error) error) (*models.Summary, error) {
	out := bufio.NewWriter(dst)
	summary := models.NewSummary(path)

	for _, line := range preamble {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return nil, fmt.Errorf("failed to write preamble: %w", err)
		}
	}

	err := walk(func(line models.SourceLine) error {
		if _, err := fmt.Fprintln(out, r.Render(line)); err != nil {
			return fmt.Errorf("failed to write line %d: %w", line.Number, err)
		}
		summary.Add(line)
		return nil
	})
	if err != nil {
		// Lines already emitted are flushed; the error is what the caller sees
		_ = out.Flush()
		return nil, err
	}

	if _, err := fmt.Fprintln(out, PostambleLine); err != nil {
		return nil, fmt.Errorf("failed to write postamble: %w", err)
	}

	if err := out.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush output: %w", err)
	}

	utils.Debug("instrumented %s: %d lines, %d traced, %d structural",
		path, summary.Lines, summary.Instrumented, summary.Structural)

	return summary, nil
}
