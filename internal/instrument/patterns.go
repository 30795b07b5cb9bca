package instrument

import "regexp"

// Pattern is a named structural line shape
type Pattern struct {
	Name  string         // Short name shown by explain and in debug logs
	Regex *regexp.Regexp // Compiled expression, searched against the stripped line
}

// PatternSet is an ordered, immutable list of structural patterns.
// The first matching pattern wins.
type PatternSet struct {
	patterns []Pattern
}

// Structural pattern names
const (
	PatternDoOpen       = "do-open"
	PatternTerminator   = "terminator"
	PatternOpenBrace    = "open-brace"
	PatternCloseBrace   = "close-brace"
	PatternCommentClose = "comment-close"
	PatternBlank        = "blank"
)

// DefaultPatterns returns the structural patterns used for C-like sources
func DefaultPatterns() *PatternSet {
	return mustCompilePatterns([]struct{ Name, Expr string }{
		{PatternDoOpen, `^\s*do\s*\{?\s*$`},
		{PatternTerminator, `^\s*;\s*$`},
		{PatternOpenBrace, `^\s*\{\s*$`},
		{PatternCloseBrace, `^\s*\}\s*$`},
		{PatternCommentClose, `\s*\*/\s*$`},
		{PatternBlank, `^\s*$`},
	})
}

// mustCompilePatterns compiles named expressions into a PatternSet, panicking on invalid input
func mustCompilePatterns(defs []struct{ Name, Expr string }) *PatternSet {
	ps := &PatternSet{patterns: make([]Pattern, 0, len(defs))}
	for _, d := range defs {
		ps.patterns = append(ps.patterns, Pattern{
			Name:  d.Name,
			Regex: regexp.MustCompile(d.Expr),
		})
	}
	return ps
}

// Match reports the name of the first pattern found in line
func (ps *PatternSet) Match(line string) (string, bool) {
	for _, p := range ps.patterns {
		if p.Regex.MatchString(line) {
			return p.Name, true
		}
	}
	return "", false
}

// Names returns the pattern names in evaluation order
func (ps *PatternSet) Names() []string {
	names := make([]string, len(ps.patterns))
	for i, p := range ps.patterns {
		names[i] = p.Name
	}
	return names
}
