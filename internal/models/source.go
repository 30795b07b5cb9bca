package models

// SourceLine is one classified line of the input file
type SourceLine struct {
	Number     int    `json:"number"`      // 1-based line in the input file
	OutputLine int    `json:"output_line"` // 1-based line in the generated file
	Text       string `json:"text"`        // Line with surrounding whitespace stripped
	Structural bool   `json:"structural"`  // Matched a structural pattern
	Pattern    string `json:"pattern"`     // Name of the matching pattern, empty if none
}

// Instrumented returns true if the line gets a trace call appended
func (l SourceLine) Instrumented() bool {
	return !l.Structural
}

// Summary contains aggregate counts for a single instrumentation run
type Summary struct {
	Path         string         `json:"path"`         // Input file path
	Lines        int            `json:"lines"`        // Body lines emitted
	Instrumented int            `json:"instrumented"` // Lines with a trace call
	Structural   int            `json:"structural"`   // Lines passed through unchanged
	PatternHits  map[string]int `json:"pattern_hits"` // Structural lines per pattern name
}

// NewSummary creates an empty Summary for the given input path
func NewSummary(path string) *Summary {
	return &Summary{
		Path:        path,
		PatternHits: make(map[string]int),
	}
}

// Add records a classified line in the summary
func (s *Summary) Add(line SourceLine) {
	s.Lines++
	if line.Instrumented() {
		s.Instrumented++
		return
	}
	s.Structural++
	s.PatternHits[line.Pattern]++
}
