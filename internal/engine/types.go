package engine

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind distinguishes include rules from exclude rules.
type Kind int

const (
	// KindInclude keeps lines that match the filter.
	KindInclude Kind = iota
	// KindExclude drops lines that match the filter, overriding any include.
	KindExclude
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInclude:
		return "include"
	case KindExclude:
		return "exclude"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalJSON renders the kind by name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON parses a kind name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseKind(s)
	if !ok {
		return fmt.Errorf("unknown filter kind %q", s)
	}
	*k = parsed
	return nil
}

// ParseKind converts a string to a Kind. The second return is false for
// unrecognized values.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "include":
		return KindInclude, true
	case "exclude":
		return KindExclude, true
	default:
		return KindInclude, false
	}
}

// FilterItem is a single include/exclude rule. Keyword is matched as a
// case-insensitive literal substring unless Regex is set, in which case it is
// compiled as a case-insensitive regular expression.
type FilterItem struct {
	Keyword string
	Regex   bool
	Kind    Kind
	Enabled bool
}

// FilterGroup is an independently enable-able ordered collection of filters.
// A disabled group contributes none of its filters to a run.
type FilterGroup struct {
	Name    string
	Enabled bool
	Filters []FilterItem
}

// Options controls a single engine pass.
type Options struct {
	// PrependLineNumbers prefixes each kept line with its 1-based original
	// line number ("42: ...").
	PrependLineNumbers bool

	// ContextLines emits that many lines before and after each match,
	// clipped at file boundaries. Overlapping windows merge; a line is
	// written at most once.
	ContextLines int

	// OutputPath is the file to write. When empty the engine creates a temp
	// file in OutputDir (or the system temp dir) using OutputPattern.
	OutputPath string

	// OutputDir is the directory for derived output files.
	OutputDir string

	// OutputPattern is the os.CreateTemp pattern for derived output files.
	// Defaults to "sift-*.log".
	OutputPattern string

	// TotalLines is an optional progress hint: the expected number of input
	// lines. It does not affect filtering.
	TotalLines int

	// Progress, when set, is invoked periodically with (linesRead,
	// TotalLines) while streaming.
	Progress func(read, total int)
}

// LineRecord maps one output line back to its input line. Both indices are
// zero-based. Records are produced in output order, so Output is strictly
// increasing and Input is non-decreasing within one result.
type LineRecord struct {
	Output int `json:"output"`
	Input  int `json:"input"`
}

// Warning records a filter that could not be compiled and was skipped for
// the run.
type Warning struct {
	Group   string `json:"group"`
	Keyword string `json:"keyword"`
	Err     error  `json:"-"`
}

// String formats the warning for display.
func (w Warning) String() string {
	return fmt.Sprintf("group %q: invalid pattern %q: %v", w.Group, w.Keyword, w.Err)
}

// MarshalJSON includes the underlying error as a plain string so results
// survive a JSON round trip through the run-state file.
func (w Warning) MarshalJSON() ([]byte, error) {
	type alias Warning
	return json.Marshal(struct {
		alias
		Error string `json:"error"`
	}{alias: alias(w), Error: fmt.Sprint(w.Err)})
}

// UnmarshalJSON restores a warning serialized by MarshalJSON.
func (w *Warning) UnmarshalJSON(data []byte) error {
	type alias Warning
	var raw struct {
		alias
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*w = Warning(raw.alias)
	if raw.Error != "" {
		w.Err = errors.New(raw.Error)
	}
	return nil
}

// Result describes one completed engine pass. It is immutable once returned.
type Result struct {
	OutputPath   string       `json:"output_path"`
	LinesRead    int          `json:"lines_read"`
	LinesMatched int          `json:"lines_matched"`
	LineMap      []LineRecord `json:"line_map"`
	Warnings     []Warning    `json:"warnings,omitempty"`
}
