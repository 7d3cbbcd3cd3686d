// Package engine implements the streaming log filter.
//
// A single pass reads the input line by line, applies the enabled
// include/exclude filters, writes kept lines (plus optional context lines)
// to the output file, and records a line map tracing every output line back
// to its input line. Peak memory is independent of file size: only the
// bounded context window is retained.
package engine

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"github.com/bimmerbailey/sift/internal/ring"
)

const (
	// maxScanTokenSize bounds a single input line at 1MB.
	maxScanTokenSize = 1024 * 1024

	// progressInterval is how many lines pass between Progress callbacks.
	progressInterval = 10000

	defaultOutputPattern = "sift-*.log"
)

// Engine streams files through filter groups. The zero value is not usable;
// call New.
type Engine struct {
	log *slog.Logger
}

// New creates an Engine logging through the process default logger.
func New() *Engine {
	return &Engine{log: slog.Default()}
}

// NewWithLogger creates an Engine with an explicit logger.
func NewWithLogger(log *slog.Logger) *Engine {
	return &Engine{log: log}
}

// pending is a line buffered in the context window, tagged with its
// zero-based input index.
type pending struct {
	idx  int
	text string
}

// Process filters inputPath through groups and returns the run result.
// Failures to open, read, create, or write are returned as *IOError.
// Invalid filter patterns are not errors: the offending filter is skipped
// and reported on Result.Warnings.
func (e *Engine) Process(inputPath string, groups []FilterGroup, opts Options) (*Result, error) {
	m, warnings := compile(groups)
	for _, w := range warnings {
		e.log.Warn("skipping invalid filter", "group", w.Group, "keyword", w.Keyword, "err", w.Err)
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return nil, ioErr("open", inputPath, err)
	}
	defer in.Close()

	out, err := e.createOutput(opts)
	if err != nil {
		return nil, err
	}
	outPath := out.Name()

	res, err := e.stream(in, out, m, opts)
	if err != nil {
		out.Close()
		os.Remove(outPath)
		return nil, err
	}

	if err := out.Close(); err != nil {
		os.Remove(outPath)
		return nil, ioErr("close", outPath, err)
	}

	res.OutputPath = outPath
	res.Warnings = warnings
	return res, nil
}

// createOutput opens the explicit output path or derives a temp file.
func (e *Engine) createOutput(opts Options) (*os.File, error) {
	if opts.OutputPath != "" {
		f, err := os.Create(opts.OutputPath)
		if err != nil {
			return nil, ioErr("create", opts.OutputPath, err)
		}
		return f, nil
	}

	pattern := opts.OutputPattern
	if pattern == "" {
		pattern = defaultOutputPattern
	}
	f, err := os.CreateTemp(opts.OutputDir, pattern)
	if err != nil {
		return nil, ioErr("create", pattern, err)
	}
	return f, nil
}

// stream runs the filtering pass. Context handling follows grep -C
// semantics: each match flushes up to ContextLines unemitted lines before it
// and arms a countdown that emits the lines after it. Overlapping windows
// merge because a line already emitted is never emitted again.
func (e *Engine) stream(in *os.File, out *os.File, m *matcher, opts Options) (*Result, error) {
	scanner := bufio.NewScanner(in)
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)

	w := bufio.NewWriter(out)
	res := &Result{}

	before := ring.New[pending](opts.ContextLines)
	afterRemaining := 0
	lastEmitted := -1

	emit := func(idx int, text string) error {
		if opts.PrependLineNumbers {
			text = fmt.Sprintf("%d: %s", idx+1, text)
		}
		if _, err := w.WriteString(text); err != nil {
			return ioErr("write", out.Name(), err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return ioErr("write", out.Name(), err)
		}
		res.LineMap = append(res.LineMap, LineRecord{Output: len(res.LineMap), Input: idx})
		lastEmitted = idx
		return nil
	}

	for scanner.Scan() {
		idx := res.LinesRead
		res.LinesRead++
		line := scanner.Text()

		if opts.Progress != nil && res.LinesRead%progressInterval == 0 {
			opts.Progress(res.LinesRead, opts.TotalLines)
		}

		if m.keep(line) {
			res.LinesMatched++
			for _, p := range before.Snapshot() {
				if p.idx <= lastEmitted {
					continue
				}
				if err := emit(p.idx, p.text); err != nil {
					return nil, err
				}
			}
			if err := emit(idx, line); err != nil {
				return nil, err
			}
			afterRemaining = opts.ContextLines
		} else if afterRemaining > 0 {
			if err := emit(idx, line); err != nil {
				return nil, err
			}
			afterRemaining--
		}

		if opts.ContextLines > 0 {
			before.Push(pending{idx: idx, text: line})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, ioErr("read", in.Name(), err)
	}

	if err := w.Flush(); err != nil {
		return nil, ioErr("write", out.Name(), err)
	}

	e.log.Debug("pass complete",
		"input", in.Name(),
		"output", out.Name(),
		"read", res.LinesRead,
		"matched", res.LinesMatched,
		"emitted", len(res.LineMap))

	return res, nil
}
