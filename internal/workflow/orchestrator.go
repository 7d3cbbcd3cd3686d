// Package workflow chains filtering passes into named multi-step runs.
//
// The orchestrator feeds each step's output file into the next step,
// registers every stage's line map with the provenance tracker, and stores
// the latest run result per workflow id.
package workflow

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bimmerbailey/sift/internal/engine"
	"github.com/bimmerbailey/sift/internal/profile"
	"github.com/bimmerbailey/sift/internal/provenance"
)

// ErrWorkflowNotFound is returned by Run for an unknown workflow id.
var ErrWorkflowNotFound = errors.New("workflow not found")

// Config carries the orchestrator's run defaults.
type Config struct {
	// OutputDir is where step artifacts are created. Empty means the
	// system temp dir.
	OutputDir string

	// Options are the engine defaults for a run. Output fields are
	// overridden per step. Steps always match against raw lines:
	// ContextLines applies to the final step only, and PrependLineNumbers
	// is applied once to the final output, numbering lines by their
	// position in the original input. A zero-step run ignores both and
	// reproduces the input unchanged.
	Options engine.Options
}

// Orchestrator runs workflows. Independent runs may execute concurrently;
// concurrent re-runs of the same workflow id are last-write-wins on the
// stored result.
type Orchestrator struct {
	profiles profile.Store
	tracker  *provenance.Tracker
	engine   *engine.Engine
	cfg      Config
	log      *slog.Logger

	mu        sync.RWMutex
	workflows map[string]Workflow
	order     []string
	lastRuns  map[string]*RunResult
	artifacts map[string][]string
}

// New creates an Orchestrator resolving profiles through store.
func New(store profile.Store, cfg Config) *Orchestrator {
	return &Orchestrator{
		profiles:  store,
		tracker:   provenance.NewTracker(),
		engine:    engine.New(),
		cfg:       cfg,
		log:       slog.Default(),
		workflows: make(map[string]Workflow),
		lastRuns:  make(map[string]*RunResult),
		artifacts: make(map[string][]string),
	}
}

// Register adds or replaces a workflow definition.
func (o *Orchestrator) Register(w Workflow) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.workflows[w.ID]; !exists {
		o.order = append(o.order, w.ID)
	}
	o.workflows[w.ID] = w
}

// List returns all registered workflows in registration order.
func (o *Orchestrator) List() []Workflow {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]Workflow, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, o.workflows[id])
	}
	return out
}

// Get returns a workflow definition by id.
func (o *Orchestrator) Get(id string) (Workflow, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	w, ok := o.workflows[id]
	return w, ok
}

// Tracker exposes the provenance tracker for point queries.
func (o *Orchestrator) Tracker() *provenance.Tracker {
	return o.tracker
}

// Run executes the named workflow against inputPath. Every step's profile is
// resolved before any I/O happens, so an unknown profile aborts the run with
// no partial result stored. Engine failures abort with the failing step's id
// attached. Cancellation is checked between steps only; artifacts already
// written stay on disk.
func (o *Orchestrator) Run(ctx context.Context, workflowID, inputPath string) (*RunResult, error) {
	o.mu.RLock()
	wf, ok := o.workflows[workflowID]
	o.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrWorkflowNotFound, workflowID)
	}

	stepGroups := make([][]engine.FilterGroup, len(wf.Steps))
	for i, step := range wf.Steps {
		groups, err := o.profiles.Resolve(step.Profile)
		if err != nil {
			return nil, fmt.Errorf("workflow %q: step %q: %w", wf.ID, step.ID, err)
		}
		stepGroups[i] = groups
	}

	result := &RunResult{WorkflowID: wf.ID, InputPath: inputPath, PerStep: []*engine.Result{}}
	var chain []string
	currentInput := inputPath

	if len(wf.Steps) == 0 {
		// A zero-step workflow still succeeds: an identity pass produces
		// the final artifact and the identity map.
		res, err := o.runStep(wf.ID, "identity", currentInput, nil, false)
		if err != nil {
			return nil, err
		}
		chain = append(chain, res.OutputPath)
		result.FinalOutputPath = res.OutputPath
		o.tracker.Register(res.OutputPath, res.LineMap)
	}

	for i, step := range wf.Steps {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("workflow %q: %w", wf.ID, ctx.Err())
		default:
		}

		res, err := o.runStep(wf.ID, step.ID, currentInput, stepGroups[i], i == len(wf.Steps)-1)
		if err != nil {
			return nil, fmt.Errorf("workflow %q: step %q: %w", wf.ID, step.ID, err)
		}

		o.tracker.Register(res.OutputPath, res.LineMap)
		chain = append(chain, res.OutputPath)
		result.PerStep = append(result.PerStep, res)
		result.FinalOutputPath = res.OutputPath
		currentInput = res.OutputPath

		o.log.Debug("step complete",
			"workflow", wf.ID,
			"step", step.ID,
			"read", res.LinesRead,
			"matched", res.LinesMatched)
	}

	result.ComposedLineMap = o.tracker.Compose(chain)

	if o.cfg.Options.PrependLineNumbers && len(wf.Steps) > 0 {
		if err := prefixLines(result.FinalOutputPath, result.ComposedLineMap); err != nil {
			return nil, fmt.Errorf("workflow %q: %w", wf.ID, err)
		}
	}

	o.mu.Lock()
	if prior := o.artifacts[wf.ID]; len(prior) > 0 {
		o.tracker.Release(prior...)
	}
	o.artifacts[wf.ID] = chain
	o.lastRuns[wf.ID] = result
	o.mu.Unlock()

	return result, nil
}

// LastRunResult returns the stored result of the most recent completed run
// for the workflow id.
func (o *Orchestrator) LastRunResult(workflowID string) (*RunResult, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	res, ok := o.lastRuns[workflowID]
	return res, ok
}

func (o *Orchestrator) runStep(workflowID, stepID, inputPath string, groups []engine.FilterGroup, final bool) (*engine.Result, error) {
	opts := o.cfg.Options
	opts.OutputPath = ""
	opts.OutputDir = o.cfg.OutputDir
	opts.OutputPattern = fmt.Sprintf("%s-%s-*.log", workflowID, stepID)
	// Line maps must point at untouched lines, so no step rewrites its
	// output. The prefix is added after composition, and context around
	// intermediate matches would leak lines into later steps.
	opts.PrependLineNumbers = false
	if !final {
		opts.ContextLines = 0
	}
	return o.engine.Process(inputPath, groups, opts)
}

// prefixLines rewrites path in place, prefixing each line with its 1-based
// original input line number taken from the composed map. Lines without a
// composed record are left as they are.
func prefixLines(path string, records []engine.LineRecord) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("numbering %s: %w", path, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".sift-numbered-*")
	if err != nil {
		return fmt.Errorf("numbering %s: %w", path, err)
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	r := 0
	for i := 0; scanner.Scan(); i++ {
		line := scanner.Text()
		for r < len(records) && records[r].Output < i {
			r++
		}
		if r < len(records) && records[r].Output == i {
			line = fmt.Sprintf("%d: %s", records[r].Input+1, line)
		}
		if _, err := fmt.Fprintln(tmp, line); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return fmt.Errorf("numbering %s: %w", path, err)
		}
	}
	if err := scanner.Err(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("numbering %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("numbering %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("numbering %s: %w", path, err)
	}
	return nil
}
