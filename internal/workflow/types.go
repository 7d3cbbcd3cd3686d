package workflow

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bimmerbailey/sift/internal/engine"
)

// Step is one filtering pass of a workflow, naming the profile to apply.
type Step struct {
	ID      string `yaml:"id" json:"id"`
	Profile string `yaml:"profile" json:"profile"`
}

// Workflow is a named ordered sequence of steps. Steps execute strictly in
// sequence; step N's input is step N-1's output.
type Workflow struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// RunResult is the stored outcome of one workflow run. One result is kept
// per workflow id, overwritten on re-run.
type RunResult struct {
	WorkflowID      string              `json:"workflow_id"`
	InputPath       string              `json:"input_path"`
	PerStep         []*engine.Result    `json:"per_step"`
	FinalOutputPath string              `json:"final_output_path"`
	ComposedLineMap []engine.LineRecord `json:"composed_line_map"`
}

// LoadFile reads workflow definitions from a YAML file. A missing file
// yields an empty list.
func LoadFile(path string) ([]Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading workflows file %s: %w", path, err)
	}

	var raw struct {
		Workflows []Workflow `yaml:"workflows"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing workflows file %s: %w", path, err)
	}

	for _, w := range raw.Workflows {
		if w.ID == "" {
			return nil, fmt.Errorf("workflows file %s: workflow with empty id", path)
		}
		for _, s := range w.Steps {
			if s.Profile == "" {
				return nil, fmt.Errorf("workflows file %s: workflow %q: step %q names no profile", path, w.ID, s.ID)
			}
		}
	}

	return raw.Workflows, nil
}
