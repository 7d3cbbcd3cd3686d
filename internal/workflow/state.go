package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Run results live in memory for the orchestrator's lifetime; the CLI also
// persists the latest result per workflow id so later invocations can
// inspect or trace the last run. Last-write-wins, no history.

type stateFile struct {
	Runs map[string]*RunResult `json:"runs"`
}

// SaveLastRun records res as the latest run for its workflow id in the state
// file at path, creating the file if needed. The write is atomic (temp file
// plus rename) so a crash cannot leave a half-written state file.
func SaveLastRun(path string, res *RunResult) error {
	state, err := loadState(path)
	if err != nil {
		return err
	}
	state.Runs[res.WorkflowID] = res

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".sift-state-*")
	if err != nil {
		return fmt.Errorf("writing run state: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing run state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing run state: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing run state: %w", err)
	}

	return nil
}

// LoadLastRun returns the stored latest run for workflowID, if any.
func LoadLastRun(path, workflowID string) (*RunResult, bool, error) {
	state, err := loadState(path)
	if err != nil {
		return nil, false, err
	}
	res, ok := state.Runs[workflowID]
	return res, ok, nil
}

func loadState(path string) (*stateFile, error) {
	state := &stateFile{Runs: make(map[string]*RunResult)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return nil, fmt.Errorf("reading run state %s: %w", path, err)
	}

	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing run state %s: %w", path, err)
	}
	if state.Runs == nil {
		state.Runs = make(map[string]*RunResult)
	}
	return state, nil
}
