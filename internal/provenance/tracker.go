// Package provenance tracks line maps across chained filtering passes.
//
// Each engine pass produces a map from output line indices to input line
// indices keyed by its output artifact. Composing the maps of a workflow's
// stages traces any final-output line back to the original input line.
package provenance

import (
	"sync"

	"github.com/bimmerbailey/sift/internal/engine"
)

// Tracker stores one line map per artifact key and composes chains of them.
// It is safe for concurrent use; independent workflow runs may register and
// query at the same time.
type Tracker struct {
	mu     sync.RWMutex
	stages map[string][]engine.LineRecord
	index  map[string]map[int]int
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		stages: make(map[string][]engine.LineRecord),
		index:  make(map[string]map[int]int),
	}
}

// Register stores a stage's line map under artifactKey, replacing any prior
// registration for the same key.
func (t *Tracker) Register(artifactKey string, lineMap []engine.LineRecord) {
	idx := make(map[int]int, len(lineMap))
	for _, rec := range lineMap {
		idx[rec.Output] = rec.Input
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.stages[artifactKey] = lineMap
	t.index[artifactKey] = idx
}

// Release drops the registrations for the given artifact keys. The
// orchestrator calls it when a fresh run replaces a workflow's stages.
func (t *Tracker) Release(artifactKeys ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, key := range artifactKeys {
		delete(t.stages, key)
		delete(t.index, key)
	}
}

// Lookup resolves a single hop: the input line index that produced
// outputLine in the stage registered under artifactKey.
func (t *Tracker) Lookup(artifactKey string, outputLine int) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	idx, ok := t.index[artifactKey]
	if !ok {
		return 0, false
	}
	in, ok := idx[outputLine]
	return in, ok
}

// Compose walks the chain from last stage to first and returns the map from
// the last stage's output lines to the first stage's input lines. A line
// with no matching record at some hop did not survive that far back; it is
// omitted rather than treated as an error. Composition is associative:
// composing stages 1..k and then k+1..n equals composing 1..n directly.
func (t *Tracker) Compose(chain []string) []engine.LineRecord {
	if len(chain) == 0 {
		return nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	last := t.stages[chain[len(chain)-1]]
	composed := make([]engine.LineRecord, 0, len(last))

	for _, rec := range last {
		in := rec.Input
		ok := true
		for i := len(chain) - 2; i >= 0; i-- {
			idx, found := t.index[chain[i]]
			if !found {
				ok = false
				break
			}
			in, found = idx[in]
			if !found {
				ok = false
				break
			}
		}
		if ok {
			composed = append(composed, engine.LineRecord{Output: rec.Output, Input: in})
		}
	}

	return composed
}
