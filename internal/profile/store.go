// Package profile provides the read-side store of named filter profiles.
//
// A profile is a named, persisted collection of filter groups. Profiles are
// edited as a YAML file; this package only loads and resolves them. The
// reserved "default" profile is built in, immutable, and always listed first.
package profile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/bimmerbailey/sift/internal/engine"
)

// DefaultName is the reserved name of the built-in profile. It has no filter
// groups, so applying it is an identity pass.
const DefaultName = "default"

// ErrNotFound is returned when a profile name cannot be resolved.
var ErrNotFound = errors.New("profile not found")

// Store is the read interface the engine and orchestrator consume.
// Profile CRUD is out of scope; users edit the backing file directly.
type Store interface {
	// Resolve returns the filter groups of the named profile.
	Resolve(name string) ([]engine.FilterGroup, error)

	// ListNames returns all profile names, default first, the rest sorted.
	ListNames() []string
}

// FileStore loads profiles from a YAML file. It is safe for concurrent use;
// Reload swaps the profile set atomically under the lock.
type FileStore struct {
	mu       sync.RWMutex
	path     string
	profiles map[string][]engine.FilterGroup
	log      *slog.Logger
}

// NewFileStore creates a store backed by the YAML file at path and performs
// an initial load. A missing file is not an error: the store then serves
// only the built-in default profile.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:     path,
		profiles: make(map[string][]engine.FilterGroup),
		log:      slog.Default(),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Reload re-reads the backing file. On parse failure the previous profile
// set is kept and the error returned.
func (s *FileStore) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug("no profiles file, serving built-ins only", "path", s.path)
			s.mu.Lock()
			s.profiles = make(map[string][]engine.FilterGroup)
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("reading profiles file %s: %w", s.path, err)
	}

	profiles, err := parseProfiles(data, s.log)
	if err != nil {
		return fmt.Errorf("parsing profiles file %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.profiles = profiles
	s.mu.Unlock()

	s.log.Debug("profiles loaded", "path", s.path, "count", len(profiles))
	return nil
}

// Resolve returns the filter groups for name. The built-in default profile
// resolves to an empty group list.
func (s *FileStore) Resolve(name string) ([]engine.FilterGroup, error) {
	if name == DefaultName {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	groups, ok := s.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return groups, nil
}

// ListNames returns the default profile followed by user profiles in sorted
// order.
func (s *FileStore) ListNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.profiles)+1)
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	return append([]string{DefaultName}, names...)
}

// File format types. Enabled flags default to true when omitted.
type fileFormat struct {
	Profiles map[string]profileSpec `yaml:"profiles"`
}

type profileSpec struct {
	Groups []groupSpec `yaml:"groups"`
}

type groupSpec struct {
	Name    string       `yaml:"name"`
	Enabled *bool        `yaml:"enabled"`
	Filters []filterSpec `yaml:"filters"`
}

type filterSpec struct {
	Keyword string `yaml:"keyword"`
	Regex   bool   `yaml:"regex"`
	Kind    string `yaml:"kind"`
	Enabled *bool  `yaml:"enabled"`
}

func parseProfiles(data []byte, log *slog.Logger) (map[string][]engine.FilterGroup, error) {
	var raw fileFormat
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	profiles := make(map[string][]engine.FilterGroup, len(raw.Profiles))
	for name, spec := range raw.Profiles {
		if name == DefaultName {
			log.Warn("user profile shadows the built-in default, ignoring", "name", name)
			continue
		}
		profiles[name] = buildGroups(name, spec, log)
	}

	return profiles, nil
}

func buildGroups(profileName string, spec profileSpec, log *slog.Logger) []engine.FilterGroup {
	groups := make([]engine.FilterGroup, 0, len(spec.Groups))
	for _, g := range spec.Groups {
		group := engine.FilterGroup{
			Name:    g.Name,
			Enabled: enabled(g.Enabled),
		}
		for _, f := range g.Filters {
			kind, ok := engine.ParseKind(f.Kind)
			if !ok {
				// Malformed filter input degrades gracefully: skip it.
				log.Warn("skipping filter with unknown kind",
					"profile", profileName, "group", g.Name, "kind", f.Kind)
				continue
			}
			group.Filters = append(group.Filters, engine.FilterItem{
				Keyword: f.Keyword,
				Regex:   f.Regex,
				Kind:    kind,
				Enabled: enabled(f.Enabled),
			})
		}
		groups = append(groups, group)
	}
	return groups
}

func enabled(b *bool) bool {
	return b == nil || *b
}
