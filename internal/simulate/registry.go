package simulate

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed scenarios/*.yaml
var builtin embed.FS

// Registry holds scenarios by name.
type Registry struct {
	scenarios map[string]*Scenario
}

// NewRegistry returns a registry preloaded with the built-in scenarios.
func NewRegistry() (*Registry, error) {
	r := &Registry{scenarios: make(map[string]*Scenario)}
	if err := r.loadFS(builtin, "scenarios"); err != nil {
		return nil, err
	}
	return r, nil
}

// Parse decodes and validates one YAML scenario.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile adds the scenario in path, replacing any scenario of the same
// name, and returns it.
func (r *Registry) LoadFile(p string) (*Scenario, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	r.scenarios[s.Name] = s
	return s, nil
}

func (r *Registry) loadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to read scenarios: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		s, err := Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", entry.Name(), err)
		}
		r.scenarios[s.Name] = s
	}
	return nil
}

// Get returns the named scenario.
func (r *Registry) Get(name string) (*Scenario, error) {
	s, ok := r.scenarios[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
	return s, nil
}

// List returns every scenario sorted by name.
func (r *Registry) List() []*Scenario {
	out := make([]*Scenario, 0, len(r.scenarios))
	for _, s := range r.scenarios {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
