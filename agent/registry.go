package agent

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoOrchestrator is returned when a profile table lacks the reserved orchestrator entry.
var ErrNoOrchestrator = fmt.Errorf("agent table must contain a %q profile", OrchestratorName)

// Registry is an immutable, case-insensitive mapping from agent name to Profile.
type Registry struct {
	profiles map[string]Profile
	names    []string
}

// NewRegistry validates the given profiles and builds a Registry preserving
// their order. Names must be non-empty and unique ignoring case, and exactly
// one profile must carry OrchestratorName.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	r := &Registry{
		profiles: make(map[string]Profile, len(profiles)),
		names:    make([]string, 0, len(profiles)),
	}

	for _, p := range profiles {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, errors.New("agent profile with empty name")
		}

		key := strings.ToLower(name)
		if _, dup := r.profiles[key]; dup {
			return nil, fmt.Errorf("duplicate agent profile %q", name)
		}

		p.Name = name
		if p.AllowedTools == nil {
			p.AllowedTools = []string{}
		}

		r.profiles[key] = p.clone()
		r.names = append(r.names, name)
	}

	if _, ok := r.profiles[strings.ToLower(OrchestratorName)]; !ok {
		return nil, ErrNoOrchestrator
	}

	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on invalid input.
// Intended for static tables known to be valid.
func MustNewRegistry(profiles ...Profile) *Registry {
	r, err := NewRegistry(profiles...)
	if err != nil {
		panic(err)
	}
	return r
}

// Default returns a Registry over DefaultProfiles.
func Default() *Registry { return MustNewRegistry(DefaultProfiles()...) }

// Lookup returns the profile registered under name (ignoring case) or the
// generated default profile when none exists. It never fails.
func (r *Registry) Lookup(name string) Profile {
	if p, ok := r.profiles[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p.clone()
	}
	return DefaultProfile(name)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.profiles[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Names lists registered agent names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Profiles lists registered profiles in registration order.
func (r *Registry) Profiles() []Profile {
	out := make([]Profile, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.profiles[strings.ToLower(n)].clone())
	}
	return out
}
