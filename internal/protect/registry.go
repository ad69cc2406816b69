package protect

import (
	"fmt"
	"strings"
	"sync"
)

// ViolationError reports that an edit would lose protected identifiers.
type ViolationError struct {
	Violations []Violation
}

func (e *ViolationError) Error() string {
	names := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		names[i] = fmt.Sprintf("%s %q", v.Category, v.Name)
	}
	return "protected identifier violation: " + strings.Join(names, ", ")
}

// Registry tracks identifiers that must survive every edit of a session.
// The first registered snippet freezes the baseline; all later snippets are
// validated against it. A Registry is a session-scoped handle: one per
// editing conversation, looked up by session id, never a process singleton.
type Registry struct {
	mu       sync.Mutex
	baseline *Identifiers
	original string
}

// NewRegistry returns an uninitialized registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewRegistryFromBaseline restores a registry from a persisted baseline.
func NewRegistryFromBaseline(ids Identifiers, original string) *Registry {
	return &Registry{baseline: &ids, original: original}
}

// Initialized reports whether a baseline has been frozen.
func (r *Registry) Initialized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.baseline != nil
}

// Register freezes snippet's identifiers as the baseline on first call.
// Later calls return the frozen baseline, unless force re-registers.
func (r *Registry) Register(snippet string, force bool) (Identifiers, error) {
	ids, err := Collect(snippet)
	if err != nil {
		return Identifiers{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if force || r.baseline == nil {
		r.baseline = &ids
		r.original = snippet
	}
	return *r.baseline, nil
}

// IsProtected reports whether name is protected by the baseline.
func (r *Registry) IsProtected(name string) bool {
	_, ok := r.Category(name)
	return ok
}

// Category resolves name's protection category against the baseline.
func (r *Registry) Category(name string) (Category, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.baseline == nil {
		return "", false
	}
	return r.baseline.Category(name)
}

// Validate diffs snippet against the frozen baseline. An uninitialized
// registry reports nothing; an unparsable snippet reports the parse error.
func (r *Registry) Validate(snippet string) ([]Violation, error) {
	r.mu.Lock()
	baseline := r.baseline
	r.mu.Unlock()
	if baseline == nil {
		return nil, nil
	}
	current, err := Collect(snippet)
	if err != nil {
		return nil, err
	}
	return Diff(*baseline, current), nil
}

// Baseline returns the frozen snapshot and original snippet, when armed.
func (r *Registry) Baseline() (Identifiers, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.baseline == nil {
		return Identifiers{}, "", false
	}
	return *r.baseline, r.original, true
}

// Reset clears the baseline and original-snippet record. Invoked at session
// boundaries.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baseline = nil
	r.original = ""
}
