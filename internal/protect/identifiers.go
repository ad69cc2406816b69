package protect

import (
	"encoding/json"
	"sort"

	"codemend/internal/syntax"
)

// Category classifies a protected identifier.
type Category string

const (
	CategoryFunction   Category = "function"
	CategoryClass      Category = "class"
	CategoryCall       Category = "call"
	CategoryEntryPoint Category = "entry-point"
)

// Identifiers is an immutable snapshot of the structural identifiers of a
// snippet: function and class names, dotted call targets, and calls made
// directly inside an `if __name__ == "__main__":` guard. Snapshots are
// compared against each other, never merged.
type Identifiers struct {
	Functions   map[string]struct{}
	Classes     map[string]struct{}
	Calls       map[string]struct{}
	EntryPoints map[string]struct{}
}

// NewIdentifiers returns an empty snapshot.
func NewIdentifiers() Identifiers {
	return Identifiers{
		Functions:   map[string]struct{}{},
		Classes:     map[string]struct{}{},
		Calls:       map[string]struct{}{},
		EntryPoints: map[string]struct{}{},
	}
}

// Empty reports whether the snapshot records nothing.
func (ids Identifiers) Empty() bool {
	return len(ids.Functions) == 0 && len(ids.Classes) == 0 &&
		len(ids.Calls) == 0 && len(ids.EntryPoints) == 0
}

// Forbids reports whether renaming or removing name would touch a protected
// identifier: the dotted name's base segment matches a protected function,
// class or entry-point name, or name matches a recorded call exactly or by
// base segment.
func (ids Identifiers) Forbids(name string) bool {
	_, ok := ids.Category(name)
	return ok
}

// Category resolves the protection category of name, if any.
func (ids Identifiers) Category(name string) (Category, bool) {
	base := syntax.BaseName(name)
	if _, ok := ids.Functions[base]; ok {
		return CategoryFunction, true
	}
	if _, ok := ids.Classes[base]; ok {
		return CategoryClass, true
	}
	for ep := range ids.EntryPoints {
		if syntax.BaseName(ep) == base {
			return CategoryEntryPoint, true
		}
	}
	if _, ok := ids.Calls[name]; ok {
		return CategoryCall, true
	}
	for call := range ids.Calls {
		if syntax.BaseName(call) == base {
			return CategoryCall, true
		}
	}
	return "", false
}

type identifiersJSON struct {
	Functions   []string `json:"functions"`
	Classes     []string `json:"classes"`
	Calls       []string `json:"calls"`
	EntryPoints []string `json:"entry_points"`
}

// MarshalJSON encodes the snapshot with sorted member lists, so serialized
// baselines are stable across runs.
func (ids Identifiers) MarshalJSON() ([]byte, error) {
	return json.Marshal(identifiersJSON{
		Functions:   sortedKeys(ids.Functions),
		Classes:     sortedKeys(ids.Classes),
		Calls:       sortedKeys(ids.Calls),
		EntryPoints: sortedKeys(ids.EntryPoints),
	})
}

func (ids *Identifiers) UnmarshalJSON(data []byte) error {
	var raw identifiersJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*ids = NewIdentifiers()
	for _, name := range raw.Functions {
		ids.Functions[name] = struct{}{}
	}
	for _, name := range raw.Classes {
		ids.Classes[name] = struct{}{}
	}
	for _, name := range raw.Calls {
		ids.Calls[name] = struct{}{}
	}
	for _, name := range raw.EntryPoints {
		ids.EntryPoints[name] = struct{}{}
	}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
