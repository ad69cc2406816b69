// Package guard sequences edits against a session-scoped protected-identifier
// registry, enforcing validate-then-release: an edit's output is only handed
// back to the caller after it has been diffed against the session baseline.
package guard

import (
	"codemend/internal/protect"
	"codemend/internal/trace"
)

// State of a guard session.
type State string

const (
	// StateUninitialized means no snippet has been observed yet.
	StateUninitialized State = "UNINITIALIZED"
	// StateArmed means the baseline is frozen and every edit is validated.
	StateArmed State = "ARMED"
)

// EditFunc is one structural edit: a pure function from snippet to snippet.
type EditFunc func(snippet string) (string, error)

// Guard binds a session id to its registry and trace recorder. The first
// snippet it sees freezes the baseline; from then on every edit output is
// diffed against it and discarded on violation.
type Guard struct {
	sessionID string
	registry  *protect.Registry
	recorder  *trace.Recorder
	persist   func(*protect.Registry) error
}

// New builds a guard around registry. persist, when non-nil, is called after
// the baseline changes so the backing store stays current.
func New(sessionID string, registry *protect.Registry, recorder *trace.Recorder, persist func(*protect.Registry) error) *Guard {
	if recorder == nil {
		recorder = trace.NewRecorder(nil)
	}
	return &Guard{
		sessionID: sessionID,
		registry:  registry,
		recorder:  recorder,
		persist:   persist,
	}
}

// State reports whether the baseline has been frozen.
func (g *Guard) State() State {
	if g.registry.Initialized() {
		return StateArmed
	}
	return StateUninitialized
}

// Registry exposes the session registry, e.g. for rename protection checks.
func (g *Guard) Registry() *protect.Registry {
	return g.registry
}

// Observe freezes snippet as the session baseline when none exists yet.
func (g *Guard) Observe(snippet string) error {
	if g.registry.Initialized() {
		return nil
	}
	if _, err := g.registry.Register(snippet, false); err != nil {
		return err
	}
	if g.persist != nil {
		return g.persist(g.registry)
	}
	return nil
}

// Apply runs one edit under protection. The snippet is observed first (so a
// fresh session arms on its first edit), the edit runs, and the output is
// validated against the baseline. A non-empty violation set discards the
// edit and surfaces *protect.ViolationError.
func (g *Guard) Apply(tool, snippet string, edit EditFunc) (string, error) {
	if err := g.Observe(snippet); err != nil {
		return "", err
	}

	callID := g.recorder.ToolCall(tool, g.sessionID, snippet)
	edited, err := edit(snippet)
	if err != nil {
		g.recorder.ToolResult(tool, callID, "", err)
		return "", err
	}

	violations, err := g.registry.Validate(edited)
	if err != nil {
		g.recorder.ToolResult(tool, callID, "", err)
		return "", err
	}
	if len(violations) > 0 {
		verr := &protect.ViolationError{Violations: violations}
		g.recorder.ToolResult(tool, callID, "", verr)
		return "", verr
	}

	g.recorder.ToolResult(tool, callID, edited, nil)
	return edited, nil
}

// Reset returns the session to UNINITIALIZED, clearing the baseline and the
// original-snippet record.
func (g *Guard) Reset() error {
	g.registry.Reset()
	if g.persist != nil {
		return g.persist(g.registry)
	}
	return nil
}
