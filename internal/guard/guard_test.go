package guard

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codemend/internal/editor"
	"codemend/internal/protect"
	"codemend/internal/session"
)

const guardedSnippet = "def keep_me():\n    return 1\n\ndef helper():\n    return 2\n"

func TestGuard_FirstObservationArms(t *testing.T) {
	g := New("s1", protect.NewRegistry(), nil, nil)
	assert.Equal(t, StateUninitialized, g.State())

	require.NoError(t, g.Observe(guardedSnippet))
	assert.Equal(t, StateArmed, g.State())
	assert.True(t, g.Registry().IsProtected("keep_me"))
}

func TestGuard_ApplyReleasesSafeEdit(t *testing.T) {
	g := New("s1", protect.NewRegistry(), nil, nil)

	out, err := g.Apply("add_import", guardedSnippet, func(snippet string) (string, error) {
		return editor.AddImport(snippet, "math", editor.ImportOptions{})
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "import math\n"))
	assert.Equal(t, StateArmed, g.State())
}

func TestGuard_ApplyDiscardsViolatingEdit(t *testing.T) {
	g := New("s1", protect.NewRegistry(), nil, nil)

	// The edit drops keep_me entirely; the output must be withheld.
	out, err := g.Apply("apply_structured_patch", guardedSnippet, func(string) (string, error) {
		return "def helper():\n    return 2\n", nil
	})
	require.Error(t, err)
	assert.Empty(t, out)

	var vioErr *protect.ViolationError
	require.ErrorAs(t, err, &vioErr)
	require.Len(t, vioErr.Violations, 1)
	assert.Equal(t, "keep_me", vioErr.Violations[0].Name)
	assert.Equal(t, protect.CategoryFunction, vioErr.Violations[0].Category)
}

func TestGuard_ApplyPropagatesEditError(t *testing.T) {
	g := New("s1", protect.NewRegistry(), nil, nil)

	_, err := g.Apply("rename_symbol", guardedSnippet, func(snippet string) (string, error) {
		return editor.RenameSymbol(snippet, "missing", "x", editor.RenameOptions{Occurrence: 3})
	})
	require.Error(t, err)

	var opErr *editor.OpError
	assert.ErrorAs(t, err, &opErr)
}

func TestGuard_RenameOfBaselineFunctionBlocked(t *testing.T) {
	g := New("s1", protect.NewRegistry(), nil, nil)

	// Renaming a baseline function removes it from the output snapshot, so
	// the post-edit diff catches it even without a rename-side precheck.
	_, err := g.Apply("rename_symbol", guardedSnippet, func(snippet string) (string, error) {
		return editor.RenameSymbol(snippet, "helper", "assist", editor.RenameOptions{})
	})
	require.Error(t, err)

	var vioErr *protect.ViolationError
	require.ErrorAs(t, err, &vioErr)
	assert.Equal(t, "helper", vioErr.Violations[0].Name)
}

func TestGuard_VariableRenamePasses(t *testing.T) {
	snippet := "def total(xs):\n    acc = 0\n    for x in xs:\n        acc += x\n    return acc\n"
	g := New("s1", protect.NewRegistry(), nil, nil)

	out, err := g.Apply("rename_symbol", snippet, func(s string) (string, error) {
		return editor.RenameSymbol(s, "acc", "running", editor.RenameOptions{})
	})
	require.NoError(t, err)
	assert.Contains(t, out, "running = 0")
	assert.Contains(t, out, "def total(xs):")
}

func TestGuard_Reset(t *testing.T) {
	g := New("s1", protect.NewRegistry(), nil, nil)
	require.NoError(t, g.Observe(guardedSnippet))
	require.NoError(t, g.Reset())
	assert.Equal(t, StateUninitialized, g.State())
}

func TestGuard_UnparsableSnippetRefused(t *testing.T) {
	g := New("s1", protect.NewRegistry(), nil, nil)
	_, err := g.Apply("add_import", "def broken(\n", func(snippet string) (string, error) {
		return snippet, nil
	})
	assert.Error(t, err)
	assert.Equal(t, StateUninitialized, g.State())
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	mgr := NewManager(session.NewMemoryStore(), nil)
	ctx := context.Background()

	g1, err := mgr.Guard(ctx, "alpha")
	require.NoError(t, err)
	g2, err := mgr.Guard(ctx, "beta")
	require.NoError(t, err)

	require.NoError(t, g1.Observe("def only_alpha():\n    pass\n"))
	assert.Equal(t, StateArmed, g1.State())
	assert.Equal(t, StateUninitialized, g2.State())
	assert.False(t, g2.Registry().IsProtected("only_alpha"))
}

func TestManager_SameSessionSameGuard(t *testing.T) {
	mgr := NewManager(session.NewMemoryStore(), nil)
	ctx := context.Background()

	g1, err := mgr.Guard(ctx, "alpha")
	require.NoError(t, err)
	g2, err := mgr.Guard(ctx, "alpha")
	require.NoError(t, err)
	assert.Same(t, g1, g2)
}

func TestManager_RestoresPersistedRegistry(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	first := NewManager(store, nil)
	g, err := first.Guard(ctx, "alpha")
	require.NoError(t, err)
	require.NoError(t, g.Observe(guardedSnippet))

	// A second manager over the same store sees the armed session.
	second := NewManager(store, nil)
	restored, err := second.Guard(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, StateArmed, restored.State())
	assert.True(t, restored.Registry().IsProtected("keep_me"))
}

func TestManager_Release(t *testing.T) {
	store := session.NewMemoryStore()
	mgr := NewManager(store, nil)
	ctx := context.Background()

	g, err := mgr.Guard(ctx, "alpha")
	require.NoError(t, err)
	require.NoError(t, g.Observe(guardedSnippet))
	require.NoError(t, mgr.Release(ctx, "alpha"))

	fresh, err := mgr.Guard(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, StateUninitialized, fresh.State())
}
