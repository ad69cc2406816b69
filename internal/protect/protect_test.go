package protect

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSnippet = `import os

def load(path):
    return open(path).read()

def process(data):
    return data.strip()

class Pipeline:
    def run(self):
        pass

if __name__ == "__main__":
    main()
    pipeline.start()
`

func TestCollect_Categories(t *testing.T) {
	ids, err := Collect(sampleSnippet)
	require.NoError(t, err)

	assert.Contains(t, ids.Functions, "load")
	assert.Contains(t, ids.Functions, "process")
	assert.Contains(t, ids.Functions, "run")
	assert.Contains(t, ids.Classes, "Pipeline")
	assert.Contains(t, ids.Calls, "open")
	assert.Contains(t, ids.Calls, "data.strip")
	assert.Contains(t, ids.EntryPoints, "main")
	assert.Contains(t, ids.EntryPoints, "pipeline.start")
}

func TestCollect_MainGuardReversedComparison(t *testing.T) {
	ids, err := Collect("if '__main__' == __name__:\n    boot()\n")
	require.NoError(t, err)
	assert.Contains(t, ids.EntryPoints, "boot")
}

func TestCollect_SyntaxError(t *testing.T) {
	_, err := Collect("def broken(\n")
	assert.Error(t, err)
}

func TestIdentifiers_Forbids(t *testing.T) {
	ids, err := Collect(sampleSnippet)
	require.NoError(t, err)

	assert.True(t, ids.Forbids("load"))
	assert.True(t, ids.Forbids("Pipeline"))
	assert.False(t, ids.Forbids("unrelated"))
}

func TestIdentifiers_CategoryBaseSegment(t *testing.T) {
	ids, err := Collect(sampleSnippet)
	require.NoError(t, err)

	// The base segment of a dotted call target matches too.
	cat, ok := ids.Category("strip")
	require.True(t, ok)
	assert.Equal(t, CategoryCall, cat)

	cat, ok = ids.Category("load")
	require.True(t, ok)
	assert.Equal(t, CategoryFunction, cat)

	_, ok = ids.Category("nothing")
	assert.False(t, ok)
}

func TestIdentifiers_JSONRoundTrip(t *testing.T) {
	ids, err := Collect(sampleSnippet)
	require.NoError(t, err)

	data, err := json.Marshal(ids)
	require.NoError(t, err)

	var restored Identifiers
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, ids.Functions, restored.Functions)
	assert.Equal(t, ids.Classes, restored.Classes)
	assert.Equal(t, ids.Calls, restored.Calls)
	assert.Equal(t, ids.EntryPoints, restored.EntryPoints)
}

func TestDiff_ReportsEveryMissingIdentifier(t *testing.T) {
	baseline, err := Collect(sampleSnippet)
	require.NoError(t, err)

	// load and Pipeline are gone; process survives.
	current, err := Collect("def process(data):\n    return data\n")
	require.NoError(t, err)

	violations := Diff(baseline, current)
	byName := map[string]Category{}
	for _, v := range violations {
		byName[v.Name] = v.Category
	}
	assert.Equal(t, CategoryFunction, byName["load"])
	assert.Equal(t, CategoryClass, byName["Pipeline"])
	assert.Equal(t, CategoryEntryPoint, byName["main"])
	assert.NotContains(t, byName, "process")
}

func TestDiff_SortedByCategoryThenName(t *testing.T) {
	baseline, err := Collect("def b():\n    pass\n\ndef a():\n    pass\n\nclass Z:\n    pass\n")
	require.NoError(t, err)

	violations := Diff(baseline, Identifiers{})
	require.Len(t, violations, 3)
	assert.Equal(t, Violation{Category: CategoryFunction, Name: "a"}, violations[0])
	assert.Equal(t, Violation{Category: CategoryFunction, Name: "b"}, violations[1])
	assert.Equal(t, Violation{Category: CategoryClass, Name: "Z"}, violations[2])
}

func TestDiff_NoViolationsWhenIdentical(t *testing.T) {
	ids, err := Collect(sampleSnippet)
	require.NoError(t, err)
	assert.Empty(t, Diff(ids, ids))
}

func TestRegistry_FirstRegisterFreezesBaseline(t *testing.T) {
	reg := NewRegistry()
	assert.False(t, reg.Initialized())

	_, err := reg.Register("def keep():\n    pass\n", false)
	require.NoError(t, err)
	assert.True(t, reg.Initialized())
	assert.True(t, reg.IsProtected("keep"))

	// Later snippets do not reshape the baseline without force.
	_, err = reg.Register("def other():\n    pass\n", false)
	require.NoError(t, err)
	assert.True(t, reg.IsProtected("keep"))
	assert.False(t, reg.IsProtected("other"))
}

func TestRegistry_ForceRebaseline(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Register("def keep():\n    pass\n", false)
	require.NoError(t, err)

	_, err = reg.Register("def other():\n    pass\n", true)
	require.NoError(t, err)
	assert.False(t, reg.IsProtected("keep"))
	assert.True(t, reg.IsProtected("other"))
}

func TestRegistry_Validate(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Register("def keep():\n    pass\n\ndef drop():\n    pass\n", false)
	require.NoError(t, err)

	violations, err := reg.Validate("def keep():\n    pass\n")
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "drop", violations[0].Name)
}

func TestRegistry_ValidateBeforeBaseline(t *testing.T) {
	reg := NewRegistry()
	violations, err := reg.Validate("def anything():\n    pass\n")
	require.NoError(t, err)
	assert.Nil(t, violations)
}

func TestRegistry_Reset(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Register("def keep():\n    pass\n", false)
	require.NoError(t, err)

	reg.Reset()
	assert.False(t, reg.Initialized())
	assert.False(t, reg.IsProtected("keep"))
}

func TestViolationError_Message(t *testing.T) {
	err := &ViolationError{Violations: []Violation{
		{Category: CategoryFunction, Name: "load"},
		{Category: CategoryClass, Name: "Pipeline"},
	}}
	assert.Equal(t, `protected identifier violation: function "load", class "Pipeline"`, err.Error())
}
