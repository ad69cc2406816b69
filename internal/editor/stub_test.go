package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubFunction_Raise(t *testing.T) {
	out, err := StubFunction("def compute():\n    pass\n", "compute", StubPolicy{Kind: PolicyRaise})
	require.NoError(t, err)
	assert.Equal(t, "def compute():\n    raise NotImplementedError()\n", out)
}

func TestStubFunction_ReturnLiteral(t *testing.T) {
	out, err := StubFunction("def compute():\n    pass\n", "compute", StubPolicy{Kind: PolicyReturnLiteral, Literal: "[]"})
	require.NoError(t, err)
	assert.Equal(t, "def compute():\n    return []\n", out)
}

func TestStubFunction_ReturnLiteralDefaultsNone(t *testing.T) {
	out, err := StubFunction("def compute():\n    pass\n", "compute", StubPolicy{Kind: PolicyReturnLiteral})
	require.NoError(t, err)
	assert.Equal(t, "def compute():\n    return None\n", out)
}

func TestStubFunction_Custom(t *testing.T) {
	out, err := StubFunction("def compute():\n    pass\n", "compute", StubPolicy{Kind: PolicyCustom, Body: "return cached_result"})
	require.NoError(t, err)
	assert.Equal(t, "def compute():\n    return cached_result\n", out)
}

func TestStubFunction_SignaturePreserved(t *testing.T) {
	snippet := "def fetch(url: str, *, timeout: float = 5.0) -> bytes:\n    pass\n"
	out, err := StubFunction(snippet, "fetch", StubPolicy{Kind: PolicyRaise})
	require.NoError(t, err)
	assert.Equal(t, "def fetch(url: str, *, timeout: float = 5.0) -> bytes:\n    raise NotImplementedError()\n", out)
}

func TestStubFunction_DocstringPreserved(t *testing.T) {
	snippet := "def compute():\n    \"\"\"Compute things.\"\"\"\n    pass\n"
	out, err := StubFunction(snippet, "compute", StubPolicy{Kind: PolicyRaise})
	require.NoError(t, err)
	assert.Equal(t, "def compute():\n    \"\"\"Compute things.\"\"\"\n    raise NotImplementedError()\n", out)
}

func TestStubFunction_AsyncDef(t *testing.T) {
	snippet := "async def fetch():\n    pass\n"
	out, err := StubFunction(snippet, "fetch", StubPolicy{Kind: PolicyRaise})
	require.NoError(t, err)
	assert.Equal(t, "async def fetch():\n    raise NotImplementedError()\n", out)
}

func TestStubFunction_MethodIndentation(t *testing.T) {
	snippet := "class Job:\n    def run(self):\n        pass\n"
	out, err := StubFunction(snippet, "run", StubPolicy{Kind: PolicyRaise})
	require.NoError(t, err)
	assert.Equal(t, "class Job:\n    def run(self):\n        raise NotImplementedError()\n", out)
}

func TestStubFunction_TabIndentation(t *testing.T) {
	out, err := StubFunction("def run():\n\tpass\n", "run", StubPolicy{Kind: PolicyRaise})
	require.NoError(t, err)
	assert.Equal(t, "def run():\n\traise NotImplementedError()\n", out)
}

func TestStubFunction_InlineFormTabIndented(t *testing.T) {
	// The synthesized body indents with a tab when the def line does.
	snippet := "class A:\n\tdef quick(self): pass\n"
	out, err := StubFunction(snippet, "quick", StubPolicy{Kind: PolicyRaise})
	require.NoError(t, err)
	assert.Equal(t, "class A:\n\tdef quick(self):\n\t\traise NotImplementedError()\n", out)
}

func TestStubFunction_InlineForm(t *testing.T) {
	out, err := StubFunction("def quick(): pass\n", "quick", StubPolicy{Kind: PolicyRaise})
	require.NoError(t, err)
	assert.Equal(t, "def quick():\n    raise NotImplementedError()\n", out)
}

func TestStubFunction_NotFound(t *testing.T) {
	_, err := StubFunction("def other():\n    pass\n", "compute", StubPolicy{Kind: PolicyRaise})
	require.Error(t, err)

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "stub_function", opErr.Op)
	assert.Contains(t, opErr.Msg, "compute")
}

func TestStubFunction_NonPassBodyRefused(t *testing.T) {
	_, err := StubFunction("def compute():\n    return 1\n", "compute", StubPolicy{Kind: PolicyRaise})
	require.Error(t, err)

	var opErr *OpError
	assert.ErrorAs(t, err, &opErr)
}

func TestStubFunction_SurroundingCodeUntouched(t *testing.T) {
	snippet := "x = 1\n\ndef compute():\n    pass\n\ny = 2\n"
	out, err := StubFunction(snippet, "compute", StubPolicy{Kind: PolicyRaise})
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n\ndef compute():\n    raise NotImplementedError()\n\ny = 2\n", out)
}
