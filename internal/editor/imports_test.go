package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddImport_Plain(t *testing.T) {
	out, err := AddImport("def foo():\n    return 1\n", "math", ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, "import math\ndef foo():\n    return 1\n", out)
}

func TestAddImport_Symbol(t *testing.T) {
	out, err := AddImport("def area(r):\n    return pi * r * r\n", "math", ImportOptions{Symbol: "pi"})
	require.NoError(t, err)
	assert.Equal(t, "from math import pi\ndef area(r):\n    return pi * r * r\n", out)
}

func TestAddImport_Alias(t *testing.T) {
	out, err := AddImport("x = 1\n", "numpy", ImportOptions{Alias: "np"})
	require.NoError(t, err)
	assert.Equal(t, "import numpy as np\nx = 1\n", out)
}

func TestAddImport_SymbolAlias(t *testing.T) {
	out, err := AddImport("x = 1\n", "collections", ImportOptions{Symbol: "OrderedDict", Alias: "OD"})
	require.NoError(t, err)
	assert.Equal(t, "from collections import OrderedDict as OD\nx = 1\n", out)
}

func TestAddImport_Idempotent(t *testing.T) {
	snippet := "import math\ndef foo():\n    return math.pi\n"
	out, err := AddImport(snippet, "math", ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, snippet, out)

	// A second pass over fresh output is also a no-op.
	again, err := AddImport(out, "math", ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestAddImport_ExistingSymbolDetected(t *testing.T) {
	snippet := "from os import path, sep\nx = path.sep\n"

	out, err := AddImport(snippet, "os", ImportOptions{Symbol: "sep"})
	require.NoError(t, err)
	assert.Equal(t, snippet, out)

	// A different symbol from the same module still gets its own line.
	out, err = AddImport(snippet, "os", ImportOptions{Symbol: "getcwd"})
	require.NoError(t, err)
	assert.Contains(t, out, "from os import getcwd\n")
}

func TestAddImport_AfterShebangAndEncoding(t *testing.T) {
	snippet := "#!/usr/bin/env python\n# -*- coding: utf-8 -*-\nprint('hi')\n"
	out, err := AddImport(snippet, "sys", ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, "#!/usr/bin/env python\n# -*- coding: utf-8 -*-\nimport sys\nprint('hi')\n", out)
}

func TestAddImport_AfterModuleDocstring(t *testing.T) {
	snippet := "\"\"\"Utility helpers.\n\nMore prose.\n\"\"\"\n\ndef helper():\n    pass\n"
	out, err := AddImport(snippet, "json", ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, "\"\"\"Utility helpers.\n\nMore prose.\n\"\"\"\n\nimport json\ndef helper():\n    pass\n", out)
}

func TestAddImport_LeadingStringExpressionNotDocstring(t *testing.T) {
	snippet := "'late ' + greeting()\n"
	out, err := AddImport(snippet, "os", ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, "import os\n'late ' + greeting()\n", out)
}

func TestAddImport_ExtendsImportBlock(t *testing.T) {
	snippet := "import os\nimport sys\n\ndef main():\n    pass\n"
	out, err := AddImport(snippet, "json", ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, "import os\nimport sys\nimport json\n\ndef main():\n    pass\n", out)
}

func TestAddImport_IgnoresImportInString(t *testing.T) {
	snippet := "s = '''\nimport math\n'''\n"
	out, err := AddImport(snippet, "math", ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, "import math\ns = '''\nimport math\n'''\n", out)
}

func TestAddImport_PreservesMissingTrailingNewline(t *testing.T) {
	out, err := AddImport("x = 1", "os", ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, "import os\nx = 1", out)
}

func TestAddImport_EmptyModule(t *testing.T) {
	_, err := AddImport("x = 1\n", "", ImportOptions{})
	require.Error(t, err)

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "add_import", opErr.Op)
}

func TestAddImport_SubmoduleNotConfusedWithParent(t *testing.T) {
	snippet := "import os.path\nx = 1\n"
	out, err := AddImport(snippet, "os", ImportOptions{})
	require.NoError(t, err)
	assert.Contains(t, out, "import os\n")
	assert.Contains(t, out, "import os.path\n")
}
