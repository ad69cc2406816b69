package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixFunctionColons(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "missing at end of line",
			in:   "def foo()\n    return 1\n",
			want: "def foo():\n    return 1\n",
		},
		{
			name: "missing before inline body",
			in:   "def foo() return 1\n",
			want: "def foo(): return 1\n",
		},
		{
			name: "async def",
			in:   "async def fetch()\n    pass\n",
			want: "async def fetch():\n    pass\n",
		},
		{
			name: "return annotation",
			in:   "def size() -> int\n    return 0\n",
			want: "def size() -> int:\n    return 0\n",
		},
		{
			name: "indented method",
			in:   "class A:\n    def run(self)\n        pass\n",
			want: "class A:\n    def run(self):\n        pass\n",
		},
		{
			name: "annotated and already correct",
			in:   "def size() -> int:\n    return 0\n",
			want: "def size() -> int:\n    return 0\n",
		},
		{
			name: "already correct",
			in:   "def foo():\n    return 1\n",
			want: "def foo():\n    return 1\n",
		},
		{
			name: "parameters with defaults",
			in:   "def foo(a, b=2)\n    return a\n",
			want: "def foo(a, b=2):\n    return a\n",
		},
		{
			name: "no function at all",
			in:   "x = 1\n",
			want: "x = 1\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FixFunctionColons(tc.in))
		})
	}
}
