package fuzztests

import "testing"

var pythonSeeds = []string{
	"",
	"import os\n",
	"from . import x\nfrom .. import *\n",
	"def f(a, b=[], *args, c, **kw):\n    global g\n    return a\n    x = 1\n",
	"class C:\n    x: list = []\n    def m(self):\n        nonlocal y\n",
	"class A:\n    def f(self):\n        pass\n",
	"def outer():\n    def inner():\n        return lambda: 1\n    return inner\n",
	"try:\n    pass\nexcept:\n    raise\nfinally:\n    return\n",
	"for i in range(3):\n    break\nelse:\n    pass\n",
	"f = lambda: (yield)\nassert False, 'x'\n",
	"x = f'{a!r:>{w}}' if a is 'b' else None == x\n",
	"async def f():\n    async with a as b:\n        await c\n",
	"match x:\n    case [1, *rest] if rest:\n        pass\n",
	"x = 1  # noqa: F841, E741\nl = 2  # noqa\n",
	"def f(:\n",
	"\tif x:\n  y\n",
	"\"\"\"unterminated\n",
	"\xff\xfe\x00",
}

var starlarkSeeds = []string{
	"load(\":defs.bzl\", \"rule\")\n",
	"def impl(ctx):\n    return [DefaultInfo(files = depset(ctx.files.srcs))]\n",
	"cc_library(\n    name = \"x\",\n    srcs = glob([\"*.c\"]),\n)\n",
	"x = [i for i in range(10) if i % 2]\n",
	"def f(\n",
	"# header\nload(\":defs.bzl\", \"rule\")  # noqa\n\ndef impl(ctx):\n    # body\n    return rule(ctx)  # trailing\n",
}

// maxSeedBytes bounds inputs; parsing is linear so larger inputs add time, not coverage.
const maxSeedBytes = 64 << 10

func addSeeds(f *testing.F, seeds []string) {
	for _, s := range seeds {
		f.Add([]byte(s))
	}
}

func clamp(input []byte) []byte {
	if len(input) > maxSeedBytes {
		input = input[:maxSeedBytes]
	}
	return append([]byte(nil), input...)
}
