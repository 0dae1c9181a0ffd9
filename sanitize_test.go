package pyext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeBlanksDeniedTokens(t *testing.T) {
	vars := ConfigVars{"CFLAGS": "-O2 -Wall -DNDEBUG"}

	got := Sanitize(vars, []string{"-DNDEBUG", "-O2"})

	assert.Equal(t, " -Wall ", got["CFLAGS"])
	assert.Equal(t, "-O2 -Wall -DNDEBUG", vars["CFLAGS"], "input map must not change")
}

func TestSanitizeDefaultDenylist(t *testing.T) {
	vars := ConfigVars{
		"CFLAGS":     "-Wno-unused-result -Wsign-compare -DNDEBUG -g -fwrapv -O2 -Wall",
		"OPT":        "-DNDEBUG -g -fwrapv -O2 -Wall -Wstrict-prototypes",
		"PY_CFLAGS":  "-D_FORTIFY_SOURCE=2 -fstack-protector-strong -ggdb",
		"LDSHARED":   "gcc -pthread -shared",
		"EXT_SUFFIX": ".cpython-312-x86_64-linux-gnu.so",
	}

	got := Sanitize(vars, DefaultDenylist)

	for key, value := range got {
		for _, denied := range DefaultDenylist {
			assert.NotContains(t, value, denied, "%s still contains %q", key, denied)
		}
	}
	assert.Equal(t, "-Wno-unused-result -Wsign-compare -fwrapv -Wall", got["CFLAGS"])
	assert.Equal(t, " -ggdb", got["PY_CFLAGS"], "-g inside -ggdb has no surrounding spaces")
	assert.Equal(t, vars["LDSHARED"], got["LDSHARED"])
	assert.Equal(t, vars["EXT_SUFFIX"], got["EXT_SUFFIX"])
}

func TestSanitizeIdempotent(t *testing.T) {
	cases := []string{
		"-O2 -Wall -DNDEBUG",
		"x -g -g -g y",
		" -g-O2 -g ",
		"-O2-O2-O2",
		"",
		"no flags here",
		"-Wstrict-prototypes  -DNDEBUG",
	}

	for _, value := range cases {
		t.Run(value, func(t *testing.T) {
			once := Sanitize(ConfigVars{"V": value}, DefaultDenylist)
			twice := Sanitize(once, DefaultDenylist)
			assert.Equal(t, once, twice)
			for _, denied := range DefaultDenylist {
				assert.NotContains(t, once["V"], denied)
			}
		})
	}
}

func TestSanitizeStripsInsideUnrelatedTokens(t *testing.T) {
	got := Sanitize(ConfigVars{"X": "-fno-O2-thing"}, []string{"-O2"})
	assert.Equal(t, "-fno -thing", got["X"])
}

func TestSanitizeLeavesUnmatchedValuesIntact(t *testing.T) {
	value := "gcc  -pthread   -shared"
	got := Sanitize(ConfigVars{"LDSHARED": value}, DefaultDenylist)
	assert.Equal(t, value, got["LDSHARED"])
}

func TestSanitizeIgnoresEmptyEntries(t *testing.T) {
	got := Sanitize(ConfigVars{"A": "-O2 -Wall"}, []string{"", "-O2"})
	assert.Equal(t, " -Wall", got["A"])
}

func TestSanitizeInPlace(t *testing.T) {
	vars := ConfigVars{"CFLAGS": "-g -O2 -DNDEBUG -Wall"}
	SanitizeInPlace(vars, DefaultDenylist)
	assert.False(t, strings.Contains(vars["CFLAGS"], "-O2"))
	assert.Contains(t, vars["CFLAGS"], "-Wall")
}

func TestDenylistCopies(t *testing.T) {
	list := Denylist("-Werror")
	require.Len(t, list, len(DefaultDenylist)+1)
	assert.Equal(t, "-Werror", list[len(list)-1])

	list[0] = "changed"
	assert.Equal(t, "-Wstrict-prototypes", DefaultDenylist[0])
}
