package pyext

import "strings"

// DefaultDenylist holds the substrings stripped from every inherited
// configuration value before compiling.
//
// The host interpreter hands its own build flags to every extension; these
// would fight the extension's compile arguments (-Ofast, -march=native) or
// add diagnostics that are noise for C++ code. " -g " carries its
// surrounding spaces so that longer flags beginning with -g survive.
var DefaultDenylist = []string{
	"-Wstrict-prototypes",
	"-DNDEBUG",
	" -g ",
	"-O2",
	"-D_FORTIFY_SOURCE=2",
	"-fstack-protector-strong",
}

// Denylist returns a copy of DefaultDenylist with extra appended.
func Denylist(extra ...string) []string {
	out := make([]string, 0, len(DefaultDenylist)+len(extra))
	out = append(out, DefaultDenylist...)
	return append(out, extra...)
}

// Sanitize returns a copy of vars in which every occurrence of every
// denylisted substring is replaced with a single space. In a value that had
// a match, runs of spaces are then collapsed to one, so "-O2 -Wall -DNDEBUG"
// becomes " -Wall ". Values without a match are left byte-for-byte intact.
//
// Matching is plain substring matching, so a denylisted substring inside an
// unrelated token is stripped too ("-O2x" becomes " x"). Empty denylist
// entries are ignored. Sanitize never fails and is idempotent.
func Sanitize(vars ConfigVars, denylist []string) ConfigVars {
	out := vars.Clone()
	SanitizeInPlace(out, denylist)
	return out
}

// SanitizeInPlace applies Sanitize directly to vars.
func SanitizeInPlace(vars ConfigVars, denylist []string) {
	for key, value := range vars {
		vars[key] = stripDenied(value, denylist)
	}
}

// stripDenied repeats the replacement pass until the value stops changing:
// blanking one match can expose another (" -g -g " leaves " -g ").
func stripDenied(value string, denylist []string) string {
	for {
		next := value
		for _, unwanted := range denylist {
			if unwanted == "" {
				continue
			}
			if strings.Contains(next, unwanted) {
				next = strings.ReplaceAll(next, unwanted, " ")
			}
		}
		if next == value {
			return value
		}
		value = collapseSpaces(next)
	}
}

func collapseSpaces(value string) string {
	for strings.Contains(value, "  ") {
		value = strings.ReplaceAll(value, "  ", " ")
	}
	return value
}
