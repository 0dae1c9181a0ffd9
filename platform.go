package pyext

import (
	"context"
	"strings"
)

// PlatformRule forces configuration values on one platform family.
//
// The rule matches when the value of Key in the detected configuration
// starts with Prefix. A missing Key never matches.
type PlatformRule struct {
	Name      string
	Key       string
	Prefix    string
	Overrides map[string]string
}

// Matches reports whether the rule applies to vars.
func (r PlatformRule) Matches(vars ConfigVars) bool {
	value, ok := vars.Lookup(r.Key)
	if !ok {
		return false
	}
	return strings.HasPrefix(value, r.Prefix)
}

// DefaultPlatformRules forces gcc/g++ on Sun platforms, where the
// interpreter's own compiler is usually the vendor one.
var DefaultPlatformRules = []PlatformRule{
	{
		Name:   "sun",
		Key:    VarMachDep,
		Prefix: "sun",
		Overrides: map[string]string{
			VarCC:  "gcc",
			VarCXX: "g++",
		},
	},
}

// PlatformDetector is the first initialization phase: it produces the
// configuration the host environment was built with.
type PlatformDetector interface {
	Detect(ctx context.Context) (ConfigVars, error)
}

// PlatformDetectorFunc adapts a function to PlatformDetector.
type PlatformDetectorFunc func(ctx context.Context) (ConfigVars, error)

// Detect calls f(ctx).
func (f PlatformDetectorFunc) Detect(ctx context.Context) (ConfigVars, error) {
	return f(ctx)
}

// InterpreterDetector reads the configuration from a Python interpreter.
type InterpreterDetector struct {
	Python string
}

// Detect loads the interpreter's sysconfig variables.
func (d InterpreterDetector) Detect(ctx context.Context) (ConfigVars, error) {
	return LoadConfigVars(ctx, d.Python)
}

// StaticDetector returns a copy of a fixed configuration.
type StaticDetector ConfigVars

// Detect returns a copy of d.
func (d StaticDetector) Detect(context.Context) (ConfigVars, error) {
	return ConfigVars(d).Clone(), nil
}

// ApplyPlatformRules is the second initialization phase. It returns a copy of
// vars with the overrides of the first matching rule applied, and the name of
// that rule ("" if none matched). Applying the same rules again yields the
// same map.
func ApplyPlatformRules(vars ConfigVars, rules []PlatformRule) (ConfigVars, string) {
	out := vars.Clone()
	for _, rule := range rules {
		if !rule.Matches(out) {
			continue
		}
		for key, value := range rule.Overrides {
			out[key] = value
		}
		return out, rule.Name
	}
	return out, ""
}

// InitPlatform runs detection and then the platform rules. Each step in
// steps transforms the detected configuration, in order, before the rules
// read it.
func InitPlatform(ctx context.Context, detector PlatformDetector, rules []PlatformRule, steps ...func(ConfigVars) ConfigVars) (ConfigVars, string, error) {
	vars, err := detector.Detect(ctx)
	if err != nil {
		return nil, "", err
	}
	for _, step := range steps {
		vars = step(vars)
	}
	vars, matched := ApplyPlatformRules(vars, rules)
	return vars, matched, nil
}
