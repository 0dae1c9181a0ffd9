package pyext

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

// Configuration variable names read and written by the build.
const (
	VarCC        = "CC"
	VarCXX       = "CXX"
	VarCFlags    = "CFLAGS"
	VarCPPFlags  = "CPPFLAGS"
	VarCCShared  = "CCSHARED"
	VarLDShared  = "LDSHARED"
	VarLDFlags   = "LDFLAGS"
	VarAR        = "AR"
	VarMachDep   = "MACHDEP"
	VarIncludePy = "INCLUDEPY"
	VarExtSuffix = "EXT_SUFFIX"
	VarSO        = "SO"
)

const defaultPython = "python3"

// ConfigVars is the build configuration map: configuration variable name to
// raw flag string. It is owned by the caller and passed explicitly through
// every build step.
type ConfigVars map[string]string

// Clone returns an independent copy of the map.
func (v ConfigVars) Clone() ConfigVars {
	out := make(ConfigVars, len(v))
	for key, value := range v {
		out[key] = value
	}
	return out
}

// Lookup returns the value for key and whether it was present.
// A nil map behaves as an empty one.
func (v ConfigVars) Lookup(key string) (string, bool) {
	value, ok := v[key]
	return value, ok
}

// Get returns the value for key, or "" if absent.
func (v ConfigVars) Get(key string) string {
	return v[key]
}

// Fields splits the value for key on whitespace.
func (v ConfigVars) Fields(key string) []string {
	return strings.Fields(v[key])
}

// Keys returns the variable names in sorted order.
func (v ConfigVars) Keys() []string {
	keys := make([]string, 0, len(v))
	for key := range v {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ApplyEnvOverrides returns a copy of vars adjusted by the process
// environment env (os.Environ() form), the way the packaging front-end
// customizes its compiler:
//   - CC, CXX, LDSHARED and AR replace the inherited values; a new CC also
//     replaces the inherited CC at the start of LDSHARED unless LDSHARED is
//     set in the environment too
//   - CFLAGS and CPPFLAGS are appended to both CFLAGS and LDSHARED
//   - LDFLAGS is appended to LDSHARED
//
// Empty environment values are ignored.
func ApplyEnvOverrides(vars ConfigVars, env []string) ConfigVars {
	out := vars.Clone()
	lookup := make(map[string]string, len(env))
	for _, kv := range env {
		key, value, ok := strings.Cut(kv, "=")
		if ok && value != "" {
			lookup[key] = value
		}
	}

	if cc, ok := lookup[VarCC]; ok {
		oldCC := out[VarCC]
		_, envLDShared := lookup[VarLDShared]
		if !envLDShared && oldCC != "" && strings.HasPrefix(out[VarLDShared], oldCC) {
			out[VarLDShared] = cc + strings.TrimPrefix(out[VarLDShared], oldCC)
		}
	}

	for _, key := range []string{VarCC, VarCXX, VarLDShared, VarAR} {
		if value, ok := lookup[key]; ok {
			out[key] = value
		}
	}

	for _, key := range []string{VarCFlags, VarCPPFlags} {
		if value, ok := lookup[key]; ok {
			out[VarCFlags] = joinFlags(out[VarCFlags], value)
			out[VarLDShared] = joinFlags(out[VarLDShared], value)
		}
	}
	if value, ok := lookup[VarLDFlags]; ok {
		out[VarLDShared] = joinFlags(out[VarLDShared], value)
	}
	return out
}

func joinFlags(base, extra string) string {
	if base == "" {
		return extra
	}
	return base + " " + extra
}

// sysconfigScript prints sysconfig.get_config_vars() as a JSON object.
// Every value is rendered with str(); None becomes the empty string.
const sysconfigScript = `import json, sysconfig
print(json.dumps({k: ("" if v is None else str(v)) for k, v in sysconfig.get_config_vars().items()}))`

// execCommandContext is overridden in tests.
var execCommandContext = exec.CommandContext

// LoadConfigVars populates a ConfigVars from the host interpreter's
// sysconfig module. python defaults to "python3".
func LoadConfigVars(ctx context.Context, python string) (ConfigVars, error) {
	if python == "" {
		python = defaultPython
	}

	cmd := execCommandContext(ctx, python, "-c", sysconfigScript)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("read sysconfig from %s: %w: %s", python, err, strings.TrimSpace(stderr.String()))
	}

	vars := ConfigVars{}
	if err := json.Unmarshal(output, &vars); err != nil {
		return nil, fmt.Errorf("decode sysconfig from %s: %w", python, err)
	}
	return vars, nil
}
