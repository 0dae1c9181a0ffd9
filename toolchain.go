package pyext

import (
	"fmt"
	"strings"
)

const defaultExtSuffix = ".so"

// Toolchain is the compiler and linker setup derived from a processed
// ConfigVars. Each command is an argv prefix.
type Toolchain struct {
	CC        []string
	CXX       []string
	CFlags    []string
	CCShared  []string
	LDShared  []string
	IncludePy string
	ExtSuffix string
}

// ResolveToolchain derives a Toolchain from vars.
//
// CC falls back to "cc" and CXX to "c++". LDSHARED falls back to
// "<CC> -shared". The module suffix is EXT_SUFFIX, then SO, then ".so".
func ResolveToolchain(vars ConfigVars) (*Toolchain, error) {
	tc := &Toolchain{
		CC:        vars.Fields(VarCC),
		CXX:       vars.Fields(VarCXX),
		CFlags:    vars.Fields(VarCFlags),
		CCShared:  vars.Fields(VarCCShared),
		LDShared:  vars.Fields(VarLDShared),
		IncludePy: strings.TrimSpace(vars.Get(VarIncludePy)),
		ExtSuffix: strings.TrimSpace(vars.Get(VarExtSuffix)),
	}

	if len(tc.CC) == 0 {
		tc.CC = []string{"cc"}
	}
	if len(tc.CXX) == 0 {
		tc.CXX = []string{"c++"}
	}
	if len(tc.LDShared) == 0 {
		tc.LDShared = append(append([]string(nil), tc.CC...), "-shared")
	}
	if tc.ExtSuffix == "" {
		tc.ExtSuffix = strings.TrimSpace(vars.Get(VarSO))
	}
	if tc.ExtSuffix == "" {
		tc.ExtSuffix = defaultExtSuffix
	}
	if strings.ContainsAny(tc.ExtSuffix, "/\\") {
		return nil, fmt.Errorf("invalid extension suffix %q", tc.ExtSuffix)
	}
	return tc, nil
}

// compiler returns the compiler argv prefix for a source file.
func (tc *Toolchain) compiler(src string) []string {
	if detectLanguage([]string{src}) == LanguageCXX {
		return tc.CXX
	}
	return tc.CC
}

// CompileCommand returns the argv that compiles src into obj.
// Extra arguments come last so they win over inherited flags.
func (tc *Toolchain) CompileCommand(ext *Extension, src, obj string) []string {
	var args []string
	args = append(args, tc.compiler(src)...)
	args = append(args, tc.CFlags...)
	args = append(args, tc.CCShared...)
	for _, dir := range ext.IncludeDirs {
		args = append(args, "-I"+dir)
	}
	if tc.IncludePy != "" {
		args = append(args, "-I"+tc.IncludePy)
	}
	args = append(args, "-c", src, "-o", obj)
	return append(args, ext.CompileArgs...)
}

// LinkCommand returns the argv that links objects into output.
//
// For C++ extensions the leading program of LDSHARED is replaced by the C++
// compiler, so the C++ runtime is linked in. The replacement happens whether
// or not LDSHARED starts with CC.
func (tc *Toolchain) LinkCommand(ext *Extension, objects []string, output string) []string {
	args := tc.linker(ext)
	args = append(args, objects...)
	args = append(args, "-o", output)
	return append(args, ext.LinkArgs...)
}

func (tc *Toolchain) linker(ext *Extension) []string {
	linker := append([]string(nil), tc.LDShared...)
	if ext.Language == LanguageCXX {
		linker = swapLinkerCompiler(linker, tc.CXX)
	}
	return linker
}

// OutputName returns the file name of the linked module, e.g.
// "pycryptosat.cpython-312-x86_64-linux-gnu.so".
func (tc *Toolchain) OutputName(ext *Extension) string {
	return ext.ModulePath() + tc.ExtSuffix
}

// RequiredTools lists the compilers and the linker needed for ext.
func (tc *Toolchain) RequiredTools(ext *Extension) []ToolRequirement {
	reqs := []ToolRequirement{
		{Name: tc.CC[0], Purpose: "C compiler"},
	}
	if ext.Language == LanguageCXX {
		reqs = append(reqs, ToolRequirement{Name: tc.CXX[0], Purpose: "C++ compiler"})
	}
	if linker := tc.linker(ext); len(linker) > 0 {
		tool := linker[0]
		if tool != tc.CC[0] && (ext.Language != LanguageCXX || tool != tc.CXX[0]) {
			reqs = append(reqs, ToolRequirement{Name: tool, Purpose: "shared object linker"})
		}
	}
	return reqs
}

// swapLinkerCompiler replaces the program of linker with the first token of
// cxx. An "env VAR=value ..." prefix is skipped first.
func swapLinkerCompiler(linker, cxx []string) []string {
	if len(cxx) == 0 {
		return linker
	}

	start := 0
	if len(linker) > 0 && linker[0] == "env" {
		start = 1
		for start < len(linker) && strings.Contains(linker[start], "=") {
			start++
		}
	}
	if start >= len(linker) {
		return linker
	}

	out := append([]string(nil), linker...)
	out[start] = cxx[0]
	return out
}
