package pyext

import (
	"fmt"
	"path"
	"strings"
)

// Language of an extension's sources.
const (
	LanguageC   = "c"
	LanguageCXX = "c++"
)

// Extension describes one native module for the toolchain to build.
// It is created once and not modified afterwards.
type Extension struct {
	Name        string   // Module name, unique within the build
	Language    string   // LanguageC or LanguageCXX
	Sources     []string // Glue source first, then library sources in build order
	IncludeDirs []string
	CompileArgs []string
	LinkArgs    []string
}

// ExtensionSpec holds the inputs of NewExtension.
type ExtensionSpec struct {
	Name         string
	Language     string
	GlueSource   string
	LibraryRoot  string
	LibraryFiles []string
	IncludeDirs  []string
	CompileArgs  []string
	LinkArgs     []string
}

// NewExtension assembles an Extension from spec.
//
// It is a pure function: library files are joined to LibraryRoot with
// forward slashes and nothing is checked on disk. Missing files surface when
// the toolchain runs. Language defaults to LanguageC unless a source has a
// C++ suffix.
func NewExtension(spec ExtensionSpec) *Extension {
	sources := make([]string, 0, 1+len(spec.LibraryFiles))
	sources = append(sources, spec.GlueSource)
	for _, file := range spec.LibraryFiles {
		sources = append(sources, path.Join(spec.LibraryRoot, file))
	}

	language := spec.Language
	if language == "" {
		language = detectLanguage(sources)
	}

	return &Extension{
		Name:        spec.Name,
		Language:    language,
		Sources:     sources,
		IncludeDirs: append([]string(nil), spec.IncludeDirs...),
		CompileArgs: append([]string(nil), spec.CompileArgs...),
		LinkArgs:    append([]string(nil), spec.LinkArgs...),
	}
}

// Validate checks the invariants that do not need the filesystem.
func (e *Extension) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("extension has no name")
	}
	if strings.ContainsAny(e.Name, "/\\") {
		return fmt.Errorf("extension %s: name must be a dotted module name", e.Name)
	}
	if len(e.Sources) == 0 {
		return fmt.Errorf("extension %s: no sources", e.Name)
	}

	seen := make(map[string]struct{}, len(e.Sources))
	for _, src := range e.Sources {
		if src == "" {
			return fmt.Errorf("extension %s: empty source path", e.Name)
		}
		if _, ok := seen[src]; ok {
			return fmt.Errorf("extension %s: duplicate source %s", e.Name, src)
		}
		seen[src] = struct{}{}
	}
	return nil
}

// ModuleBase returns the last component of the dotted module name.
func (e *Extension) ModuleBase() string {
	if i := strings.LastIndex(e.Name, "."); i >= 0 {
		return e.Name[i+1:]
	}
	return e.Name
}

// ModulePath returns the module's path relative to a package root,
// e.g. "pkg/sub/mod" for "pkg.sub.mod".
func (e *Extension) ModulePath() string {
	return strings.ReplaceAll(e.Name, ".", "/")
}

var cxxSuffixes = []string{".cpp", ".cc", ".cxx", ".c++", ".C"}

func detectLanguage(sources []string) string {
	for _, src := range sources {
		for _, suffix := range cxxSuffixes {
			if strings.HasSuffix(src, suffix) {
				return LanguageCXX
			}
		}
	}
	return LanguageC
}
