package pyext

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSuffix = ".cpython-312-x86_64-linux-gnu.so"

func nativeProject(t *testing.T) (string, *Extension) {
	t.Helper()
	dir := writeProject(t, map[string]string{
		"python/m.cpp": "// glue",
		"src/a.cpp":    "// a",
		"src/b.cpp":    "// b",
	})
	ext := NewExtension(ExtensionSpec{
		Name:         "m",
		GlueSource:   "python/m.cpp",
		LibraryRoot:  "src",
		LibraryFiles: []string{"a.cpp", "b.cpp"},
		IncludeDirs:  []string{"src"},
		CompileArgs:  []string{"-fwrapv"},
		LinkArgs:     []string{"-flto"},
	})
	return dir, ext
}

func nativeConfig(dir string) *BuildConfig {
	return &BuildConfig{
		ProjectDir: dir,
		Vars: ConfigVars{
			VarCC:        "gcc",
			VarCXX:       "g++",
			VarLDShared:  "gcc -shared",
			VarExtSuffix: testSuffix,
		},
	}
}

func TestNativeBuilderBuild(t *testing.T) {
	useHelperProcess(t)
	dir, ext := nativeProject(t)
	config := nativeConfig(dir)
	config.Verbose = true

	result, err := (&NativeBuilder{}).Build(context.Background(), config, ext)

	require.NoError(t, err)
	require.True(t, result.Success)
	want := filepath.Join(dir, "build", "lib", "m"+testSuffix)
	assert.Equal(t, []string{want}, result.Extensions)

	linked, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Contains(t, string(linked), "g++ -shared")
	assert.Contains(t, string(linked), "-flto")

	for _, obj := range []string{"python/m.o", "src/a.o", "src/b.o"} {
		assert.FileExists(t, filepath.Join(dir, "build", "temp", "m", filepath.FromSlash(obj)))
	}
	assert.Contains(t, result.Output[0], "3 sources checked")
}

func TestNativeBuilderParallel(t *testing.T) {
	useHelperProcess(t)
	dir, ext := nativeProject(t)
	config := nativeConfig(dir)
	config.Parallel = 3

	result, err := (&NativeBuilder{}).Build(context.Background(), config, ext)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.Extensions, 1)
}

func TestNativeBuilderMissingSource(t *testing.T) {
	useHelperProcess(t)
	dir, ext := nativeProject(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "src", "b.cpp")))

	result, err := (&NativeBuilder{}).Build(context.Background(), nativeConfig(dir), ext)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingSource))
	assert.Contains(t, err.Error(), "src/b.cpp")
	assert.False(t, result.Success)
	assert.NoDirExists(t, filepath.Join(dir, "build"), "nothing is compiled when a source is missing")
}

func TestNativeBuilderCompilerFailure(t *testing.T) {
	useHelperProcess(t)
	dir, ext := nativeProject(t)
	config := nativeConfig(dir)
	config.Vars[VarCXX] = "broken-g++"

	result, err := (&NativeBuilder{}).Build(context.Background(), config, ext)

	require.Error(t, err)
	var tcErr *ToolchainError
	require.True(t, errors.As(err, &tcErr))
	assert.Equal(t, "Compile", tcErr.Step)
	assert.Contains(t, err.Error(), "fatal error: broken toolchain")
	assert.False(t, result.Success)
	assert.Equal(t, err, result.Error)
}

func TestNativeBuilderLinkFailure(t *testing.T) {
	useHelperProcess(t)
	dir := writeProject(t, map[string]string{"m.c": "/* glue */"})
	ext := NewExtension(ExtensionSpec{Name: "m", GlueSource: "m.c"})
	config := nativeConfig(dir)
	config.Vars[VarLDShared] = "broken-ld -shared"

	_, err := (&NativeBuilder{}).Build(context.Background(), config, ext)

	var tcErr *ToolchainError
	require.True(t, errors.As(err, &tcErr))
	assert.Equal(t, "Link", tcErr.Step)
}

func TestNativeBuilderLinksCXXWithCXX(t *testing.T) {
	useHelperProcess(t)
	dir, ext := nativeProject(t)
	config := nativeConfig(dir)
	config.Vars[VarLDShared] = "cc -G"

	result, err := (&NativeBuilder{}).Build(context.Background(), config, ext)
	require.NoError(t, err)
	require.Len(t, result.Extensions, 1)

	linked, err := os.ReadFile(result.Extensions[0])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(linked), "g++ -G "), string(linked))
}

func TestNativeBuilderMissingTools(t *testing.T) {
	useHelperProcess(t)
	execLookPath = func(string) (string, error) { return "", errors.New("not found") }
	dir, ext := nativeProject(t)

	results, err := NewBuilderFactory().BuildAllExtensions(context.Background(), nativeConfig(dir), []*Extension{ext})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "build tools missing")
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.NoDirExists(t, filepath.Join(dir, "build"))
}

func TestNativeBuilderFindsOnlyCurrentSuffix(t *testing.T) {
	useHelperProcess(t)
	dir, ext := nativeProject(t)
	stale := filepath.Join(dir, "build", "lib", "m.cpython-311-x86_64-linux-gnu.so")
	writeFile(t, dir, "build/lib/m.cpython-311-x86_64-linux-gnu.so", "old")
	config := nativeConfig(dir)
	builder := &NativeBuilder{}

	result, err := builder.Build(context.Background(), config, ext)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "build", "lib", "m"+testSuffix)}, result.Extensions)

	require.NoError(t, builder.Clean(context.Background(), config, ext))
	assert.FileExists(t, stale)
}

func TestNativeBuilderClean(t *testing.T) {
	useHelperProcess(t)
	dir, ext := nativeProject(t)
	config := nativeConfig(dir)
	builder := &NativeBuilder{}

	_, err := builder.Build(context.Background(), config, ext)
	require.NoError(t, err)

	require.NoError(t, builder.Clean(context.Background(), config, ext))

	assert.NoDirExists(t, filepath.Join(dir, "build", "temp", "m"))
	assert.NoFileExists(t, filepath.Join(dir, "build", "lib", "m"+testSuffix))

	// Cleaning twice is fine.
	require.NoError(t, builder.Clean(context.Background(), config, ext))
}

func TestObjectPathStaysInTempDir(t *testing.T) {
	config := &BuildConfig{ProjectDir: t.TempDir()}
	ext := &Extension{Name: "m"}

	obj := objectPath(config, ext, "../shared/x.cpp")

	rel, err := filepath.Rel(tempDir(config, ext), obj)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("__", "shared", "x.o"), rel)
}

func TestNativeBuilderCanBuild(t *testing.T) {
	builder := &NativeBuilder{}
	assert.True(t, builder.CanBuild(&Extension{Language: LanguageC}))
	assert.True(t, builder.CanBuild(&Extension{Language: LanguageCXX}))
	assert.False(t, builder.CanBuild(&Extension{Language: "rust"}))
}
