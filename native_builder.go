package pyext

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBuildDir = "build"
	tempSubdir      = "temp"
	libSubdir       = "lib"
	objectSuffix    = ".o"
)

// NativeBuilder compiles C and C++ extensions with the toolchain described
// by the processed configuration in BuildConfig.Vars.
//
// Each source is compiled to an object under <build>/temp, then all objects
// are linked into <build>/lib/<module><EXT_SUFFIX>.
type NativeBuilder struct{}

var _ ToolChecker = (*NativeBuilder)(nil)

// Name returns the builder name
func (b *NativeBuilder) Name() string {
	return "Native"
}

// RequiredTools returns the compilers and linker needed for ext
func (b *NativeBuilder) RequiredTools(config *BuildConfig, ext *Extension) []ToolRequirement {
	tc, err := ResolveToolchain(config.Vars)
	if err != nil {
		return nil
	}
	return tc.RequiredTools(ext)
}

// CheckTools verifies that the configured compilers are available
func (b *NativeBuilder) CheckTools(config *BuildConfig, ext *Extension) error {
	if _, err := ResolveToolchain(config.Vars); err != nil {
		return err
	}
	return CheckRequiredTools(b.RequiredTools(config, ext))
}

// CanBuild accepts C and C++ extensions
func (b *NativeBuilder) CanBuild(ext *Extension) bool {
	return ext.Language == LanguageC || ext.Language == LanguageCXX
}

// Build compiles and links the extension
func (b *NativeBuilder) Build(ctx context.Context, config *BuildConfig, ext *Extension) (*BuildResult, error) {
	return runCommonBuild(ctx, config, ext, CommonBuildSteps{
		ConfigureFunc: b.configure,
		BuildFunc:     b.compileAndLink,
		FindFunc:      b.findBuiltExtensions,
	})
}

// Clean removes the object files and the linked module of ext
func (b *NativeBuilder) Clean(ctx context.Context, config *BuildConfig, ext *Extension) error {
	if err := os.RemoveAll(tempDir(config, ext)); err != nil {
		return err
	}

	built, err := b.findBuiltExtensions(config, ext)
	if err != nil {
		return err
	}
	for _, path := range built {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// configure checks that every listed source exists. The toolchain itself is
// checked by the factory through ToolChecker.
func (b *NativeBuilder) configure(ctx context.Context, config *BuildConfig, ext *Extension, result *BuildResult) error {
	for _, src := range ext.Sources {
		path := projectPath(config, src)
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("extension %s: %w: %s", ext.Name, ErrMissingSource, src)
			}
			return fmt.Errorf("extension %s: %w", ext.Name, err)
		}
		if info.IsDir() {
			return fmt.Errorf("extension %s: %w: %s is a directory", ext.Name, ErrMissingSource, src)
		}
	}

	if config.CleanFirst {
		if err := os.RemoveAll(tempDir(config, ext)); err != nil {
			return err
		}
	}

	if config.Verbose {
		result.Output = append(result.Output, fmt.Sprintf("%d sources checked for %s", len(ext.Sources), ext.Name))
	}
	return nil
}

// compileAndLink compiles every source, then links the objects.
func (b *NativeBuilder) compileAndLink(ctx context.Context, config *BuildConfig, ext *Extension, result *BuildResult) error {
	tc, err := ResolveToolchain(config.Vars)
	if err != nil {
		return err
	}

	objects := make([]string, len(ext.Sources))
	for i, src := range ext.Sources {
		objects[i] = objectPath(config, ext, src)
	}

	var mu sync.Mutex
	appendOutput := func(lines []string) {
		mu.Lock()
		result.Output = append(result.Output, lines...)
		mu.Unlock()
	}

	compile := func(ctx context.Context, i int) error {
		src := ext.Sources[i]
		if err := os.MkdirAll(filepath.Dir(objects[i]), 0o755); err != nil {
			return err
		}
		args := tc.CompileCommand(ext, src, objects[i])
		config.logger().Debug("compiling", slog.String("source", src))

		lines, err := runTool(ctx, config, args)
		appendOutput(lines)
		if err != nil {
			return BuildError("Compile", lines, err)
		}
		return nil
	}

	if config.Parallel > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(config.Parallel)
		for i := range ext.Sources {
			i := i
			g.Go(func() error { return compile(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return err
		}
	} else {
		for i := range ext.Sources {
			if err := compile(ctx, i); err != nil {
				return err
			}
		}
	}

	output := filepath.Join(libDir(config), filepath.FromSlash(tc.OutputName(ext)))
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}

	args := tc.LinkCommand(ext, objects, output)
	config.logger().Debug("linking", slog.String("output", output))

	lines, err := runTool(ctx, config, args)
	appendOutput(lines)
	if err != nil {
		return BuildError("Link", lines, err)
	}
	return nil
}

// findBuiltExtensions locates the linked module of ext under <build>/lib.
// Only the name produced by the current EXT_SUFFIX is returned.
func (b *NativeBuilder) findBuiltExtensions(config *BuildConfig, ext *Extension) ([]string, error) {
	dir := libDir(config)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	tc, err := ResolveToolchain(config.Vars)
	if err != nil {
		return nil, err
	}
	want := tc.OutputName(ext)

	// Modules left by interpreters with another EXT_SUFFIX also match the
	// pattern; only the current name is ours.
	pattern := ext.ModulePath() + ".*"
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to glob pattern %s in %s: %v", pattern, dir, err)
	}

	var extensions []string
	for _, match := range matches {
		if match != want || !isNativeLibrary(match) {
			continue
		}
		extensions = append(extensions, filepath.Join(dir, filepath.FromSlash(match)))
	}
	return extensions, nil
}

// runTool runs argv in the project directory and returns its output lines.
func runTool(ctx context.Context, config *BuildConfig, args []string) ([]string, error) {
	//nolint:gosec // Command comes from the build configuration
	cmd := execCommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = config.ProjectDir

	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}
	for key, value := range config.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	var lines []string
	if config.Verbose {
		lines = append(lines, fmt.Sprintf("Running: %s", strings.Join(args, " ")))
	}

	output, err := cmd.CombinedOutput()
	if trimmed := strings.TrimRight(string(output), "\n"); trimmed != "" {
		lines = append(lines, strings.Split(trimmed, "\n")...)
	}
	return lines, err
}

func buildDir(config *BuildConfig) string {
	dir := config.BuildDir
	if dir == "" {
		dir = defaultBuildDir
	}
	return projectPath(config, dir)
}

func tempDir(config *BuildConfig, ext *Extension) string {
	return filepath.Join(buildDir(config), tempSubdir, ext.ModulePath())
}

func libDir(config *BuildConfig) string {
	return filepath.Join(buildDir(config), libSubdir)
}

// objectPath maps a source to its object file. Parent references are
// flattened so objects never escape the temp directory.
func objectPath(config *BuildConfig, ext *Extension, src string) string {
	rel := filepath.Clean(filepath.FromSlash(src))
	if filepath.IsAbs(rel) {
		rel = strings.TrimPrefix(rel, filepath.VolumeName(rel))
	}
	rel = strings.ReplaceAll(rel, ".."+string(filepath.Separator), "__"+string(filepath.Separator))
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + objectSuffix
	return filepath.Join(tempDir(config, ext), rel)
}

// projectPath resolves path against the project directory. The result is
// absolute whenever the working directory can be determined, so it stays
// valid for toolchain processes that run inside ProjectDir.
func projectPath(config *BuildConfig, path string) string {
	path = filepath.FromSlash(path)
	if !filepath.IsAbs(path) && config.ProjectDir != "" {
		path = filepath.Join(config.ProjectDir, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
