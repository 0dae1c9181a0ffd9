package pyext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// Package is the static description of a distribution: metadata, the
// extension modules it builds and the pure-Python modules it ships.
type Package struct {
	Name           string
	Version        string // Version of this package
	LibraryVersion string // Version of the wrapped library, tracked separately
	Author         string
	AuthorEmail    string
	URL            string
	License        string
	Classifiers    []string
	Description    string

	// LongDescriptionFile is read relative to the project directory when
	// the distribution is set up. It must exist.
	LongDescriptionFile string

	PyModules  []string
	Extensions []*Extension
}

// Metadata is the package metadata handed to the packaging front-end.
type Metadata struct {
	Name            string   `yaml:"name" json:"name"`
	Version         string   `yaml:"version" json:"version"`
	LibraryVersion  string   `yaml:"library_version,omitempty" json:"library_version,omitempty"`
	Author          string   `yaml:"author,omitempty" json:"author,omitempty"`
	AuthorEmail     string   `yaml:"author_email,omitempty" json:"author_email,omitempty"`
	URL             string   `yaml:"url,omitempty" json:"url,omitempty"`
	License         string   `yaml:"license,omitempty" json:"license,omitempty"`
	Classifiers     []string `yaml:"classifiers,omitempty" json:"classifiers,omitempty"`
	Description     string   `yaml:"description,omitempty" json:"description,omitempty"`
	LongDescription string   `yaml:"long_description,omitempty" json:"long_description,omitempty"`
	PyModules       []string `yaml:"py_modules,omitempty" json:"py_modules,omitempty"`
	ExtModules      []string `yaml:"ext_modules,omitempty" json:"ext_modules,omitempty"`
}

// SetupOptions customizes Setup. The zero value uses the host interpreter,
// DefaultPlatformRules, the process environment, an InterpreterResolver for
// the test command and NewBuilderFactory.
type SetupOptions struct {
	Detector     PlatformDetector
	Rules        []PlatformRule
	Environ      []string
	TestResolver TestResolver
	TestModule   string
	Factory      *BuilderFactory
}

// Distribution is a set-up Package ready to run commands.
type Distribution struct {
	Package         *Package
	Config          *BuildConfig
	LongDescription string
	Platform        string // Name of the platform rule that matched, if any

	commands map[string]Command
}

// Setup assembles a Distribution.
//
// It reads the long description (a missing file is fatal), validates the
// extensions, and processes the inherited configuration in this order:
// detect, sanitize, platform rules, environment overrides. The result is
// stored in the returned distribution's Config.Vars; config itself is not
// modified. No compiler runs until a build command is invoked.
func Setup(ctx context.Context, pkg *Package, config *BuildConfig, opts *SetupOptions) (*Distribution, error) {
	if opts == nil {
		opts = &SetupOptions{}
	}
	if config == nil {
		config = &BuildConfig{}
	}

	cfg := *config
	if cfg.ProjectDir == "" {
		cfg.ProjectDir = "."
	}
	projectDir, err := filepath.Abs(cfg.ProjectDir)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}
	cfg.ProjectDir = projectDir
	log := cfg.logger()

	longDescription, err := ReadLongDescription(cfg.ProjectDir, pkg.LongDescriptionFile)
	if err != nil {
		return nil, err
	}

	if err := validateExtensions(pkg.Extensions); err != nil {
		return nil, err
	}

	detector := opts.Detector
	if detector == nil {
		detector = InterpreterDetector{Python: cfg.PythonPath}
	}
	rules := opts.Rules
	if rules == nil {
		rules = DefaultPlatformRules
	}
	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}

	denylist := Denylist(cfg.ExtraDenylist...)
	vars, platform, err := InitPlatform(ctx, detector, rules, func(detected ConfigVars) ConfigVars {
		log.Debug("detected build configuration", slog.Int("vars", len(detected)))
		return Sanitize(detected, denylist)
	})
	if err != nil {
		return nil, fmt.Errorf("detect build configuration: %w", err)
	}
	if platform != "" {
		log.Info("applied platform toolchain override",
			slog.String("rule", platform),
			slog.String("cc", vars.Get(VarCC)),
			slog.String("cxx", vars.Get(VarCXX)))
	}

	cfg.Vars = ApplyEnvOverrides(vars, environ)

	dist := &Distribution{
		Package:         pkg,
		Config:          &cfg,
		LongDescription: longDescription,
		Platform:        platform,
		commands:        map[string]Command{},
	}

	factory := opts.Factory
	if factory == nil {
		factory = NewBuilderFactory()
	}
	resolver := opts.TestResolver
	if resolver == nil {
		resolver = &InterpreterResolver{Python: cfg.PythonPath, Dir: cfg.ProjectDir, Env: cfg.Env}
	}

	dist.Register(&BuildExtCommand{dist: dist, factory: factory})
	dist.Register(&CleanCommand{dist: dist, factory: factory})
	dist.Register(&TestCommand{Module: opts.TestModule, Resolver: resolver})

	return dist, nil
}

// ReadLongDescription reads name relative to dir. An empty name yields an
// empty description; a missing file is an error.
func ReadLongDescription(dir, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, filepath.FromSlash(name))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read long description: %w", err)
	}
	return string(data), nil
}

func validateExtensions(extensions []*Extension) error {
	seen := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		if err := ext.Validate(); err != nil {
			return err
		}
		if _, ok := seen[ext.Name]; ok {
			return fmt.Errorf("duplicate extension module %s", ext.Name)
		}
		seen[ext.Name] = struct{}{}
	}
	return nil
}

// Register adds or replaces a command.
func (d *Distribution) Register(cmd Command) {
	d.commands[cmd.Name()] = cmd
}

// Command returns the command registered under name.
func (d *Distribution) Command(name string) (Command, bool) {
	cmd, ok := d.commands[name]
	return cmd, ok
}

// Commands returns the registered command names in sorted order.
func (d *Distribution) Commands() []string {
	names := make([]string, 0, len(d.commands))
	for name := range d.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run runs the named command: InitializeOptions, FinalizeOptions, Run.
// The command's error is returned unchanged.
func (d *Distribution) Run(ctx context.Context, name string) error {
	cmd, ok := d.commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	cmd.InitializeOptions()
	if err := cmd.FinalizeOptions(); err != nil {
		return err
	}
	return cmd.Run(ctx)
}

// Metadata returns the package metadata with the long description loaded.
func (d *Distribution) Metadata() Metadata {
	pkg := d.Package
	md := Metadata{
		Name:            pkg.Name,
		Version:         pkg.Version,
		LibraryVersion:  pkg.LibraryVersion,
		Author:          pkg.Author,
		AuthorEmail:     pkg.AuthorEmail,
		URL:             pkg.URL,
		License:         pkg.License,
		Classifiers:     append([]string(nil), pkg.Classifiers...),
		Description:     pkg.Description,
		LongDescription: d.LongDescription,
		PyModules:       append([]string(nil), pkg.PyModules...),
	}
	for _, ext := range pkg.Extensions {
		md.ExtModules = append(md.ExtModules, ext.Name)
	}
	return md
}

// BuildExtCommand is the "build_ext" subcommand.
type BuildExtCommand struct {
	dist    *Distribution
	factory *BuilderFactory

	// Results holds the per-extension results of the last Run.
	Results []*BuildResult
}

// Name returns "build_ext".
func (c *BuildExtCommand) Name() string { return "build_ext" }

// InitializeOptions resets the previous results.
func (c *BuildExtCommand) InitializeOptions() { c.Results = nil }

// FinalizeOptions does nothing.
func (c *BuildExtCommand) FinalizeOptions() error { return nil }

// Run builds every extension of the package. A failing toolchain aborts the
// build; the error carries the toolchain output.
func (c *BuildExtCommand) Run(ctx context.Context) error {
	cfg := *c.dist.Config
	cfg.StopOnFailure = true

	results, err := c.factory.BuildAllExtensions(ctx, &cfg, c.dist.Package.Extensions)
	c.Results = results
	if err != nil {
		return err
	}

	log := cfg.logger()
	for _, result := range results {
		log.Info("built extension",
			slog.String("extension", result.Extension),
			slog.Any("files", result.Extensions),
			slog.Any("installed", result.Installed))
	}
	return nil
}

// CleanCommand is the "clean" subcommand.
type CleanCommand struct {
	dist    *Distribution
	factory *BuilderFactory
}

// Name returns "clean".
func (c *CleanCommand) Name() string { return "clean" }

// InitializeOptions does nothing.
func (c *CleanCommand) InitializeOptions() {}

// FinalizeOptions does nothing.
func (c *CleanCommand) FinalizeOptions() error { return nil }

// Run removes object files and built modules.
func (c *CleanCommand) Run(ctx context.Context) error {
	return c.factory.CleanAllExtensions(ctx, c.dist.Config, c.dist.Package.Extensions)
}
