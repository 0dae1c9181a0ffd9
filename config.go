package pyext

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the optional per-project configuration file.
const ConfigFileName = "pyext.toml"

// FileConfig is the content of pyext.toml.
//
//	[build]
//	python = "python3.12"
//	build_dir = "build"
//	dest = "."
//	parallel = 4
//	verbose = true
//
//	[flags]
//	denylist = ["-Werror=format-security"]
//
//	[env]
//	CCACHE_DIR = "/tmp/ccache"
type FileConfig struct {
	Build struct {
		Python     string `toml:"python"`
		BuildDir   string `toml:"build_dir"`
		Dest       string `toml:"dest"`
		Parallel   int    `toml:"parallel"`
		Verbose    bool   `toml:"verbose"`
		CleanFirst bool   `toml:"clean_first"`
	} `toml:"build"`

	Flags struct {
		Denylist []string `toml:"denylist"`
	} `toml:"flags"`

	Env map[string]string `toml:"env"`
}

// LoadFileConfig reads pyext.toml from dir. A missing file yields an empty
// configuration.
func LoadFileConfig(dir string) (*FileConfig, error) {
	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &FileConfig{}, nil
	}
	if err != nil {
		return nil, err
	}

	fc := &FileConfig{}
	if err := toml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if fc.Build.Parallel < 0 {
		return nil, fmt.Errorf("parse %s: parallel must not be negative", path)
	}
	return fc, nil
}

// Apply copies the values set in the file onto config. Fields that are
// already set in config win, so command-line flags override the file.
func (fc *FileConfig) Apply(config *BuildConfig) {
	if config.PythonPath == "" {
		config.PythonPath = fc.Build.Python
	}
	if config.BuildDir == "" {
		config.BuildDir = fc.Build.BuildDir
	}
	if config.DestPath == "" {
		config.DestPath = fc.Build.Dest
	}
	if config.Parallel == 0 {
		config.Parallel = fc.Build.Parallel
	}
	config.Verbose = config.Verbose || fc.Build.Verbose
	config.CleanFirst = config.CleanFirst || fc.Build.CleanFirst
	config.ExtraDenylist = append(config.ExtraDenylist, fc.Flags.Denylist...)

	if len(fc.Env) > 0 && config.Env == nil {
		config.Env = make(map[string]string, len(fc.Env))
	}
	for key, value := range fc.Env {
		if _, ok := config.Env[key]; !ok {
			config.Env[key] = value
		}
	}
}
