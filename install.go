package pyext

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var nativeLibraryExtensions = []string{".so", ".pyd", ".dll", ".dylib", ".bundle"}

// installExtensions copies built modules from <build>/lib into
// config.DestPath, keeping their package-relative layout, and returns the
// destination paths. Without a DestPath nothing is copied.
func installExtensions(config *BuildConfig, built []string) ([]string, error) {
	if config.DestPath == "" || len(built) == 0 {
		return nil, nil
	}

	src := libDir(config)
	dest := projectPath(config, config.DestPath)

	var installed []string
	for _, path := range built {
		if !isNativeLibrary(path) {
			continue
		}

		rel, err := filepath.Rel(src, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			rel = filepath.Base(path)
		}

		target := filepath.Join(dest, rel)
		if err := copyFile(path, target); err != nil {
			return installed, fmt.Errorf("install %s: %w", rel, err)
		}
		installed = append(installed, target)
	}
	return uniqueStrings(installed), nil
}

func isNativeLibrary(path string) bool {
	return MatchesExtension(path, nativeLibraryExtensions...)
}

func copyFile(srcPath, destPath string) error {
	info, err := os.Stat(srcPath)
	if err != nil {
		return err
	}

	if mkErr := os.MkdirAll(filepath.Dir(destPath), 0o755); mkErr != nil {
		return mkErr
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{})
	var result []string

	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}

	return result
}
