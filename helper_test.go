package pyext

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// fakeSysconfig is printed by the helper process in place of the host
// interpreter's sysconfig variables.
const fakeSysconfig = `{"CC": "gcc -pthread", "CXX": "g++ -pthread", "CFLAGS": "-Wno-unused-result -Wsign-compare -DNDEBUG -g -fwrapv -O2 -Wall", "CCSHARED": "-fPIC", "LDSHARED": "gcc -pthread -shared", "MACHDEP": "linux", "INCLUDEPY": "/usr/include/python3.12", "EXT_SUFFIX": ".cpython-312-x86_64-linux-gnu.so", "Py_DEBUG": "0"}`

// useHelperProcess routes every command started through execCommandContext
// to TestHelperProcess and makes every tool look installed.
func useHelperProcess(t *testing.T) {
	t.Helper()

	origExec := execCommandContext
	origLook := execLookPath
	t.Cleanup(func() {
		execCommandContext = origExec
		execLookPath = origLook
	})

	execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
		return cmd
	}
	execLookPath = func(name string) (string, error) {
		return "/usr/bin/" + name, nil
	}
}

// TestHelperProcess stands in for python, the compilers and the linker.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		os.Exit(2)
	}
	name, rest := args[1], args[2:]

	switch {
	case strings.Contains(name, "broken"):
		fmt.Fprintln(os.Stderr, "fatal error: broken toolchain")
		os.Exit(1)
	case strings.Contains(name, "python"):
		script := strings.Join(rest, " ")
		if strings.Contains(script, "sysconfig") {
			fmt.Print(fakeSysconfig)
			os.Exit(0)
		}
		if strings.Contains(script, "tp.run()") {
			code := 0
			fmt.Sscanf(os.Getenv("HELPER_TEST_EXIT"), "%d", &code)
			os.Exit(code)
		}
		os.Exit(2)
	}

	// Compiler or linker: record the command line in the -o target.
	for i, arg := range rest {
		if arg == "-o" && i+1 < len(rest) {
			out := rest[i+1]
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				os.Exit(3)
			}
			line := name + " " + strings.Join(rest, " ")
			if err := os.WriteFile(out, []byte(line), 0o644); err != nil {
				os.Exit(3)
			}
		}
	}
	os.Exit(0)
}

// writeProject creates files (relative path → content) under a temp dir.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
	return dir
}

// writeFile writes one file under dir, creating parent directories.
func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
}
