// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"upack-cli/pkg/types"
)

func TestBuildArgs(t *testing.T) {
	args := buildArgs("/work/My.uplugin", "/work/out", map[string]string{
		"TargetPlatforms": "Win64",
		"CreatePch":       "false",
	})

	want := []string{
		"BuildPlugin",
		"-Plugin=/work/My.uplugin",
		"-Package=/work/out",
		"-CreatePch=false",
		"-TargetPlatforms=Win64",
	}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args = %v, want %v", args, want)
		}
	}
}

// newFakeEngine creates an engine layout whose RunUAT script behaves per the
// given shell body.
func newFakeEngine(t *testing.T, scriptBody string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine script requires a POSIX shell")
	}

	enginePath := t.TempDir()
	scriptDir := filepath.Join(enginePath, "Engine", "Build", "BatchFiles")
	if err := os.MkdirAll(scriptDir, 0o755); err != nil {
		t.Fatal(err)
	}
	script := filepath.Join(scriptDir, "RunUAT.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"+scriptBody), 0o755); err != nil {
		t.Fatal(err)
	}
	return enginePath
}

// newPluginFile writes a minimal descriptor and returns its path.
func newPluginFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "My.uplugin")
	if err := os.WriteFile(path, []byte(`{"EngineVersion": "5.3.0"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestRun(t *testing.T) {
	t.Run("successful build", func(t *testing.T) {
		// The fake tool creates the Binaries directory under the package
		// target, like a real build would.
		enginePath := newFakeEngine(t, `
for arg in "$@"; do
  case "$arg" in
    -Package=*) mkdir -p "${arg#-Package=}/Binaries" ;;
  esac
done
`)

		err := Run(context.Background(), Config{
			EnginePath: types.FilesystemPath(enginePath),
			PluginFile: types.FilesystemPath(newPluginFile(t)),
			OutputDir:  types.FilesystemPath(filepath.Join(t.TempDir(), "out")),
			Logger:     quietLogger(),
		})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	})

	t.Run("non-zero exit becomes BuildError", func(t *testing.T) {
		enginePath := newFakeEngine(t, "exit 3\n")

		err := Run(context.Background(), Config{
			EnginePath: types.FilesystemPath(enginePath),
			PluginFile: types.FilesystemPath(newPluginFile(t)),
			OutputDir:  types.FilesystemPath(t.TempDir()),
			Logger:     quietLogger(),
		})

		var buildErr *BuildError
		if !errors.As(err, &buildErr) {
			t.Fatalf("err = %v, want BuildError", err)
		}
		if buildErr.ExitCode != 3 {
			t.Errorf("ExitCode = %d, want 3", buildErr.ExitCode)
		}
	})

	t.Run("zero exit without binaries fails", func(t *testing.T) {
		enginePath := newFakeEngine(t, "exit 0\n")

		err := Run(context.Background(), Config{
			EnginePath: types.FilesystemPath(enginePath),
			PluginFile: types.FilesystemPath(newPluginFile(t)),
			OutputDir:  types.FilesystemPath(t.TempDir()),
			Logger:     quietLogger(),
		})
		if !errors.Is(err, ErrNoBinaries) {
			t.Errorf("err = %v, want ErrNoBinaries", err)
		}
	})

	t.Run("wrong extension rejected before running", func(t *testing.T) {
		enginePath := newFakeEngine(t, "exit 0\n")
		notAPlugin := filepath.Join(t.TempDir(), "My.json")
		if err := os.WriteFile(notAPlugin, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}

		err := Run(context.Background(), Config{
			EnginePath: types.FilesystemPath(enginePath),
			PluginFile: types.FilesystemPath(notAPlugin),
			OutputDir:  types.FilesystemPath(t.TempDir()),
			Logger:     quietLogger(),
		})
		if !errors.Is(err, ErrNotAPlugin) {
			t.Errorf("err = %v, want ErrNotAPlugin", err)
		}
	})

	t.Run("extra arguments forwarded", func(t *testing.T) {
		marker := filepath.Join(t.TempDir(), "args.txt")
		enginePath := newFakeEngine(t, `
echo "$@" > `+marker+`
for arg in "$@"; do
  case "$arg" in
    -Package=*) mkdir -p "${arg#-Package=}/Binaries" ;;
  esac
done
`)

		err := Run(context.Background(), Config{
			EnginePath: types.FilesystemPath(enginePath),
			PluginFile: types.FilesystemPath(newPluginFile(t)),
			OutputDir:  types.FilesystemPath(filepath.Join(t.TempDir(), "out")),
			ExtraArgs:  map[string]string{"TargetPlatforms": "Linux"},
			Logger:     quietLogger(),
		})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}

		recorded, err := os.ReadFile(marker)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(recorded), "-TargetPlatforms=Linux") {
			t.Errorf("recorded args %q missing extra argument", recorded)
		}
	})
}
