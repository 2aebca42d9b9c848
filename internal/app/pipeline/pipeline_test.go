// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/charmbracelet/log"

	"upack-cli/internal/engine"
	"upack-cli/internal/testutil"
	"upack-cli/pkg/types"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// cleanFixture is a bundle that passes every validator.
func cleanFixture(t *testing.T) string {
	t.Helper()
	return testutil.PluginFixture{
		Name:     "MyPlugin",
		Patterns: []string{"/Source/...", "/Resources/Icon*.png", "/README.md"},
		Files: map[string]string{
			"Source/Foo.cpp":        "// Copyright 2026 Example Ltd.\n",
			"Source/Foo.h":          "// Copyright 2026 Example Ltd.\n",
			"Resources/Icon128.png": "png",
			"README.md":             "# MyPlugin\n",
			"Docs/internal.md":      "not selected\n",
		},
	}.Write(t)
}

func TestValidate(t *testing.T) {
	t.Run("clean bundle", func(t *testing.T) {
		results, err := Validate(Options{BundlePath: cleanFixture(t), Logger: quietLogger()})
		if err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if len(results) != 4 {
			t.Errorf("results = %d, want 4", len(results))
		}
	})

	t.Run("findings become ValidationFailedError", func(t *testing.T) {
		root := testutil.PluginFixture{
			Name:       "MyPlugin",
			Descriptor: `{"EngineVersion": "5.0.0"}`,
			Patterns:   []string{"/Source/..."},
			Files: map[string]string{
				"Source/Foo.cpp": "int x;\n",
			},
		}.Write(t)

		results, err := Validate(Options{BundlePath: root, Logger: quietLogger()})

		var vErr *ValidationFailedError
		if !errors.As(err, &vErr) {
			t.Fatalf("err = %v, want ValidationFailedError", err)
		}
		if len(results) != 4 {
			t.Errorf("results = %d, want all validators reported", len(results))
		}
	})

	t.Run("missing manifest reported", func(t *testing.T) {
		root := testutil.PluginFixture{Name: "MyPlugin"}.Write(t)

		if _, err := Validate(Options{BundlePath: root, Logger: quietLogger()}); err == nil {
			t.Fatal("Validate succeeded without a filter manifest")
		}
	})
}

func TestRun(t *testing.T) {
	t.Run("one archive per version", func(t *testing.T) {
		outputDir := t.TempDir()

		report, err := Run(context.Background(), Options{
			BundlePath:  cleanFixture(t),
			Versions:    []types.EngineVersion{"5.3", "5.4"},
			OutputDir:   outputDir,
			SkipCompile: true,
			Logger:      quietLogger(),
		})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}

		if len(report.Archives) != 2 {
			t.Fatalf("archives = %v, want 2", report.Archives)
		}
		wantNames := []string{"MyPlugin_UE5.3.zip", "MyPlugin_UE5.4.zip"}
		for i, want := range wantNames {
			if got := filepath.Base(report.Archives[i]); got != want {
				t.Errorf("archive[%d] = %s, want %s", i, got, want)
			}
		}

		// Unselected files and the manifest itself never reach an archive.
		r, err := zip.OpenReader(report.Archives[0])
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		for _, f := range r.File {
			switch f.Name {
			case "MyPlugin/Docs/internal.md":
				t.Error("unselected file leaked into archive")
			case "MyPlugin/Config/FilterPlugin.ini":
				t.Error("filter manifest leaked into archive")
			}
		}

		// Descriptor plus four selected files.
		if report.StagedFileCount != 5 {
			t.Errorf("StagedFileCount = %d, want 5", report.StagedFileCount)
		}
	})

	t.Run("validation failure stops before packaging", func(t *testing.T) {
		root := testutil.PluginFixture{
			Name:       "MyPlugin",
			Descriptor: `{"EngineVersion": "5.0.0"}`,
			Patterns:   []string{"/Source/..."},
			Files:      map[string]string{"Source/Foo.cpp": "int x;\n"},
		}.Write(t)
		outputDir := t.TempDir()

		_, err := Run(context.Background(), Options{
			BundlePath:  root,
			Versions:    []types.EngineVersion{"5.3"},
			OutputDir:   outputDir,
			SkipCompile: true,
			Logger:      quietLogger(),
		})

		var vErr *ValidationFailedError
		if !errors.As(err, &vErr) {
			t.Fatalf("err = %v, want ValidationFailedError", err)
		}

		entries, readErr := os.ReadDir(outputDir)
		if readErr != nil {
			t.Fatal(readErr)
		}
		if len(entries) != 0 {
			t.Errorf("output dir not empty after failed validation: %v", entries)
		}
	})

	t.Run("skipped validation still packages", func(t *testing.T) {
		// This bundle fails the copyright and descriptor validators.
		root := testutil.PluginFixture{
			Name:       "MyPlugin",
			Descriptor: `{"EngineVersion": "5.0.0"}`,
			Patterns:   []string{"/Source/..."},
			Files:      map[string]string{"Source/Foo.cpp": "int x;\n"},
		}.Write(t)
		outputDir := t.TempDir()

		report, err := Run(context.Background(), Options{
			BundlePath:     root,
			Versions:       []types.EngineVersion{"5.3"},
			OutputDir:      outputDir,
			SkipValidation: true,
			SkipCompile:    true,
			Logger:         quietLogger(),
		})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(report.ValidationResults) != 0 {
			t.Errorf("ValidationResults = %v, want none", report.ValidationResults)
		}
		if len(report.Archives) != 1 {
			t.Fatalf("archives = %v, want 1", report.Archives)
		}
		if got := filepath.Base(report.Archives[0]); got != "MyPlugin_UE5.3.zip" {
			t.Errorf("archive = %s, want MyPlugin_UE5.3.zip", got)
		}
	})

	t.Run("temporary directories removed", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("TMPDIR does not control the temp root on Windows")
		}

		cleanRoot := cleanFixture(t)
		failingRoot := testutil.PluginFixture{
			Name:       "MyPlugin",
			Descriptor: `{"EngineVersion": "5.0.0"}`,
			Patterns:   []string{"/Source/..."},
			Files:      map[string]string{"Source/Foo.cpp": "int x;\n"},
		}.Write(t)
		outputDir := t.TempDir()
		tmpRoot := t.TempDir()
		t.Setenv("TMPDIR", tmpRoot)

		assertEmptyTempRoot := func(phase string) {
			t.Helper()
			entries, err := os.ReadDir(tmpRoot)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 0 {
				t.Errorf("temp root not empty after %s: %v", phase, entries)
			}
		}

		_, err := Run(context.Background(), Options{
			BundlePath:  cleanRoot,
			Versions:    []types.EngineVersion{"5.3"},
			OutputDir:   outputDir,
			SkipCompile: true,
			Logger:      quietLogger(),
		})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		assertEmptyTempRoot("successful run")

		_, err = Run(context.Background(), Options{
			BundlePath:  failingRoot,
			Versions:    []types.EngineVersion{"5.3"},
			OutputDir:   outputDir,
			SkipCompile: true,
			Logger:      quietLogger(),
		})
		var vErr *ValidationFailedError
		if !errors.As(err, &vErr) {
			t.Fatalf("err = %v, want ValidationFailedError", err)
		}
		assertEmptyTempRoot("failed validation")
	})

	t.Run("no versions rejected", func(t *testing.T) {
		_, err := Run(context.Background(), Options{
			BundlePath:  cleanFixture(t),
			SkipCompile: true,
			Logger:      quietLogger(),
		})
		if err == nil {
			t.Fatal("Run succeeded with no versions")
		}
	})

	t.Run("invalid version rejected", func(t *testing.T) {
		_, err := Run(context.Background(), Options{
			BundlePath:  cleanFixture(t),
			Versions:    []types.EngineVersion{"five"},
			SkipCompile: true,
			Logger:      quietLogger(),
		})
		if !errors.Is(err, types.ErrInvalidEngineVersion) {
			t.Errorf("err = %v, want ErrInvalidEngineVersion", err)
		}
	})

	t.Run("compile check uses highest version", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("fake engine script requires a POSIX shell")
		}

		// Fake engines for both versions; the RunUAT script records which
		// descriptor it was handed and produces the Binaries directory.
		base := t.TempDir()
		marker := filepath.Join(t.TempDir(), "plugin.json")
		script := `#!/bin/sh
for arg in "$@"; do
  case "$arg" in
    -Plugin=*) cp "${arg#-Plugin=}" ` + marker + ` ;;
    -Package=*) mkdir -p "${arg#-Package=}/Binaries" ;;
  esac
done
`
		for _, v := range []string{"5.3", "5.4"} {
			dir := filepath.Join(base, "UE_"+v, "Engine", "Build", "BatchFiles")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(dir, "RunUAT.sh"), []byte(script), 0o755); err != nil {
				t.Fatal(err)
			}
		}
		t.Setenv(engine.EnvBaseDir, base)

		report, err := Run(context.Background(), Options{
			BundlePath:  cleanFixture(t),
			Versions:    []types.EngineVersion{"5.3", "5.4"},
			OutputDir:   t.TempDir(),
			BuildOutput: io.Discard,
			Logger:      quietLogger(),
		})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if report.CompiledVersion != "5.4" {
			t.Errorf("CompiledVersion = %s, want 5.4", report.CompiledVersion)
		}

		data, err := os.ReadFile(marker)
		if err != nil {
			t.Fatalf("build tool was not invoked: %v", err)
		}
		var d map[string]any
		if err := json.Unmarshal(data, &d); err != nil {
			t.Fatal(err)
		}
		if got := d["EngineVersion"]; got != "5.4.0" {
			t.Errorf("compiled descriptor EngineVersion = %v, want 5.4.0", got)
		}
	})

	t.Run("missing engine fails the run", func(t *testing.T) {
		t.Setenv(engine.EnvBaseDir, filepath.Join(t.TempDir(), "nope"))

		_, err := Run(context.Background(), Options{
			BundlePath: cleanFixture(t),
			Versions:   []types.EngineVersion{"5.3"},
			OutputDir:  t.TempDir(),
			Logger:     quietLogger(),
		})
		if !errors.Is(err, engine.ErrBaseDirNotFound) {
			t.Errorf("err = %v, want ErrBaseDirNotFound", err)
		}
	})
}
