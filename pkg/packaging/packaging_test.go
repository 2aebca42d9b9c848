// SPDX-License-Identifier: MPL-2.0

package packaging

import (
	"archive/zip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"upack-cli/pkg/types"
	"upack-cli/pkg/uplugin"
)

// newStagedBundle lays out a staged bundle directory with a descriptor and a
// couple of content files.
func newStagedBundle(t *testing.T, name string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), name)

	files := map[string]string{
		name + uplugin.Extension: `{"FriendlyName": "My Plugin", "EngineVersion": "5.0.0"}`,
		"Source/Foo.cpp":         "// Copyright Me\n",
		"Resources/Icon128.png":  "png-bytes",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// readArchive opens the archive and returns its entry names plus the decoded
// descriptor found inside.
func readArchive(t *testing.T, archivePath, bundleName string) ([]string, map[string]any) {
	t.Helper()
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		t.Fatalf("OpenReader(%s): %v", archivePath, err)
	}
	defer r.Close()

	var names []string
	var descriptor map[string]any
	for _, f := range r.File {
		names = append(names, f.Name)
		if f.Name == bundleName+"/"+bundleName+uplugin.Extension {
			rc, err := f.Open()
			if err != nil {
				t.Fatal(err)
			}
			err = json.NewDecoder(rc).Decode(&descriptor)
			rc.Close()
			if err != nil {
				t.Fatalf("decode descriptor: %v", err)
			}
		}
	}
	return names, descriptor
}

func TestPackage(t *testing.T) {
	t.Run("archive layout and version normalization", func(t *testing.T) {
		staged := newStagedBundle(t, "MyPlugin")
		outputDir := t.TempDir()

		archivePath, err := Package(staged, "5.3", outputDir)
		if err != nil {
			t.Fatalf("Package: %v", err)
		}
		if got, want := filepath.Base(archivePath), "MyPlugin_UE5.3.zip"; got != want {
			t.Errorf("archive name = %s, want %s", got, want)
		}

		names, descriptor := readArchive(t, archivePath, "MyPlugin")
		for _, name := range names {
			if !strings.HasPrefix(name, "MyPlugin/") {
				t.Errorf("entry %q is not rooted at the bundle directory", name)
			}
		}
		if len(names) != 3 {
			t.Errorf("entries = %v, want 3 files", names)
		}

		if descriptor == nil {
			t.Fatal("descriptor entry not found in archive")
		}
		if got := descriptor["EngineVersion"]; got != "5.3.0" {
			t.Errorf("EngineVersion = %v, want 5.3.0", got)
		}
		if got := descriptor["FriendlyName"]; got != "My Plugin" {
			t.Errorf("FriendlyName = %v, want preserved", got)
		}
	})

	t.Run("three-component version kept verbatim", func(t *testing.T) {
		staged := newStagedBundle(t, "MyPlugin")

		archivePath, err := Package(staged, "5.4.1", t.TempDir())
		if err != nil {
			t.Fatalf("Package: %v", err)
		}
		if got, want := filepath.Base(archivePath), "MyPlugin_UE5.4.1.zip"; got != want {
			t.Errorf("archive name = %s, want %s", got, want)
		}

		_, descriptor := readArchive(t, archivePath, "MyPlugin")
		if got := descriptor["EngineVersion"]; got != "5.4.1" {
			t.Errorf("EngineVersion = %v, want 5.4.1", got)
		}
	})

	t.Run("staged tree left untouched", func(t *testing.T) {
		staged := newStagedBundle(t, "MyPlugin")

		if _, err := Package(staged, "5.3", t.TempDir()); err != nil {
			t.Fatalf("Package: %v", err)
		}

		data, err := os.ReadFile(filepath.Join(staged, "MyPlugin"+uplugin.Extension))
		if err != nil {
			t.Fatal(err)
		}
		var d map[string]any
		if err := json.Unmarshal(data, &d); err != nil {
			t.Fatal(err)
		}
		if got := d["EngineVersion"]; got != "5.0.0" {
			t.Errorf("staged descriptor EngineVersion = %v, want untouched 5.0.0", got)
		}
	})

	t.Run("existing archive overwritten", func(t *testing.T) {
		staged := newStagedBundle(t, "MyPlugin")
		outputDir := t.TempDir()

		stale := filepath.Join(outputDir, "MyPlugin_UE5.3.zip")
		if err := os.WriteFile(stale, []byte("not a zip"), 0o644); err != nil {
			t.Fatal(err)
		}

		archivePath, err := Package(staged, "5.3", outputDir)
		if err != nil {
			t.Fatalf("Package: %v", err)
		}
		if archivePath != stale {
			t.Fatalf("archive path = %s, want %s", archivePath, stale)
		}
		if _, err := zip.OpenReader(archivePath); err != nil {
			t.Errorf("overwritten archive unreadable: %v", err)
		}
	})

	t.Run("rejects invalid version", func(t *testing.T) {
		staged := newStagedBundle(t, "MyPlugin")

		if _, err := Package(staged, "release", t.TempDir()); err == nil {
			t.Fatal("Package succeeded with non-numeric version")
		}
	})

	t.Run("creates missing output directory", func(t *testing.T) {
		staged := newStagedBundle(t, "MyPlugin")
		outputDir := filepath.Join(t.TempDir(), "dist", "archives")

		archivePath, err := Package(staged, "5.3", outputDir)
		if err != nil {
			t.Fatalf("Package: %v", err)
		}
		if _, err := os.Stat(archivePath); err != nil {
			t.Errorf("archive missing: %v", err)
		}
	})
}

func TestArchiveName(t *testing.T) {
	tests := []struct {
		bundle  string
		version types.EngineVersion
		want    string
	}{
		{"MyPlugin", "5.3", "MyPlugin_UE5.3.zip"},
		{"MyPlugin", "5.4.1", "MyPlugin_UE5.4.1.zip"},
		{"Tools", "4.27", "Tools_UE4.27.zip"},
	}
	for _, tt := range tests {
		if got := ArchiveName(tt.bundle, tt.version); got != tt.want {
			t.Errorf("ArchiveName(%s, %s) = %s, want %s", tt.bundle, tt.version, got, tt.want)
		}
	}
}
