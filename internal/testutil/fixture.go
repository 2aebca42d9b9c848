// SPDX-License-Identifier: MPL-2.0

// Package testutil builds plugin bundle fixtures for tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ProductUUID is a well-formed marketplace product identifier for fixtures.
const ProductUUID = "3f1b2a4c-9d8e-4f10-b2c3-0a1b2c3d4e5f"

// DefaultDescriptor is a descriptor body that passes every validator.
const DefaultDescriptor = `{
  "FriendlyName": "Fixture Plugin",
  "EngineVersion": "5.0.0",
  "FabURL": "com.epicgames.launcher://ue/Fab/product/` + ProductUUID + `"
}`

// PluginFixture describes a plugin bundle to lay out on disk.
type PluginFixture struct {
	// Name is the bundle directory and descriptor base name.
	Name string
	// Descriptor is the .uplugin body. Empty means DefaultDescriptor.
	Descriptor string
	// Patterns are the filter manifest entries. A nil slice means no
	// manifest file at all.
	Patterns []string
	// Files maps bundle-relative paths to contents.
	Files map[string]string
}

// Write lays the fixture out under a temp directory and returns the bundle
// root.
func (f PluginFixture) Write(t *testing.T) string {
	t.Helper()

	name := f.Name
	if name == "" {
		name = "FixturePlugin"
	}
	root := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}

	descriptor := f.Descriptor
	if descriptor == "" {
		descriptor = DefaultDescriptor
	}
	writeFile(t, filepath.Join(root, name+".uplugin"), descriptor)

	if f.Patterns != nil {
		manifest := "[FilterPlugin]\n" + strings.Join(f.Patterns, "\n") + "\n"
		writeFile(t, filepath.Join(root, "Config", "FilterPlugin.ini"), manifest)
	}

	for rel, content := range f.Files {
		writeFile(t, filepath.Join(root, filepath.FromSlash(rel)), content)
	}
	return root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
