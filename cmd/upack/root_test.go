// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"testing"

	"upack-cli/internal/config"
	"upack-cli/pkg/types"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version takes priority", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2026-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("fallback to dev when no build info", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q", got)
		}
	})
}

func TestResolveVersions(t *testing.T) {
	origConfig := appConfig
	t.Cleanup(func() { appConfig = origConfig })
	appConfig = &config.Config{DefaultVersions: []types.EngineVersion{"5.3", "5.4"}}

	t.Run("flags win over config", func(t *testing.T) {
		got := resolveVersions([]string{"4.27"})
		if len(got) != 1 || got[0] != "4.27" {
			t.Errorf("resolveVersions = %v", got)
		}
	})

	t.Run("config defaults otherwise", func(t *testing.T) {
		got := resolveVersions(nil)
		if len(got) != 2 || got[0] != "5.3" {
			t.Errorf("resolveVersions = %v", got)
		}
	})
}

func TestResolveOutputDir(t *testing.T) {
	origConfig := appConfig
	t.Cleanup(func() { appConfig = origConfig })
	appConfig = &config.Config{OutputDir: "dist"}

	if got := resolveOutputDir("explicit"); got != "explicit" {
		t.Errorf("resolveOutputDir(explicit) = %q", got)
	}
	if got := resolveOutputDir(""); got != "dist" {
		t.Errorf("resolveOutputDir(\"\") = %q", got)
	}

	appConfig = &config.Config{}
	if got := resolveOutputDir(""); got != "." {
		t.Errorf("resolveOutputDir with empty config = %q", got)
	}
}
