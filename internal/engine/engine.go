// SPDX-License-Identifier: MPL-2.0

// Package engine locates installed Unreal Engine releases and the build
// scripts they ship.
//
// Installations are discovered under a per-platform base directory using the
// launcher's "UE_<version>" naming convention. The base directory can be
// overridden with the UPACK_ENGINE_BASE_DIR environment variable, which is
// how CI machines and custom install locations are supported.
package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"upack-cli/pkg/platform"
	"upack-cli/pkg/types"
)

// EnvBaseDir overrides the platform default engine base directory.
const EnvBaseDir = "UPACK_ENGINE_BASE_DIR"

// enginePrefix is the launcher's per-version directory naming convention.
const enginePrefix = "UE_"

var (
	// ErrBaseDirNotFound is returned when no engine base directory exists.
	ErrBaseDirNotFound = errors.New("engine base directory not found")
	// ErrEngineNotFound is returned when a requested engine version is not
	// installed under the base directory.
	ErrEngineNotFound = errors.New("engine version not installed")
	// ErrUATNotFound is returned when an installation lacks the RunUAT
	// build script.
	ErrUATNotFound = errors.New("RunUAT script not found")
)

// BasePath returns the directory engine installations live under. The
// UPACK_ENGINE_BASE_DIR environment variable wins over the platform default.
func BasePath() (string, error) {
	if override := os.Getenv(EnvBaseDir); override != "" {
		return override, nil
	}

	switch runtime.GOOS {
	case platform.Windows:
		return `C:\Program Files\Epic Games`, nil
	case platform.Darwin:
		return "/Users/Shared/Epic Games", nil
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrBaseDirNotFound, err)
		}
		return filepath.Join(home, ".local", "share", "Epic Games"), nil
	}
}

// Path returns the installation directory of the given engine version,
// verifying that it exists on disk.
func Path(version types.EngineVersion) (string, error) {
	base, err := BasePath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(base); err != nil {
		return "", fmt.Errorf("%w: %s", ErrBaseDirNotFound, base)
	}

	path := filepath.Join(base, enginePrefix+string(version))
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s (looked in %s)", ErrEngineNotFound, version, base)
	}
	return path, nil
}

// UATScript returns the path of the RunUAT build script inside an engine
// installation, verifying that it exists.
func UATScript(enginePath string) (string, error) {
	script := filepath.Join(enginePath, "Engine", "Build", "BatchFiles", uatScriptName())
	if _, err := os.Stat(script); err != nil {
		return "", fmt.Errorf("%w: %s", ErrUATNotFound, script)
	}
	return script, nil
}

// uatScriptName returns the platform flavor of the RunUAT script.
func uatScriptName() string {
	if runtime.GOOS == platform.Windows {
		return "RunUAT.bat"
	}
	return "RunUAT.sh"
}

// InstalledVersions lists the engine versions installed under the base
// directory, sorted ascending. A missing base directory yields
// ErrBaseDirNotFound; a base directory with no engines yields an empty list.
func InstalledVersions() ([]types.EngineVersion, error) {
	base, err := BasePath()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBaseDirNotFound, base)
	}

	var versions []types.EngineVersion
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name, found := strings.CutPrefix(entry.Name(), enginePrefix)
		if !found {
			continue
		}
		v := types.EngineVersion(name)
		if ok, _ := v.IsValid(); ok {
			versions = append(versions, v)
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Compare(versions[j]) < 0
	})
	return versions, nil
}
