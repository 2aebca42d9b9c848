// SPDX-License-Identifier: MPL-2.0

package filter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

const (
	// ManifestRelPath is the manifest location inside a plugin bundle.
	ManifestRelPath = "Config/FilterPlugin.ini"

	// manifestSection is the one required section of the manifest.
	manifestSection = "FilterPlugin"

	// commentMarker prefixes manifest entries that must be discarded.
	commentMarker = ";"
)

// Sentinel errors for manifest failures, wrapped by ManifestError.
var (
	ErrManifestNotFound   = errors.New("filter manifest not found")
	ErrManifestUnparsable = errors.New("filter manifest unparsable")
	ErrManifestNoSection  = errors.New("filter manifest missing required section")
)

// ManifestError is returned when the filter manifest is missing, unparsable,
// or lacks the required [FilterPlugin] section.
type ManifestError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *ManifestError) Error() string {
	return fmt.Sprintf("%v: %s", e.Cause, e.Path)
}

// Unwrap returns the underlying sentinel for errors.Is() compatibility.
func (e *ManifestError) Unwrap() error { return e.Cause }

// ManifestPath returns the manifest location for a bundle root.
func ManifestPath(bundleRoot string) string {
	return filepath.Join(bundleRoot, filepath.FromSlash(ManifestRelPath))
}

// ParseManifest reads the filter manifest of the bundle rooted at bundleRoot
// and returns its normalized include patterns in file order.
//
// The manifest is a keys-only INI file: every key of the [FilterPlugin]
// section is a pattern and values carry no meaning. Entries are normalized
// (backslashes to slashes, one leading slash stripped); empty entries and
// entries starting with ";" are discarded. A pattern listed more than once
// comes back once: the INI layer keeps one key per name, and since matching
// is a union over the set, the repeat would change nothing anyway.
func ParseManifest(bundleRoot string) ([]string, error) {
	path := ManifestPath(bundleRoot)
	if _, err := os.Stat(path); err != nil {
		return nil, &ManifestError{Path: path, Cause: ErrManifestNotFound}
	}

	// AllowBooleanKeys accepts the bare "Source/..." lines the manifest
	// format uses instead of key=value pairs.
	cfg, err := ini.LoadSources(ini.LoadOptions{AllowBooleanKeys: true}, path)
	if err != nil {
		return nil, &ManifestError{Path: path, Cause: fmt.Errorf("%w: %v", ErrManifestUnparsable, err)}
	}

	section, err := cfg.GetSection(manifestSection)
	if err != nil {
		return nil, &ManifestError{Path: path, Cause: fmt.Errorf("%w: [%s]", ErrManifestNoSection, manifestSection)}
	}

	var patterns []string
	for _, key := range section.KeyStrings() {
		pattern := NormalizePath(strings.TrimSpace(key))
		if pattern == "" || strings.HasPrefix(pattern, commentMarker) {
			continue
		}
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}

// LoadSet parses the bundle's filter manifest and compiles it into a Set.
func LoadSet(bundleRoot string) (*Set, error) {
	patterns, err := ParseManifest(bundleRoot)
	if err != nil {
		return nil, err
	}
	return NewSet(patterns)
}
