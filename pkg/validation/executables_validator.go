// SPDX-License-Identifier: MPL-2.0

package validation

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"upack-cli/pkg/uplugin"
)

// executablePatterns are the file-name globs the marketplace rejects.
var executablePatterns = []string{"*.sh", "*.cmd", "*.bat", "*.exe"}

// NoExecutablesValidator flags shell scripts, batch files, and executables
// anywhere in the bundle.
type NoExecutablesValidator struct {
	bundle uplugin.Bundle
}

// NewNoExecutablesValidator creates a NoExecutablesValidator for bundle.
func NewNoExecutablesValidator(bundle uplugin.Bundle) *NoExecutablesValidator {
	return &NoExecutablesValidator{bundle: bundle}
}

// Validate implements the Validator interface.
func (v *NoExecutablesValidator) Validate() Result {
	const name = "Executable Files Validation"
	var errs []string

	walkErr := filepath.WalkDir(v.bundle.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, fmt.Sprintf("Failed to scan %s: %v", p, err))
			return fs.SkipDir
		}
		if d.IsDir() {
			return nil
		}

		if isExecutableName(d.Name()) {
			rel, relErr := filepath.Rel(v.bundle.Root, p)
			if relErr != nil {
				rel = p
			}
			errs = append(errs, fmt.Sprintf("Executable file found: %s", filepath.ToSlash(rel)))
		}
		return nil
	})
	if walkErr != nil {
		errs = append(errs, fmt.Sprintf("Failed to walk bundle: %v", walkErr))
	}

	return result(name, errs)
}

// isExecutableName matches the file name against the executable globs,
// case-insensitively.
func isExecutableName(fileName string) bool {
	lower := strings.ToLower(fileName)
	for _, pattern := range executablePatterns {
		// Patterns are static and well-formed; Match cannot fail on them.
		if ok, _ := path.Match(pattern, lower); ok {
			return true
		}
	}
	return false
}
