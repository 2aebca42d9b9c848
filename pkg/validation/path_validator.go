// SPDX-License-Identifier: MPL-2.0

package validation

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"upack-cli/pkg/uplugin"
)

// MaxPathLength is the marketplace limit on "<bundle-name>/<relative-path>".
const MaxPathLength = 170

// PathLengthValidator flags files whose bundle-qualified path exceeds
// MaxPathLength characters.
type PathLengthValidator struct {
	bundle uplugin.Bundle
}

// NewPathLengthValidator creates a PathLengthValidator for bundle.
func NewPathLengthValidator(bundle uplugin.Bundle) *PathLengthValidator {
	return &PathLengthValidator{bundle: bundle}
}

// Validate implements the Validator interface.
func (v *PathLengthValidator) Validate() Result {
	const name = "Path Length Validation"
	var errs []string

	bundleName := v.bundle.Name()
	walkErr := filepath.WalkDir(v.bundle.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, fmt.Sprintf("Failed to scan %s: %v", path, err))
			return fs.SkipDir
		}
		if d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(v.bundle.Root, path)
		if relErr != nil {
			errs = append(errs, fmt.Sprintf("Failed to relativize %s: %v", path, relErr))
			return nil
		}
		full := bundleName + "/" + filepath.ToSlash(rel)
		if len(full) > MaxPathLength {
			errs = append(errs, fmt.Sprintf("Path exceeds %d characters: %s", MaxPathLength, filepath.ToSlash(rel)))
		}
		return nil
	})
	if walkErr != nil {
		errs = append(errs, fmt.Sprintf("Failed to walk bundle: %v", walkErr))
	}

	return result(name, errs)
}
