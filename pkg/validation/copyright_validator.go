// SPDX-License-Identifier: MPL-2.0

package validation

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"upack-cli/pkg/uplugin"
)

// ThirdPartyMarker exempts vendored code from the copyright-header rule.
// Any file whose relative path contains this segment is skipped.
const ThirdPartyMarker = "ThirdParty"

// sourceFileExtensions are the extensions the copyright rule applies to:
// C/C++ headers and implementations, C# build scripts, and Python tooling.
var sourceFileExtensions = []string{".h", ".hh", ".cpp", ".cc", ".cs", ".py"}

// commentPrefixes are the comment openers stripped from the first line
// before looking for the word "copyright".
var commentPrefixes = []string{"//", "/*", `"""`, "'''", "#"}

// CopyrightValidator checks that every first-party source file opens with a
// copyright notice on its first line.
type CopyrightValidator struct {
	bundle uplugin.Bundle
}

// NewCopyrightValidator creates a CopyrightValidator for bundle.
func NewCopyrightValidator(bundle uplugin.Bundle) *CopyrightValidator {
	return &CopyrightValidator{bundle: bundle}
}

// Validate implements the Validator interface. Files that cannot be read or
// decoded are reported as findings for that file, never as a crash of the
// whole pass.
func (v *CopyrightValidator) Validate() Result {
	const name = "Copyright Notice Validation"
	var errs []string

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
		relSlash := filepath.ToSlash(rel)

		if !isSourceFile(d.Name()) || strings.Contains(relSlash, ThirdPartyMarker) {
			return nil
		}

		ok, checkErr := hasCopyrightHeader(path)
		switch {
		case checkErr != nil:
			errs = append(errs, fmt.Sprintf("Failed to check copyright in %s: %v", relSlash, checkErr))
		case !ok:
			errs = append(errs, fmt.Sprintf("Missing copyright notice on first line in: %s", relSlash))
		}
		return nil
	})
	if walkErr != nil {
		errs = append(errs, fmt.Sprintf("Failed to walk bundle: %v", walkErr))
	}

	return result(name, errs)
}

// isSourceFile reports whether the file name carries a recognized
// source-code extension.
func isSourceFile(fileName string) bool {
	for _, ext := range sourceFileExtensions {
		if strings.HasSuffix(fileName, ext) {
			return true
		}
	}
	return false
}

// hasCopyrightHeader reads the first line of the file and reports whether,
// after stripping a comment opener, it starts with the word "copyright"
// (case-insensitive).
func hasCopyrightHeader(path string) (ok bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	reader := bufio.NewReader(f)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}
	if !utf8.ValidString(line) {
		return false, fmt.Errorf("first line is not valid UTF-8")
	}

	return strings.HasPrefix(strings.ToLower(stripCommentMarkers(line)), "copyright"), nil
}

// stripCommentMarkers removes surrounding whitespace and any leading comment
// openers from a line.
func stripCommentMarkers(line string) string {
	line = strings.TrimSpace(line)
	for _, prefix := range commentPrefixes {
		if rest, found := strings.CutPrefix(line, prefix); found {
			line = strings.TrimSpace(rest)
		}
	}
	return line
}
