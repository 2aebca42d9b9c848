// SPDX-License-Identifier: MPL-2.0

package validation

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"upack-cli/pkg/uplugin"
)

// fabURLTokenPattern finds a UUID-shaped token (8-4-4-4-12 hex digits)
// anywhere in the FabURL value. The token is then confirmed with uuid.Parse
// so near-misses like out-of-range digits do not slip through.
var fabURLTokenPattern = regexp.MustCompile(`(?i)[0-9a-f]{8}(?:-[0-9a-f]{4}){3}-[0-9a-f]{12}`)

// DescriptorValidator checks that the .uplugin descriptor parses and carries
// a FabURL containing the marketplace product UUID.
type DescriptorValidator struct {
	bundle uplugin.Bundle
}

// NewDescriptorValidator creates a DescriptorValidator for bundle.
func NewDescriptorValidator(bundle uplugin.Bundle) *DescriptorValidator {
	return &DescriptorValidator{bundle: bundle}
}

// Validate implements the Validator interface.
func (v *DescriptorValidator) Validate() Result {
	const name = "Descriptor Validation"
	var errs []string

	d, err := uplugin.LoadDescriptor(v.bundle.DescriptorPath)
	if err != nil {
		return result(name, []string{fmt.Sprintf("Failed to parse %s: %v", v.bundle.DescriptorName(), err)})
	}

	fabURL, ok := d.FabURL()
	switch {
	case !ok:
		errs = append(errs, fmt.Sprintf("Missing %q field in %s", uplugin.FieldFabURL, v.bundle.DescriptorName()))
	case fabURL == "" || !containsProductUUID(fabURL):
		errs = append(errs, fmt.Sprintf("Invalid %q value: %q", uplugin.FieldFabURL, fabURL))
	}

	return result(name, errs)
}

// containsProductUUID reports whether s contains a valid UUID token.
func containsProductUUID(s string) bool {
	token := fabURLTokenPattern.FindString(s)
	if token == "" {
		return false
	}
	_, err := uuid.Parse(token)
	return err == nil
}
