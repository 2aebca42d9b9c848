// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidEngineVersion is the sentinel error wrapped by InvalidEngineVersionError.
var ErrInvalidEngineVersion = errors.New("invalid engine version")

type (
	// EngineVersion identifies an Unreal Engine release, e.g. "5.3" or "5.3.0".
	// A valid version has two or three dot-separated numeric components.
	// The zero value ("") is invalid.
	EngineVersion string

	// InvalidEngineVersionError is returned when an EngineVersion is not a
	// two- or three-component dotted numeric string.
	InvalidEngineVersionError struct {
		Value EngineVersion
	}
)

// String returns the string representation of the EngineVersion.
func (v EngineVersion) String() string { return string(v) }

// IsValid returns whether the EngineVersion has two or three dot-separated
// numeric components.
func (v EngineVersion) IsValid() (bool, []error) {
	parts := strings.Split(string(v), ".")
	if len(parts) < 2 || len(parts) > 3 {
		return false, []error{&InvalidEngineVersionError{Value: v}}
	}
	for _, part := range parts {
		if part == "" {
			return false, []error{&InvalidEngineVersionError{Value: v}}
		}
		if _, err := strconv.Atoi(part); err != nil {
			return false, []error{&InvalidEngineVersionError{Value: v}}
		}
	}
	return true, nil
}

// Normalized returns the version in three-component dotted form: a
// two-component version gains a trailing ".0" ("5.3" becomes "5.3.0"),
// a three-component version is returned unchanged.
func (v EngineVersion) Normalized() EngineVersion {
	if strings.Count(string(v), ".") == 1 {
		return v + ".0"
	}
	return v
}

// Compare orders engine versions numerically per component.
// It returns a negative value when v < other, zero when equal, and a
// positive value when v > other. Missing components compare as zero,
// so "5.3" and "5.3.0" are equal.
func (v EngineVersion) Compare(other EngineVersion) int {
	a := strings.Split(string(v), ".")
	b := strings.Split(string(other), ".")
	for i := 0; i < len(a) || i < len(b); i++ {
		av, bv := 0, 0
		if i < len(a) {
			av, _ = strconv.Atoi(a[i])
		}
		if i < len(b) {
			bv, _ = strconv.Atoi(b[i])
		}
		if av != bv {
			return av - bv
		}
	}
	return 0
}

// HighestEngineVersion returns the numerically highest version in versions.
// It returns the zero value when versions is empty.
func HighestEngineVersion(versions []EngineVersion) EngineVersion {
	var highest EngineVersion
	for _, v := range versions {
		if highest == "" || v.Compare(highest) > 0 {
			highest = v
		}
	}
	return highest
}

// Error implements the error interface for InvalidEngineVersionError.
func (e *InvalidEngineVersionError) Error() string {
	return fmt.Sprintf("invalid engine version %q: must be two or three dot-separated numeric components (e.g. \"5.3\" or \"5.3.0\")", e.Value)
}

// Unwrap returns ErrInvalidEngineVersion for errors.Is() compatibility.
func (e *InvalidEngineVersionError) Unwrap() error { return ErrInvalidEngineVersion }
