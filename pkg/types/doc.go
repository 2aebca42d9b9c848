// SPDX-License-Identifier: MPL-2.0

// Package types defines small validated value types shared across upack.
//
// Each type follows the same pattern: a typed primitive with an IsValid or
// Validate method, a sentinel error for errors.Is checks, and a dedicated
// error struct carrying the offending value.
package types
