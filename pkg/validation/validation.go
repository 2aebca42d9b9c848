// SPDX-License-Identifier: MPL-2.0

// Package validation checks a staged plugin bundle against Fab marketplace
// rules.
//
// Four independent validators share one contract: Validate() inspects the
// bundle read-only and returns a Result. Per-file problems become entries in
// Result.Errors rather than returned errors, so a single unreadable file
// never aborts a whole validation pass. Warnings never fail a run.
package validation

import "upack-cli/pkg/uplugin"

type (
	// Result is the outcome of one validator.
	Result struct {
		// Name identifies the validator in reports.
		Name string
		// Success is true when the validator found no errors.
		Success bool
		// Errors are the rule violations found, one entry per finding.
		Errors []string
		// Warnings are advisory findings that do not fail the run.
		Warnings []string
	}

	// Validator is the shared contract of all bundle checks.
	Validator interface {
		// Validate inspects the bundle and reports findings. It never
		// mutates the bundle and never returns an error for per-file
		// problems.
		Validate() Result
	}
)

// result builds a Result whose Success flag follows from its errors.
func result(name string, errs []string) Result {
	return Result{
		Name:    name,
		Success: len(errs) == 0,
		Errors:  errs,
	}
}

// All returns the full validator suite for a bundle, in reporting order.
// The aggregate outcome is order-independent: each validator only reads the
// bundle.
func All(bundle uplugin.Bundle) []Validator {
	return []Validator{
		NewDescriptorValidator(bundle),
		NewPathLengthValidator(bundle),
		NewCopyrightValidator(bundle),
		NewNoExecutablesValidator(bundle),
	}
}

// RunAll runs every validator in the suite and reports the aggregate
// success flag: true only when every validator succeeded.
func RunAll(bundle uplugin.Bundle) ([]Result, bool) {
	validators := All(bundle)
	results := make([]Result, 0, len(validators))
	success := true
	for _, v := range validators {
		r := v.Validate()
		if !r.Success {
			success = false
		}
		results = append(results, r)
	}
	return results, success
}
