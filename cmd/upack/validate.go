// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"upack-cli/internal/app/pipeline"
	"upack-cli/internal/issue"
	"upack-cli/pkg/types"
	"upack-cli/pkg/validation"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [plugin-path]",
	Short: "Run the marketplace validation rules without packaging",
	Long: `Run the marketplace validation rules without packaging.

The plugin is staged exactly as 'upack package' would stage it, and every
rule runs against that staged copy: descriptor FabURL, path lengths,
copyright notices, and executable files. All findings are reported in one
pass, so one run shows everything to fix.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	bundlePath := ""
	if len(args) == 1 {
		bundlePath = args[0]
	}

	results, err := pipeline.Validate(pipeline.Options{
		BundlePath: bundlePath,
		Logger:     log.Default(),
	})

	var vErr *pipeline.ValidationFailedError
	switch {
	case errors.As(err, &vErr):
		printValidationResults(vErr.Results)
		renderIssue(issue.ValidationFailedId)
		return &ExitError{Code: types.ExitCode(1), Err: err}
	case err != nil:
		renderGuidance(err)
		return &ExitError{Code: types.ExitCode(1), Err: err}
	}

	printValidationResults(results)
	fmt.Println(SuccessStyle.Render("All validation checks passed"))
	return nil
}

// printValidationResults renders one line per validator plus its findings.
func printValidationResults(results []validation.Result) {
	for _, r := range results {
		if r.Success {
			fmt.Printf("%s %s\n", SuccessStyle.Render("✓"), r.Name)
		} else {
			fmt.Printf("%s %s\n", ErrorStyle.Render("✗"), r.Name)
		}
		for _, finding := range r.Errors {
			fmt.Printf("    %s\n", ErrorStyle.Render(finding))
		}
		for _, warning := range r.Warnings {
			fmt.Printf("    %s\n", WarningStyle.Render(warning))
		}
	}
}
