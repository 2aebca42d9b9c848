// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"upack-cli/internal/app/pipeline"
	"upack-cli/internal/compiler"
	"upack-cli/internal/issue"
	"upack-cli/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	packageVersions   []string
	packageOutput     string
	packageNoValidate bool
	packageNoCompile  bool
	packageBuildArgs  map[string]string

	packageCmd = &cobra.Command{
		Use:   "package [plugin-path]",
		Short: "Validate, compile, and package a plugin for each engine version",
		Long: `Validate, compile, and package a plugin for each engine version.

The plugin's filter manifest (Config/FilterPlugin.ini) decides which files
are staged. The staged copy is validated against the marketplace rules,
compiled once against the highest requested engine version, and then zipped
once per version with the descriptor's EngineVersion rewritten to match.

Archives are named <PluginName>_UE<version>.zip and land in the output
directory, replacing any previous archive of the same name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPackage,
	}
)

func init() {
	packageCmd.Flags().StringArrayVarP(&packageVersions, "engine-version", "e", nil,
		"engine version to package for (repeatable; defaults to the configured versions)")
	packageCmd.Flags().StringVarP(&packageOutput, "output", "o", "",
		"directory to write archives to (defaults to the configured output_dir)")
	packageCmd.Flags().BoolVar(&packageNoValidate, "skip-validation", false,
		"skip the marketplace validation rules")
	packageCmd.Flags().BoolVar(&packageNoCompile, "skip-compile", false,
		"skip the compile smoke test")
	packageCmd.Flags().StringToStringVar(&packageBuildArgs, "build-arg", nil,
		"extra BuildPlugin argument as key=value (repeatable)")
}

func runPackage(cmd *cobra.Command, args []string) error {
	bundlePath := ""
	if len(args) == 1 {
		bundlePath = args[0]
	}

	report, err := pipeline.Run(cmd.Context(), pipeline.Options{
		BundlePath:     bundlePath,
		Versions:       resolveVersions(packageVersions),
		OutputDir:      resolveOutputDir(packageOutput),
		SkipValidation: packageNoValidate,
		SkipCompile:    packageNoCompile,
		ExtraBuildArgs: packageBuildArgs,
		Logger:         log.Default(),
	})
	if err != nil {
		return packageFailure(err)
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("Packaging complete"))
	printValidationResults(report.ValidationResults)
	if report.CompiledVersion != "" {
		fmt.Printf("%s compile check passed against UE %s\n", SuccessStyle.Render("✓"), report.CompiledVersion)
	}
	fmt.Println()
	for _, archive := range report.Archives {
		fmt.Printf("  %s\n", PathStyle.Render(archive))
	}
	return nil
}

// packageFailure prints the failure details and remediation card, then wraps
// the error so the process exits non-zero.
func packageFailure(err error) error {
	var vErr *pipeline.ValidationFailedError
	var bErr *compiler.BuildError

	switch {
	case errors.As(err, &vErr):
		printValidationResults(vErr.Results)
		renderIssue(issue.ValidationFailedId)
	case errors.As(err, &bErr):
		renderIssue(issue.BuildFailedId)
	default:
		renderGuidance(err)
	}
	return &ExitError{Code: types.ExitCode(1), Err: err}
}

// resolveVersions applies the configured default versions when none were
// given on the command line.
func resolveVersions(flagVersions []string) []types.EngineVersion {
	if len(flagVersions) > 0 {
		versions := make([]types.EngineVersion, len(flagVersions))
		for i, v := range flagVersions {
			versions[i] = types.EngineVersion(v)
		}
		return versions
	}
	if appConfig != nil {
		return appConfig.DefaultVersions
	}
	return nil
}

// resolveOutputDir applies the configured output directory when the flag is
// unset.
func resolveOutputDir(flagOutput string) string {
	if flagOutput != "" {
		return flagOutput
	}
	if appConfig != nil && appConfig.OutputDir != "" {
		return appConfig.OutputDir
	}
	return "."
}
