// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"upack-cli/internal/compiler"
	"upack-cli/internal/engine"
	"upack-cli/internal/issue"
	"upack-cli/pkg/types"
	"upack-cli/pkg/uplugin"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	compileVersion   string
	compileOutput    string
	compileBuildArgs map[string]string

	compileCmd = &cobra.Command{
		Use:   "compile [plugin-path]",
		Short: "Compile a plugin against one installed engine version",
		Long: `Compile a plugin against one installed engine version.

This runs the engine's BuildPlugin automation command on the plugin source
as-is, without staging or filtering. Use it to iterate on build errors
before running the full packaging pipeline.

Without --engine-version, the highest configured default version is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompile,
	}
)

func init() {
	compileCmd.Flags().StringVarP(&compileVersion, "engine-version", "e", "",
		"engine version to compile against (defaults to the highest configured version)")
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "Build",
		"directory to write the compiled plugin to")
	compileCmd.Flags().StringToStringVar(&compileBuildArgs, "build-arg", nil,
		"extra BuildPlugin argument as key=value (repeatable)")
}

func runCompile(cmd *cobra.Command, args []string) error {
	bundlePath := ""
	if len(args) == 1 {
		bundlePath = args[0]
	}

	bundle, err := uplugin.NewBundle(bundlePath)
	if err != nil {
		renderGuidance(err)
		return &ExitError{Code: types.ExitCode(1), Err: err}
	}

	version := types.EngineVersion(compileVersion)
	if version == "" {
		version = types.HighestEngineVersion(resolveVersions(nil))
	}
	if ok, errs := version.IsValid(); !ok {
		return errs[0]
	}

	enginePath, err := engine.Path(version)
	if err != nil {
		renderGuidance(err)
		return &ExitError{Code: types.ExitCode(1), Err: err}
	}

	err = compiler.Run(cmd.Context(), compiler.Config{
		EnginePath: types.FilesystemPath(enginePath),
		PluginFile: types.FilesystemPath(bundle.DescriptorPath),
		OutputDir:  types.FilesystemPath(compileOutput),
		ExtraArgs:  compileBuildArgs,
		Logger:     log.Default(),
	})
	if err != nil {
		var bErr *compiler.BuildError
		if errors.As(err, &bErr) {
			renderIssue(issue.BuildFailedId)
		} else {
			renderGuidance(err)
		}
		return &ExitError{Code: types.ExitCode(1), Err: err}
	}

	fmt.Printf("%s %s compiled against UE %s\n", SuccessStyle.Render("✓"), bundle.Name(), version)
	fmt.Printf("  %s\n", PathStyle.Render(compileOutput))
	return nil
}
