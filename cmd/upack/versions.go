// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"upack-cli/internal/engine"
	"upack-cli/pkg/types"

	"github.com/spf13/cobra"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List installed engine versions",
	Long: `List installed engine versions.

Installations are discovered as UE_<version> directories under the engine
base directory. Versions in the configured default set are marked; those
are the versions 'upack package' targets when -e is not given.`,
	RunE: runVersions,
}

func runVersions(cmd *cobra.Command, args []string) error {
	installed, err := engine.InstalledVersions()
	if err != nil {
		renderGuidance(err)
		return &ExitError{Code: types.ExitCode(1), Err: err}
	}

	base, _ := engine.BasePath()
	fmt.Println(TitleStyle.Render("Installed engine versions"))
	fmt.Printf("%s %s\n\n", SubtitleStyle.Render("base directory:"), PathStyle.Render(base))

	if len(installed) == 0 {
		fmt.Println(SubtitleStyle.Render("  (none found)"))
		return nil
	}

	defaults := make(map[types.EngineVersion]bool)
	for _, v := range resolveVersions(nil) {
		defaults[v] = true
	}

	for _, v := range installed {
		marker := " "
		if defaults[v] {
			marker = SuccessStyle.Render("*")
		}
		fmt.Printf("  %s UE %s\n", marker, v)
	}
	fmt.Println()
	fmt.Println(SubtitleStyle.Render("  * packaged by default"))
	return nil
}
