// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"upack-cli/internal/config"
	"upack-cli/internal/issue"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage upack configuration",
	Long: `Manage upack configuration.

Configuration is stored in:
  - Linux: ~/.config/upack/config.toml
  - macOS: ~/Library/Application Support/upack/config.toml
  - Windows: %APPDATA%\upack\config.toml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfigFile()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ConfigFilePath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	})
}

func showConfig() error {
	cfg, resolvedPath, err := config.Load(config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		renderIssue(issue.ConfigLoadFailedId)
		return err
	}

	keyStyle := PathStyle
	valueStyle := SuccessStyle

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	if resolvedPath != "" {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), resolvedPath)
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	engineBaseDir := cfg.EngineBaseDir
	if engineBaseDir == "" {
		engineBaseDir = "(platform default)"
	}
	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	versions := make([]string, len(cfg.DefaultVersions))
	for i, v := range cfg.DefaultVersions {
		versions[i] = string(v)
	}

	fmt.Printf("%s: %s\n", keyStyle.Render("engine_base_dir"), valueStyle.Render(engineBaseDir))
	fmt.Printf("%s: %s\n", keyStyle.Render("output_dir"), valueStyle.Render(outputDir))
	fmt.Printf("%s: %s\n", keyStyle.Render("default_versions"), valueStyle.Render(strings.Join(versions, ", ")))
	fmt.Printf("%s: %s\n", keyStyle.Render("ui.verbose"), valueStyle.Render(fmt.Sprintf("%t", cfg.UI.Verbose)))
	return nil
}

func initConfigFile() error {
	path, err := config.ConfigFilePath()
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		fmt.Printf("%s config file already exists: %s\n", WarningStyle.Render("!"), path)
		return nil
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	fmt.Printf("%s created %s\n", SuccessStyle.Render("✓"), PathStyle.Render(path))
	return nil
}
