// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for upack.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"upack-cli/internal/config"
	"upack-cli/internal/engine"
	"upack-cli/internal/issue"
	"upack-cli/pkg/filter"
	"upack-cli/pkg/staging"
	"upack-cli/pkg/uplugin"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// Verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// appConfig is the loaded configuration, populated by initRootConfig.
	appConfig *config.Config

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "upack",
		Short: "Package Unreal Engine plugins for marketplace distribution",
		Long: TitleStyle.Render("upack") + SubtitleStyle.Render(" - Package Unreal Engine plugins for marketplace distribution") + `

upack stages the files your filter manifest selects, runs the
marketplace validation rules, smoke-tests a compile against an
installed engine, and produces one submission-ready zip archive
per engine version.

The plugin root needs two files: the .uplugin descriptor and a
Config/FilterPlugin.ini manifest listing what ships.

` + SubtitleStyle.Render("Examples:") + `
  upack package                      Package for the default engine versions
  upack package -e 5.3 -e 5.4        Package for specific versions
  upack validate                     Run the marketplace checks only
  upack compile -e 5.3               Compile against one engine version
  upack versions                     List installed engine versions
  upack config show                  Show current configuration`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/upack/config.toml)")

	// Add subcommands
	rootCmd.AddCommand(packageCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	cfg, _, err := config.Load(config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		cfg = config.DefaultConfig()
	}
	appConfig = cfg

	// Apply verbose from config if not set via flag
	if !verbose {
		verbose = cfg.UI.Verbose
	}
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	// A configured engine location feeds the same override the environment
	// uses; an explicit environment variable still wins.
	if cfg.EngineBaseDir != "" && os.Getenv(engine.EnvBaseDir) == "" {
		os.Setenv(engine.EnvBaseDir, cfg.EngineBaseDir)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderGuidance prints the Markdown remediation card matching err, when one
// exists.
func renderGuidance(err error) {
	if id, ok := issueIdFor(err); ok {
		renderIssue(id)
	}
}

// renderIssue prints one remediation card to stderr.
func renderIssue(id issue.Id) {
	rendered, err := issue.Get(id).Render("dark")
	if err != nil {
		return
	}
	fmt.Fprint(os.Stderr, rendered)
}

// issueIdFor maps pipeline errors to their remediation card.
func issueIdFor(err error) (issue.Id, bool) {
	switch {
	case errors.Is(err, filter.ErrManifestNotFound):
		return issue.ManifestNotFoundId, true
	case errors.Is(err, filter.ErrManifestUnparsable), errors.Is(err, filter.ErrManifestNoSection):
		return issue.ManifestParseErrorId, true
	case errors.Is(err, uplugin.ErrNoDescriptor), errors.Is(err, uplugin.ErrMultipleDescriptors):
		return issue.DescriptorNotFoundId, true
	case errors.Is(err, uplugin.ErrDescriptorUnparsable):
		return issue.DescriptorParseErrorId, true
	case errors.Is(err, engine.ErrBaseDirNotFound), errors.Is(err, engine.ErrEngineNotFound), errors.Is(err, engine.ErrUATNotFound):
		return issue.EngineNotFoundId, true
	case errors.Is(err, staging.ErrAlreadyStaged):
		return issue.OutputCollisionId, true
	default:
		return 0, false
	}
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}
