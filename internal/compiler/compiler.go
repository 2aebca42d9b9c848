// SPDX-License-Identifier: MPL-2.0

// Package compiler drives the engine's BuildPlugin automation command to
// compile a plugin bundle against an installed Unreal Engine.
//
// The engine's own toolchain does the actual work; this package prepares the
// invocation, streams its output, and verifies the result. A build is judged
// by two signals: the tool's exit code and the presence of a Binaries
// directory in the output, since the tool has been seen exiting zero without
// producing anything.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"upack-cli/internal/engine"
	"upack-cli/pkg/types"
	"upack-cli/pkg/uplugin"
)

var (
	// ErrNotAPlugin is returned when the plugin file does not carry the
	// .uplugin extension.
	ErrNotAPlugin = errors.New("not a plugin descriptor file")
	// ErrNoBinaries is returned when the build tool exits zero but the
	// output contains no Binaries directory.
	ErrNoBinaries = errors.New("build produced no Binaries directory")
)

type (
	// Config describes one BuildPlugin invocation.
	Config struct {
		// EnginePath is the root of the engine installation to build with.
		EnginePath types.FilesystemPath
		// PluginFile is the .uplugin descriptor of the bundle to compile.
		PluginFile types.FilesystemPath
		// OutputDir receives the compiled plugin.
		OutputDir types.FilesystemPath
		// ExtraArgs are additional BuildPlugin arguments, passed as
		// -Key=Value in sorted key order.
		ExtraArgs map[string]string
		// Stdout and Stderr receive the build tool's output. Nil writers
		// default to the process streams.
		Stdout io.Writer
		Stderr io.Writer
		// Logger receives per-step progress. Nil defaults to log.Default().
		Logger *log.Logger
	}

	// BuildError is returned when the build tool exits non-zero.
	BuildError struct {
		ExitCode int
		Cause    error
	}
)

// Run executes the BuildPlugin command described by cfg. It validates the
// inputs first, runs the tool, and then checks that binaries were actually
// produced.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	for _, path := range []types.FilesystemPath{cfg.EnginePath, cfg.PluginFile, cfg.OutputDir} {
		if ok, errs := path.IsValid(); !ok {
			return errs[0]
		}
	}

	script, err := engine.UATScript(cfg.EnginePath.String())
	if err != nil {
		return err
	}

	pluginFile, err := filepath.Abs(cfg.PluginFile.String())
	if err != nil {
		return fmt.Errorf("failed to resolve plugin file: %w", err)
	}
	if !strings.EqualFold(filepath.Ext(pluginFile), uplugin.Extension) {
		return fmt.Errorf("%w: %s", ErrNotAPlugin, cfg.PluginFile)
	}
	if _, err := os.Stat(pluginFile); err != nil {
		return fmt.Errorf("plugin file not accessible: %w", err)
	}

	outputDir, err := filepath.Abs(cfg.OutputDir.String())
	if err != nil {
		return fmt.Errorf("failed to resolve output directory: %w", err)
	}

	args := buildArgs(pluginFile, outputDir, cfg.ExtraArgs)
	logger.Info("compiling plugin", "plugin", filepath.Base(pluginFile), "engine", cfg.EnginePath)
	logger.Debug("running build tool", "script", script, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, script, args...)
	cmd.Stdout = cfg.Stdout
	cmd.Stderr = cfg.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &BuildError{ExitCode: exitErr.ExitCode(), Cause: err}
		}
		return fmt.Errorf("failed to run build tool: %w", err)
	}

	// The tool can exit zero without building anything, so the Binaries
	// directory is the real success signal.
	binaries := filepath.Join(outputDir, "Binaries")
	if info, err := os.Stat(binaries); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNoBinaries, outputDir)
	}

	logger.Info("plugin compiled", "output", outputDir)
	return nil
}

// buildArgs assembles the BuildPlugin argument list. Extra arguments follow
// the fixed ones in sorted key order so invocations are reproducible.
func buildArgs(pluginFile, outputDir string, extra map[string]string) []string {
	args := []string{
		"BuildPlugin",
		"-Plugin=" + pluginFile,
		"-Package=" + outputDir,
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, fmt.Sprintf("-%s=%s", k, extra[k]))
	}
	return args
}

// Error implements the error interface for BuildError.
func (e *BuildError) Error() string {
	return fmt.Sprintf("build tool exited with code %d", e.ExitCode)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *BuildError) Unwrap() error { return e.Cause }
