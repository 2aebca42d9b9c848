// SPDX-License-Identifier: MPL-2.0

// Package pipeline orchestrates the full packaging flow: stage the
// manifest-selected files, run the marketplace validators, smoke-test a
// compile against the highest requested engine version, and produce one
// archive per version.
//
// All intermediate work happens in temporary directories that are removed on
// every exit path, success or failure. The source bundle is never touched.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"upack-cli/internal/compiler"
	"upack-cli/internal/engine"
	"upack-cli/pkg/filter"
	"upack-cli/pkg/packaging"
	"upack-cli/pkg/staging"
	"upack-cli/pkg/types"
	"upack-cli/pkg/uplugin"
	"upack-cli/pkg/validation"
)

type (
	// Options configures one pipeline run.
	Options struct {
		// BundlePath is the plugin root directory, a .uplugin file, or
		// empty for the current directory.
		BundlePath string
		// Versions are the engine versions to package for. Must not be
		// empty for Run.
		Versions []types.EngineVersion
		// OutputDir receives the archives. Empty means the current
		// directory.
		OutputDir string
		// SkipValidation disables the marketplace validators.
		SkipValidation bool
		// SkipCompile disables the compile smoke test.
		SkipCompile bool
		// ExtraBuildArgs are forwarded to the BuildPlugin invocation.
		ExtraBuildArgs map[string]string
		// BuildOutput receives the build tool's combined output. Nil
		// defaults to the process streams.
		BuildOutput io.Writer
		// Logger receives progress. Nil defaults to log.Default().
		Logger *log.Logger
	}

	// Report summarizes a completed pipeline run.
	Report struct {
		// Bundle is the resolved source bundle.
		Bundle uplugin.Bundle
		// StagedFileCount is the number of files staged for packaging.
		StagedFileCount int
		// ValidationResults are the per-validator outcomes.
		ValidationResults []validation.Result
		// CompiledVersion is the engine version the smoke test ran
		// against, empty when the test was skipped.
		CompiledVersion types.EngineVersion
		// Archives are the paths of the produced archives, one per
		// requested version.
		Archives []string
	}

	// ValidationFailedError is returned when any marketplace validator
	// rejects the staged bundle.
	ValidationFailedError struct {
		Results []validation.Result
	}
)

// Run executes the full packaging pipeline and returns a report of what was
// produced. On validation failure the returned error is a
// *ValidationFailedError carrying every validator's findings.
func Run(ctx context.Context, opts Options) (report *Report, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if len(opts.Versions) == 0 {
		return nil, fmt.Errorf("no engine versions requested")
	}
	for _, v := range opts.Versions {
		if ok, errs := v.IsValid(); !ok {
			return nil, errs[0]
		}
	}

	bundle, err := uplugin.NewBundle(opts.BundlePath)
	if err != nil {
		return nil, err
	}
	logger.Info("packaging plugin", "plugin", bundle.Name(), "versions", joinVersions(opts.Versions))

	stagedRoot, cleanup, err := stage(bundle, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cleanupErr := cleanup(); cleanupErr != nil && err == nil {
			err = cleanupErr
		}
	}()

	report = &Report{
		Bundle:          bundle,
		StagedFileCount: countFiles(stagedRoot),
	}

	if !opts.SkipValidation {
		results, err := validate(stagedRoot, logger)
		if err != nil {
			return nil, err
		}
		report.ValidationResults = results
	}

	if !opts.SkipCompile {
		highest := types.HighestEngineVersion(opts.Versions)
		if err := compileCheck(ctx, stagedRoot, highest, opts, logger); err != nil {
			return nil, err
		}
		report.CompiledVersion = highest
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	for _, version := range opts.Versions {
		archive, err := packaging.Package(stagedRoot, version, outputDir)
		if err != nil {
			return nil, fmt.Errorf("failed to package for %s: %w", version, err)
		}
		logger.Info("archive written", "version", version, "archive", archive)
		report.Archives = append(report.Archives, archive)
	}

	return report, nil
}

// Validate stages the bundle and runs the marketplace validators without
// compiling or packaging. It returns every validator's result; the error is
// a *ValidationFailedError exactly when any validator failed.
func Validate(opts Options) (results []validation.Result, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	bundle, err := uplugin.NewBundle(opts.BundlePath)
	if err != nil {
		return nil, err
	}

	stagedRoot, cleanup, err := stage(bundle, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cleanupErr := cleanup(); cleanupErr != nil && err == nil {
			err = cleanupErr
		}
	}()

	return validate(stagedRoot, logger)
}

// stage copies the manifest-selected files into a fresh temporary directory.
// The returned cleanup removes the whole directory.
func stage(bundle uplugin.Bundle, logger *log.Logger) (string, func() error, error) {
	patterns, err := filter.LoadSet(bundle.Root)
	if err != nil {
		return "", nil, err
	}

	tmpDir, err := os.MkdirTemp("", "upack-stage-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	cleanup := func() error { return os.RemoveAll(tmpDir) }

	stagedRoot, err := staging.Stage(bundle, patterns, tmpDir)
	if err != nil {
		_ = cleanup()
		return "", nil, err
	}
	logger.Debug("bundle staged", "patterns", patterns.Len(), "staged", stagedRoot)
	return stagedRoot, cleanup, nil
}

// validate runs every marketplace validator against the staged bundle.
func validate(stagedRoot string, logger *log.Logger) ([]validation.Result, error) {
	stagedBundle, err := uplugin.NewBundle(stagedRoot)
	if err != nil {
		return nil, err
	}

	results, ok := validation.RunAll(stagedBundle)
	for _, r := range results {
		if r.Success {
			logger.Debug("validation passed", "check", r.Name)
		} else {
			logger.Error("validation failed", "check", r.Name, "findings", len(r.Errors))
		}
	}
	if !ok {
		return results, &ValidationFailedError{Results: results}
	}
	return results, nil
}

// compileCheck builds the staged bundle against one engine version in a
// disposable copy. Packaging multiple versions only compiles once, against
// the highest requested version.
func compileCheck(ctx context.Context, stagedRoot string, version types.EngineVersion, opts Options, logger *log.Logger) (err error) {
	enginePath, err := engine.Path(version)
	if err != nil {
		return err
	}

	workDir, err := os.MkdirTemp("", "upack-compile-*")
	if err != nil {
		return fmt.Errorf("failed to create compile directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil && err == nil {
			err = fmt.Errorf("failed to clean up compile directory: %w", rmErr)
		}
	}()

	bundleName := filepath.Base(stagedRoot)
	workRoot := filepath.Join(workDir, bundleName)
	if err := staging.CopyTree(stagedRoot, workRoot); err != nil {
		return fmt.Errorf("failed to copy bundle for compile check: %w", err)
	}

	workBundle, err := uplugin.NewBundle(workRoot)
	if err != nil {
		return err
	}
	descriptor, err := uplugin.LoadDescriptor(workBundle.DescriptorPath)
	if err != nil {
		return err
	}
	if err := descriptor.WithEngineVersion(version).Save(workBundle.DescriptorPath); err != nil {
		return err
	}

	logger.Info("compile check", "version", version)
	return compiler.Run(ctx, compiler.Config{
		EnginePath: types.FilesystemPath(enginePath),
		PluginFile: types.FilesystemPath(workBundle.DescriptorPath),
		OutputDir:  types.FilesystemPath(filepath.Join(workDir, "build")),
		ExtraArgs:  opts.ExtraBuildArgs,
		Stdout:     opts.BuildOutput,
		Stderr:     opts.BuildOutput,
		Logger:     logger,
	})
}

// countFiles counts regular files under root. Used for reporting only, so
// errors just stop the count.
func countFiles(root string) int {
	count := 0
	_ = filepath.WalkDir(root, func(_ string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			count++
		}
		return nil
	})
	return count
}

// joinVersions renders a version list for log output.
func joinVersions(versions []types.EngineVersion) string {
	parts := make([]string, len(versions))
	for i, v := range versions {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// Error implements the error interface for ValidationFailedError.
func (e *ValidationFailedError) Error() string {
	failed := 0
	for _, r := range e.Results {
		if !r.Success {
			failed++
		}
	}
	return fmt.Sprintf("%d of %d validation checks failed", failed, len(e.Results))
}
