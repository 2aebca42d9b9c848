// SPDX-License-Identifier: MPL-2.0

// Package packaging produces the per-engine-version zip archives for a
// staged plugin bundle.
//
// Each archive is built from a disposable copy of the staged tree so the
// descriptor rewrite for one engine version never leaks into another. The
// bundle directory itself is the single top-level entry of every archive,
// which is the layout the marketplace uploader expects.
package packaging

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"upack-cli/pkg/staging"
	"upack-cli/pkg/types"
	"upack-cli/pkg/uplugin"
)

// ArchiveName returns the archive file name for a bundle and engine version.
// The version appears exactly as requested, not normalized.
func ArchiveName(bundleName string, version types.EngineVersion) string {
	return fmt.Sprintf("%s_UE%s.zip", bundleName, version)
}

// Package builds the zip archive for one engine version from the staged
// bundle at stagedRoot and writes it into outputDir, overwriting any
// existing archive of the same name. It returns the archive path.
//
// The staged tree is never modified: the EngineVersion rewrite happens on a
// temporary copy that is removed before Package returns.
func Package(stagedRoot string, version types.EngineVersion, outputDir string) (archivePath string, err error) {
	if ok, errs := version.IsValid(); !ok {
		return "", fmt.Errorf("invalid engine version %q: %v", version, errs)
	}

	bundleName := filepath.Base(stagedRoot)

	workDir, err := os.MkdirTemp("", "upack-package-*")
	if err != nil {
		return "", fmt.Errorf("failed to create packaging directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil && err == nil {
			err = fmt.Errorf("failed to clean up packaging directory: %w", rmErr)
		}
	}()

	workRoot := filepath.Join(workDir, bundleName)
	if err := staging.CopyTree(stagedRoot, workRoot); err != nil {
		return "", fmt.Errorf("failed to copy staged bundle: %w", err)
	}

	if err := rewriteEngineVersion(workRoot, version); err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	archivePath = filepath.Join(outputDir, ArchiveName(bundleName, version))

	if err := writeArchive(archivePath, workDir, bundleName); err != nil {
		return "", err
	}
	return archivePath, nil
}

// rewriteEngineVersion sets the EngineVersion field of the bundle's
// descriptor to the normalized form of version.
func rewriteEngineVersion(bundleRoot string, version types.EngineVersion) error {
	bundle, err := uplugin.NewBundle(bundleRoot)
	if err != nil {
		return fmt.Errorf("failed to locate descriptor in %s: %w", bundleRoot, err)
	}
	descriptor, err := uplugin.LoadDescriptor(bundle.DescriptorPath)
	if err != nil {
		return err
	}
	return descriptor.WithEngineVersion(version).Save(bundle.DescriptorPath)
}

// writeArchive zips baseDir/bundleName into a new archive at archivePath.
// Entry names are slash-separated and rooted at bundleName, so extracting
// the archive recreates the bundle directory.
func writeArchive(archivePath, baseDir, bundleName string) (err error) {
	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", archivePath, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	zw := zip.NewWriter(out)
	defer func() {
		if closeErr := zw.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	root := filepath.Join(baseDir, bundleName)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(baseDir, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", path, err)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return fmt.Errorf("failed to build archive header for %s: %w", rel, err)
		}
		header.Name = filepath.ToSlash(rel)
		header.Method = zip.Deflate

		w, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", rel, err)
		}
		return copyInto(w, path)
	})
}

// copyInto streams the file at path into w.
func copyInto(w io.Writer, path string) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(w, f)
	return err
}
