// SPDX-License-Identifier: MPL-2.0

// Package staging copies the files a filter manifest selects into an
// isolated working copy of a plugin bundle.
//
// Staging never mutates the source tree: all writes happen under the
// destination directory. The staged copy is what validation, the compile
// smoke test, and packaging operate on.
package staging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"upack-cli/pkg/filter"
	"upack-cli/pkg/uplugin"
)

// ErrAlreadyStaged is returned when the staging target directory exists.
var ErrAlreadyStaged = errors.New("staging target already exists")

// Stage copies the bundle's manifest-selected files into
// destDir/<bundle-name>/ and returns that staged root.
//
// The descriptor file is always copied, whether or not any pattern selects
// it. The filter manifest itself is never copied. Every other file is copied
// exactly when the pattern set matches its bundle-relative path; unmatched
// files are silently skipped — that is the filtering working, not a fault.
func Stage(bundle uplugin.Bundle, patterns *filter.Set, destDir string) (string, error) {
	stagedRoot := filepath.Join(destDir, bundle.Name())
	if _, err := os.Stat(stagedRoot); err == nil {
		return "", fmt.Errorf("%w: %s", ErrAlreadyStaged, stagedRoot)
	}
	if err := os.MkdirAll(stagedRoot, 0o755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	// The descriptor is the bundle's identity; it is staged unconditionally.
	if err := CopyFile(bundle.DescriptorPath, filepath.Join(stagedRoot, bundle.DescriptorName())); err != nil {
		return "", fmt.Errorf("failed to stage descriptor: %w", err)
	}

	manifestRel := strings.ToLower(filter.ManifestRelPath)

	err := filepath.WalkDir(bundle.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if path == bundle.DescriptorPath {
			return nil
		}

		rel, err := filepath.Rel(bundle.Root, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", path, err)
		}
		relSlash := filepath.ToSlash(rel)

		if strings.ToLower(relSlash) == manifestRel {
			return nil
		}
		if !patterns.Matches(relSlash) {
			return nil
		}

		dst := filepath.Join(stagedRoot, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(dst), err)
		}
		return CopyFile(path, dst)
	})
	if err != nil {
		return "", fmt.Errorf("failed to stage %s: %w", bundle.Name(), err)
	}

	return stagedRoot, nil
}

// CopyFile copies a single file, preserving its mode and modification time.
func CopyFile(src, dst string) (err error) {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() {
		if closeErr := in.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}

	if err = os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to preserve timestamps on %s: %w", dst, err)
	}
	return nil
}

// CopyTree recursively copies the directory src to dst, preserving relative
// structure and per-file metadata. dst must not already exist.
func CopyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", path, err)
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm())
		}
		return CopyFile(path, target)
	})
}
