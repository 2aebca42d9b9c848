// SPDX-License-Identifier: MPL-2.0

package uplugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for descriptor discovery.
var (
	ErrNoDescriptor        = errors.New("no .uplugin file found")
	ErrMultipleDescriptors = errors.New("multiple .uplugin files found")
	ErrNotADescriptor      = errors.New("not a .uplugin file")
)

// Bundle is a plugin root directory plus its descriptor file.
// The bundle's identity is the descriptor's base name without extension.
type Bundle struct {
	// Root is the plugin's root directory.
	Root string
	// DescriptorPath is the absolute path of the .uplugin file inside Root.
	DescriptorPath string
}

// FindDescriptor resolves a user-supplied path to a .uplugin file.
//
// The path may name a .uplugin file directly, a directory containing exactly
// one, or be empty to search the current working directory. Zero or multiple
// candidate descriptors are errors — a bundle has exactly one descriptor.
func FindDescriptor(path string) (string, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		path = cwd
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("invalid plugin path %s: %w", path, err)
	}

	if !info.IsDir() {
		if !strings.EqualFold(filepath.Ext(path), Extension) {
			return "", fmt.Errorf("%w: %s", ErrNotADescriptor, path)
		}
		return filepath.Abs(path)
	}

	matches, err := filepath.Glob(filepath.Join(path, "*"+Extension))
	if err != nil {
		return "", fmt.Errorf("failed to search %s: %w", path, err)
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w in %s", ErrNoDescriptor, path)
	case 1:
		return filepath.Abs(matches[0])
	default:
		return "", fmt.Errorf("%w in %s: specify one explicitly", ErrMultipleDescriptors, path)
	}
}

// NewBundle resolves path (see FindDescriptor) into a Bundle.
func NewBundle(path string) (Bundle, error) {
	descriptorPath, err := FindDescriptor(path)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{
		Root:           filepath.Dir(descriptorPath),
		DescriptorPath: descriptorPath,
	}, nil
}

// Name returns the bundle identity: the root directory's base name.
func (b Bundle) Name() string {
	return filepath.Base(b.Root)
}

// DescriptorName returns the descriptor's file name, e.g. "MyPlugin.uplugin".
func (b Bundle) DescriptorName() string {
	return filepath.Base(b.DescriptorPath)
}
