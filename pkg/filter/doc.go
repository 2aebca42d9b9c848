// SPDX-License-Identifier: MPL-2.0

// Package filter interprets FilterPlugin.ini include manifests.
//
// A manifest lists the files that belong in a packaged plugin. Each entry is
// either a recursive-directory selector ("Source/..." selects the directory
// and everything beneath it) or a shell-style glob matched against the whole
// path relative to the plugin root. Matching is case-insensitive and uses
// forward slashes regardless of host platform.
package filter
