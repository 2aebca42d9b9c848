// SPDX-License-Identifier: MPL-2.0

// Package config loads and persists the upack configuration file.
//
// Configuration lives in a TOML file under the platform config directory and
// covers the engine install location, the default engine versions to package
// for, and output preferences. Every field has a working default, so a
// missing config file is not an error.
package config
