// SPDX-License-Identifier: MPL-2.0

// Package uplugin models Unreal Engine plugin bundles and their .uplugin
// descriptor files.
//
// A bundle is a plugin root directory containing exactly one .uplugin
// descriptor. The descriptor is treated as an opaque JSON object: upack reads
// the FabURL field, rewrites the EngineVersion field, and passes every other
// field through untouched.
package uplugin
