// SPDX-License-Identifier: MPL-2.0

package uplugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"upack-cli/pkg/types"
)

// Extension is the plugin descriptor file extension.
const Extension = ".uplugin"

// Descriptor field names read or written by upack. All other fields are
// opaque pass-through.
const (
	FieldFabURL        = "FabURL"
	FieldEngineVersion = "EngineVersion"
)

// ErrDescriptorUnparsable is the sentinel error wrapped by DescriptorError.
var ErrDescriptorUnparsable = errors.New("plugin descriptor unparsable")

type (
	// Descriptor is the parsed .uplugin JSON object. Unknown fields are kept
	// as raw JSON so a load/save round trip only changes the fields upack
	// deliberately rewrites.
	Descriptor map[string]json.RawMessage

	// DescriptorError is returned when a .uplugin file cannot be read or
	// decoded.
	DescriptorError struct {
		Path  string
		Cause error
	}
)

// LoadDescriptor reads and decodes a .uplugin file.
func LoadDescriptor(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DescriptorError{Path: path, Cause: err}
	}

	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, &DescriptorError{Path: path, Cause: fmt.Errorf("%w: %v", ErrDescriptorUnparsable, err)}
	}
	return d, nil
}

// Save writes the descriptor back to path as indented JSON.
func (d Descriptor) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return &DescriptorError{Path: path, Cause: err}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return &DescriptorError{Path: path, Cause: err}
	}
	return nil
}

// stringField decodes a top-level string field. The second return is false
// when the field is absent or not a JSON string.
func (d Descriptor) stringField(name string) (string, bool) {
	raw, ok := d[name]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// FabURL returns the marketplace distribution URL field.
func (d Descriptor) FabURL() (string, bool) {
	return d.stringField(FieldFabURL)
}

// EngineVersion returns the engine version field.
func (d Descriptor) EngineVersion() (string, bool) {
	return d.stringField(FieldEngineVersion)
}

// WithEngineVersion returns a copy of the descriptor with the EngineVersion
// field set to the normalized three-component form of version. The receiver
// is not modified, so one loaded descriptor can safely seed several
// per-version packages.
func (d Descriptor) WithEngineVersion(version types.EngineVersion) Descriptor {
	out := make(Descriptor, len(d)+1)
	for k, v := range d {
		out[k] = v
	}
	encoded, _ := json.Marshal(string(version.Normalized()))
	out[FieldEngineVersion] = encoded
	return out
}

// Error implements the error interface for DescriptorError.
func (e *DescriptorError) Error() string {
	return fmt.Sprintf("descriptor %s: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *DescriptorError) Unwrap() error { return e.Cause }
