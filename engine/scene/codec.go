package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format for a Description.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath selects a Format from a file extension (.json, .yaml, .yml or .toml).
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Format: the detected format
//   - error: an error for an unrecognized extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported scene file extension %q", filepath.Ext(path))
	}
}

// Decode reads a Description in the given format. Unknown fields are rejected.
//
// Parameters:
//   - r: the source reader
//   - f: the serialization format
//
// Returns:
//   - *Description: the decoded description
//   - error: a decode error
func Decode(r io.Reader, f Format) (*Description, error) {
	var d Description
	var err error
	switch f {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&d)
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(&d)
	case FormatTOML:
		err = toml.NewDecoder(r).DisallowUnknownFields().Decode(&d)
	default:
		return nil, fmt.Errorf("unsupported scene format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &d, nil
}

// Encode writes a Description in the given format.
//
// Parameters:
//   - w: the destination writer
//   - f: the serialization format
//   - d: the description to encode
//
// Returns:
//   - error: an encode error
func Encode(w io.Writer, f Format, d *Description) error {
	var err error
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(d)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(d); err == nil {
			err = enc.Close()
		}
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(d)
	default:
		return fmt.Errorf("unsupported scene format %q", f)
	}
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return nil
}

// Load reads a Description from a file, picking the format from its extension.
//
// Parameters:
//   - path: the scene file path
//
// Returns:
//   - *Description: the decoded description
//   - error: an open or decode error
func Load(path string) (*Description, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer file.Close()
	return Decode(file, f)
}

// Save writes a Description to a file, picking the format from its extension.
//
// Parameters:
//   - path: the scene file path
//   - d: the description to write
//
// Returns:
//   - error: a create or encode error
func Save(path string, d *Description) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}
	return encodeAndClose(file, f, d)
}

// encodeAndClose encodes d into wc and closes it. A close failure is reported when encoding succeeded.
func encodeAndClose(wc io.WriteCloser, f Format, d *Description) (err error) {
	defer func() {
		if cerr := wc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close scene: %w", cerr)
		}
	}()
	return Encode(wc, f, d)
}
