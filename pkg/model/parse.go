package model

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/dbnplot/pkg/errors"
)

// Format is a model file format.
type Format string

// Supported model formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
	FormatJSON Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatTOML, FormatYAML, FormatHCL, FormatJSON}

// ParseFormat parses a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "hcl":
		return FormatHCL, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", errors.New(errors.ErrCodeUnsupportedFormat,
			"unsupported model format %q (must be one of: toml, yaml, hcl, json)", s)
	}
}

// FormatFromPath detects the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errors.New(errors.ErrCodeUnsupportedFormat, "cannot detect model format of %q: no file extension", path)
	}
	return ParseFormat(ext)
}

// Load reads and parses a model file. The model is named after the file.
func Load(path string) (*Model, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "model file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read model file %s", path)
	}

	m, err := ParseNamed(data, format, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return m, nil
}

// Parse decodes model data in the given format.
func Parse(data []byte, format Format) (*Model, error) {
	return ParseNamed(data, format, "model."+string(format))
}

// ParseNamed is [Parse] with a file name used in diagnostics.
func ParseNamed(data []byte, format Format, filename string) (*Model, error) {
	format, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}

	var m *Model
	switch format {
	case FormatTOML:
		m, err = parseTOML(data)
	case FormatYAML:
		m, err = parseYAML(data)
	case FormatHCL:
		m, err = parseHCL(data, filename)
	case FormatJSON:
		m, err = parseJSON(data)
	}
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s model %s", format, filename)
	}
	return m, nil
}

func parseTOML(data []byte) (*Model, error) {
	var m Model
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown keys in TOML model: %s", strings.Join(keys, ", "))
	}
	return &m, nil
}

func parseYAML(data []byte) (*Model, error) {
	var m Model
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && err != io.EOF {
		return nil, err
	}
	return &m, nil
}

func parseJSON(data []byte) (*Model, error) {
	var m Model
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}
