package target

import (
	"bytes"
	"embed"
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/tidwall/jsonc"

	"github.com/agentstation/converge/pkg/errors"
)

//go:embed presets/*.yaml
var presetFS embed.FS

// OriginPreset marks targets loaded from the embedded presets.
const OriginPreset = "preset"

// Parse decodes a target definition. format is "yaml", "json" or "jsonc";
// name is only used in error messages. Unknown fields are rejected.
func Parse(data []byte, format, name string) (*Target, error) {
	var t Target
	switch format {
	case "yaml", "yml":
		if err := yaml.UnmarshalWithOptions(data, &t, yaml.DisallowUnknownField()); err != nil {
			return nil, errors.NewParseError("yaml", name, yaml.FormatError(err, false, true), err)
		}
	case "json", "jsonc":
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&t); err != nil {
			return nil, errors.WrapParse(format, name, err)
		}
	default:
		return nil, errors.NewValidationError("format", format, "must be yaml, json or jsonc")
	}
	if err := t.Validate(); err != nil {
		return nil, errors.NewConfigError("target "+name, "invalid definition", err)
	}
	return &t, nil
}

// Load reads a target file; the format follows the extension.
func Load(file string) (*Target, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("target file", file)
		}
		return nil, errors.WrapIO("read", file, err)
	}
	t, err := Parse(data, strings.TrimPrefix(filepath.Ext(file), "."), file)
	if err != nil {
		return nil, err
	}
	t.Origin = file
	return t, nil
}

// Preset returns the embedded target with the given name.
func Preset(name string) (*Target, error) {
	file := path.Join("presets", name+".yaml")
	data, err := presetFS.ReadFile(file)
	if err != nil {
		return nil, errors.NewNotFoundError("target", name)
	}
	t, err := Parse(data, "yaml", file)
	if err != nil {
		return nil, err
	}
	t.Origin = OriginPreset
	return t, nil
}

// PresetNames lists the embedded presets in lexical order.
func PresetNames() []string {
	entries, _ := fs.ReadDir(presetFS, "presets")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	slices.Sort(names)
	return names
}

// Presets loads every embedded preset.
func Presets() ([]*Target, error) {
	var out []*Target
	for _, name := range PresetNames() {
		t, err := Preset(name)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Resolve loads ref as a file when it looks like a path, else as a preset name.
func Resolve(ref string) (*Target, error) {
	switch filepath.Ext(ref) {
	case ".yaml", ".yml", ".json", ".jsonc":
		return Load(ref)
	}
	if strings.ContainsRune(ref, filepath.Separator) || strings.ContainsRune(ref, '/') {
		return Load(ref)
	}
	return Preset(ref)
}
