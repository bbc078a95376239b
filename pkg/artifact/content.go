package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Format is the serialization of a structured document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Content generates an artifact's default bytes. At most one of Text,
// Document and Env may be set; none set means an empty file.
type Content struct {
	// Text is written verbatim.
	Text string `yaml:"text,omitempty" json:"text,omitempty"`

	// Document is rendered in Format with sorted keys.
	Document map[string]any `yaml:"document,omitempty" json:"document,omitempty"`
	Format   Format         `yaml:"format,omitempty" json:"format,omitempty"`

	// Env is rendered as a dotenv file.
	Env map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
}

// IsZero reports whether no generator is configured.
func (c Content) IsZero() bool {
	return c.Text == "" && c.Document == nil && c.Env == nil
}

// Validate checks that at most one generator is set and the format is known.
func (c Content) Validate() error {
	set := 0
	if c.Text != "" {
		set++
	}
	if c.Document != nil {
		set++
	}
	if c.Env != nil {
		set++
	}
	if set > 1 {
		return fmt.Errorf("only one of text, document or env may be set")
	}
	if c.Document != nil {
		switch c.Format {
		case "", FormatJSON, FormatYAML, FormatTOML:
		default:
			return fmt.Errorf("unknown document format %q", c.Format)
		}
	}
	return nil
}

// Generate renders the content. The same Content always yields the same bytes.
func (c Content) Generate() ([]byte, error) {
	switch {
	case c.Document != nil:
		return renderDocument(c.Document, c.Format)
	case c.Env != nil:
		out, err := godotenv.Marshal(c.Env)
		if err != nil {
			return nil, fmt.Errorf("rendering env: %w", err)
		}
		return []byte(out + "\n"), nil
	default:
		return []byte(c.Text), nil
	}
}

func renderDocument(doc map[string]any, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		out, err := yaml.MarshalWithOptions(doc, yaml.Indent(2))
		if err != nil {
			return nil, fmt.Errorf("rendering yaml document: %w", err)
		}
		return out, nil
	case FormatTOML:
		out, err := toml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("rendering toml document: %w", err)
		}
		return out, nil
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("rendering json document: %w", err)
		}
		return buf.Bytes(), nil
	}
}
