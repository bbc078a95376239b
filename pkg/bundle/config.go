package bundle

// Redirect is a routing rule. The fallback rule sends every path to the
// single-page entry point.
type Redirect struct {
	From   string `yaml:"from" json:"from" toml:"from"`
	To     string `yaml:"to" json:"to" toml:"to"`
	Status int    `yaml:"status" json:"status" toml:"status"`
	Force  bool   `yaml:"force,omitempty" json:"force,omitempty" toml:"force,omitempty"`
}

// Header is a single response header.
type Header struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// HeaderRule attaches headers to a path pattern.
type HeaderRule struct {
	For    string   `yaml:"for" json:"for"`
	Values []Header `yaml:"values" json:"values"`
}

// Build is the optional [build] table of the host manifest.
type Build struct {
	Publish string `yaml:"publish,omitempty" json:"publish,omitempty" toml:"publish,omitempty"`
	Command string `yaml:"command,omitempty" json:"command,omitempty" toml:"command,omitempty"`
}

// Config names the generated files and their rules. File names are relative to
// the publish directory; an empty name disables that file.
type Config struct {
	FallbackFile string       `yaml:"fallback_file,omitempty" json:"fallback_file,omitempty"`
	HeadersFile  string       `yaml:"headers_file,omitempty" json:"headers_file,omitempty"`
	ManifestFile string       `yaml:"manifest_file,omitempty" json:"manifest_file,omitempty"`
	Fallback     Redirect     `yaml:"fallback" json:"fallback"`
	Headers      []HeaderRule `yaml:"headers,omitempty" json:"headers,omitempty"`
	Build        *Build       `yaml:"build,omitempty" json:"build,omitempty"`
}
