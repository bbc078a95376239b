package bundle

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// RenderFallback renders the routing-fallback file, e.g. "/*    /index.html   200".
func RenderFallback(r Redirect) []byte {
	return fmt.Appendf(nil, "%s    %s   %d\n", r.From, r.To, r.Status)
}

// RenderHeaders renders the headers file: each path pattern followed by its
// indented headers, rules separated by a blank line.
func RenderHeaders(rules []HeaderRule) []byte {
	var b strings.Builder
	for i, rule := range rules {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(rule.For)
		b.WriteString("\n")
		for _, h := range rule.Values {
			fmt.Fprintf(&b, "  %s: %s\n", h.Name, h.Value)
		}
	}
	return []byte(b.String())
}

type manifest struct {
	Build     *Build            `toml:"build,omitempty"`
	Redirects []Redirect        `toml:"redirects"`
	Headers   []manifestHeaders `toml:"headers,omitempty"`
}

type manifestHeaders struct {
	For    string            `toml:"for"`
	Values map[string]string `toml:"values"`
}

// RenderManifest renders the host manifest as TOML with the fallback under
// [[redirects]] and every header rule under [[headers]].
func RenderManifest(cfg Config) ([]byte, error) {
	m := manifest{Build: cfg.Build, Redirects: []Redirect{cfg.Fallback}}
	for _, rule := range cfg.Headers {
		values := make(map[string]string, len(rule.Values))
		for _, h := range rule.Values {
			values[h.Name] = h.Value
		}
		m.Headers = append(m.Headers, manifestHeaders{For: rule.For, Values: values})
	}
	out, err := toml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("rendering host manifest: %w", err)
	}
	return out, nil
}
