package targets

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/converge/internal/cmd/application"
	"github.com/agentstation/converge/pkg/target"
)

func execute(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	app := &application.Mock{OutputFormatFunc: func() string { return format }}
	cmd := NewCommand(app)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestList(t *testing.T) {
	out, err := execute(t, "json", "list")
	require.NoError(t, err)

	var presets []target.Target
	require.NoError(t, json.Unmarshal([]byte(out), &presets))
	names := make([]string, 0, len(presets))
	for _, p := range presets {
		names = append(names, p.Name)
	}
	assert.Equal(t, target.PresetNames(), names)
}

func TestList_Table(t *testing.T) {
	out, err := execute(t, "table", "list")
	require.NoError(t, err)
	for _, name := range target.PresetNames() {
		assert.Contains(t, out, name)
	}
}

func TestShow(t *testing.T) {
	t.Run("preset", func(t *testing.T) {
		out, err := execute(t, "yaml", "show", "netlify")
		require.NoError(t, err)
		assert.Contains(t, out, "name: netlify")
		assert.Contains(t, out, "spa-redirects")
	})

	t.Run("configured target", func(t *testing.T) {
		out, err := execute(t, "markdown", "show")
		require.NoError(t, err)
		assert.Contains(t, out, "# vercel (preset)")
		assert.Contains(t, out, "deploy-manifest")
	})

	t.Run("file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "target.jsonc")
		require.NoError(t, os.WriteFile(file, []byte(`{
  // custom target
  "name": "custom",
  "artifacts": [{"key": "readme", "canonical": "README.md"}]
}`), 0o644))
		out, err := execute(t, "table", "show", file)
		require.NoError(t, err)
		assert.Contains(t, out, "readme")
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := execute(t, "table", "show", "nope")
		assert.Error(t, err)
	})
}
