package assemble

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/converge/internal/cmd/application"
	"github.com/agentstation/converge/pkg/bundle"
	"github.com/agentstation/converge/pkg/errors"
	"github.com/agentstation/converge/pkg/target"
)

func newApp(t *testing.T, root, preset string) *application.Mock {
	t.Helper()
	tgt, err := target.Preset(preset)
	require.NoError(t, err)
	return &application.Mock{
		RootFunc:         func() string { return root },
		TargetFunc:       func() (*target.Target, error) { return tgt, nil },
		OutputFormatFunc: func() string { return "json" },
	}
}

func execute(t *testing.T, app application.Application, args ...string) (*bundle.Result, string, error) {
	t.Helper()
	cmd := NewCommand(app)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()

	var result bundle.Result
	if stdout.Len() > 0 {
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	}
	return &result, stderr.String(), err
}

func TestAssembleCommand(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "public", "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "public", "img", "logo.svg"), []byte("<svg/>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "out"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "out", "_headers"), []byte("custom\n"), 0o644))

	result, _, err := execute(t, newApp(t, root, "netlify"))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Copied)
	assert.ElementsMatch(t, []string{"_redirects", "netlify.toml"}, result.Written)
	assert.Equal(t, []string{"_headers"}, result.Skipped)

	data, err := os.ReadFile(filepath.Join(root, "out", "_headers"))
	require.NoError(t, err)
	assert.Equal(t, "custom\n", string(data))
	assert.FileExists(t, filepath.Join(root, "out", "img", "logo.svg"))
}

func TestAssembleCommand_FlagOverrides(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "assets", "a.css"), []byte("a{}"), 0o644))

	result, _, err := execute(t, newApp(t, root, "static"), "--source", "assets", "--publish", "site")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Copied)
	assert.FileExists(t, filepath.Join(root, "site", "a.css"))
	assert.FileExists(t, filepath.Join(root, "site", "_redirects"))
}

func TestAssembleCommand_MissingSourceIsWarning(t *testing.T) {
	root := t.TempDir()
	result, stderr, err := execute(t, newApp(t, root, "static"))
	require.NoError(t, err)
	assert.Zero(t, result.Copied)
	assert.Contains(t, stderr, "warning:")
	assert.FileExists(t, filepath.Join(root, "dist", "_redirects"))
}

func TestAssembleCommand_NoPublishDir(t *testing.T) {
	_, _, err := execute(t, newApp(t, t.TempDir(), "vercel"))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}
