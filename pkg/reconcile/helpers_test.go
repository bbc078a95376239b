package reconcile

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentstation/converge/pkg/artifact"
	"github.com/agentstation/converge/pkg/logging"
	"github.com/agentstation/converge/pkg/scan"
)

// files maps root-relative paths to contents. Keys ending in "/" are directories.
type files map[string]string

func writeFiles(t *testing.T, root string, entries files) {
	t.Helper()
	for rel, content := range entries {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

// snapshot reads the whole tree back into a files map.
func snapshot(t *testing.T, root string) files {
	t.Helper()
	out := files{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		if path == root {
			return nil
		}
		rel := filepath.ToSlash(strings.TrimPrefix(path, root+string(filepath.Separator)))
		if d.IsDir() {
			out[rel+"/"] = ""
			return nil
		}
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		out[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}

func newTree(t *testing.T, initial files, ignore ...string) *scan.Tree {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, initial)
	tree, err := scan.NewTree(root, ignore...)
	require.NoError(t, err)
	return tree
}

func newRegistry(t *testing.T, artifacts ...artifact.Artifact) *artifact.Registry {
	t.Helper()
	r, err := artifact.NewRegistry(artifacts...)
	require.NoError(t, err)
	return r
}

func run(t *testing.T, tree *scan.Tree, registry *artifact.Registry, opts ...Option) *Report {
	t.Helper()
	r, err := New(opts...)
	require.NoError(t, err)
	ctx := logging.WithLogger(context.Background(), logging.NewTestLogger(t).Logger)
	return r.Reconcile(ctx, tree, registry)
}

func resultFor(t *testing.T, report *Report, key string) Result {
	t.Helper()
	for _, res := range report.Results {
		if res.Key == key {
			return res
		}
	}
	t.Fatalf("no result for %s", key)
	return Result{}
}
