package reconcile

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/converge/pkg/artifact"
	"github.com/agentstation/converge/pkg/errors"
)

func deployRegistry(t *testing.T) *artifact.Registry {
	t.Helper()
	return newRegistry(t,
		artifact.Artifact{
			Key:       "deploy-manifest",
			Canonical: "vercel.json",
			Policy:    artifact.PolicyExact,
			Required:  true,
			Default: artifact.Content{Document: map[string]any{
				"version":      2,
				"buildCommand": "npm run build",
			}},
		},
		artifact.Artifact{
			Key:        "schema",
			Canonical:  "prisma/schema.prisma",
			Alternates: []string{"schema.prisma"},
			Policy:     artifact.PolicyPreserve,
			Required:   true,
			Default:    artifact.Content{Text: "// default schema\n"},
		},
		artifact.Artifact{
			Key:       "env",
			Canonical: ".env",
			Default:   artifact.Content{Env: map[string]string{"DATABASE_URL": "postgres://localhost/app"}},
		},
		artifact.Artifact{
			Key:        "redirects",
			Canonical:  "public/_redirects",
			MirrorFrom: "config/_redirects",
			Policy:     artifact.PolicyExact,
		},
		artifact.Artifact{
			Key:       "functions",
			Canonical: "netlify/functions",
			Kind:      artifact.KindDir,
		},
	)
}

func TestReconcile_ScenarioEmptyTreeRequiredManifest(t *testing.T) {
	tree := newTree(t, nil)
	registry := newRegistry(t, artifact.Artifact{
		Key:       "manifest",
		Canonical: "manifest.json",
		Required:  true,
		Default:   artifact.Content{Text: `{"version":1}`},
	})

	report := run(t, tree, registry)

	data, err := os.ReadFile(tree.Abs("manifest.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(data))
	require.Len(t, report.Results, 1)
	assert.Equal(t, OutcomeCreated, report.Results[0].Outcome)
	assert.Equal(t, SourceDefault, report.Results[0].Source)
	assert.Empty(t, report.RequiredFailures())
}

func TestReconcile_ScenarioThreeCopiesKeepsRoot(t *testing.T) {
	tree := newTree(t, files{
		"a/redirect.cfg": "from a",
		"b/redirect.cfg": "from b",
		"redirect.cfg":   "root rule",
	})
	registry := newRegistry(t, artifact.Artifact{Key: "redirect", Canonical: "redirect.cfg"})

	report := run(t, tree, registry)

	assert.Equal(t, files{
		"a/":           "",
		"b/":           "",
		"redirect.cfg": "root rule",
	}, snapshot(t, tree.Root))
	res := report.Results[0]
	assert.Equal(t, "deduplicated(2)", res.Label())
	assert.ElementsMatch(t, []string{"a/redirect.cfg", "b/redirect.cfg"}, res.Removed)
}

func TestReconcile_Idempotent(t *testing.T) {
	tree := newTree(t, files{
		"vercel.json":         `{"stale":true}`,
		"app/vercel.json":     "{}",
		"schema.prisma":       "model User {}\n",
		"config/_redirects":   "/*    /index.html   200\n",
		"public/_redirects":   "old\n",
		"nested/.env":         "X=1\n",
		"node_modules/.env":   "ignored\n",
		"netlify/functions/a": "fn",
	}, "node_modules")
	registry := deployRegistry(t)

	first := run(t, tree, registry)
	assert.False(t, first.HasFailures())
	after := snapshot(t, tree.Root)

	second := run(t, tree, registry)
	for _, res := range second.Results {
		assert.Equal(t, OutcomeUnchanged, res.Outcome, res.Key)
		assert.Empty(t, res.Removed, res.Key)
	}
	if diff := cmp.Diff(after, snapshot(t, tree.Root)); diff != "" {
		t.Errorf("second run changed the tree (-first +second):\n%s", diff)
	}

	assert.Equal(t, "ignored\n", after["node_modules/.env"])
	assert.Equal(t, "model User {}\n", after["prisma/schema.prisma"])
	assert.NotContains(t, after, "schema.prisma")
	assert.Equal(t, "/*    /index.html   200\n", after["public/_redirects"])
	assert.Equal(t, "/*    /index.html   200\n", after["config/_redirects"])
}

func TestReconcile_CanonicalWinsRegardlessOfRecency(t *testing.T) {
	tree := newTree(t, files{
		"settings.yaml":     "canonical",
		"old/settings.yaml": "newer copy",
	})
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(tree.Abs("settings.yaml"), past, past))

	report := run(t, tree, newRegistry(t, artifact.Artifact{Key: "settings", Canonical: "settings.yaml"}))

	data, err := os.ReadFile(tree.Abs("settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "canonical", string(data))
	assert.NoFileExists(t, tree.Abs("old/settings.yaml"))
	assert.Equal(t, OutcomeDeduplicated, report.Results[0].Outcome)
}

func TestReconcile_Promotion(t *testing.T) {
	schema := artifact.Artifact{
		Key:        "schema",
		Canonical:  "prisma/schema.prisma",
		Alternates: []string{"schema.prisma"},
		Default:    artifact.Content{Text: "// default\n"},
	}

	t.Run("promotes root copy into nested path", func(t *testing.T) {
		tree := newTree(t, files{"schema.prisma": "model Post {}\n", "legacy/schema.prisma": "junk"})
		report := run(t, tree, newRegistry(t, schema))

		assert.Equal(t, files{
			"legacy/":              "",
			"prisma/":              "",
			"prisma/schema.prisma": "model Post {}\n",
		}, snapshot(t, tree.Root))
		res := report.Results[0]
		assert.Equal(t, OutcomeCreated, res.Outcome)
		assert.Equal(t, "promoted:schema.prisma", res.Source)
		assert.ElementsMatch(t, []string{"schema.prisma", "legacy/schema.prisma"}, res.Removed)
	})

	t.Run("never overwrites an existing canonical copy", func(t *testing.T) {
		tree := newTree(t, files{"schema.prisma": "root edit", "prisma/schema.prisma": "nested edit"})
		report := run(t, tree, newRegistry(t, schema))

		assert.Equal(t, files{"prisma/": "", "prisma/schema.prisma": "nested edit"}, snapshot(t, tree.Root))
		assert.Equal(t, "deduplicated(1)", report.Results[0].Label())
	})

	t.Run("undeclared copies are not promoted", func(t *testing.T) {
		tree := newTree(t, files{"elsewhere/schema.prisma": "stray"})
		report := run(t, tree, newRegistry(t, schema))

		assert.Equal(t, files{
			"elsewhere/":           "",
			"prisma/":              "",
			"prisma/schema.prisma": "// default\n",
		}, snapshot(t, tree.Root))
		assert.Equal(t, SourceDefault, report.Results[0].Source)
	})
}

func TestReconcile_ExactOverwrite(t *testing.T) {
	registry := deployRegistry(t)
	manifest, _ := registry.Get("deploy-manifest")
	expected, err := manifest.Default.Generate()
	require.NoError(t, err)

	tree := newTree(t, files{"vercel.json": `{"version":1}`})
	report := run(t, tree, newRegistry(t, manifest))

	res := report.Results[0]
	assert.Equal(t, OutcomeOverwritten, res.Outcome)
	assert.NotEqual(t, res.ExpectedDigest, res.ActualDigest)
	assert.Equal(t, artifact.Digest(expected), res.ExpectedDigest)

	data, err := os.ReadFile(tree.Abs("vercel.json"))
	require.NoError(t, err)
	assert.Equal(t, string(expected), string(data))
}

func TestReconcile_MirrorSource(t *testing.T) {
	mirrored := artifact.Artifact{
		Key:        "manifest",
		Canonical:  "vercel.json",
		MirrorFrom: "config/vercel.json",
		Policy:     artifact.PolicyExact,
		Default:    artifact.Content{Text: "default"},
	}

	t.Run("copies mirror and never deletes it", func(t *testing.T) {
		tree := newTree(t, files{"config/vercel.json": "authored", "other/vercel.json": "stray"})
		report := run(t, tree, newRegistry(t, mirrored))

		assert.Equal(t, files{
			"config/":            "",
			"config/vercel.json": "authored",
			"other/":             "",
			"vercel.json":        "authored",
		}, snapshot(t, tree.Root))
		res := report.Results[0]
		assert.Equal(t, "mirror:config/vercel.json", res.Source)
		assert.Equal(t, []string{"other/vercel.json"}, res.Removed)
	})

	t.Run("falls back to default without mirror", func(t *testing.T) {
		tree := newTree(t, nil)
		run(t, tree, newRegistry(t, mirrored))

		data, err := os.ReadFile(tree.Abs("vercel.json"))
		require.NoError(t, err)
		assert.Equal(t, "default", string(data))
	})
}

func TestReconcile_DirectoryArtifacts(t *testing.T) {
	tree := newTree(t, files{"functions": "a file, not a directory"})
	registry := newRegistry(t, artifact.Artifact{
		Key:       "functions",
		Canonical: "netlify/functions",
		Kind:      artifact.KindDir,
	})

	report := run(t, tree, registry)

	assert.DirExists(t, tree.Abs("netlify/functions"))
	assert.FileExists(t, tree.Abs("functions"), "entries of the wrong kind are not instances")
	assert.Equal(t, OutcomeCreated, report.Results[0].Outcome)
}

func TestReconcile_DryRun(t *testing.T) {
	initial := files{
		"a/redirect.cfg": "a",
		"redirect.cfg":   "root",
		"vercel.json":    "stale",
		"schema.prisma":  "model A {}",
	}
	tree := newTree(t, initial)
	registry := newRegistry(t,
		artifact.Artifact{Key: "redirect", Canonical: "redirect.cfg"},
		artifact.Artifact{Key: "manifest", Canonical: "vercel.json", Policy: artifact.PolicyExact, Default: artifact.Content{Text: "fresh"}},
		artifact.Artifact{Key: "schema", Canonical: "prisma/schema.prisma", Alternates: []string{"schema.prisma"}},
	)
	before := snapshot(t, tree.Root)

	report := run(t, tree, registry, WithDryRun(true))

	if diff := cmp.Diff(before, snapshot(t, tree.Root)); diff != "" {
		t.Errorf("dry run changed the tree:\n%s", diff)
	}
	assert.True(t, report.DryRun)
	assert.Equal(t, "deduplicated(1)", resultFor(t, report, "redirect").Label())
	assert.Equal(t, OutcomeOverwritten, resultFor(t, report, "manifest").Outcome)
	schema := resultFor(t, report, "schema")
	assert.Equal(t, OutcomeCreated, schema.Outcome)
	assert.Equal(t, "promoted:schema.prisma", schema.Source)
}

func TestReconcile_DeleteFailureIsWarning(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	tree := newTree(t, files{"cfg.toml": "keep", "locked/cfg.toml": "stuck"})
	locked := tree.Abs("locked")
	require.NoError(t, os.Chmod(locked, 0o555))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	report := run(t, tree, newRegistry(t, artifact.Artifact{Key: "cfg", Canonical: "cfg.toml"}))

	res := report.Results[0]
	assert.Equal(t, OutcomeUnchanged, res.Outcome)
	require.Len(t, res.Warnings, 1)
	assert.True(t, errors.Is(res.Warnings[0], errors.ErrDelete))
	assert.False(t, report.HasFailures())
}

func TestReconcile_MaterializeFailure(t *testing.T) {
	tree := newTree(t, files{"prisma": "a file where a directory belongs"})
	registry := newRegistry(t,
		artifact.Artifact{Key: "schema", Canonical: "prisma/schema.prisma", Required: true},
		artifact.Artifact{Key: "after", Canonical: "after.txt", Default: artifact.Content{Text: "ok"}},
	)

	report := run(t, tree, registry)

	schema := resultFor(t, report, "schema")
	assert.Equal(t, OutcomeFailed, schema.Outcome)
	assert.True(t, errors.Is(schema.Err, errors.ErrMaterialize))
	assert.Contains(t, schema.Err.Error(), "required artifact schema")
	assert.Len(t, report.RequiredFailures(), 1)

	assert.Equal(t, OutcomeCreated, resultFor(t, report, "after").Outcome, "a failure never stops the pass")
	assert.FileExists(t, filepath.Join(tree.Root, "after.txt"))
}

func TestReconcile_CanonicalUnderIgnoredDirectory(t *testing.T) {
	tree := newTree(t, files{"vendor/lock.cfg": "user content"}, "vendor")
	report := run(t, tree, newRegistry(t, artifact.Artifact{
		Key:       "lock",
		Canonical: "vendor/lock.cfg",
		Default:   artifact.Content{Text: "default"},
	}))

	data, err := os.ReadFile(tree.Abs("vendor/lock.cfg"))
	require.NoError(t, err)
	assert.Equal(t, "user content", string(data))
	assert.Equal(t, OutcomeUnchanged, report.Results[0].Outcome)
}

func TestReconcile_SharedBaseNameConverges(t *testing.T) {
	tree := newTree(t, nil)
	registry := newRegistry(t,
		artifact.Artifact{Key: "spa", Canonical: "public/_redirects", Default: artifact.Content{Text: "a"}},
		artifact.Artifact{Key: "root", Canonical: "_redirects", Default: artifact.Content{Text: "b"}},
	)

	first := run(t, tree, registry)
	assert.Equal(t, OutcomeCreated, resultFor(t, first, "spa").Outcome)
	assert.Equal(t, OutcomeCreated, resultFor(t, first, "root").Outcome)
	want := files{"public/": "", "public/_redirects": "a", "_redirects": "b"}
	if diff := cmp.Diff(want, snapshot(t, tree.Root)); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}

	for range 2 {
		report := run(t, tree, registry)
		assert.False(t, report.Changed(), report.Summary())
		if diff := cmp.Diff(want, snapshot(t, tree.Root)); diff != "" {
			t.Fatalf("tree changed on a later pass (-want +got):\n%s", diff)
		}
	}
}

func TestReconcile_SharedBaseNameStillDeduplicatesStrays(t *testing.T) {
	tree := newTree(t, files{
		"public/_redirects": "spa",
		"_redirects":        "root",
		"src/_redirects":    "stray",
	})
	registry := newRegistry(t,
		artifact.Artifact{Key: "spa", Canonical: "public/_redirects"},
		artifact.Artifact{Key: "root", Canonical: "_redirects"},
	)

	report := run(t, tree, registry)

	assert.Equal(t, []string{"src/_redirects"}, resultFor(t, report, "spa").Removed)
	assert.Equal(t, OutcomeUnchanged, resultFor(t, report, "root").Outcome)
	assert.FileExists(t, tree.Abs("public/_redirects"))
	assert.FileExists(t, tree.Abs("_redirects"))
}

func TestReconcile_PathsOnly(t *testing.T) {
	tree := newTree(t, files{"src/nextjs.js": "user module"})
	registry := newRegistry(t, artifact.Artifact{
		Key:       "handler",
		Canonical: "netlify/functions/nextjs.js",
		PathsOnly: true,
		Default:   artifact.Content{Text: "exports.handler = async () => ({ statusCode: 200 });"},
	})

	report := run(t, tree, registry)

	assert.Equal(t, OutcomeCreated, report.Results[0].Outcome)
	assert.Empty(t, report.Results[0].Removed)
	assert.FileExists(t, tree.Abs("src/nextjs.js"), "same base name outside the declared paths is left alone")
	assert.FileExists(t, tree.Abs("netlify/functions/nextjs.js"))
}

func TestReconcile_Absent(t *testing.T) {
	stale := artifact.Artifact{
		Key:        "stale-output-config",
		Canonical:  ".vercel/output/config.json",
		Alternates: []string{"app/.vercel/output/config.json"},
		Policy:     artifact.PolicyAbsent,
	}

	t.Run("removes declared paths under ignored directories", func(t *testing.T) {
		tree := newTree(t, files{
			".vercel/output/config.json":     `{"version":3}`,
			".vercel/project.json":           `{}`,
			"app/.vercel/output/config.json": `{"version":3}`,
			"config.json":                    "user config",
		}, ".vercel")

		report := run(t, tree, newRegistry(t, stale))

		res := report.Results[0]
		assert.Equal(t, OutcomeRemoved, res.Outcome)
		assert.Equal(t, "removed(2)", res.Label())
		assert.ElementsMatch(t, []string{".vercel/output/config.json", "app/.vercel/output/config.json"}, res.Removed)
		assert.NoFileExists(t, tree.Abs(".vercel/output/config.json"))
		assert.FileExists(t, tree.Abs(".vercel/project.json"))
		assert.FileExists(t, tree.Abs("config.json"), "absent artifacts are not discovered by name")
	})

	t.Run("nothing to remove", func(t *testing.T) {
		tree := newTree(t, nil)
		report := run(t, tree, newRegistry(t, stale))
		assert.Equal(t, OutcomeUnchanged, report.Results[0].Outcome)
		assert.NoDirExists(t, tree.Abs(".vercel"))
	})

	t.Run("dry run keeps the file", func(t *testing.T) {
		tree := newTree(t, files{".vercel/output/config.json": "{}"})
		report := run(t, tree, newRegistry(t, stale), WithDryRun(true))
		assert.Equal(t, OutcomeRemoved, report.Results[0].Outcome)
		assert.FileExists(t, tree.Abs(".vercel/output/config.json"))
	})
}

func TestNew_RejectsNilScanner(t *testing.T) {
	_, err := New(WithScanner(nil))
	assert.True(t, errors.IsValidationError(err))
}
