package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	config, err := LoadConfig("", "")
	require.NoError(t, err)
	assert.Equal(t, ".", config.Root)
	assert.Equal(t, "vercel", config.Target)
	assert.Nil(t, config.Ignore)
	assert.False(t, config.DryRun)
	assert.Equal(t, "auto", config.LogFormat)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONVERGE_TARGET", "netlify")
	t.Setenv("CONVERGE_DRY_RUN", "true")
	t.Setenv("CONVERGE_IGNORE", "dist tmp")
	t.Setenv("LOG_LEVEL", "debug")

	config, err := LoadConfig("", "")
	require.NoError(t, err)
	assert.Equal(t, "netlify", config.Target)
	assert.True(t, config.DryRun)
	assert.Equal(t, []string{"dist", "tmp"}, config.Ignore)
	assert.Equal(t, "debug", config.LogLevel)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".converge.yaml"), []byte(`
root: ./site
target: static
ignore: [build, cache]
format: yaml
`), 0o644))

	config, err := LoadConfig("", "")
	require.NoError(t, err)
	assert.Equal(t, "./site", config.Root)
	assert.Equal(t, "static", config.Target)
	assert.Equal(t, []string{"build", "cache"}, config.Ignore)
	assert.Equal(t, "yaml", config.Format)
	assert.Contains(t, config.ConfigFile, ".converge.yaml")

	t.Run("environment beats file", func(t *testing.T) {
		t.Setenv("CONVERGE_TARGET", "netlify")
		config, err := LoadConfig("", "")
		require.NoError(t, err)
		assert.Equal(t, "netlify", config.Target)
	})
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CONVERGE_TARGET=netlify\n"), 0o644))

	config, err := LoadConfig("", "")
	require.NoError(t, err)
	t.Cleanup(config.unloadEnvFiles)
	assert.Equal(t, "netlify", config.Target)
}

func TestLoadConfig_DotEnvFromRoot(t *testing.T) {
	cwd := t.TempDir()
	t.Chdir(cwd)
	require.NoError(t, os.WriteFile(filepath.Join(cwd, ".env"), []byte("CONVERGE_TARGET=netlify\nCONVERGE_TEST_CWD_ONLY=1\n"), 0o644))

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("CONVERGE_TARGET=static\nCONVERGE_TEST_DB=mongodb://localhost/app\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env.local"), []byte("CONVERGE_TEST_DB=mongodb://localhost/local\n"), 0o644))

	config, err := LoadConfig("", root)
	require.NoError(t, err)
	t.Cleanup(config.unloadEnvFiles)

	assert.Equal(t, root, config.Root)
	assert.Equal(t, "static", config.Target, "the working directory's .env is not read")
	assert.Equal(t, "mongodb://localhost/local", os.Getenv("CONVERGE_TEST_DB"), ".env.local wins over .env")
	_, set := os.LookupEnv("CONVERGE_TEST_CWD_ONLY")
	assert.False(t, set)

	config.unloadEnvFiles()
	_, set = os.LookupEnv("CONVERGE_TEST_DB")
	assert.False(t, set)
}

func TestLoadConfig_DotEnvNeverOverridesEnvironment(t *testing.T) {
	root := t.TempDir()
	t.Chdir(t.TempDir())
	t.Setenv("CONVERGE_TARGET", "vercel")
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("CONVERGE_TARGET=static\n"), 0o644))

	config, err := LoadConfig("", root)
	require.NoError(t, err)
	t.Cleanup(config.unloadEnvFiles)
	assert.Equal(t, "vercel", config.Target)
	assert.Empty(t, config.envKeys)
}

func TestLoadConfig_ExplicitFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := LoadConfig("missing.yaml", "")
	assert.Error(t, err)
}

func TestConfig_UpdateFromFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.BoolP("verbose", "v", false, "")
	flags.Bool("quiet", false, "")
	flags.String("log-level", "", "")
	flags.String("target", "", "")
	flags.String("root", ".", "")
	flags.StringSlice("ignore", nil, "")
	flags.Bool("replace-ignore", false, "")
	require.NoError(t, flags.Parse([]string{"-v", "--target", "static", "--ignore", "a,b", "--replace-ignore"}))

	config := &Config{Root: "configured", Target: "netlify", TargetFile: "t.yaml", LogLevel: "error"}
	config.UpdateFromFlags(flags)

	assert.True(t, config.Verbose)
	assert.Equal(t, "static", config.Target)
	assert.Empty(t, config.TargetFile)
	assert.Equal(t, []string{"a", "b"}, config.Ignore)
	assert.True(t, config.ReplaceIgnore)
	assert.Equal(t, "configured", config.Root, "unset flags keep config values")
	assert.Empty(t, config.LogLevel, "-v replaces an environment log level")
}
