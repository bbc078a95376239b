package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agentstation/converge/pkg/constants"
	"github.com/agentstation/converge/pkg/errors"
)

// Config holds the application configuration loaded from config files,
// environment variables, .env files and flags.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file actually read, if any
	ConfigFile string

	// Project and target
	Root       string
	Target     string
	TargetFile string
	DryRun     bool

	// Ignore extends the ignore set; ReplaceIgnore drops the target's own
	// entries. node_modules and .git are always ignored.
	Ignore        []string
	ReplaceIgnore bool

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string

	// envKeys are the variables set from the root's .env files.
	envKeys []string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (applied later by UpdateFromFlags)
//  2. CONVERGE_* environment variables
//  3. .env and .env.local files in the project root
//  4. Config file (configFile, or .converge.yaml in the working or home directory)
//  5. Defaults
//
// An empty root is resolved from the environment and config file.
func LoadConfig(configFile, root string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("root", ".")
	v.SetDefault("target", constants.DefaultTarget)
	v.SetDefault("format", "")
	v.SetDefault("dry_run", false)

	if configFile == "" {
		configFile = os.Getenv(constants.EnvPrefix + "_CONFIG")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(constants.ConfigFileName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "failed to read config file", err)
		}
	}

	if root == "" {
		root = v.GetString("root")
	}
	// viper reads the environment lazily, so values from the root's .env
	// files are visible to every Get below
	envKeys := loadEnvFiles(root)

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Root:          root,
		Target:        v.GetString("target"),
		TargetFile:    v.GetString("target_file"),
		ReplaceIgnore: v.GetBool("replace_ignore"),
		DryRun:        v.GetBool("dry_run"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),

		envKeys: envKeys,
	}
	if v.IsSet("ignore") {
		config.Ignore = v.GetStringSlice("ignore")
	}

	return config, nil
}

// UpdateFromFlags copies every explicitly set global flag into the config,
// so flag values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(flags *pflag.FlagSet) {
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "verbose":
			c.Verbose, _ = flags.GetBool(f.Name)
			c.clearEnvLogLevel(flags)
		case "quiet":
			c.Quiet, _ = flags.GetBool(f.Name)
			c.clearEnvLogLevel(flags)
		case "no-color":
			c.NoColor, _ = flags.GetBool(f.Name)
		case "format":
			c.Format, _ = flags.GetString(f.Name)
		case "log-level":
			c.LogLevel, _ = flags.GetString(f.Name)
		case "root":
			c.Root, _ = flags.GetString(f.Name)
		case "target":
			c.Target, _ = flags.GetString(f.Name)
			// An explicit --target overrides a configured target file
			c.TargetFile = ""
		case "ignore":
			c.Ignore, _ = flags.GetStringSlice(f.Name)
		case "replace-ignore":
			c.ReplaceIgnore, _ = flags.GetBool(f.Name)
		}
	})
}

// clearEnvLogLevel drops a LOG_LEVEL taken from the environment when a
// -v or -q flag is given without --log-level.
func (c *Config) clearEnvLogLevel(flags *pflag.FlagSet) {
	if !flags.Changed("log-level") {
		c.LogLevel = ""
	}
}

// loadEnvFiles sets variables from root's .env.local and .env files and
// returns the keys it set. .env.local overrides .env; neither overrides the
// real environment.
func loadEnvFiles(root string) []string {
	var keys []string
	for _, name := range []string{".env.local", ".env"} {
		values, err := godotenv.Read(filepath.Join(root, name))
		if err != nil {
			continue
		}
		for key, value := range values {
			if _, exists := os.LookupEnv(key); exists {
				continue
			}
			if err := os.Setenv(key, value); err == nil {
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// unloadEnvFiles removes the variables a previous load took from .env files.
func (c *Config) unloadEnvFiles() {
	for _, key := range c.envKeys {
		_ = os.Unsetenv(key)
	}
	c.envKeys = nil
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
