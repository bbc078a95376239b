// Package bundle assembles a static deployment bundle: it merges the static
// source directory into the publish directory and writes the routing fallback,
// headers and host manifest files a static host reads.
//
// Nothing already present in the publish directory is ever overwritten, so a
// file shipped by the build always wins over a generated one.
package bundle

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/agentstation/converge/internal/fsutil"
	"github.com/agentstation/converge/pkg/constants"
	"github.com/agentstation/converge/pkg/errors"
	"github.com/agentstation/converge/pkg/logging"
)

// Result describes what an assembly did.
type Result struct {
	// Copied counts files copied from the source directory.
	Copied int `json:"copied" yaml:"copied"`

	// Written lists generated files, relative to the publish directory.
	Written []string `json:"written" yaml:"written"`

	// Skipped lists paths left alone because they already existed.
	Skipped []string `json:"skipped" yaml:"skipped"`

	// Errors are per-entry failures; assembly continues past them.
	Errors []error `json:"-" yaml:"-"`
}

// Assembler builds static bundles.
type Assembler struct {
	cfg Config
}

// New creates an Assembler.
func New(cfg Config) *Assembler {
	return &Assembler{cfg: cfg}
}

// Config returns the assembler configuration.
func (a *Assembler) Config() Config {
	return a.cfg
}

// Assemble copies sourceDir into publishDir and writes the generated files.
// Only a publish directory that cannot be created is returned as an error.
func (a *Assembler) Assemble(ctx context.Context, sourceDir, publishDir string) (*Result, error) {
	logger := logging.FromContext(ctx)
	result := &Result{Written: []string{}, Skipped: []string{}}

	if err := fsutil.EnsureDir(publishDir); err != nil {
		return result, err
	}

	if sourceDir != "" {
		a.copyTree(logger, sourceDir, publishDir, result)
	}

	a.generate(logger, publishDir, a.cfg.FallbackFile, result, func() ([]byte, error) {
		return RenderFallback(a.cfg.Fallback), nil
	})
	if len(a.cfg.Headers) > 0 {
		a.generate(logger, publishDir, a.cfg.HeadersFile, result, func() ([]byte, error) {
			return RenderHeaders(a.cfg.Headers), nil
		})
	}
	a.generate(logger, publishDir, a.cfg.ManifestFile, result, func() ([]byte, error) {
		return RenderManifest(a.cfg)
	})

	logger.Info().
		Int("copied", result.Copied).
		Int("written", len(result.Written)).
		Int("skipped", len(result.Skipped)).
		Int("errors", len(result.Errors)).
		Str("publish_dir", publishDir).
		Msg("Assembled static bundle")
	return result, nil
}

// copyTree merges src into dst without overwriting existing files.
func (a *Assembler) copyTree(logger *zerolog.Logger, src, dst string, result *Result) {
	src = filepath.Clean(src)
	dst = filepath.Clean(dst)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("source_dir", src).Msg("Static source directory not found, skipping copy")
		} else {
			logger.Warn().Err(err).Str("source_dir", src).Msg("Cannot read static source directory")
		}
		result.Errors = append(result.Errors, errors.WrapIO("stat", src, err))
		return
	}

	_ = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable entry")
			result.Errors = append(result.Errors, errors.WrapIO("read", path, err))
			return nil
		}
		if path == dst {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return nil
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			if err := fsutil.EnsureDir(target); err != nil {
				logger.Warn().Err(err).Str("path", target).Msg("Failed to create directory")
				result.Errors = append(result.Errors, err)
				return filepath.SkipDir
			}
			return nil
		}

		if fsutil.Exists(target) {
			result.Skipped = append(result.Skipped, filepath.ToSlash(rel))
			return nil
		}
		if err := fsutil.CopyFile(path, target); err != nil {
			logger.Warn().Err(err).Str("path", rel).Msg("Failed to copy file")
			result.Errors = append(result.Errors, err)
			return nil
		}
		result.Copied++
		return nil
	})
}

// generate writes name under publishDir when it does not exist yet.
func (a *Assembler) generate(logger *zerolog.Logger, publishDir, name string, result *Result, render func() ([]byte, error)) {
	if name == "" {
		return
	}
	path := filepath.Join(publishDir, filepath.FromSlash(name))
	if fsutil.Exists(path) {
		logger.Debug().Str("file", name).Msg("Keeping existing file")
		result.Skipped = append(result.Skipped, name)
		return
	}
	data, err := render()
	if err == nil {
		err = fsutil.WriteFileAtomic(path, data, constants.FilePermissions)
	}
	if err != nil {
		logger.Warn().Err(err).Str("file", name).Msg("Failed to write generated file")
		result.Errors = append(result.Errors, err)
		return
	}
	result.Written = append(result.Written, name)
}
