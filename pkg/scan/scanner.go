package scan

import (
	"io/fs"
	"iter"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/converge/pkg/errors"
)

// Entry is a file or directory found by a scan.
type Entry struct {
	Path    string    `json:"path" yaml:"path"` // absolute
	Name    string    `json:"name" yaml:"name"`
	IsDir   bool      `json:"is_dir" yaml:"is_dir"`
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// Scanner walks trees. The zero value is usable and drops skip reports.
type Scanner struct {
	onError func(error)
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithErrorHandler receives a *errors.ScanIOError for every entry skipped
// because it vanished or could not be read.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Scanner) {
		s.onError = fn
	}
}

// WithLogger logs skipped entries at warn level.
func WithLogger(logger *zerolog.Logger) Option {
	return WithErrorHandler(func(err error) {
		logger.Warn().Err(err).Msg("Skipped unreadable entry")
	})
}

// New creates a Scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan yields matching entries in depth-first pre-order. The root itself is
// never yielded. Ignored names are pruned before the predicate runs. Stopping
// the iteration stops the walk.
func (s *Scanner) Scan(tree *Tree, match Predicate) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		_ = filepath.WalkDir(tree.Root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				s.report(path, err)
				if d != nil && d.IsDir() && path != tree.Root {
					return filepath.SkipDir
				}
				return nil
			}
			if path == tree.Root {
				return nil
			}

			name := d.Name()
			if tree.Ignored(name) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !match(name) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				s.report(path, err)
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !yield(Entry{Path: path, Name: name, IsDir: d.IsDir(), ModTime: info.ModTime()}) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (s *Scanner) report(path string, err error) {
	if s.onError != nil {
		s.onError(&errors.ScanIOError{Path: path, Err: err})
	}
}
