// Package fsutil holds the small filesystem primitives shared by the
// reconciler and the bundle assembler: atomic writes and copies, and
// idempotent directory creation.
package fsutil

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/agentstation/converge/pkg/constants"
	"github.com/agentstation/converge/pkg/errors"
)

// Exists reports whether path exists. Errors other than not-exist count as existing
// so callers never overwrite something they merely failed to stat.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

// EnsureDir creates dir and any missing parents. It is a no-op if dir exists.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}
	return nil
}

// WriteFileAtomic replaces path with data so readers never observe a
// half-written file. Parent directories are created first.
func WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := renameio.WriteFile(path, data, perm, renameio.WithTempDir(filepath.Dir(path))); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// CopyFile copies src to dst atomically, keeping the source permission bits.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.WrapIO("open", src, err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return errors.WrapIO("stat", src, err)
	}
	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}

	pending, err := renameio.NewPendingFile(dst,
		renameio.WithTempDir(filepath.Dir(dst)),
		renameio.WithPermissions(info.Mode().Perm()),
		renameio.IgnoreUmask(),
	)
	if err != nil {
		return errors.WrapIO("create", dst, err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := io.Copy(pending, in); err != nil {
		return errors.WrapIO("copy", src, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return errors.WrapIO("rename", dst, err)
	}
	return nil
}

// Remove deletes path recursively. A path that is already gone is not an error.
func Remove(path string) error {
	if err := os.RemoveAll(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
