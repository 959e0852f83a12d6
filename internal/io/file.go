package ioutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
)

// tempPattern names in-flight copies. The ".part" extension keeps them out
// of scans if a process dies mid-copy.
const tempPattern = ".organisiert-*.part"

// CopyFile copies a file from source to destination.
//
// The data is written to a temporary file in the destination directory and
// renamed over the destination once complete, so the destination either
// keeps its old content or holds the full copy. The copy stops early when
// ctx is cancelled. The destination gets the source's permission bits.
//
// Example:
//
//	err := CopyFile(ctx, afero.NewOsFs(), "/path/to/source.mp3", "/path/to/dest.mp3")
func CopyFile(ctx context.Context, fs afero.Fs, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sourceFile, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	info, err := sourceFile.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("copy %s: is a directory", src)
	}

	tmp, err := afero.TempFile(fs, filepath.Dir(dst), tempPattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	_, err = io.Copy(tmp, contextReader{ctx: ctx, r: sourceFile})
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = fs.Chmod(tmpName, info.Mode().Perm())
	}
	if err == nil {
		err = fs.Rename(tmpName, dst)
	}
	if err != nil {
		_ = fs.Remove(tmpName)
		return err
	}
	return nil
}

// contextReader fails reads once its context is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// MoveFile moves a file from source to destination.
//
// A plain rename is tried first. When source and destination live on
// different devices the file is copied and the source removed afterwards;
// failing to remove the source leaves both copies in place and is reported.
func MoveFile(ctx context.Context, fs afero.Fs, src, dst string) error {
	renameErr := fs.Rename(src, dst)
	if renameErr == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(renameErr, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return renameErr
	}

	if err := CopyFile(ctx, fs, src, dst); err != nil {
		return err
	}
	if err := fs.Remove(src); err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755. An existing directory is not an
// error.
func EnsureDir(fs afero.Fs, path string) error {
	return fs.MkdirAll(path, 0o755)
}

// Remove deletes a single file. A file that is already gone is not an error.
func Remove(fs afero.Fs, path string) error {
	err := fs.Remove(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// IsDir reports whether path exists and is a directory.
func IsDir(fs afero.Fs, path string) (bool, error) {
	info, err := fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
