// Package ioutils provides the file system operations the organizer performs.
//
// Every function takes an afero.Fs so the same code runs against the real
// disk (afero.NewOsFs) and against an in-memory tree in tests.
//
// # Transfers
//
//	fs := afero.NewOsFs()
//
//	// Copy a file; the destination is replaced only once the copy is complete
//	err := ioutils.CopyFile(ctx, fs, "/in/a.mp3", "/out/Air/a.mp3")
//
//	// Move a file; falls back to copy and remove across devices
//	err := ioutils.MoveFile(ctx, fs, "/in/a.mp3", "/out/Air/a.mp3")
//
// # Directories
//
// EnsureDir is idempotent and safe to call from several goroutines for the
// same path:
//
//	err := ioutils.EnsureDir(fs, "/out/Air/1998 - Moon Safari")
package ioutils
