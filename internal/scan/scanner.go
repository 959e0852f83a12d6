// Package scan enumerates music files under a directory and extracts their
// metadata in parallel.
//
// The same Scanner serves the input tree (files to organize) and the output
// tree (files that seed the identity map).
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/handiism/organisiert/internal/model"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Extensions lists the file extensions picked up by the scanner, without
// the leading dot.
var Extensions = []string{"mp3", "flac", "m4a", "wav", "ogg", "aac"}

// Extractor reads the metadata of one file.
type Extractor interface {
	Extract(path string) (model.Metadata, error)
}

// Entry is a file whose metadata was read successfully.
type Entry struct {
	Path     string
	Metadata model.Metadata
}

// Failure is a file whose metadata could not be read.
type Failure struct {
	Path string
	Err  error
}

// Result is the outcome of one scan. Entries and Failures are sorted by path.
type Result struct {
	Entries  []Entry
	Failures []Failure
	Duration time.Duration
}

// Options configures a Scanner.
type Options struct {
	// Workers bounds parallel extraction. Values below 1 mean 1.
	Workers int

	Logger     *zap.Logger
	OnProgress func(model.ProgressEvent)
}

// Scanner walks a file system and extracts metadata.
type Scanner struct {
	fs         afero.Fs
	extractor  Extractor
	workers    int
	logger     *zap.Logger
	onProgress func(model.ProgressEvent)
}

// NewScanner creates a Scanner reading through fs.
func NewScanner(fs afero.Fs, extractor Extractor, opts Options) *Scanner {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		fs:         fs,
		extractor:  extractor,
		workers:    workers,
		logger:     logger,
		onProgress: opts.OnProgress,
	}
}

// IsSupported reports whether path has one of the scanned extensions,
// ignoring case.
func IsSupported(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return false
	}
	for _, candidate := range Extensions {
		if strings.EqualFold(ext, candidate) {
			return true
		}
	}
	return false
}

// Find lists the supported regular files under root, sorted. Symbolic links
// are not followed. Unreadable subdirectories are logged and skipped.
func (s *Scanner) Find(root string) ([]string, error) {
	info, err := s.fs.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var paths []string
	err = afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			s.logger.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() || !IsSupported(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// Scan finds the supported files under root and extracts their metadata
// using up to Options.Workers goroutines. A file whose metadata cannot be
// read is reported in Result.Failures and does not stop the scan.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	start := time.Now()

	paths, err := s.Find(root)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if len(paths) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	entries := make([]*Entry, len(paths))
	var (
		mu       sync.Mutex
		failures []Failure
		done     atomic.Int32
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			meta, err := s.extractor.Extract(path)
			n := int(done.Add(1))
			if err != nil {
				s.logger.Warn("failed to extract metadata", zap.String("path", path), zap.Error(err))
				mu.Lock()
				failures = append(failures, Failure{Path: path, Err: err})
				mu.Unlock()
				s.progress(model.ProgressEvent{
					Message: fmt.Sprintf("Failed to extract metadata from %s: %v", path, err),
					Level:   model.LevelWarning,
					Done:    n,
					Total:   len(paths),
				})
				return nil
			}

			entries[i] = &Entry{Path: path, Metadata: meta}
			s.progress(model.ProgressEvent{
				Message: filepath.Base(path),
				Level:   model.LevelVerbose,
				Done:    n,
				Total:   len(paths),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Entries = make([]Entry, 0, len(paths)-len(failures))
	for _, entry := range entries {
		if entry != nil {
			result.Entries = append(result.Entries, *entry)
		}
	}
	sort.Slice(failures, func(i, j int) bool { return failures[i].Path < failures[j].Path })
	result.Failures = failures
	result.Duration = time.Since(start)
	return result, nil
}

// Summary renders "N files processed[, M failed] in S.SSs".
func (r *Result) Summary() string {
	seconds := r.Duration.Seconds()
	if len(r.Failures) > 0 {
		return fmt.Sprintf("%d files processed, %d failed in %.2fs", len(r.Entries), len(r.Failures), seconds)
	}
	return fmt.Sprintf("%d files processed in %.2fs", len(r.Entries), seconds)
}

func (s *Scanner) progress(event model.ProgressEvent) {
	if s.onProgress != nil {
		s.onProgress(event)
	}
}
