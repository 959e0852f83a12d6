package organize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/handiism/organisiert/internal/config"
	"github.com/handiism/organisiert/internal/errs"
	ioutils "github.com/handiism/organisiert/internal/io"
	"github.com/handiism/organisiert/internal/library"
	"github.com/handiism/organisiert/internal/model"
	"github.com/handiism/organisiert/internal/pathfmt"
	"github.com/handiism/organisiert/internal/scan"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Mode selects how files reach the output tree.
type Mode int

const (
	// Copy leaves the source file in place.
	Copy Mode = iota

	// Move removes the source file once it is in place.
	Move
)

func (m Mode) String() string {
	if m == Move {
		return "move"
	}
	return "copy"
}

// Options configures an Organizer.
type Options struct {
	Mode Mode

	// Workers bounds the number of files processed in parallel. Values
	// below 1 mean 1.
	Workers int

	Logger     *zap.Logger
	OnProgress func(model.ProgressEvent)
}

// Organizer places files into one output tree.
type Organizer struct {
	fs        afero.Fs
	outputDir string
	rules     config.Rules

	structure   *pathfmt.Template
	compilation *pathfmt.Template
	fallback    *pathfmt.Template
	sanitizer   *pathfmt.Sanitizer
	resolver    *library.Resolver

	mode       Mode
	workers    int
	logger     *zap.Logger
	onProgress func(model.ProgressEvent)

	// destinations serializes transfers per destination path.
	destinations sync.Map

	mu     sync.Mutex
	result model.OrganizeResult
	done   atomic.Int32
}

// New creates an Organizer for outputDir. cfg must have passed Validate.
func New(fs afero.Fs, cfg *config.Config, outputDir string, opts Options) *Organizer {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	o := &Organizer{
		fs:         fs,
		outputDir:  filepath.Clean(outputDir),
		rules:      cfg.Rules,
		structure:  pathfmt.Compile(cfg.Organization.Structure),
		fallback:   pathfmt.Compile(cfg.Organization.FallbackStructure),
		sanitizer:  cfg.Sanitizer(),
		mode:       opts.Mode,
		workers:    workers,
		logger:     logger,
		onProgress: opts.OnProgress,
	}
	o.resolver = library.NewResolver(o.occupied)
	if cfg.Organization.CompilationStructure != "" {
		o.compilation = pathfmt.Compile(cfg.Organization.CompilationStructure)
	}
	return o
}

// Seed records files already present in the output tree so that incoming
// files with the same identity are treated as duplicates. It returns the
// number of identities recorded.
func (o *Organizer) Seed(entries []scan.Entry) int {
	for _, entry := range entries {
		key := o.resolver.Seed(model.KeyFor(entry.Metadata, entry.Path), entry.Path)
		o.logger.Debug("seeded identity", zap.String("path", entry.Path), zap.Stringer("key", key))
	}
	return o.resolver.Len()
}

// Run organizes entries and returns the aggregated outcomes.
//
// Per-file failures never abort the run; they are counted and reported
// through the progress callback and the logger.
func (o *Organizer) Run(ctx context.Context, entries []scan.Entry) (model.OrganizeResult, error) {
	start := time.Now()
	total := len(entries)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			outcome, message := o.organizeFile(ctx, entry)
			o.record(outcome)
			o.progress(model.ProgressEvent{
				Message: message,
				Level:   levelFor(outcome),
				Done:    int(o.done.Add(1)),
				Total:   total,
			})
			return nil
		})
	}

	err := g.Wait()

	o.mu.Lock()
	result := o.result
	o.mu.Unlock()
	result.Duration = time.Since(start)
	return result, err
}

// Destination renders and sanitizes the destination of entry. ok is false
// when metadata is missing and the policy is skip.
func (o *Organizer) Destination(entry scan.Entry) (path string, ok bool) {
	tmpl := o.structure
	if o.compilation != nil && entry.Metadata.IsCompilation() {
		tmpl = o.compilation
	}

	rendered, ok := tmpl.Render(entry.Metadata, entry.Path, o.sanitizer)
	if !ok {
		if o.rules.HandleMissingMetadata == config.MissingSkip {
			return "", false
		}
		rendered, ok = o.fallback.Render(entry.Metadata, entry.Path, o.sanitizer)
		if !ok {
			return "", false
		}
	}

	rel := filepath.FromSlash(o.sanitizer.SanitizePath(rendered))
	return filepath.Join(o.outputDir, rel), true
}

// organizeFile runs one file to its terminal outcome and describes it.
func (o *Organizer) organizeFile(ctx context.Context, entry scan.Entry) (model.Outcome, string) {
	name := filepath.Base(entry.Path)
	logger := o.logger.With(zap.String("path", entry.Path))

	dest, ok := o.Destination(entry)
	if !ok {
		logger.Warn("insufficient metadata, skipping")
		return model.OutcomeSkipped, fmt.Sprintf("Skipped (missing metadata): %s", name)
	}
	if !o.contains(dest) {
		err := errs.Wrap(errs.ErrTransfer, "organize", "resolve destination", "destination escapes output directory", nil)
		logger.Warn("rejected destination", zap.String("destination", dest), zap.Error(err))
		return model.OutcomeFailed, fmt.Sprintf("Failed: %s: %v", name, err)
	}

	key := model.KeyFor(entry.Metadata, entry.Path)
	decision := o.resolver.Resolve(entry.Path, dest, key, o.rules.HandleDuplicates)
	if decision.Action == library.Duplicate {
		logger.Debug("duplicate", zap.Stringer("key", key), zap.String("existing", decision.Path))
		return model.OutcomeDuplicate, fmt.Sprintf("Duplicate: %s (already at %s)", name, o.relative(decision.Path))
	}

	if err := o.transfer(ctx, entry.Path, decision.Path); err != nil {
		o.resolver.Release(decision)
		logger.Warn("transfer failed", zap.String("destination", decision.Path), zap.Error(err))
		return model.OutcomeFailed, fmt.Sprintf("Failed: %s: %v", name, err)
	}
	o.resolver.Commit(decision)
	if decision.Replaces != "" {
		o.removeReplaced(logger, decision.Replaces)
	}

	logger.Debug("placed file", zap.String("destination", decision.Path), zap.Stringer("mode", o.mode))
	verb := "Copied"
	if o.mode == Move {
		verb = "Moved"
	}
	return model.OutcomeMoved, fmt.Sprintf("%s: %s -> %s", verb, name, o.relative(decision.Path))
}

func (o *Organizer) transfer(ctx context.Context, src, dst string) error {
	unlock := o.lockDestination(dst)
	defer unlock()

	dir := filepath.Dir(dst)
	if err := ioutils.EnsureDir(o.fs, dir); err != nil {
		return errs.Wrap(errs.ErrTransfer, "organize", "create directory", dir, err)
	}

	var err error
	if o.mode == Move {
		err = ioutils.MoveFile(ctx, o.fs, src, dst)
	} else {
		err = ioutils.CopyFile(ctx, o.fs, src, dst)
	}
	if err != nil {
		return errs.Wrap(errs.ErrTransfer, "organize", o.mode.String(), "", err)
	}
	return nil
}

// removeReplaced deletes a file superseded by the overwrite policy once any
// transfer still writing it has finished. Failure is logged and otherwise
// ignored.
func (o *Organizer) removeReplaced(logger *zap.Logger, path string) {
	<-o.resolver.Settled(path)
	defer o.resolver.Retired(path)

	unlock := o.lockDestination(path)
	defer unlock()

	if err := ioutils.Remove(o.fs, path); err != nil {
		logger.Debug("could not remove overwritten file", zap.String("replaced", path), zap.Error(err))
		return
	}
	logger.Debug("removed overwritten file", zap.String("replaced", path))
}

func (o *Organizer) lockDestination(path string) func() {
	v, _ := o.destinations.LoadOrStore(path, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// occupied reports whether something already exists at path. Stat errors
// other than a missing file count as occupied.
func (o *Organizer) occupied(path string) bool {
	_, err := o.fs.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

func (o *Organizer) contains(path string) bool {
	rel, err := filepath.Rel(o.outputDir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (o *Organizer) relative(path string) string {
	if rel, err := filepath.Rel(o.outputDir, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

func (o *Organizer) record(outcome model.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.result.Add(outcome)
}

func levelFor(outcome model.Outcome) model.ProgressLevel {
	switch outcome {
	case model.OutcomeSkipped:
		return model.LevelWarning
	case model.OutcomeFailed:
		return model.LevelError
	case model.OutcomeMoved:
		return model.LevelSuccess
	default:
		return model.LevelVerbose
	}
}

func (o *Organizer) progress(event model.ProgressEvent) {
	if o.onProgress != nil {
		o.onProgress(event)
	}
}
