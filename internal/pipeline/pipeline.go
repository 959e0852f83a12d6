// Package pipeline wires scanning, identity seeding and organizing into the
// staged run behind the organisiert command.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/handiism/organisiert/internal/audio"
	"github.com/handiism/organisiert/internal/config"
	"github.com/handiism/organisiert/internal/errs"
	ioutils "github.com/handiism/organisiert/internal/io"
	"github.com/handiism/organisiert/internal/model"
	"github.com/handiism/organisiert/internal/organize"
	"github.com/handiism/organisiert/internal/scan"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// TotalStages is the number of stage headers of a full run.
const TotalStages = 4

// previewCount is how many scanned files verbose mode lists.
const previewCount = 5

// Reporter receives the observable side of a run.
type Reporter interface {
	// Stage announces stage step of TotalStages.
	Stage(step int, title string)

	// Progress forwards scan and organize progress events.
	Progress(model.ProgressEvent)

	// Info prints a line of run output.
	Info(message string)
}

// Params are the per-run inputs taken from the command line.
type Params struct {
	InputDir  string
	OutputDir string
	Mode      organize.Mode

	// Workers overrides performance.workers when positive.
	Workers int

	Verbose bool
}

// Summary describes a finished run.
type Summary struct {
	Workers int
	Scan    *scan.Result
	Seeded  int
	Result  model.OrganizeResult
}

// Pipeline runs the scan and organize stages for one invocation.
type Pipeline struct {
	fs     afero.Fs
	cfg    *config.Config
	params Params
	logger *zap.Logger
}

// New creates a Pipeline. cfg must have passed Validate.
func New(fs afero.Fs, cfg *config.Config, params Params, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	params.InputDir = filepath.Clean(params.InputDir)
	params.OutputDir = filepath.Clean(params.OutputDir)
	return &Pipeline{fs: fs, cfg: cfg, params: params, logger: logger}
}

// VerifyPaths checks that the input and output directories exist. Errors
// are tagged with errs.ErrPathValidation.
func VerifyPaths(fs afero.Fs, inputDir, outputDir string) error {
	for _, dir := range []struct{ name, path string }{
		{"input", inputDir},
		{"output", outputDir},
	} {
		ok, err := ioutils.IsDir(fs, dir.path)
		if err != nil {
			return errs.Wrap(errs.ErrPathValidation, "verify", dir.name+" directory", dir.path, err)
		}
		if !ok {
			return errs.Wrap(errs.ErrPathValidation, "verify", dir.name+" directory",
				fmt.Sprintf("%s does not exist or is not a directory", dir.path), nil)
		}
	}
	return nil
}

// Run scans the input tree, seeds the identity map from the output tree and
// organizes every scanned file. Only scanning errors for the input root are
// returned; per-file problems end up in the Summary.
func (p *Pipeline) Run(ctx context.Context, r Reporter) (*Summary, error) {
	workers := p.cfg.WorkerCount(p.params.Workers)
	summary := &Summary{Workers: workers}

	extractor := audio.NewExtractor(p.fs)
	scanner := scan.NewScanner(p.fs, extractor, scan.Options{
		Workers:    workers,
		Logger:     p.logger,
		OnProgress: r.Progress,
	})

	r.Stage(3, "Scanning music files...")
	result, err := scanner.Scan(ctx, p.params.InputDir)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errs.Wrap(errs.ErrPathValidation, "scan", "input directory", p.params.InputDir, err)
	}
	summary.Scan = result
	r.Info(result.Summary())
	p.logger.Info("scan complete",
		zap.Int("files", len(result.Entries)),
		zap.Int("failed", len(result.Failures)),
		zap.Duration("duration", result.Duration),
	)

	if len(result.Entries) == 0 {
		r.Info("No music files found to organize.")
		return summary, nil
	}
	if p.params.Verbose {
		for _, entry := range preview(result.Entries) {
			r.Info(describe(entry))
		}
		if extra := len(result.Entries) - previewCount; extra > 0 {
			r.Info(fmt.Sprintf("... and %d more files", extra))
		}
	}

	r.Stage(4, "Organizing music files...")
	organizer := organize.New(p.fs, p.cfg, p.params.OutputDir, organize.Options{
		Mode:       p.params.Mode,
		Workers:    workers,
		Logger:     p.logger,
		OnProgress: r.Progress,
	})

	// The output tree is scanned quietly; its progress would read as input progress.
	existing, err := scan.NewScanner(p.fs, extractor, scan.Options{Workers: workers, Logger: p.logger}).
		Scan(ctx, p.params.OutputDir)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errs.Wrap(errs.ErrPathValidation, "scan", "output directory", p.params.OutputDir, err)
	}
	summary.Seeded = organizer.Seed(existing.Entries)
	p.logger.Info("seeded identity map", zap.Int("identities", summary.Seeded))
	if p.params.Verbose && summary.Seeded > 0 {
		r.Info(fmt.Sprintf("%d files already in the output directory", summary.Seeded))
	}

	summary.Result, err = organizer.Run(ctx, result.Entries)
	if err != nil {
		return summary, err
	}
	p.logger.Info("organize complete",
		zap.Int("moved", summary.Result.Moved),
		zap.Int("skipped", summary.Result.Skipped),
		zap.Int("duplicates", summary.Result.Duplicates),
		zap.Int("failed", summary.Result.Failed),
		zap.Duration("duration", summary.Result.Duration),
	)
	return summary, nil
}

func preview(entries []scan.Entry) []scan.Entry {
	if len(entries) > previewCount {
		return entries[:previewCount]
	}
	return entries
}

func describe(entry scan.Entry) string {
	meta := entry.Metadata
	artist := meta.EffectiveArtist()
	if artist == "" {
		artist = "?"
	}
	title := meta.Title
	if title == "" {
		title = "?"
	}
	return fmt.Sprintf("%s: %s - %s", filepath.Base(entry.Path), artist, title)
}
