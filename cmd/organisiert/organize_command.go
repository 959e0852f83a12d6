package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/handiism/organisiert/internal/config"
	"github.com/handiism/organisiert/internal/errs"
	"github.com/handiism/organisiert/internal/logging"
	"github.com/handiism/organisiert/internal/organize"
	"github.com/handiism/organisiert/internal/pipeline"
	"github.com/handiism/organisiert/internal/tui"
)

// lockFileName guards an output directory against concurrent runs.
const lockFileName = ".organisiert.lock"

func runOrganize(cmd *cobra.Command, opts *rootOptions, inputArg, outputArg string) error {
	out := cmd.OutOrStdout()

	if cmd.Flags().Changed("threads") && opts.threads < 1 {
		return errs.Wrap(errs.ErrConfiguration, "cli", "threads", fmt.Sprintf("--threads must be at least 1, got %d", opts.threads), nil)
	}

	printStage(out, 1, "Loading configuration...")
	cfg, cfgPath, created, err := config.LoadOrCreate(opts.configPath)
	if err != nil {
		return err
	}
	if created {
		printInfo(out, fmt.Sprintf("Created default configuration at %s", cfgPath))
	} else if opts.verbose {
		printInfo(out, fmt.Sprintf("Using configuration %s", cfgPath))
	}
	for _, warning := range cfg.Warnings() {
		printWarning(out, warning)
	}

	interactive := !opts.noTUI && isTerminal(out)
	console := cmd.ErrOrStderr()
	if interactive {
		console = io.Discard
	}
	logger, err := logging.New(logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
		Console:    console,
		Verbose:    opts.verbose,
	})
	if err != nil {
		return errs.Wrap(errs.ErrConfiguration, "logging", "init", "", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	printStage(out, 2, "Verifying paths...")
	inputDir, err := filepath.Abs(inputArg)
	if err != nil {
		return errs.Wrap(errs.ErrPathValidation, "verify", "input directory", inputArg, err)
	}
	outputDir, err := filepath.Abs(outputArg)
	if err != nil {
		return errs.Wrap(errs.ErrPathValidation, "verify", "output directory", outputArg, err)
	}
	fs := afero.NewOsFs()
	if err := pipeline.VerifyPaths(fs, inputDir, outputDir); err != nil {
		return err
	}

	lock := flock.New(filepath.Join(outputDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return errs.Wrap(errs.ErrPathValidation, "verify", "acquire lock", lock.Path(), err)
	}
	if !locked {
		return errs.Wrap(errs.ErrPathValidation, "verify", "acquire lock",
			fmt.Sprintf("another organisiert run is using %s", outputDir), nil)
	}
	defer func() { _ = lock.Unlock() }()

	mode := organize.Copy
	if opts.move {
		mode = organize.Move
	}
	params := pipeline.Params{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Mode:      mode,
		Workers:   opts.threads,
		Verbose:   opts.verbose,
	}
	logger.Info("run started",
		zap.String("input", inputDir),
		zap.String("output", outputDir),
		zap.Stringer("mode", mode),
		zap.String("config", cfgPath),
	)

	p := pipeline.New(fs, cfg, params, logger)
	var summary *pipeline.Summary
	if interactive {
		summary, err = tui.Run(cmd.Context(), p.Run, opts.verbose)
	} else {
		summary, err = p.Run(cmd.Context(), newPlainReporter(out, opts.verbose))
	}
	if err != nil {
		return err
	}

	printSummary(out, summary, mode, interactive)
	return nil
}
