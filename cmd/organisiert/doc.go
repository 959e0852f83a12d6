// Package main hosts the organisiert CLI.
//
// The root command organizes an input directory into an output directory:
//
//	organisiert [flags] <input_dir> <output_dir>
//
// It loads (or creates) the TOML configuration, verifies both directories,
// takes an exclusive lock on the output directory, then scans and organizes
// through internal/pipeline. When stdout is a terminal the run is shown in a
// Bubble Tea view; otherwise stage headers and per-file warnings are printed
// as plain lines. The "config" subcommands inspect and scaffold the
// configuration file.
package main
