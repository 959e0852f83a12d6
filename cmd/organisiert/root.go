package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	move       bool
	threads    int
	verbose    bool
	noTUI      bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "organisiert [flags] <input_dir> <output_dir>",
		Short: "Organize music files into folders derived from their tags",
		Long: "organisiert copies (or moves) music files from an input directory into an\n" +
			"output directory, building each destination from the file's tags through\n" +
			"the templates in the configuration file.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return nil
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runOrganize(cmd, opts, args[0], args[1])
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Configuration file path")
	rootCmd.Flags().BoolVarP(&opts.move, "move", "m", false, "Move files instead of copying them")
	rootCmd.Flags().IntVarP(&opts.threads, "threads", "t", 0, "Number of worker threads (default: performance.workers, else all CPUs)")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show per-file output and debug logs")
	rootCmd.Flags().BoolVar(&opts.noTUI, "no-tui", false, "Print plain output even when stdout is a terminal")

	rootCmd.AddCommand(newConfigCommand(&opts.configPath))

	return rootCmd
}
