/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tristendillon/importfix/core/config"
	"github.com/tristendillon/importfix/core/logger"
	"github.com/tristendillon/importfix/core/runner"
)

var rootCmd = &cobra.Command{
	Use:   "importfix",
	Short: "Rewrites front-end import paths during a codebase migration.",
	Long: `importfix walks a TypeScript source tree and rewrites import specifiers in place.
It resolves "@/" alias imports into relative paths, collapses doubled
directory segments such as ../hooks/hooks/, and strips the redundant ui/
segment from imports inside the UI components directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)
		if errorsToStderr {
			logger.SetErrorWriter()
		}
		if logfile != "" {
			f, err := logger.AttachLogFile(logfile)
			if err != nil {
				return err
			}
			logFile = f
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
		}
	},
}

var (
	logfile    string
	verbose    bool
	projectDir string
	dryRun     bool
	strict     bool

	errorsToStderr bool

	logFile *os.File
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&projectDir, "dir", "", "Project directory (defaults to the working directory)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Print a diff instead of writing files")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Exit non-zero when a source directory is missing")
	rootCmd.PersistentFlags().BoolVar(&errorsToStderr, "stderr", false, "Write error lines to stderr instead of stdout")
}

// setup resolves the project directory and loads its config.
func setup() (string, *config.Config, error) {
	dir := projectDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load config: %w", err)
	}
	return dir, cfg, nil
}

func newRunner(cmd *cobra.Command, dir string, cfg *config.Config) *runner.Runner {
	r := runner.NewRunner(dir, cfg)
	r.DryRun = dryRun
	r.Diff = cmd.OutOrStdout()
	return r
}

// settle applies the missing-root policy: without --strict a missing
// directory has already been reported and is not a failure.
func settle(err error) error {
	if errors.Is(err, runner.ErrRootMissing) && !strict {
		return nil
	}
	return err
}
