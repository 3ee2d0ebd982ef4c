/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tristendillon/importfix/core/fixer"
	"github.com/tristendillon/importfix/core/logger"
	"github.com/tristendillon/importfix/core/runner"
	"github.com/tristendillon/importfix/core/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep fixing imports as files change",
	Long: `Runs every fixer once, then watches the source root and reruns them on
files that change until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("watch called")
		dir, cfg, err := setup()
		if err != nil {
			return err
		}

		r := newRunner(cmd, dir, cfg)
		exists, err := r.Walker.RootExists(cfg.SourceRoot)
		if err != nil {
			return err
		}
		if !exists {
			logger.Error("%s directory not found", cfg.SourceRoot)
			return settle(fmt.Errorf("%s: %w", cfg.SourceRoot, runner.ErrRootMissing))
		}

		fw, err := watcher.NewFileWatcher(r, cfg.SourceRoot, fixer.Pipeline(cfg))
		if err != nil {
			return err
		}
		defer fw.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return fw.Watch(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
