/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tristendillon/importfix/core/config"
	"github.com/tristendillon/importfix/core/fixer"
	"github.com/tristendillon/importfix/core/logger"
)

// newFixCommand builds a command that runs a single fixer over its root.
func newFixCommand(use, short, long string, build func(*config.Config) fixer.Fixer) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Debug("%s called", use)
			dir, cfg, err := setup()
			if err != nil {
				return err
			}

			_, err = newRunner(cmd, dir, cfg).Run(build(cfg))
			return settle(err)
		},
	}
}

var resolveAliasesCmd = newFixCommand(
	"resolve-aliases",
	"Convert @/ alias imports to relative imports",
	`Rewrites every "@/<path>" import under the source root into a path relative
to the importing file, using the alias segment table from the config.`,
	func(cfg *config.Config) fixer.Fixer { return fixer.NewAliasResolver(cfg) },
)

var fixDuplicatesCmd = newFixCommand(
	"fix-duplicates",
	"Collapse duplicated path segments",
	`Rewrites paths such as ../../hooks/hooks/use-mobile to ../../hooks/use-mobile,
keeping the number of leading ../ hops.`,
	func(cfg *config.Config) fixer.Fixer { return fixer.NewDuplicateFixer(cfg) },
)

var fixUIImportsCmd = newFixCommand(
	"fix-ui-imports",
	"Fix ./ui/ imports inside the UI components directory",
	`Rewrites from "./ui/<name>" to from "./<name>" in files that already live
in the UI components directory. Quote style is preserved.`,
	func(cfg *config.Config) fixer.Fixer { return fixer.NewUIImportNormalizer(cfg) },
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all fixers in order",
	Long:  `Runs resolve-aliases, fix-duplicates and fix-ui-imports one after another.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("migrate called")
		dir, cfg, err := setup()
		if err != nil {
			return err
		}

		summaries, err := newRunner(cmd, dir, cfg).RunPipeline(fixer.Pipeline(cfg))
		total := 0
		for _, s := range summaries {
			total += s.Changed
		}
		logger.Info("Migration touched %d files across %d passes", total, len(summaries))
		return settle(err)
	},
}

func init() {
	rootCmd.AddCommand(resolveAliasesCmd)
	rootCmd.AddCommand(fixDuplicatesCmd)
	rootCmd.AddCommand(fixUIImportsCmd)
	rootCmd.AddCommand(migrateCmd)
}
