// Package fixer holds the text rewrites applied to import specifiers.
// Fixers never touch the file system; the runner reads and writes files
// and hands each fixer the full text of one file.
package fixer

import (
	"github.com/tristendillon/importfix/core/config"
	"github.com/tristendillon/importfix/core/models"
)

type Fixer interface {
	// Name identifies the pass in logs and summaries.
	Name() string
	// Target describes what the pass fixes, as in "Fixed <target> in 3 files".
	Target() string
	// Root is the project-relative directory the pass operates on.
	Root() string
	// Fix returns the rewritten content of the file at path, which is
	// project-relative and slash separated, plus the rewrites it applied.
	Fix(path, content string) (string, []models.Replacement)
}

// Pipeline returns the passes in the order an operator runs them.
func Pipeline(cfg *config.Config) []Fixer {
	return []Fixer{
		NewAliasResolver(cfg),
		NewDuplicateFixer(cfg),
		NewUIImportNormalizer(cfg),
	}
}
