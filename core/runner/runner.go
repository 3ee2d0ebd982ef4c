package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/tristendillon/importfix/core/cache"
	"github.com/tristendillon/importfix/core/config"
	"github.com/tristendillon/importfix/core/fixer"
	"github.com/tristendillon/importfix/core/logger"
	"github.com/tristendillon/importfix/core/models"
	"github.com/tristendillon/importfix/core/walker"
)

// ErrRootMissing is returned when a fixer's root directory does not exist.
// Nothing is read or written in that case.
var ErrRootMissing = errors.New("directory not found")

// Runner drives fixers over the source tree one file at a time: read the
// whole file, rewrite it in memory, write it back only if it changed.
type Runner struct {
	ProjectDir string
	Walker     walker.SourceWalker
	// DryRun prints a unified diff to Diff instead of writing files.
	DryRun bool
	Diff   io.Writer
	// Cache, when set, records the content of every file written.
	Cache    *cache.ContentCache
	LogLevel logger.LogLevel
}

func NewRunner(projectDir string, cfg *config.Config) *Runner {
	return &Runner{
		ProjectDir: projectDir,
		Walker:     walker.NewSourceWalker(projectDir, cfg),
		Diff:       os.Stdout,
		LogLevel:   logger.INFO,
	}
}

// Run applies f to every source file below its root.
func (r *Runner) Run(f fixer.Fixer) (*models.Summary, error) {
	log := logger.GetLogFromLevel(r.LogLevel)
	summary := &models.Summary{Fixer: f.Name(), Root: f.Root()}

	exists, err := r.Walker.RootExists(f.Root())
	if err != nil {
		return summary, err
	}
	if !exists {
		logger.Error("%s directory not found", f.Root())
		summary.RootMissing = true
		return summary, fmt.Errorf("%s: %w", f.Root(), ErrRootMissing)
	}

	files, err := r.Walker.Walk(f.Root())
	if err != nil {
		return summary, err
	}
	log("Found %d source files under %s", len(files), f.Root())

	if err := r.process(f, files, summary); err != nil {
		return summary, err
	}

	log("Fixed %s in %d files", f.Target(), summary.Changed)
	logger.Success("%s completed!", f.Name())
	return summary, nil
}

// RunFiles applies f to the given project-relative paths. Paths outside
// the fixer's root or not matching the source extensions are skipped, as
// are paths that no longer exist.
func (r *Runner) RunFiles(f fixer.Fixer, paths []string) (*models.Summary, error) {
	summary := &models.Summary{Fixer: f.Name(), Root: f.Root()}

	var files []string
	for _, p := range paths {
		p = path.Clean(filepath.ToSlash(p))
		if !r.Walker.Matches(f.Root(), p) {
			continue
		}
		if _, err := os.Stat(r.abs(p)); os.IsNotExist(err) {
			continue
		}
		files = append(files, p)
	}

	if err := r.process(f, files, summary); err != nil {
		return summary, err
	}
	if summary.Changed > 0 {
		logger.GetLogFromLevel(r.LogLevel)("Fixed %s in %d files", f.Target(), summary.Changed)
	}
	return summary, nil
}

// RunPipeline runs each fixer in order. A missing root is logged and the
// remaining fixers still run; the returned error then wraps ErrRootMissing.
// Any I/O error stops the pipeline.
func (r *Runner) RunPipeline(fixers []fixer.Fixer) ([]*models.Summary, error) {
	var summaries []*models.Summary
	var missing []error
	for _, f := range fixers {
		summary, err := r.Run(f)
		summaries = append(summaries, summary)
		if errors.Is(err, ErrRootMissing) {
			missing = append(missing, err)
			continue
		}
		if err != nil {
			return summaries, fmt.Errorf("%s: %w", f.Name(), err)
		}
	}
	return summaries, errors.Join(missing...)
}

func (r *Runner) process(f fixer.Fixer, files []string, summary *models.Summary) error {
	log := logger.GetLogFromLevel(r.LogLevel)
	for _, file := range files {
		log("Processing: %s", file)
		result, err := r.FixFile(f, file)
		if err != nil {
			return err
		}
		for _, rep := range result.Replacements {
			if rep.Count > 1 {
				log("  - %s -> %s (x%d)", rep.Old, rep.New, rep.Count)
			} else {
				log("  - %s -> %s", rep.Old, rep.New)
			}
		}
		summary.Files++
		if result.Changed {
			summary.Changed++
		}
		summary.Results = append(summary.Results, result)
	}
	return nil
}

// FixFile runs a single read, rewrite, compare, write cycle on file.
func (r *Runner) FixFile(f fixer.Fixer, file string) (models.FileResult, error) {
	result := models.FileResult{Path: file}
	abs := r.abs(file)

	info, err := os.Stat(abs)
	if err != nil {
		return result, fmt.Errorf("failed to stat %s: %w", file, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return result, fmt.Errorf("failed to read %s: %w", file, err)
	}

	original := string(data)
	updated, replacements := f.Fix(file, original)
	result.Replacements = replacements
	if updated == original {
		return result, nil
	}
	result.Changed = true

	if r.DryRun {
		return result, r.writeDiff(file, original, updated)
	}

	if err := os.WriteFile(abs, []byte(updated), info.Mode().Perm()); err != nil {
		return result, fmt.Errorf("failed to write %s: %w", file, err)
	}
	if r.Cache != nil {
		r.Cache.Record(abs, []byte(updated))
	}
	return result, nil
}

func (r *Runner) writeDiff(file, original, updated string) error {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(updated),
		FromFile: "a/" + file,
		ToFile:   "b/" + file,
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("failed to diff %s: %w", file, err)
	}
	if _, err := io.WriteString(r.Diff, diff); err != nil {
		return fmt.Errorf("failed to write diff for %s: %w", file, err)
	}
	return nil
}

func (r *Runner) abs(file string) string {
	return filepath.Join(r.ProjectDir, filepath.FromSlash(file))
}
