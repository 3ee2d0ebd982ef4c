package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tristendillon/importfix/core/config"
	"github.com/tristendillon/importfix/core/logger"
)

// SourceWalker finds the files a fixer runs over. Paths are project
// relative and slash separated.
type SourceWalker interface {
	RootExists(root string) (bool, error)
	Walk(root string) ([]string, error)
	Matches(root, p string) bool
	Excluded(p string) bool
}

var _ SourceWalker = (*SourceWalkerImpl)(nil)

// SourceWalkerImpl lists source files below a project-relative root.
// Returned paths are slash separated and relative to ProjectDir.
type SourceWalkerImpl struct {
	ProjectDir string
	Extensions []string
	Exclude    []string
}

func NewSourceWalker(projectDir string, cfg *config.Config) *SourceWalkerImpl {
	return &SourceWalkerImpl{
		ProjectDir: projectDir,
		Extensions: cfg.Extensions,
		Exclude:    cfg.Exclude,
	}
}

// RootExists reports whether root names a directory inside the project.
func (w *SourceWalkerImpl) RootExists(root string) (bool, error) {
	info, err := os.Stat(filepath.Join(w.ProjectDir, filepath.FromSlash(root)))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	return info.IsDir(), nil
}

// Walk returns every file below root whose name ends in one of the
// configured extensions. Files are grouped by extension in config order and
// sorted lexically within each group.
func (w *SourceWalkerImpl) Walk(root string) ([]string, error) {
	root = path.Clean(filepath.ToSlash(root))
	groups := make([][]string, len(w.Extensions))

	fsys := os.DirFS(w.ProjectDir)
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if w.Excluded(p) {
			if d.IsDir() {
				logger.Debug("Excluding directory: %s", p)
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		rel := strings.TrimPrefix(p, root+"/")
		for i, ext := range w.Extensions {
			if ok, _ := doublestar.Match("**/*"+ext, rel); ok {
				groups[i] = append(groups[i], p)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	var files []string
	for i, group := range groups {
		sort.Strings(group)
		logger.Debug("Found %d *%s files under %s", len(group), w.Extensions[i], root)
		files = append(files, group...)
	}
	return files, nil
}

// Matches reports whether a project-relative path is a file Walk(root)
// would return.
func (w *SourceWalkerImpl) Matches(root, p string) bool {
	root = path.Clean(filepath.ToSlash(root))
	p = path.Clean(filepath.ToSlash(p))
	if !strings.HasPrefix(p, root+"/") || w.Excluded(p) {
		return false
	}
	rel := strings.TrimPrefix(p, root+"/")
	for _, ext := range w.Extensions {
		if ok, _ := doublestar.Match("**/*"+ext, rel); ok {
			return true
		}
	}
	return false
}

// Excluded reports whether a project-relative path matches an exclude glob.
func (w *SourceWalkerImpl) Excluded(p string) bool {
	for _, ex := range w.Exclude {
		if ok, _ := doublestar.Match(ex, p); ok {
			return true
		}
	}
	return false
}
