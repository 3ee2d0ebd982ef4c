package models

// Replacement is one rewrite applied to a file. Count is the number of
// occurrences the rewrite touched.
type Replacement struct {
	Old   string
	New   string
	Count int
}

type FileResult struct {
	Path         string
	Changed      bool
	Replacements []Replacement
}

// Summary describes a single pass of one fixer over the source tree.
type Summary struct {
	Fixer       string
	Root        string
	Files       int
	Changed     int
	RootMissing bool
	Results     []FileResult
}

// ChangedPaths returns the paths of every file the pass rewrote.
func (s *Summary) ChangedPaths() []string {
	var paths []string
	for _, r := range s.Results {
		if r.Changed {
			paths = append(paths, r.Path)
		}
	}
	return paths
}
