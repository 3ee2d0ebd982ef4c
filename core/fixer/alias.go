package fixer

import (
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/tristendillon/importfix/core/config"
	"github.com/tristendillon/importfix/core/models"
)

const uiSegment = "components/ui/"

// AliasResolver rewrites alias imports such as "@/lib/utils" into paths
// relative to the importing file.
type AliasResolver struct {
	root     string
	prefix   string
	fallback string
	segments []aliasSegment
	pattern  *regexp.Regexp
}

type aliasSegment struct {
	lead   string
	target string
}

func NewAliasResolver(cfg *config.Config) *AliasResolver {
	segments := make([]aliasSegment, 0, len(cfg.Alias.Segments))
	for lead, target := range cfg.Alias.Segments {
		segments = append(segments, aliasSegment{lead: lead, target: target})
	}
	// Longest lead first so nested leads win over their parents.
	sort.Slice(segments, func(i, j int) bool {
		if len(segments[i].lead) != len(segments[j].lead) {
			return len(segments[i].lead) > len(segments[j].lead)
		}
		return segments[i].lead < segments[j].lead
	})

	return &AliasResolver{
		root:     cfg.SourceRoot,
		prefix:   cfg.Alias.Prefix,
		fallback: cfg.Alias.Fallback,
		segments: segments,
		pattern:  regexp.MustCompile(regexp.QuoteMeta(cfg.Alias.Prefix) + "([^\"'`\\s]+)"),
	}
}

func (r *AliasResolver) Name() string   { return "resolve-aliases" }
func (r *AliasResolver) Target() string { return "imports" }
func (r *AliasResolver) Root() string   { return r.root }

func (r *AliasResolver) Fix(file, content string) (string, []models.Replacement) {
	matches := r.pattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return content, nil
	}

	dir := path.Dir(filepath.ToSlash(file))
	rewrites := make(map[string]string)
	counts := make(map[string]int)
	var order []string
	for _, m := range matches {
		old := m[0]
		counts[old]++
		if _, seen := rewrites[old]; seen {
			continue
		}
		rewrites[old] = r.Resolve(dir, m[1])
		order = append(order, old)
	}

	content = r.pattern.ReplaceAllStringFunc(content, func(old string) string {
		return rewrites[old]
	})

	replacements := make([]models.Replacement, 0, len(order))
	for _, old := range order {
		replacements = append(replacements, models.Replacement{Old: old, New: rewrites[old], Count: counts[old]})
	}
	return content, replacements
}

// Resolve computes the relative specifier for an alias target (the text
// after the alias prefix) imported from the project-relative directory dir.
func (r *AliasResolver) Resolve(dir, target string) string {
	if strings.HasPrefix(target, uiSegment) {
		name := target[strings.LastIndex(target, "/")+1:]
		if strings.Contains(dir, "components/") {
			return "./ui/" + name
		}
		return "../components/ui/" + name
	}

	dest := path.Clean(r.Destination(target))
	spec := RelativeDir(dir, path.Dir(dest)) + path.Base(dest)
	if strings.HasSuffix(target, "/") {
		spec += "/"
	}
	return spec
}

// Destination maps an alias target onto its project-relative path. Targets
// whose leading segment is not in the table take the fallback prefix.
func (r *AliasResolver) Destination(target string) string {
	for _, s := range r.segments {
		if strings.HasPrefix(target, s.lead) {
			return s.target + target
		}
	}
	return r.fallback + target
}

// RelativeDir returns the path from one directory to another, always
// ending in a slash: "./" for the same directory, "../" when no relative
// path exists.
func RelativeDir(from, to string) string {
	from = path.Clean(from)
	to = path.Clean(to)
	if from == to {
		return "./"
	}
	rel, err := filepath.Rel(filepath.FromSlash(from), filepath.FromSlash(to))
	if err != nil {
		return "../"
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return "./"
	}
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel + "/"
}
