package fixer

import (
	"regexp"

	"github.com/tristendillon/importfix/core/config"
	"github.com/tristendillon/importfix/core/models"
)

// maxPasses bounds the fixpoint loop; every pass removes at least one
// segment, so only pathological input gets near it.
const maxPasses = 64

// DuplicateRule collapses one doubled segment with a fixed number of hops.
type DuplicateRule struct {
	pattern     *regexp.Regexp
	from        string
	replacement string
}

// DuplicateFixer collapses doubled directory segments such as
// "../../hooks/hooks/" left behind by naive prefixing.
type DuplicateFixer struct {
	root  string
	rules []DuplicateRule
}

func NewDuplicateFixer(cfg *config.Config) *DuplicateFixer {
	return &DuplicateFixer{
		root:  cfg.SourceRoot,
		rules: DuplicateRules(cfg.Duplicates.Segments),
	}
}

// DuplicateRules builds the ordered rule list for the given segment names.
// For each name the two-hop rule precedes the one-hop rule: the one-hop
// pattern also matches the tail of a two-hop path and would otherwise drop
// a hop.
func DuplicateRules(names []string) []DuplicateRule {
	rules := make([]DuplicateRule, 0, len(names)*2)
	for _, name := range names {
		n := regexp.QuoteMeta(name)
		rules = append(rules,
			DuplicateRule{
				pattern:     regexp.MustCompile(`\.\./\.\./` + n + `/` + n + `/`),
				from:        "../../" + name + "/" + name + "/",
				replacement: "../../" + name + "/",
			},
			DuplicateRule{
				pattern:     regexp.MustCompile(`\.\./` + n + `/` + n + `/`),
				from:        "../" + name + "/" + name + "/",
				replacement: "../" + name + "/",
			},
		)
	}
	return rules
}

func (f *DuplicateFixer) Name() string   { return "fix-duplicates" }
func (f *DuplicateFixer) Target() string { return "duplicate paths" }
func (f *DuplicateFixer) Root() string   { return f.root }

// Fix applies the rules in order, repeating the whole list until nothing
// changes so a second run never finds more work.
func (f *DuplicateFixer) Fix(_, content string) (string, []models.Replacement) {
	counts := make([]int, len(f.rules))
	for pass := 0; pass < maxPasses; pass++ {
		before := content
		for i, rule := range f.rules {
			hits := len(rule.pattern.FindAllStringIndex(content, -1))
			if hits == 0 {
				continue
			}
			counts[i] += hits
			content = rule.pattern.ReplaceAllLiteralString(content, rule.replacement)
		}
		if content == before {
			break
		}
	}

	var replacements []models.Replacement
	for i, rule := range f.rules {
		if counts[i] > 0 {
			replacements = append(replacements, models.Replacement{Old: rule.from, New: rule.replacement, Count: counts[i]})
		}
	}
	return content, replacements
}
