package fixer

import (
	"regexp"

	"github.com/tristendillon/importfix/core/config"
	"github.com/tristendillon/importfix/core/models"
)

var uiImportRules = []struct {
	pattern     *regexp.Regexp
	from        string
	replacement string
}{
	{regexp.MustCompile(`from "\./ui/([^"]+)"`), `from "./ui/`, `from "./$1"`},
	{regexp.MustCompile(`from '\./ui/([^']+)'`), `from './ui/`, `from './$1'`},
}

// UIImportNormalizer drops the "ui/" segment from imports inside the UI
// components directory, where "./ui/button" should have been "./button".
type UIImportNormalizer struct {
	root string
}

func NewUIImportNormalizer(cfg *config.Config) *UIImportNormalizer {
	return &UIImportNormalizer{root: cfg.UIDir}
}

func (n *UIImportNormalizer) Name() string   { return "fix-ui-imports" }
func (n *UIImportNormalizer) Target() string { return "./ui/ imports" }
func (n *UIImportNormalizer) Root() string   { return n.root }

// Fix repeats both rules until nothing changes, so "./ui/ui/b" ends as
// "./b" in one run. Each pass removes one "ui/" segment per clause.
func (n *UIImportNormalizer) Fix(_, content string) (string, []models.Replacement) {
	counts := make([]int, len(uiImportRules))
	for pass := 0; pass < maxPasses; pass++ {
		before := content
		for i, rule := range uiImportRules {
			hits := len(rule.pattern.FindAllStringIndex(content, -1))
			if hits == 0 {
				continue
			}
			counts[i] += hits
			content = rule.pattern.ReplaceAllString(content, rule.replacement)
		}
		if content == before {
			break
		}
	}

	var replacements []models.Replacement
	for i, rule := range uiImportRules {
		if counts[i] > 0 {
			replacements = append(replacements, models.Replacement{Old: rule.from, New: rule.from[:len(rule.from)-3], Count: counts[i]})
		}
	}
	return content, replacements
}
