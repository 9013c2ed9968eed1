// Package media cross-references a news corpus for mentions of a person and
// turns per-article judgments into media metrics.
package media

import (
	"github.com/samvad-hq/samvad-declaration-auditor/internal/domain"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/fuzzy"
)

// NameMatcher decides whether a recognized name refers to the target.
type NameMatcher interface {
	Match(target, candidate string) bool
}

// FindMentions returns, in input order, the articles whose PER entities contain
// a name matching target. Articles without person entities are skipped.
func FindMentions(articles []domain.Article, target string, matcher NameMatcher) []domain.Article {
	if matcher == nil {
		matcher = fuzzy.NewMatcher(fuzzy.DefaultThreshold)
	}

	var out []domain.Article
	for _, article := range articles {
		for _, person := range article.Persons() {
			if matcher.Match(target, person) {
				out = append(out, article)
				break
			}
		}
	}
	return out
}
