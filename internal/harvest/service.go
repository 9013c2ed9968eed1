package harvest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/corpus"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/domain"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/logger"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/storage"
)

// Feed lists article cards and fetches article text.
type Feed interface {
	Listings(ctx context.Context, until time.Time, perPage int) ([]Listing, error)
	ArticleText(ctx context.Context, link string) (string, error)
}

// EntityTagger annotates article text with named entities.
type EntityTagger interface {
	Tag(ctx context.Context, content string) (map[string][]string, error)
}

// SeenSet remembers harvested article links.
type SeenSet interface {
	SeenArticle(id string) (bool, error)
	MarkArticle(id string) error
}

// Stats summarises one harvest pass.
type Stats struct {
	Listed  int `json:"listed"`
	Skipped int `json:"skipped"`
	Saved   int `json:"saved"`
	Failed  int `json:"failed"`
}

// Service fetches, tags and stores new feed articles.
type Service struct {
	feed   Feed
	tagger EntityTagger
	seen   SeenSet
	dir    string
	log    logger.Logger
}

// NewService wires a harvest service writing into dir. A nil seen set disables dedup.
func NewService(feed Feed, tagger EntityTagger, seen SeenSet, dir string, log logger.Logger) *Service {
	if seen == nil {
		seen = storage.Noop()
	}
	return &Service{feed: feed, tagger: tagger, seen: seen, dir: dir, log: logger.Ensure(log)}
}

// Run harvests every article published on or after until.
// Per-article failures are logged and counted; they do not stop the pass.
func (s *Service) Run(ctx context.Context, until time.Time, perPage int) (Stats, error) {
	if s == nil || s.feed == nil || s.tagger == nil {
		return Stats{}, fmt.Errorf("harvest service is not initialized")
	}

	listings, err := s.feed.Listings(ctx, until, perPage)
	if err != nil && !errors.Is(err, context.Canceled) {
		return Stats{}, fmt.Errorf("list articles: %w", err)
	}
	stats := Stats{Listed: len(listings)}

	for _, item := range listings {
		if ctx.Err() != nil {
			break
		}
		if item.Link == "" {
			stats.Failed++
			continue
		}

		seen, err := s.seen.SeenArticle(item.Link)
		if err != nil {
			s.log.WarnObj("seen lookup failed", "harvest_store_error", map[string]any{"link": item.Link, "error": err.Error()})
		}
		if seen {
			stats.Skipped++
			continue
		}

		if err := s.harvestOne(ctx, item); err != nil {
			stats.Failed++
			s.log.WarnObj("article harvest failed", "harvest_article_error", map[string]any{
				"link":  item.Link,
				"title": item.Title,
				"error": err.Error(),
			})
			continue
		}
		stats.Saved++
	}

	s.log.InfoObj("harvest pass completed", "harvest_stats", stats)
	return stats, ctx.Err()
}

func (s *Service) harvestOne(ctx context.Context, item Listing) error {
	content, err := s.feed.ArticleText(ctx, item.Link)
	if err != nil {
		return err
	}
	entities, err := s.tagger.Tag(ctx, content)
	if err != nil {
		return err
	}

	path, err := corpus.Save(s.dir, domain.Article{
		Date:     item.Date,
		Title:    item.Title,
		Link:     item.Link,
		Content:  content,
		Entities: entities,
	})
	if err != nil {
		return err
	}
	if err := s.seen.MarkArticle(item.Link); err != nil {
		return fmt.Errorf("mark article: %w", err)
	}
	s.log.DebugObj("article saved", "harvest_article", map[string]any{"path": path, "title": item.Title})
	return nil
}
