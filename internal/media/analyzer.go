package media

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/domain"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/logger"
)

// Analyzer finds a person's mentions in a corpus and judges every matched article.
type Analyzer struct {
	judge       Judge
	matcher     NameMatcher
	thresholds  Thresholds
	concurrency int
	log         logger.Logger
}

// Options tunes an Analyzer.
type Options struct {
	Matcher     NameMatcher
	Thresholds  Thresholds
	Concurrency int
}

// NewAnalyzer wires an analyzer. Concurrency 1 judges articles strictly one after another.
func NewAnalyzer(judge Judge, opts Options, log logger.Logger) *Analyzer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Analyzer{
		judge:       judge,
		matcher:     opts.Matcher,
		thresholds:  opts.Thresholds.normalized(),
		concurrency: opts.Concurrency,
		log:         logger.Ensure(log),
	}
}

// Analyze judges every article mentioning target and aggregates the results.
// DetailedResults follow the corpus order of the matched articles.
func (a *Analyzer) Analyze(ctx context.Context, corpus []domain.Article, target string) (domain.MediaAnalysis, error) {
	if a == nil || a.judge == nil {
		return domain.MediaAnalysis{}, fmt.Errorf("media analyzer is not initialized")
	}

	mentioned := FindMentions(corpus, target, a.matcher)
	a.log.InfoObj("media mentions found", "media_mentions", map[string]any{
		"target":   target,
		"corpus":   len(corpus),
		"mentions": len(mentioned),
	})

	start := time.Now()
	judgments, err := a.judgeAll(ctx, mentioned, target)
	if err != nil {
		return domain.MediaAnalysis{}, err
	}
	a.log.InfoObj("media articles judged", "media_judged", map[string]any{
		"target":     target,
		"articles":   len(judgments),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	return domain.MediaAnalysis{
		TargetName:        target,
		AggregatedMetrics: Aggregate(judgments, a.thresholds),
		DetailedResults:   judgments,
	}, nil
}

func (a *Analyzer) judgeAll(ctx context.Context, articles []domain.Article, target string) ([]domain.ArticleJudgment, error) {
	out := make([]domain.ArticleJudgment, len(articles))
	if len(articles) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i := range articles {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			judgment, err := a.judge.Judge(gctx, articles[i], target)
			if err != nil {
				return fmt.Errorf("article %d: %w", i+1, err)
			}
			out[i] = judgment
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("judge articles: %w", err)
	}
	return out, nil
}
