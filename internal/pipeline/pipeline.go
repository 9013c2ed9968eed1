// Package pipeline runs a full audit for one declarations URL.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/declarations"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/domain"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/logger"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/report"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/scoring"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/storage"
	"github.com/samvad-hq/samvad-declaration-auditor/pkg/publishers"
)

// ErrNoDeclarations means the URL yielded no declaration pages; no analysis is run.
var ErrNoDeclarations = declarations.ErrNoDeclarations

// ErrEmptyURL rejects blank requests before any network call.
var ErrEmptyURL = errors.New("url is required")

// Analysis is the combined machine-readable outcome.
type Analysis struct {
	DeclarationsAnalysis domain.DeclarationAnalysis `json:"declarations_analysis"`
	MediaAnalysis        domain.MediaAnalysis       `json:"media_analysis"`
	FinalScore           float64                    `json:"final_score"`
}

// Result is everything produced for one URL.
type Result struct {
	ID        string        `json:"id"`
	URL       string        `json:"url"`
	Analysis  Analysis      `json:"analysis"`
	Report    report.Report `json:"report"`
	CreatedAt time.Time     `json:"created_at"`
}

// Deps are the stages a Pipeline is assembled from. Archive and Publisher are optional.
type Deps struct {
	Scraper      DeclarationScraper
	Extractor    DeclarationExtractor
	Declarations DeclarationAnalyzer
	Corpus       CorpusLoader
	Media        MediaAnalyzer
	Renderer     ReportRenderer
	Archive      ReportArchive
	Publisher    EventPublisher
}

// Pipeline orchestrates scrape, extract, analyse, judge, combine and render.
type Pipeline struct {
	deps Deps
	log  logger.Logger
	now  func() time.Time
}

// New validates deps and returns a Pipeline.
func New(deps Deps, log logger.Logger) (*Pipeline, error) {
	switch {
	case deps.Scraper == nil:
		return nil, errors.New("pipeline: scraper is required")
	case deps.Extractor == nil:
		return nil, errors.New("pipeline: extractor is required")
	case deps.Declarations == nil:
		return nil, errors.New("pipeline: declaration analyzer is required")
	case deps.Corpus == nil:
		return nil, errors.New("pipeline: corpus loader is required")
	case deps.Media == nil:
		return nil, errors.New("pipeline: media analyzer is required")
	case deps.Renderer == nil:
		return nil, errors.New("pipeline: report renderer is required")
	}
	return &Pipeline{deps: deps, log: logger.Ensure(log), now: time.Now}, nil
}

// Run audits the person whose declarations are listed at url.
func (p *Pipeline) Run(ctx context.Context, url string) (Result, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Result{}, ErrEmptyURL
	}
	start := p.now()

	urls := p.deps.Scraper.DetailURLs(ctx, url)
	if len(urls) == 0 {
		return Result{}, ErrNoDeclarations
	}
	fragments := p.deps.Scraper.Fragments(ctx, urls)
	if len(fragments) == 0 {
		return Result{}, ErrNoDeclarations
	}
	p.log.InfoObj("declarations scraped", "pipeline_step", map[string]any{
		"url":       url,
		"pages":     len(urls),
		"fragments": len(fragments),
	})

	history, err := p.deps.Extractor.ExtractAll(ctx, fragments)
	if err != nil {
		return Result{}, err
	}
	if len(history) == 0 {
		return Result{}, ErrNoDeclarations
	}

	declAnalysis, err := p.deps.Declarations.Analyze(ctx, history)
	if err != nil {
		return Result{}, err
	}
	target := history[0].FullName()
	p.log.InfoObj("declarations analysed", "pipeline_step", map[string]any{
		"url":          url,
		"target":       target,
		"declarations": len(history),
	})

	articles, err := p.deps.Corpus.Load()
	if err != nil {
		return Result{}, fmt.Errorf("load corpus: %w", err)
	}
	mediaAnalysis, err := p.deps.Media.Analyze(ctx, articles, target)
	if err != nil {
		return Result{}, err
	}

	score := scoring.Combine(declAnalysis, mediaAnalysis.AggregatedMetrics)
	rep, err := p.deps.Renderer.Render(ctx, declAnalysis, mediaAnalysis, score)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		ID:  uuid.NewString(),
		URL: url,
		Analysis: Analysis{
			DeclarationsAnalysis: declAnalysis,
			MediaAnalysis:        mediaAnalysis,
			FinalScore:           score,
		},
		Report:    rep,
		CreatedAt: p.now().UTC(),
	}
	p.archive(res)
	p.publish(ctx, res)

	p.log.InfoObj("audit completed", "pipeline_result", map[string]any{
		"url":        url,
		"target":     target,
		"score":      score,
		"elapsed_ms": p.now().Sub(start).Milliseconds(),
	})
	return res, nil
}

// Latest returns the last archived result for url.
func (p *Pipeline) Latest(url string) (Result, error) {
	if p.deps.Archive == nil {
		return Result{}, storage.ErrReportNotFound
	}
	rec, err := p.deps.Archive.LatestReport(strings.TrimSpace(url))
	if err != nil {
		return Result{}, err
	}
	var res Result
	if err := json.Unmarshal(rec.Payload, &res); err != nil {
		return Result{}, fmt.Errorf("decode archived report: %w", err)
	}
	return res, nil
}

// archive is best effort; a storage failure does not fail the request.
func (p *Pipeline) archive(res Result) {
	if p.deps.Archive == nil {
		return
	}
	payload, err := json.Marshal(res)
	if err == nil {
		err = p.deps.Archive.SaveReport(storage.ReportRecord{
			ID:         res.ID,
			URL:        res.URL,
			TargetName: res.Analysis.MediaAnalysis.TargetName,
			Score:      res.Analysis.FinalScore,
			Payload:    payload,
			CreatedAt:  res.CreatedAt,
		})
	}
	if err != nil {
		p.log.WarnObj("report archive failed", "pipeline_archive_error", map[string]any{
			"url":   res.URL,
			"error": err.Error(),
		})
	}
}

func (p *Pipeline) publish(ctx context.Context, res Result) {
	if p.deps.Publisher == nil {
		return
	}
	evt, err := publishers.NewReportEvent(res.URL, res.Analysis.MediaAnalysis.TargetName, res.Analysis.FinalScore, res.Analysis)
	if err == nil {
		_, err = p.deps.Publisher.Publish(ctx, evt)
	}
	if err != nil {
		p.log.WarnObj("report event publish failed", "pipeline_publish_error", map[string]any{
			"url":   res.URL,
			"error": err.Error(),
		})
	}
}
