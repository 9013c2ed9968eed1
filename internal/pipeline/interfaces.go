package pipeline

import (
	"context"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/domain"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/report"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/storage"
	"github.com/samvad-hq/samvad-declaration-auditor/pkg/publishers"
)

// DeclarationScraper collects declaration page fragments for a person.
type DeclarationScraper interface {
	DetailURLs(ctx context.Context, listURL string) []string
	Fragments(ctx context.Context, urls []string) []string
}

// DeclarationExtractor turns fragments into typed declarations.
type DeclarationExtractor interface {
	ExtractAll(ctx context.Context, fragments []string) ([]domain.Declaration, error)
}

// DeclarationAnalyzer derives corruption indicators from a declaration history.
type DeclarationAnalyzer interface {
	Analyze(ctx context.Context, history []domain.Declaration) (domain.DeclarationAnalysis, error)
}

// CorpusLoader provides the news corpus.
type CorpusLoader interface {
	Load() ([]domain.Article, error)
}

// MediaAnalyzer judges the corpus articles that mention the target.
type MediaAnalyzer interface {
	Analyze(ctx context.Context, corpus []domain.Article, target string) (domain.MediaAnalysis, error)
}

// ReportRenderer renders the narrative report and gauge.
type ReportRenderer interface {
	Render(ctx context.Context, analysis domain.DeclarationAnalysis, media domain.MediaAnalysis, score float64) (report.Report, error)
}

// ReportArchive stores completed results.
type ReportArchive interface {
	SaveReport(rec storage.ReportRecord) error
	LatestReport(url string) (storage.ReportRecord, error)
}

// EventPublisher fans report events out downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
