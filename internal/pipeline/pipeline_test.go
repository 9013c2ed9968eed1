package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/domain"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/report"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/storage"
	"github.com/samvad-hq/samvad-declaration-auditor/pkg/publishers"
)

type fakeScraper struct {
	urls      []string
	fragments []string
}

func (f *fakeScraper) DetailURLs(context.Context, string) []string { return f.urls }
func (f *fakeScraper) Fragments(context.Context, []string) []string { return f.fragments }

type fakeExtractor struct {
	history []domain.Declaration
	err     error
}

func (f *fakeExtractor) ExtractAll(context.Context, []string) ([]domain.Declaration, error) {
	return f.history, f.err
}

type fakeDeclAnalyzer struct {
	got []domain.Declaration
}

func (f *fakeDeclAnalyzer) Analyze(_ context.Context, history []domain.Declaration) (domain.DeclarationAnalysis, error) {
	f.got = history
	return domain.DeclarationAnalysis{
		LargeGifts:     domain.BoolIndicator{Value: true},
		SuddenChanges:  domain.BoolIndicator{Value: false},
		IncomeProperty: domain.ScaleIndicator{Value: 2},
	}, nil
}

type fakeCorpus struct {
	articles []domain.Article
	err      error
}

func (f fakeCorpus) Load() ([]domain.Article, error) { return f.articles, f.err }

type fakeMedia struct {
	target string
}

func (f *fakeMedia) Analyze(_ context.Context, _ []domain.Article, target string) (domain.MediaAnalysis, error) {
	f.target = target
	return domain.MediaAnalysis{
		TargetName: target,
		AggregatedMetrics: domain.MediaMetrics{
			FinalScore: domain.FinalScore{NegativeMentionsScore: 1, SuspiciousActivityScore: 0, SuspiciousGiftsAndOther: true},
		},
	}, nil
}

type fakeRenderer struct {
	score float64
}

func (f *fakeRenderer) Render(_ context.Context, _ domain.DeclarationAnalysis, _ domain.MediaAnalysis, score float64) (report.Report, error) {
	f.score = score
	return report.Report{Markdown: "summary", Gauge: report.NewGauge(score)}, nil
}

type memArchive struct {
	recs map[string]storage.ReportRecord
	err  error
}

func (m *memArchive) SaveReport(rec storage.ReportRecord) error {
	if m.err != nil {
		return m.err
	}
	if m.recs == nil {
		m.recs = map[string]storage.ReportRecord{}
	}
	m.recs[rec.URL] = rec
	return nil
}

func (m *memArchive) LatestReport(url string) (storage.ReportRecord, error) {
	rec, ok := m.recs[url]
	if !ok {
		return storage.ReportRecord{}, storage.ErrReportNotFound
	}
	return rec, nil
}

type fakePublisher struct {
	events []publishers.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.events = append(f.events, evt)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

type fixture struct {
	deps     Deps
	scraper  *fakeScraper
	decl     *fakeDeclAnalyzer
	media    *fakeMedia
	renderer *fakeRenderer
	archive  *memArchive
	pub      *fakePublisher
}

func newFixture() *fixture {
	f := &fixture{
		scraper:  &fakeScraper{urls: []string{"u1", "u2"}, fragments: []string{"f1", "f2"}},
		decl:     &fakeDeclAnalyzer{},
		media:    &fakeMedia{},
		renderer: &fakeRenderer{},
		archive:  &memArchive{},
		pub:      &fakePublisher{},
	}
	f.deps = Deps{
		Scraper: f.scraper,
		Extractor: &fakeExtractor{history: []domain.Declaration{
			{PoliticianName: "Іван", PoliticianSurname: "Франко", Year: "2019"},
			{PoliticianName: "Іван", PoliticianSurname: "Франко-Змінений", Year: "2020"},
		}},
		Declarations: f.decl,
		Corpus:       fakeCorpus{},
		Media:        f.media,
		Renderer:     f.renderer,
		Archive:      f.archive,
		Publisher:    f.pub,
	}
	return f
}

func TestRunCombinesScoresAndArchives(t *testing.T) {
	f := newFixture()
	p, err := New(f.deps, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := p.Run(context.Background(), " https://youcontrol.com.ua/p/1 ")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.media.target != "Іван Франко" {
		t.Fatalf("target should come from the first declaration, got %q", f.media.target)
	}
	// 1 (gifts) + 0 + 2 (scale) + 1 + 0 + 1 (gifts flag) + 0
	if res.Analysis.FinalScore != 5 || f.renderer.score != 5 {
		t.Fatalf("unexpected score %v", res.Analysis.FinalScore)
	}
	if res.URL != "https://youcontrol.com.ua/p/1" || res.ID == "" {
		t.Fatalf("unexpected result identity %+v", res)
	}

	latest, err := p.Latest("https://youcontrol.com.ua/p/1")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.ID != res.ID || latest.Analysis.FinalScore != 5 || latest.Report.Gauge.Value != 5 {
		t.Fatalf("archived result mismatch %+v", latest)
	}

	if len(f.pub.events) != 1 || f.pub.events[0].Type != publishers.EventReportCompleted || f.pub.events[0].Score != 5 {
		t.Fatalf("unexpected events %+v", f.pub.events)
	}
}

func TestRunNoDeclarations(t *testing.T) {
	cases := map[string]*fakeScraper{
		"no links":     {},
		"no fragments": {urls: []string{"u1"}},
	}
	for name, scraper := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			f.deps.Scraper = scraper
			p, _ := New(f.deps, nil)
			if _, err := p.Run(context.Background(), "https://youcontrol.com.ua/p/1"); !errors.Is(err, ErrNoDeclarations) {
				t.Fatalf("expected ErrNoDeclarations, got %v", err)
			}
			if f.decl.got != nil {
				t.Fatalf("analysis must not run without declarations")
			}
		})
	}
}

func TestRunRejectsEmptyURL(t *testing.T) {
	p, _ := New(newFixture().deps, nil)
	if _, err := p.Run(context.Background(), "  "); !errors.Is(err, ErrEmptyURL) {
		t.Fatalf("expected ErrEmptyURL, got %v", err)
	}
}

func TestRunPropagatesStageErrors(t *testing.T) {
	boom := errors.New("boom")

	f := newFixture()
	f.deps.Extractor = &fakeExtractor{err: boom}
	p, _ := New(f.deps, nil)
	if _, err := p.Run(context.Background(), "u"); !errors.Is(err, boom) {
		t.Fatalf("expected extractor error, got %v", err)
	}

	f = newFixture()
	f.deps.Corpus = fakeCorpus{err: boom}
	p, _ = New(f.deps, nil)
	if _, err := p.Run(context.Background(), "u"); !errors.Is(err, boom) {
		t.Fatalf("expected corpus error, got %v", err)
	}
}

func TestRunToleratesArchiveAndPublishFailures(t *testing.T) {
	f := newFixture()
	f.archive.err = errors.New("disk full")
	f.pub.err = errors.New("queue down")
	p, _ := New(f.deps, nil)

	if _, err := p.Run(context.Background(), "u"); err != nil {
		t.Fatalf("side-channel failures should not fail the run: %v", err)
	}
	if _, err := p.Latest("u"); !errors.Is(err, storage.ErrReportNotFound) {
		t.Fatalf("expected nothing archived, got %v", err)
	}
}

func TestNewRequiresStages(t *testing.T) {
	deps := newFixture().deps
	deps.Media = nil
	if _, err := New(deps, nil); err == nil {
		t.Fatalf("expected error for missing media analyzer")
	}
}
