package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/config"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/corpus"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/declarations"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/fuzzy"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/logger"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/media"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/pipeline"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/report"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/storage"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/web"
	"github.com/samvad-hq/samvad-declaration-auditor/pkg/httpclient"
	"github.com/samvad-hq/samvad-declaration-auditor/pkg/publishers"
	"github.com/samvad-hq/samvad-declaration-auditor/pkg/sources"
)

// Auditor is the web runtime: it serves the audit form and API.
type Auditor struct {
	cfg    *config.Config
	server *web.Server
	store  storage.Store
	fanout *publishers.Fanout
	log    logger.Logger
}

// NewAuditor wires the pipeline stages from config and builds the HTTP server.
func NewAuditor(ctx context.Context, cfg *config.Config, log logger.Logger) (*Auditor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)

	reg, err := loadSources(cfg, log)
	if err != nil {
		return nil, err
	}
	declSource, ok := reg.FirstOfType(sources.TypeDeclarations)
	if !ok {
		return nil, fmt.Errorf("no %s source configured in %s", sources.TypeDeclarations, cfg.SourcesFile)
	}

	client, err := newLLMClient(cfg)
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}
	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	httpClient := httpclient.NewThrottledClient(httpclient.NewRestyClient(scrapeTimeout), declSource.RequestDelay())
	mediaAnalyzer := media.NewAnalyzer(
		media.NewLLMJudge(client, cfg.LLMJudgeModel),
		media.Options{
			Matcher: fuzzy.NewMatcher(cfg.FuzzyThreshold),
			Thresholds: media.Thresholds{
				NegativeMentions:   cfg.NegativeMentionsLimit,
				SuspiciousActivity: cfg.SuspiciousActLimit,
			},
			Concurrency: cfg.JudgeConcurrency,
		},
		log,
	)

	pipe, err := pipeline.New(pipeline.Deps{
		Scraper:      declarations.NewScraper(httpClient, declSource, log),
		Extractor:    declarations.NewExtractor(client, cfg.LLMModel),
		Declarations: declarations.NewAnalyzer(client, cfg.LLMModel),
		Corpus:       corpus.Dir(cfg.CorpusDir),
		Media:        mediaAnalyzer,
		Renderer:     report.NewRenderer(client, cfg.LLMJudgeModel, log),
		Archive:      store,
		Publisher:    fanout,
	}, log)
	if err != nil {
		store.Close()
		fanout.Close()
		return nil, err
	}

	server, err := web.NewServer(cfg.HTTPAddr, pipe, log)
	if err != nil {
		store.Close()
		fanout.Close()
		return nil, err
	}

	return &Auditor{cfg: cfg, server: server, store: store, fanout: fanout, log: log}, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *Auditor) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return fmt.Errorf("auditor is not initialized")
	}
	defer a.close()

	a.log.InfoObj("auditor starting", "auditor_state", map[string]any{
		"http_addr":         a.cfg.HTTPAddr,
		"corpus_dir":        a.cfg.CorpusDir,
		"judge_concurrency": a.cfg.JudgeConcurrency,
		"publishers_count":  a.fanout.Size(),
	})
	return a.server.Run(ctx)
}

func (a *Auditor) close() {
	if err := errors.Join(a.fanout.Close(), a.store.Close()); err != nil {
		a.log.ErrorObj("auditor shutdown failed", "error", err.Error())
	}
}
