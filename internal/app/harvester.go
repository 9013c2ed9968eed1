package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/config"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/harvest"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/logger"
	"github.com/samvad-hq/samvad-declaration-auditor/internal/storage"
	"github.com/samvad-hq/samvad-declaration-auditor/pkg/httpclient"
	"github.com/samvad-hq/samvad-declaration-auditor/pkg/sources"
)

// Harvester is the corpus builder runtime. With a zero interval it runs a
// single pass; otherwise it repeats the pass on a ticker until cancelled.
type Harvester struct {
	cfg      *config.Config
	service  *harvest.Service
	store    storage.Store
	interval time.Duration
	log      logger.Logger
}

// NewHarvester builds a harvester runtime from config files.
func NewHarvester(ctx context.Context, cfg *config.Config, log logger.Logger) (*Harvester, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)

	reg, err := loadSources(cfg, log)
	if err != nil {
		return nil, err
	}
	feedSource, ok := reg.FirstOfType(sources.TypeNewsAJAX)
	if !ok {
		return nil, fmt.Errorf("no %s source configured in %s", sources.TypeNewsAJAX, cfg.SourcesFile)
	}

	client, err := newLLMClient(cfg)
	if err != nil {
		return nil, err
	}
	store, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}

	httpClient := httpclient.NewThrottledClient(httpclient.NewRestyClient(scrapeTimeout), feedSource.RequestDelay())
	service := harvest.NewService(
		harvest.NewPager(httpClient, feedSource, log),
		harvest.NewTagger(client, cfg.LLMJudgeModel),
		store,
		cfg.CorpusDir,
		log,
	)

	return &Harvester{
		cfg:      cfg,
		service:  service,
		store:    store,
		interval: cfg.HarvestInterval,
		log:      log,
	}, nil
}

// Run executes harvest passes until done or ctx is cancelled.
func (h *Harvester) Run(ctx context.Context) error {
	if h == nil || h.service == nil {
		return fmt.Errorf("harvester is not initialized")
	}
	defer h.closeStore()

	h.log.InfoObj("harvester starting", "harvester_state", map[string]any{
		"corpus_dir":     h.cfg.CorpusDir,
		"until":          h.cfg.HarvestUntil.Format(time.DateOnly),
		"posts_per_page": h.cfg.HarvestPostsPerPage,
		"interval":       h.interval.String(),
	})

	if err := h.runOnce(ctx); err != nil {
		if h.interval <= 0 {
			return err
		}
		h.log.ErrorObj("initial harvest failed", "error", err.Error())
	}
	if h.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.InfoObj("harvester loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if err := h.runOnce(ctx); err != nil {
				h.log.ErrorObj("scheduled harvest failed", "error", err.Error())
			}
		}
	}
}

func (h *Harvester) runOnce(ctx context.Context) error {
	start := time.Now()
	stats, err := h.service.Run(ctx, h.cfg.HarvestUntil, h.cfg.HarvestPostsPerPage)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	h.log.InfoObj("harvest completed", "harvest_meta", map[string]any{
		"stats":      stats,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

// closeStore safely closes the storage backend, logging any errors encountered.
func (h *Harvester) closeStore() {
	if h == nil || h.store == nil {
		return
	}
	if err := h.store.Close(); err != nil {
		h.log.ErrorObj("storage close failed", "error", err.Error())
	}
}
