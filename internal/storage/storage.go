package storage

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Package storage keeps the harvester's seen-article set and the report archive.

// ErrReportNotFound is returned when no report is archived for a URL.
var ErrReportNotFound = errors.New("report not found")

// Store tracks harvested article IDs and archives completed reports.
type Store interface {
	Close() error
	SeenArticle(id string) (bool, error)
	MarkArticle(id string) error
	SaveReport(rec ReportRecord) error
	LatestReport(url string) (ReportRecord, error)
}

// ReportRecord is one archived analysis result. Payload holds the result JSON.
type ReportRecord struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	TargetName string    `json:"target_name"`
	Score      float64   `json:"score"`
	Payload    []byte    `json:"payload"`
	CreatedAt  time.Time `json:"created_at"`
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	ArticleTTL      time.Duration
	CleanupInterval time.Duration
}

const (
	defaultArticleTTL      = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// Backend names accepted by NewStore.
const (
	TypeNone   = "none"
	TypeBBolt  = "bbolt"
	TypeSQLite = "sqlite"
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", TypeNone, "disabled":
		return Noop(), nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	case TypeSQLite:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("sqlite storage requires a path")
		}
		return openSQLite(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.ArticleTTL <= 0 {
		opts.ArticleTTL = defaultArticleTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

func validateReport(rec ReportRecord) error {
	if strings.TrimSpace(rec.URL) == "" {
		return errors.New("report url is required")
	}
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("report id is required")
	}
	return nil
}

// cleanupGate runs expiry sweeps at most once per interval.
type cleanupGate struct {
	mu       sync.Mutex
	last     atomic.Int64
	interval time.Duration
}

func newCleanupGate(interval time.Duration, now time.Time) *cleanupGate {
	g := &cleanupGate{interval: interval}
	g.last.Store(now.Unix())
	return g
}

// maybeRun calls sweep when the interval has elapsed since the last successful sweep.
func (g *cleanupGate) maybeRun(now time.Time, sweep func() error) error {
	if now.Sub(time.Unix(g.last.Load(), 0)) < g.interval {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if now.Sub(time.Unix(g.last.Load(), 0)) < g.interval {
		return nil
	}
	if err := sweep(); err != nil {
		return err
	}
	g.last.Store(now.Unix())
	return nil
}

// Noop returns a store that remembers nothing.
func Noop() Store { return noopStore{} }

type noopStore struct{}

func (noopStore) Close() error                              { return nil }
func (noopStore) SeenArticle(string) (bool, error)          { return false, nil }
func (noopStore) MarkArticle(string) error                  { return nil }
func (noopStore) SaveReport(ReportRecord) error             { return nil }
func (noopStore) LatestReport(string) (ReportRecord, error) { return ReportRecord{}, ErrReportNotFound }
