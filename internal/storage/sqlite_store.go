package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type seenArticle struct {
	ID        string `gorm:"primaryKey"`
	ExpiresAt int64  `gorm:"index"`
}

type archivedReport struct {
	ID         string `gorm:"primaryKey"`
	URL        string `gorm:"index"`
	TargetName string
	Score      float64
	Payload    []byte
	CreatedAt  time.Time `gorm:"index"`
}

// sqliteStore implements a Store on SQLite through gorm.
type sqliteStore struct {
	db         *gorm.DB
	cleanup    *cleanupGate
	articleTTL time.Duration
	now        func() time.Time
}

func openSQLite(path string, opts Options) (Store, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.AutoMigrate(&seenArticle{}, &archivedReport{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite db: %w", err)
	}

	return &sqliteStore{
		db:         db,
		cleanup:    newCleanupGate(opts.CleanupInterval, time.Now()),
		articleTTL: opts.ArticleTTL,
		now:        time.Now,
	}, nil
}

func (s *sqliteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *sqliteStore) SeenArticle(id string) (bool, error) {
	now := s.now()
	if err := s.cleanup.maybeRun(now, func() error { return s.sweepExpired(now) }); err != nil {
		return false, err
	}

	var row seenArticle
	err := s.db.Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup article: %w", err)
	}
	if row.ExpiresAt <= now.Unix() {
		if err := s.db.Delete(&seenArticle{}, "id = ?", id).Error; err != nil {
			return false, fmt.Errorf("delete expired article: %w", err)
		}
		return false, nil
	}
	return true, nil
}

func (s *sqliteStore) MarkArticle(id string) error {
	now := s.now()
	if err := s.cleanup.maybeRun(now, func() error { return s.sweepExpired(now) }); err != nil {
		return err
	}
	row := seenArticle{ID: id, ExpiresAt: now.Add(s.articleTTL).Unix()}
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("mark article: %w", err)
	}
	return nil
}

func (s *sqliteStore) SaveReport(rec ReportRecord) error {
	if err := validateReport(rec); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	row := archivedReport{
		ID:         rec.ID,
		URL:        rec.URL,
		TargetName: rec.TargetName,
		Score:      rec.Score,
		Payload:    rec.Payload,
		CreatedAt:  rec.CreatedAt,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func (s *sqliteStore) LatestReport(url string) (ReportRecord, error) {
	var row archivedReport
	err := s.db.Where("url = ?", url).Order("created_at desc").Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ReportRecord{}, ErrReportNotFound
	}
	if err != nil {
		return ReportRecord{}, fmt.Errorf("lookup report: %w", err)
	}
	return ReportRecord{
		ID:         row.ID,
		URL:        row.URL,
		TargetName: row.TargetName,
		Score:      row.Score,
		Payload:    row.Payload,
		CreatedAt:  row.CreatedAt,
	}, nil
}

func (s *sqliteStore) sweepExpired(now time.Time) error {
	if err := s.db.Where("expires_at <= ?", now.Unix()).Delete(&seenArticle{}).Error; err != nil {
		return fmt.Errorf("sweep expired articles: %w", err)
	}
	return nil
}
