package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

// clock is a manually advanced time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func openBackends(t *testing.T, opts Options) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	opts = normalizeOptions(opts)

	boltDB, err := openBolt(filepath.Join(dir, "auditor.db"), opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	sqliteDB, err := openSQLite(filepath.Join(dir, "auditor.sqlite"), opts)
	if err != nil {
		t.Fatalf("openSQLite: %v", err)
	}
	t.Cleanup(func() {
		boltDB.Close()
		sqliteDB.Close()
	})
	return map[string]Store{TypeBBolt: boltDB, TypeSQLite: sqliteDB}
}

func setClock(s Store, c *clock) {
	switch st := s.(type) {
	case *boltStore:
		st.now = c.now
	case *sqliteStore:
		st.now = c.now
	}
}

func TestStoreMarksAndExpiresArticles(t *testing.T) {
	for name, store := range openBackends(t, Options{ArticleTTL: time.Hour, CleanupInterval: time.Minute}) {
		t.Run(name, func(t *testing.T) {
			c := &clock{t: time.Now()}
			setClock(store, c)

			seen, err := store.SeenArticle("https://bihus.info/a")
			if err != nil || seen {
				t.Fatalf("expected unseen article, seen=%v err=%v", seen, err)
			}
			if err := store.MarkArticle("https://bihus.info/a"); err != nil {
				t.Fatalf("MarkArticle: %v", err)
			}
			seen, err = store.SeenArticle("https://bihus.info/a")
			if err != nil || !seen {
				t.Fatalf("expected article marked as seen, got seen=%v err=%v", seen, err)
			}

			c.advance(2 * time.Hour)
			seen, err = store.SeenArticle("https://bihus.info/a")
			if err != nil {
				t.Fatalf("SeenArticle after expiry: %v", err)
			}
			if seen {
				t.Fatalf("expected entry to expire")
			}
		})
	}
}

func TestBoltSweepRemovesExpiredEntries(t *testing.T) {
	raw, err := openBolt(filepath.Join(t.TempDir(), "cache.db"), Options{ArticleTTL: time.Minute, CleanupInterval: time.Minute})
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := raw.(*boltStore)
	defer store.Close()

	c := &clock{t: time.Now()}
	store.now = c.now
	for _, id := range []string{"a", "b"} {
		if err := store.MarkArticle(id); err != nil {
			t.Fatalf("MarkArticle: %v", err)
		}
	}

	c.advance(2 * time.Minute)
	if _, err := store.SeenArticle("other"); err != nil {
		t.Fatalf("SeenArticle: %v", err)
	}
	if err := store.db.View(func(tx *bolt.Tx) error {
		if n := tx.Bucket(articlesBucket).Stats().KeyN; n != 0 {
			t.Fatalf("expected sweep to empty bucket, %d keys left", n)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestStoreArchivesLatestReport(t *testing.T) {
	for name, store := range openBackends(t, Options{}) {
		t.Run(name, func(t *testing.T) {
			url := "https://youcontrol.com.ua/catalog/person/1"
			if _, err := store.LatestReport(url); !errors.Is(err, ErrReportNotFound) {
				t.Fatalf("expected ErrReportNotFound, got %v", err)
			}

			base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
			first := ReportRecord{ID: "r1", URL: url, TargetName: "Іван Франко", Score: 3, Payload: []byte(`{"final_score":3}`), CreatedAt: base}
			second := ReportRecord{ID: "r2", URL: url, TargetName: "Іван Франко", Score: 7.5, Payload: []byte(`{"final_score":7.5}`), CreatedAt: base.Add(time.Hour)}
			for _, rec := range []ReportRecord{first, second} {
				if err := store.SaveReport(rec); err != nil {
					t.Fatalf("SaveReport: %v", err)
				}
			}

			got, err := store.LatestReport(url)
			if err != nil {
				t.Fatalf("LatestReport: %v", err)
			}
			if got.ID != "r2" || got.Score != 7.5 || string(got.Payload) != `{"final_score":7.5}` {
				t.Fatalf("unexpected latest report %+v", got)
			}
			if !got.CreatedAt.Equal(second.CreatedAt) {
				t.Fatalf("created_at not preserved: %v", got.CreatedAt)
			}
		})
	}
}

func TestSaveReportValidates(t *testing.T) {
	for name, store := range openBackends(t, Options{}) {
		t.Run(name, func(t *testing.T) {
			if err := store.SaveReport(ReportRecord{ID: "x"}); err == nil {
				t.Fatalf("expected error for missing url")
			}
		})
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.MarkArticle("x"); err != nil {
		t.Fatalf("noop store MarkArticle: %v", err)
	}
	if _, err := store.LatestReport("x"); !errors.Is(err, ErrReportNotFound) {
		t.Fatalf("noop store should report not found, got %v", err)
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "x", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore(TypeSQLite, " ", Options{}); err == nil {
		t.Fatalf("expected error for empty sqlite path")
	}
}
