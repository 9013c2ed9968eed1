package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket layout:
//
//	articles/<article id>             -> big-endian unix expiry
//	reports/<request url>/<ts><id>    -> JSON ReportRecord
//
// Report keys start with the big-endian CreatedAt nanos so the last key of a
// URL bucket is the newest report.
var (
	articlesBucket = []byte("articles")
	reportsBucket  = []byte("reports")
)

type boltStore struct {
	db         *bolt.DB
	cleanup    *cleanupGate
	articleTTL time.Duration
	now        func() time.Time
}

func openBolt(path string, opts Options) (Store, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(articlesBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(reportsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bbolt buckets: %w", err)
	}
	return &boltStore{
		db:         db,
		cleanup:    newCleanupGate(opts.CleanupInterval, time.Now()),
		articleTTL: opts.ArticleTTL,
		now:        time.Now,
	}, nil
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage directory: %w", err)
		}
	}
	return nil
}

func (b *boltStore) Close() error {
	return b.db.Close()
}

// SeenArticle reports whether id was marked and has not expired yet. Expired
// entries are left for the periodic sweep.
func (b *boltStore) SeenArticle(id string) (bool, error) {
	now := b.now()
	if err := b.sweep(now); err != nil {
		return false, err
	}

	var seen bool
	err := b.db.View(func(tx *bolt.Tx) error {
		expiry, ok := decodeExpiry(tx.Bucket(articlesBucket).Get([]byte(id)))
		seen = ok && expiry.After(now)
		return nil
	})
	return seen, err
}

func (b *boltStore) MarkArticle(id string) error {
	now := b.now()
	if err := b.sweep(now); err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(articlesBucket).Put([]byte(id), encodeExpiry(now.Add(b.articleTTL)))
	})
}

func (b *boltStore) SaveReport(rec ReportRecord) error {
	if err := validateReport(rec); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = b.now().UTC()
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", rec.ID, err)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		perURL, err := tx.Bucket(reportsBucket).CreateBucketIfNotExists([]byte(rec.URL))
		if err != nil {
			return fmt.Errorf("report bucket for %s: %w", rec.URL, err)
		}
		return perURL.Put(reportKey(rec), raw)
	})
}

func (b *boltStore) LatestReport(url string) (ReportRecord, error) {
	var rec ReportRecord
	err := b.db.View(func(tx *bolt.Tx) error {
		perURL := tx.Bucket(reportsBucket).Bucket([]byte(url))
		if perURL == nil {
			return ErrReportNotFound
		}
		_, raw := perURL.Cursor().Last()
		if raw == nil {
			return ErrReportNotFound
		}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("decode report for %s: %w", url, err)
		}
		return nil
	})
	return rec, err
}

func (b *boltStore) sweep(now time.Time) error {
	return b.cleanup.maybeRun(now, func() error {
		return b.db.Update(func(tx *bolt.Tx) error {
			bucket := tx.Bucket(articlesBucket)
			var expired [][]byte
			err := bucket.ForEach(func(k, v []byte) error {
				if expiry, ok := decodeExpiry(v); !ok || !expiry.After(now) {
					expired = append(expired, append([]byte(nil), k...))
				}
				return nil
			})
			if err != nil {
				return err
			}
			for _, k := range expired {
				if err := bucket.Delete(k); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

func reportKey(rec ReportRecord) []byte {
	key := make([]byte, 8, 8+len(rec.ID))
	binary.BigEndian.PutUint64(key, uint64(rec.CreatedAt.UnixNano()))
	return append(key, rec.ID...)
}

func encodeExpiry(t time.Time) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(t.Unix()))
	return buf
}

func decodeExpiry(v []byte) (time.Time, bool) {
	if len(v) != 8 {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(v))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
