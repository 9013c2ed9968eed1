package harvest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/corpus"
	"github.com/samvad-hq/samvad-declaration-auditor/pkg/httpclient"
)

type fakeFeed struct {
	listings []Listing
	texts    map[string]string
}

func (f *fakeFeed) Listings(context.Context, time.Time, int) ([]Listing, error) {
	return f.listings, nil
}

func (f *fakeFeed) ArticleText(_ context.Context, link string) (string, error) {
	text, ok := f.texts[link]
	if !ok {
		return "", errors.New("status 404")
	}
	return text, nil
}

type fakeTagger struct{}

func (fakeTagger) Tag(_ context.Context, content string) (map[string][]string, error) {
	return map[string][]string{"PER": {content}}, nil
}

type memSeen map[string]bool

func (m memSeen) SeenArticle(id string) (bool, error) { return m[id], nil }
func (m memSeen) MarkArticle(id string) error         { m[id] = true; return nil }

func TestServiceRunSavesNewArticles(t *testing.T) {
	dir := t.TempDir()
	feed := &fakeFeed{
		listings: []Listing{
			{Date: "2024-03-07", Title: "A", Link: "https://bihus.info/a"},
			{Date: "2024-03-07", Title: "B", Link: "https://bihus.info/b"},
			{Date: "2024-03-06", Title: "Old", Link: "https://bihus.info/old"},
			{Date: "2024-03-05", Title: "Broken", Link: "https://bihus.info/broken"},
			{Date: "2024-03-05", Title: "No link"},
		},
		texts: map[string]string{
			"https://bihus.info/a":   "Іван Франко",
			"https://bihus.info/b":   "Леся Українка",
			"https://bihus.info/old": "x",
		},
	}
	seen := memSeen{"https://bihus.info/old": true}

	stats, err := NewService(feed, fakeTagger{}, seen, dir, nil).Run(context.Background(), time.Time{}, 24)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := Stats{Listed: 5, Skipped: 1, Saved: 2, Failed: 2}
	if stats != want {
		t.Fatalf("unexpected stats %+v, want %+v", stats, want)
	}
	if !seen["https://bihus.info/a"] || !seen["https://bihus.info/b"] || seen["https://bihus.info/broken"] {
		t.Fatalf("unexpected seen set %v", seen)
	}

	articles, err := corpus.Load(dir)
	if err != nil {
		t.Fatalf("corpus.Load: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 saved articles, got %d", len(articles))
	}
	for _, a := range articles {
		if len(a.Persons()) != 1 || a.Persons()[0] != a.Content {
			t.Fatalf("entities not stored for %+v", a)
		}
	}
}

func TestServiceRunSecondPassSkipsEverything(t *testing.T) {
	dir := t.TempDir()
	feed := &fakeFeed{
		listings: []Listing{{Date: "2024-03-07", Title: "A", Link: "https://bihus.info/a"}},
		texts:    map[string]string{"https://bihus.info/a": "text"},
	}
	svc := NewService(feed, fakeTagger{}, memSeen{}, dir, nil)
	if _, err := svc.Run(context.Background(), time.Time{}, 0); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	stats, err := svc.Run(context.Background(), time.Time{}, 0)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if stats.Saved != 0 || stats.Skipped != 1 {
		t.Fatalf("expected dedup on second pass, got %+v", stats)
	}
}

func TestServiceRunSavesArticlesBeforeUnreadableDate(t *testing.T) {
	pages := map[int][]string{}
	srv, _ := newFeedServer(t, pages)
	pages[0] = []string{card("2024-03-07", "A", srv.URL+"/news/ok"), card("2024-03-06", "B", srv.URL+"/news/ok?b=1")}
	pages[1] = []string{card("07.03.2024", "C", srv.URL+"/news/c")}
	p := NewPager(httpclient.NewRestyClient(5*time.Second), feedSource(srv.URL), nil)
	dir := t.TempDir()

	stats, err := NewService(p, fakeTagger{}, nil, dir, nil).Run(context.Background(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats != (Stats{Listed: 2, Saved: 2}) {
		t.Fatalf("unexpected stats %+v", stats)
	}
	articles, err := corpus.Load(dir)
	if err != nil {
		t.Fatalf("corpus.Load: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 saved articles, got %d", len(articles))
	}
}

func TestNewServiceWithoutSeenSetHarvestsEveryPass(t *testing.T) {
	feed := &fakeFeed{
		listings: []Listing{{Date: "2024-03-07", Title: "A", Link: "https://bihus.info/a"}},
		texts:    map[string]string{"https://bihus.info/a": "text"},
	}
	svc := NewService(feed, fakeTagger{}, nil, t.TempDir(), nil)
	if svc.seen == nil {
		t.Fatalf("expected a default seen set")
	}
	for i := 0; i < 2; i++ {
		stats, err := svc.Run(context.Background(), time.Time{}, 0)
		if err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
		if stats.Saved != 1 || stats.Skipped != 0 {
			t.Fatalf("pass %d: expected no dedup, got %+v", i, stats)
		}
	}
}
