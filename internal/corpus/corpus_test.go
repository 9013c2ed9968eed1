package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/domain"
)

func TestSaveNamesByDateWithSuffix(t *testing.T) {
	dir := t.TempDir()
	article := domain.Article{Date: "2024-03-07", Title: "Розслідування", Link: "https://bihus.info/a", Content: "текст"}

	var names []string
	for i := 0; i < 3; i++ {
		path, err := Save(dir, article)
		if err != nil {
			t.Fatalf("Save #%d: %v", i, err)
		}
		names = append(names, filepath.Base(path))
	}
	want := []string{"07-03-2024.json", "07-03-2024_1.json", "07-03-2024_2.json"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected names %v", names)
	}

	raw, err := os.ReadFile(filepath.Join(dir, want[0]))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), "Розслідування") || !strings.Contains(string(raw), "\n  \"title\"") {
		t.Fatalf("expected 2-space indented utf-8 json, got %s", raw)
	}
}

func TestSaveRejectsBadDate(t *testing.T) {
	if _, err := Save(t.TempDir(), domain.Article{Date: "07.03.2024"}); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestLoadReadsJSONFilesOnly(t *testing.T) {
	dir := t.TempDir()
	tagged := domain.Article{Date: "2024-03-07", Title: "a", Entities: map[string][]string{"PER": {"Іван Франко"}}}
	if _, err := Save(dir, tagged); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "01-01-2020.json"), []byte(`{"title":"b","link":"l","content":"c"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(got))
	}
	if got[0].Title != "b" || got[0].Entities == nil || len(got[0].Persons()) != 0 {
		t.Fatalf("untagged article should load with empty entities: %+v", got[0])
	}
	if got[1].Persons()[0] != "Іван Франко" {
		t.Fatalf("unexpected persons %v", got[1].Persons())
	}
}

func TestLoadFailsOnBrokenFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.json"), []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestLoadMissingDir(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}
