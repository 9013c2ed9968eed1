// Package corpus reads and writes the on-disk news corpus: one JSON file per article.
package corpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/domain"
)

const (
	articleDateLayout = "2006-01-02"
	fileDateLayout    = "02-01-2006"
	fileExt           = ".json"
)

// Load reads every *.json article in dir, ordered by file name.
// Articles without tagged entities load with an empty entity map.
func Load(dir string) ([]domain.Article, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus dir: %w", err)
	}

	articles := make([]domain.Article, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		article, err := readArticle(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, nil
}

func readArticle(path string) (domain.Article, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Article{}, fmt.Errorf("read article %s: %w", filepath.Base(path), err)
	}
	var article domain.Article
	if err := json.Unmarshal(raw, &article); err != nil {
		return domain.Article{}, fmt.Errorf("decode article %s: %w", filepath.Base(path), err)
	}
	if article.Entities == nil {
		article.Entities = map[string][]string{}
	}
	return article, nil
}

// Save writes article as DD-MM-YYYY.json in dir, adding a _N suffix when the
// name is taken. It returns the written path.
func Save(dir string, article domain.Article) (string, error) {
	date, err := time.Parse(articleDateLayout, strings.TrimSpace(article.Date))
	if err != nil {
		return "", fmt.Errorf("article date %q: %w", article.Date, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create corpus dir: %w", err)
	}

	payload, err := encodeArticle(article)
	if err != nil {
		return "", err
	}

	stem := date.Format(fileDateLayout)
	for n := 0; ; n++ {
		name := stem + fileExt
		if n > 0 {
			name = fmt.Sprintf("%s_%d%s", stem, n, fileExt)
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create article file: %w", err)
		}
		if _, err := f.Write(payload); err != nil {
			f.Close()
			return "", fmt.Errorf("write article file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close article file: %w", err)
		}
		return path, nil
	}
}

func encodeArticle(article domain.Article) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(article); err != nil {
		return nil, fmt.Errorf("encode article: %w", err)
	}
	return buf.Bytes(), nil
}

// Dir is a corpus directory that is re-read on every Load.
type Dir string

// Load reads the articles currently in the directory.
func (d Dir) Load() ([]domain.Article, error) {
	return Load(string(d))
}
