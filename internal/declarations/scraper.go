// Package declarations scrapes asset declarations and turns them into
// structured records and corruption indicators.
package declarations

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/logger"
	"github.com/samvad-hq/samvad-declaration-auditor/pkg/httpclient"
	"github.com/samvad-hq/samvad-declaration-auditor/pkg/sources"
)

const (
	maxHTMLBodyBytes = 4 << 20 // 4 MiB

	defaultLinkPattern     = "/catalog/individuals/declaration/"
	defaultWrapperSelector = "div.wrapper"
)

// Scraper fetches a person's declaration list page and the detail pages it links to.
type Scraper struct {
	client httpclient.Client
	source sources.Source
	log    logger.Logger
}

// NewScraper constructs a scraper for a declarations source.
func NewScraper(client httpclient.Client, source sources.Source, log logger.Logger) *Scraper {
	if client == nil {
		client = httpclient.NewThrottledClient(httpclient.NewRestyClient(defaultTimeout), source.RequestDelay())
	}
	return &Scraper{client: client, source: source, log: logger.Ensure(log)}
}

// DetailURLs returns absolute declaration detail URLs found on listURL, oldest first.
// A failed or non-200 fetch is logged and yields an empty list.
func (s *Scraper) DetailURLs(ctx context.Context, listURL string) []string {
	body, ok := s.fetch(ctx, listURL)
	if !ok {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		s.log.WarnObj("declaration list parse failed", "scrape_error", map[string]any{
			"url":   listURL,
			"error": err.Error(),
		})
		return nil
	}

	pattern := sources.ConfigString(s.source, sources.ConfigLinkPatternKey, defaultLinkPattern)
	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if strings.Contains(href, pattern) {
			hrefs = append(hrefs, href)
		}
	})

	urls := make([]string, 0, len(hrefs))
	for i := len(hrefs) - 1; i >= 0; i-- {
		urls = append(urls, s.absolute(hrefs[i]))
	}
	return urls
}

// Fragments fetches every detail page and keeps the wrapper element's HTML.
// Pages that fail to load are logged and skipped; the input order is kept.
func (s *Scraper) Fragments(ctx context.Context, urls []string) []string {
	selector := sources.ConfigString(s.source, sources.ConfigWrapperSelectorKey, defaultWrapperSelector)

	fragments := make([]string, 0, len(urls))
	for _, u := range urls {
		if ctx.Err() != nil {
			break
		}
		body, ok := s.fetch(ctx, u)
		if !ok {
			continue
		}
		fragment, err := wrapperHTML(body, selector)
		if err != nil {
			s.log.WarnObj("declaration page parse failed", "scrape_error", map[string]any{
				"url":   u,
				"error": err.Error(),
			})
			continue
		}
		fragments = append(fragments, fragment)
	}
	return fragments
}

// absolute prefixes site-relative links with the source base URL.
func (s *Scraper) absolute(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return s.source.BaseURL + href
}

func (s *Scraper) fetch(ctx context.Context, url string) ([]byte, bool) {
	resp, err := s.client.Get(ctx, url, sources.Headers(s.source))
	if err != nil {
		s.log.WarnObj("failed to fetch the webpage", "scrape_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
		return nil, false
	}
	if resp.StatusCode() != http.StatusOK {
		s.log.WarnObj("failed to fetch the webpage", "scrape_error", map[string]any{
			"url":         url,
			"status_code": resp.StatusCode(),
		})
		return nil, false
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		s.log.WarnObj("webpage truncated to the size limit", "scrape_truncated", map[string]any{
			"url":   url,
			"bytes": len(body),
			"limit": maxHTMLBodyBytes,
		})
		body = body[:maxHTMLBodyBytes]
	}
	return body, true
}

// wrapperHTML returns the outer HTML of the first element matching selector.
func wrapperHTML(body []byte, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	node := doc.Find(selector).First()
	if node.Length() == 0 {
		return "", fmt.Errorf("no element matches %q", selector)
	}
	return goquery.OuterHtml(node)
}
