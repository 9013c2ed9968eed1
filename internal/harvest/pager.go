// Package harvest builds the local news corpus from a paged news feed.
package harvest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/logger"
	"github.com/samvad-hq/samvad-declaration-auditor/pkg/httpclient"
	"github.com/samvad-hq/samvad-declaration-auditor/pkg/sources"
)

const (
	dateLayout          = "2006-01-02"
	missingDate         = "1970-01-01"
	missingTitle        = "No Title"
	defaultPostsPerPage = 24
)

// Listing is one article card from the feed.
type Listing struct {
	Date  string `json:"date"`
	Title string `json:"title"`
	Link  string `json:"link"`
}

type ajaxPage struct {
	HTML string `json:"html"`
}

// Pager walks the feed's AJAX pagination endpoint, newest first.
type Pager struct {
	client httpclient.QueryClient
	source sources.Source
	log    logger.Logger
}

// NewPager builds a pager for a news_ajax source.
func NewPager(client httpclient.QueryClient, source sources.Source, log logger.Logger) *Pager {
	return &Pager{client: client, source: source, log: logger.Ensure(log)}
}

// Listings collects article cards until the first one dated before until.
// A failed page or an unreadable card date ends the walk; everything gathered so far is returned.
func (p *Pager) Listings(ctx context.Context, until time.Time, perPage int) ([]Listing, error) {
	if perPage <= 0 {
		perPage = defaultPostsPerPage
	}

	var out []Listing
	for page, offset := 0, 0; ; page, offset = page+1, offset+perPage {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		cards, err := p.fetchPage(ctx, page, offset, perPage)
		if err != nil {
			p.log.WarnObj("feed page failed", "harvest_page_error", map[string]any{
				"source_id": p.source.ID,
				"page":      page,
				"error":     err.Error(),
			})
			return out, nil
		}
		if len(cards) == 0 {
			return out, nil
		}

		for _, card := range cards {
			date, err := time.Parse(dateLayout, card.Date)
			if err != nil {
				p.log.WarnObj("feed article date unreadable", "harvest_page_error", map[string]any{
					"source_id": p.source.ID,
					"page":      page,
					"date":      card.Date,
					"error":     err.Error(),
				})
				return out, nil
			}
			if date.Before(until) {
				p.log.InfoObj("reached articles older than the cutoff", "harvest_cutoff", map[string]any{
					"until": until.Format(dateLayout),
					"page":  page,
				})
				return out, nil
			}
			out = append(out, card)
		}
		p.log.DebugObj("feed page fetched", "harvest_page", map[string]any{
			"page":     page,
			"articles": len(cards),
			"first":    cards[0].Title,
			"last":     cards[len(cards)-1].Title,
		})
	}
}

func (p *Pager) fetchPage(ctx context.Context, page, offset, perPage int) ([]Listing, error) {
	query := sources.ConfigStringMap(p.source, sources.ConfigQueryKey)
	if query == nil {
		query = map[string]string{}
	}
	query["posts_per_page"] = strconv.Itoa(perPage)
	query["page"] = strconv.Itoa(page)
	query["offset"] = strconv.Itoa(offset)

	resp, err := p.client.GetWithQuery(ctx, p.source.SourceURL, query, sources.Headers(p.source))
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode())
	}

	var payload ajaxPage
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	return parseCards(payload.HTML)
}

// parseCards reads <article> cards: h2 title, time[datetime] date and first link.
func parseCards(fragment string) ([]Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parse cards: %w", err)
	}

	var cards []Listing
	doc.Find("article").Each(func(_ int, sel *goquery.Selection) {
		card := Listing{Title: missingTitle, Date: missingDate}
		if h2 := sel.Find("h2").First(); h2.Length() > 0 {
			card.Title = strings.TrimSpace(h2.Text())
		}
		if dt, ok := sel.Find("time").First().Attr("datetime"); ok {
			card.Date = normalizeDate(dt)
		}
		if href, ok := sel.Find("a[href]").First().Attr("href"); ok {
			card.Link = strings.TrimSpace(href)
		}
		cards = append(cards, card)
	})
	return cards, nil
}

func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) > len(dateLayout) {
		raw = raw[:len(dateLayout)]
	}
	return raw
}

// ArticleText fetches an article page and returns its body text, one line per text node.
func (p *Pager) ArticleText(ctx context.Context, link string) (string, error) {
	resp, err := p.client.Get(ctx, link, sources.Headers(p.source))
	if err != nil {
		return "", fmt.Errorf("fetch article: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("fetch article: status %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return "", fmt.Errorf("parse article: %w", err)
	}
	selector := sources.ConfigString(p.source, sources.ConfigContentSelectorKey, "div.bi-single-content")
	body := doc.Find(selector).First()
	if body.Length() == 0 {
		return "", fmt.Errorf("no content found in the article")
	}
	return cleanText(textLines(body)), nil
}

func textLines(sel *goquery.Selection) string {
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, child *goquery.Selection) {
			switch goquery.NodeName(child) {
			case "#text":
				parts = append(parts, child.Text())
			case "script", "style":
			default:
				walk(child)
			}
		})
	}
	walk(sel)
	return strings.Join(parts, "\n")
}
