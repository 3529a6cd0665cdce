// Package extract turns links and uploaded PDFs into plain text ready for
// chunking.
package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/novanote/novanote/internal/domain"
)

const (
	UserAgent           = "NovaNoteBot/1.0"
	DefaultCrawlTimeout = 20 * time.Second
	maxPageBytes        = 5 << 20

	noiseSelector = "script, style, noscript, template, iframe, svg, nav, header, footer, aside, form"
	blockSelector = "p, h1, h2, h3, h4, h5, h6, li, pre, blockquote, td, figcaption"
)

// mainContentSelectors are tried in order. The first one holding a
// reasonable amount of text wins, otherwise the whole body is used.
var mainContentSelectors = []string{"article", "main", "[role='main']", "#content", ".content", ".post", ".entry-content"}

// Page is the readable part of a fetched web page.
type Page struct {
	URL   string
	Title string
	Text  string
}

// Crawler fetches a URL and extracts its title and main text.
type Crawler struct {
	client *http.Client
}

func NewCrawler(timeout time.Duration) *Crawler {
	if timeout <= 0 {
		timeout = DefaultCrawlTimeout
	}
	return &Crawler{client: &http.Client{Timeout: timeout}}
}

func NewCrawlerWithClient(client *http.Client) *Crawler {
	return &Crawler{client: client}
}

// Fetch downloads rawURL and returns its readable content. A page without
// any text yields domain.ErrEmptyContent.
func (c *Crawler) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "url must be an absolute http(s) URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid url", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "failed to fetch url", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, domain.NewDomainError(domain.ErrCodeUpstream, fmt.Sprintf("url returned status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "failed to parse page", err)
	}

	page := &Page{
		URL:   u.String(),
		Title: pageTitle(doc),
		Text:  mainText(doc),
	}
	if page.Title == "" {
		page.Title = page.URL
	}
	if page.Text == "" {
		return nil, domain.ErrEmptyContent
	}
	return page, nil
}

func pageTitle(doc *goquery.Document) string {
	if og, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		if t := collapseSpace(og); t != "" {
			return t
		}
	}
	if t := collapseSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return collapseSpace(doc.Find("h1").First().Text())
}

func mainText(doc *goquery.Document) string {
	doc.Find(noiseSelector).Remove()

	for _, sel := range mainContentSelectors {
		root := doc.Find(sel).First()
		if root.Length() == 0 {
			continue
		}
		if text := blockText(root); len(text) > 100 {
			return text
		}
	}
	return blockText(doc.Find("body"))
}

// blockText joins the text of top-level block elements with blank lines.
// Roots without any block elements fall back to their flattened text.
func blockText(root *goquery.Selection) string {
	var blocks []string
	root.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		if t := collapseSpace(s.Text()); t != "" {
			blocks = append(blocks, t)
		}
	})
	if len(blocks) == 0 {
		return collapseSpace(root.Text())
	}
	return strings.Join(blocks, "\n\n")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
