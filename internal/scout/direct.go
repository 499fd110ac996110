package scout

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/musicweb/listing-scout/internal/listing"
)

// PageRenderer fetches a page through a JS-capable browser.
type PageRenderer interface {
	Render(ctx context.Context, url string) ([]byte, error)
}

// DirectConfig controls the self-hosted generic extractor.
type DirectConfig struct {
	UserAgent      string
	Timeout        time.Duration
	PrerenderHosts []string
}

// DirectExtractor is an alternative generic provider that fetches the page
// itself instead of delegating to a scraping service. Plain pages go
// through a Colly probe; hosts known to require JS rendering go through the
// renderer when one is configured. Selector semantics match the Microlink
// path.
type DirectExtractor struct {
	cfg      DirectConfig
	renderer PageRenderer
}

// NewDirectExtractor builds a DirectExtractor. The renderer may be nil, in
// which case prerender hosts are probed like any other page.
func NewDirectExtractor(cfg DirectConfig, renderer PageRenderer) *DirectExtractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.PrerenderHosts == nil {
		cfg.PrerenderHosts = []string{"facebook.com", "instagram.com", "ebay.com"}
	}
	return &DirectExtractor{cfg: cfg, renderer: renderer}
}

func (e *DirectExtractor) needsPrerender(target string) bool {
	lower := strings.ToLower(target)
	for _, host := range e.cfg.PrerenderHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}

// Extract fetches and parses the target page. Degrade-not-fail: any fetch
// or parse error yields placeholder metadata plus a ScoutError.
func (e *DirectExtractor) Extract(ctx context.Context, target string) (listing.Metadata, error) {
	meta := listing.DefaultMetadata()

	var (
		body []byte
		err  error
	)
	if e.needsPrerender(target) && e.renderer != nil {
		body, err = e.renderer.Render(ctx, target)
	} else {
		body, err = e.probe(ctx, target)
	}
	if err != nil {
		return meta, &listing.ScoutError{Strategy: listing.StrategyGeneric, URL: target, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return meta, &listing.ScoutError{Strategy: listing.StrategyGeneric, URL: target, Err: err}
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		meta.Title = title
	}
	if img, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok && img != "" {
		meta.ImageURL = img
	}
	rawPrice, _ := doc.Find(`meta[property="product:price:amount"]`).First().Attr("content")
	if rawPrice == "" {
		rawPrice = strings.TrimSpace(doc.Find(".x-price-primary").First().Text())
	}
	if rawPrice != "" {
		meta.PriceText = FormatPrice(rawPrice)
	}
	meta.Raw = body
	return meta, nil
}

// probe executes a single HTTP GET through Colly.
func (e *DirectExtractor) probe(ctx context.Context, target string) ([]byte, error) {
	collector := colly.NewCollector(colly.Async(false))
	collector.IgnoreRobotsTxt = false
	if e.cfg.UserAgent != "" {
		collector.UserAgent = e.cfg.UserAgent
	}
	collector.SetRequestTimeout(e.cfg.Timeout)

	var (
		body     []byte
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(target)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("probe canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("probe visit: %w", err)
		}
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("probe response: %w", fetchErr)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("probe returned empty body")
	}
	return body, nil
}
