package scout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/musicweb/listing-scout/internal/listing"
)

// MicrolinkConfig controls the generic markup-scraping client.
type MicrolinkConfig struct {
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	PrerenderHosts []string
}

// MicrolinkExtractor scouts arbitrary marketplace pages by delegating the
// scrape to the Microlink API with CSS/meta-tag selectors for title, image
// and two alternate price locations.
type MicrolinkExtractor struct {
	cfg    MicrolinkConfig
	client *http.Client
}

// NewMicrolinkExtractor builds an extractor with a shared timed HTTP client.
func NewMicrolinkExtractor(cfg MicrolinkConfig) *MicrolinkExtractor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.microlink.io"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.PrerenderHosts == nil {
		cfg.PrerenderHosts = []string{"facebook.com", "instagram.com", "ebay.com"}
	}
	return &MicrolinkExtractor{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// microlinkResponse mirrors the envelope returned by the Microlink API.
type microlinkResponse struct {
	Data *struct {
		Title string `json:"title"`
		Image *struct {
			URL string `json:"url"`
		} `json:"image"`
		MetaPrice string `json:"metaPrice"`
		EbayPrice string `json:"ebayPrice"`
	} `json:"data"`
}

// needsPrerender reports whether the target host is known to require JS
// rendering before its markup is usable.
func (e *MicrolinkExtractor) needsPrerender(target string) bool {
	lower := strings.ToLower(target)
	for _, host := range e.cfg.PrerenderHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}

// scoutURL builds the parameterized Microlink request for a target page.
func (e *MicrolinkExtractor) scoutURL(target string) string {
	prerender := "auto"
	if e.needsPrerender(target) {
		prerender = "true"
	}
	params := url.Values{}
	params.Set("url", target)
	params.Set("palette", "true")
	params.Set("prerender", prerender)
	params.Set("data.title.selector", "title")
	params.Set("data.image.selector", `meta[property="og:image"]`)
	params.Set("data.image.attr", "content")
	params.Set("data.metaPrice.selector", `meta[property="product:price:amount"]`)
	params.Set("data.metaPrice.attr", "content")
	params.Set("data.ebayPrice.selector", ".x-price-primary")
	return strings.TrimRight(e.cfg.BaseURL, "/") + "/?" + params.Encode()
}

// Extract delegates the scrape to Microlink. On any failure it returns
// placeholder metadata together with a ScoutError, mirroring the Reverb
// extractor's degrade-not-fail policy.
func (e *MicrolinkExtractor) Extract(ctx context.Context, target string) (listing.Metadata, error) {
	meta := listing.DefaultMetadata()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.scoutURL(target), nil)
	if err != nil {
		return meta, &listing.ScoutError{Strategy: listing.StrategyGeneric, URL: target, Err: err}
	}
	if e.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", e.cfg.UserAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return meta, &listing.ScoutError{Strategy: listing.StrategyGeneric, URL: target, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return meta, &listing.ScoutError{Strategy: listing.StrategyGeneric, URL: target, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return meta, &listing.ScoutError{
			Strategy: listing.StrategyGeneric,
			URL:      target,
			Err:      fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var ml microlinkResponse
	if err := json.Unmarshal(body, &ml); err != nil {
		return meta, &listing.ScoutError{Strategy: listing.StrategyGeneric, URL: target, Err: err}
	}
	if ml.Data == nil {
		return meta, &listing.ScoutError{
			Strategy: listing.StrategyGeneric,
			URL:      target,
			Err:      fmt.Errorf("response has no data object"),
		}
	}

	if ml.Data.Title != "" {
		meta.Title = ml.Data.Title
	}
	if ml.Data.Image != nil && ml.Data.Image.URL != "" {
		meta.ImageURL = ml.Data.Image.URL
	}
	// Prefer the product:price:amount meta tag; fall back to the
	// marketplace-specific price selector.
	rawPrice := ml.Data.MetaPrice
	if rawPrice == "" {
		rawPrice = ml.Data.EbayPrice
	}
	if rawPrice != "" {
		meta.PriceText = FormatPrice(rawPrice)
	}
	meta.Raw = body
	return meta, nil
}
