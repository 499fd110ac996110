package scout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/musicweb/listing-scout/internal/listing"
)

// ReverbConfig controls the dedicated Reverb API client.
type ReverbConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// ReverbExtractor scouts Reverb item pages through the public listings API
// instead of scraping markup.
type ReverbExtractor struct {
	cfg    ReverbConfig
	client *http.Client
}

// NewReverbExtractor builds an extractor with a shared timed HTTP client.
func NewReverbExtractor(cfg ReverbConfig) *ReverbExtractor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.reverb.com/api"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &ReverbExtractor{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// reverbListing mirrors the fields we read from the Reverb listings API.
type reverbListing struct {
	Title string `json:"title"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Price *struct {
		Amount string `json:"amount"`
	} `json:"price"`
	Condition *struct {
		DisplayName string `json:"display_name"`
	} `json:"condition"`
	Photos []struct {
		Links struct {
			LargeCrop struct {
				Href string `json:"href"`
			} `json:"large_crop"`
		} `json:"_links"`
	} `json:"photos"`
}

// ItemID pulls the Reverb item identifier out of an item URL: the path
// segment after the item marker, with any query string stripped.
func ItemID(url string) string {
	_, after, found := strings.Cut(url, reverbItemMarker)
	if !found {
		return ""
	}
	id, _, _ := strings.Cut(after, "?")
	return id
}

// Extract calls the Reverb listings API for the item in the URL. On any
// failure it returns placeholder metadata together with a ScoutError; a bad
// scout never blocks the listing from being created.
func (e *ReverbExtractor) Extract(ctx context.Context, url string) (listing.Metadata, error) {
	meta := listing.DefaultMetadata()

	id := ItemID(url)
	if id == "" {
		return meta, &listing.ScoutError{
			Strategy: listing.StrategyReverb,
			URL:      url,
			Err:      fmt.Errorf("no item id in url"),
		}
	}

	endpoint := fmt.Sprintf("%s/listings/%s", strings.TrimRight(e.cfg.BaseURL, "/"), id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return meta, &listing.ScoutError{Strategy: listing.StrategyReverb, URL: url, Err: err}
	}
	req.Header.Set("Accept-Version", "3.0")
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", e.cfg.UserAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return meta, &listing.ScoutError{Strategy: listing.StrategyReverb, URL: url, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return meta, &listing.ScoutError{Strategy: listing.StrategyReverb, URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return meta, &listing.ScoutError{
			Strategy: listing.StrategyReverb,
			URL:      url,
			Err:      fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var rl reverbListing
	if err := json.Unmarshal(body, &rl); err != nil {
		return meta, &listing.ScoutError{Strategy: listing.StrategyReverb, URL: url, Err: err}
	}

	// Missing response fields keep their placeholders; values are never
	// synthesized.
	if rl.Title != "" {
		meta.Title = rl.Title
	}
	if rl.Make != "" && rl.Model != "" {
		meta.BrandModel = rl.Make + " " + rl.Model
	}
	if rl.Price != nil && rl.Price.Amount != "" {
		meta.PriceText = "$" + rl.Price.Amount
	}
	if rl.Condition != nil && rl.Condition.DisplayName != "" {
		meta.Condition = rl.Condition.DisplayName
	}
	if len(rl.Photos) > 0 {
		meta.ImageURL = rl.Photos[0].Links.LargeCrop.Href
	}
	meta.Raw = body
	return meta, nil
}
