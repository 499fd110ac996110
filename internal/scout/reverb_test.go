package scout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/musicweb/listing-scout/internal/listing"
)

func TestItemID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{url: "https://reverb.com/item/999999?x=1", want: "999999"},
		{url: "https://reverb.com/item/999999-fender-jazz-bass", want: "999999-fender-jazz-bass"},
		{url: "https://reverb.com/shop/somebody", want: ""},
		{url: "", want: ""},
	}
	for _, tt := range tests {
		if got := ItemID(tt.url); got != tt.want {
			t.Fatalf("ItemID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestReverbExtract_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/listings/999999", r.URL.Path)
		require.Equal(t, "3.0", r.Header.Get("Accept-Version"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"title": "Fender Jazz Bass",
			"make": "Fender",
			"model": "Jazz Bass",
			"price": {"amount": "650.00"},
			"photos": [{"_links": {"large_crop": {"href": "img.jpg"}}}]
		}`))
	}))
	defer srv.Close()

	e := NewReverbExtractor(ReverbConfig{BaseURL: srv.URL})
	meta, err := e.Extract(context.Background(), "https://reverb.com/item/999999?x=1")
	require.NoError(t, err)
	require.Equal(t, "Fender Jazz Bass", meta.Title)
	require.Equal(t, "Fender Jazz Bass", meta.BrandModel)
	require.Equal(t, "$650.00", meta.PriceText)
	require.Equal(t, listing.PlaceholderCondition, meta.Condition)
	require.Equal(t, "img.jpg", meta.ImageURL)
	require.NotEmpty(t, meta.Raw)
}

func TestReverbExtract_MissingFieldsKeepPlaceholders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"make": "Fender"}`))
	}))
	defer srv.Close()

	e := NewReverbExtractor(ReverbConfig{BaseURL: srv.URL})
	meta, err := e.Extract(context.Background(), "https://reverb.com/item/1")
	require.NoError(t, err)
	require.Equal(t, listing.PlaceholderTitle, meta.Title)
	// Make without model is not enough to synthesize a brand string.
	require.Equal(t, listing.PlaceholderBrandModel, meta.BrandModel)
	require.Equal(t, listing.PlaceholderPrice, meta.PriceText)
	require.Empty(t, meta.ImageURL)
}

func TestReverbExtract_UpstreamFailureDegradesToPlaceholders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewReverbExtractor(ReverbConfig{BaseURL: srv.URL})
	meta, err := e.Extract(context.Background(), "https://reverb.com/item/1")
	require.Error(t, err)

	var scoutErr *listing.ScoutError
	require.ErrorAs(t, err, &scoutErr)
	require.Equal(t, listing.StrategyReverb, scoutErr.Strategy)
	require.Equal(t, listing.DefaultMetadata(), meta)
}

func TestReverbExtract_MalformedJSONDegradesToPlaceholders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	e := NewReverbExtractor(ReverbConfig{BaseURL: srv.URL})
	meta, err := e.Extract(context.Background(), "https://reverb.com/item/1")
	require.Error(t, err)
	require.Equal(t, listing.DefaultMetadata(), meta)
}

func TestReverbExtract_NoItemID(t *testing.T) {
	t.Parallel()

	e := NewReverbExtractor(ReverbConfig{BaseURL: "http://127.0.0.1:0"})
	meta, err := e.Extract(context.Background(), "https://reverb.com/shop/somebody")
	require.Error(t, err)
	require.Equal(t, listing.DefaultMetadata(), meta)
}
