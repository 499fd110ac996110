package scout

import (
	"strings"

	"github.com/musicweb/listing-scout/internal/listing"
)

// categoryRule pairs a category with the keywords that select it.
type categoryRule struct {
	category listing.Category
	keywords []string
}

// categoryRules is evaluated in order and short-circuits on the first
// match, so a title naming both a medium and an instrument classifies as
// the medium (e.g. "vinyl" beats "guitar"). The order is load-bearing;
// keep it stable.
var categoryRules = []categoryRule{
	{listing.CategoryVinyl, []string{"vinyl", "lp", "record", "12-inch", "45rpm"}},
	{listing.CategoryCDs, []string{"cd", "compact disc", "digipak"}},
	{listing.CategoryCassettes, []string{"cassette", "tape", "mc"}},
	{listing.CategoryMemorabilia, []string{"poster", "print", "lithograph", "shirt", "hoodie", "hat", "sticker", "patch"}},
	{listing.CategoryBooks, []string{"book", "paperback", "hardcover", "biography", "tablature"}},
	{listing.CategoryEquipment, []string{
		"guitar", "stratocaster", "telecaster", "les paul",
		"amp", "cabinet", "pedal", "fuzz", "overdrive",
		"synth", "keyboard", "piano", "organ", "eurorack",
		"drum", "snare", "cymbal", "percussion",
		"microphone", "interface", "mixer", "preamp", "compressor",
		"ukulele", "mandolin", "banjo", "violin", "cello", "saxophone", "trumpet", "flute",
		"turntable", "dj", "controller",
	}},
}

// Categorize assigns exactly one category from the normalized title and the
// original source URL. Matching is case-insensitive substring search over
// the combined text; no match yields Misc. Deterministic for a given
// title+URL pair.
func Categorize(title, url string) listing.Category {
	combined := strings.ToLower(title) + " " + strings.ToLower(url)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(combined, kw) {
				return rule.category
			}
		}
	}
	return listing.CategoryMisc
}
