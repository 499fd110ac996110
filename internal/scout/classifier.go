// Package scout extracts structured metadata from marketplace URLs.
package scout

import (
	"strings"

	"github.com/musicweb/listing-scout/internal/listing"
)

// reverbItemMarker is the path fragment that identifies a Reverb item page.
const reverbItemMarker = "reverb.com/item/"

// ClassifySource picks the extraction strategy for a submitted URL. It is
// total: anything that is not a Reverb item page falls through to the
// generic strategy.
func ClassifySource(url string) listing.Strategy {
	if strings.Contains(url, reverbItemMarker) {
		return listing.StrategyReverb
	}
	return listing.StrategyGeneric
}
