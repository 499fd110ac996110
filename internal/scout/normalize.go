package scout

import (
	"strings"

	"github.com/musicweb/listing-scout/internal/listing"
)

// Normalize cleans raw extracted fields. Today the only rule is title
// cleanup; the stage exists as a seam so further rules can be added
// without touching the extractors.
func Normalize(meta listing.Metadata) listing.Metadata {
	meta.Title = CleanTitle(meta.Title)
	return meta
}

// CleanTitle drops the site-name suffix many pages append after a pipe
// character and trims surrounding whitespace. Applying it twice is the same
// as applying it once.
func CleanTitle(title string) string {
	if idx := strings.Index(title, "|"); idx >= 0 {
		title = title[:idx]
	}
	return strings.TrimSpace(title)
}
