// Package listing defines core types shared across subsystems.
package listing

import "time"

// Category labels a marketplace item. The set is closed; Categorize always
// returns one of these values.
type Category string

// Category values persisted on listing rows.
const (
	CategoryVinyl       Category = "Vinyl"
	CategoryCDs         Category = "CDs"
	CategoryCassettes   Category = "Cassettes"
	CategoryMemorabilia Category = "Memorabilia"
	CategoryBooks       Category = "Books"
	CategoryEquipment   Category = "Equipment"
	CategoryMisc        Category = "Misc"
)

// Categories returns every valid category, in rule-evaluation order with
// the Misc fallback last.
func Categories() []Category {
	return []Category{
		CategoryVinyl,
		CategoryCDs,
		CategoryCassettes,
		CategoryMemorabilia,
		CategoryBooks,
		CategoryEquipment,
		CategoryMisc,
	}
}

// Strategy identifies which extractor handles a submitted URL.
type Strategy string

// Extraction strategies selected by the source classifier.
const (
	StrategyReverb  Strategy = "reverb"
	StrategyGeneric Strategy = "generic"
)

// Placeholder values substituted when scouting cannot produce a real field.
// Every Metadata field has one so downstream consumers never observe an
// absent value.
const (
	PlaceholderTitle      = "New Submission"
	PlaceholderBrandModel = "See Details"
	PlaceholderPrice      = "Pending"
	PlaceholderCondition  = "Used"
)

// SubmissionRequest is one seller-submitted URL plus optional bulk-upload
// counters supplied by the client between successive calls.
type SubmissionRequest struct {
	URL          string   `json:"url"`
	Email        string   `json:"email"`
	IsBulk       bool     `json:"isBulk"`
	CurrentCount int      `json:"currentCount"`
	TotalCount   int      `json:"totalCount"`
	BulkTitles   []string `json:"bulkTitles"`
}

// Metadata is the raw field bag produced by an extractor, before
// normalization. Raw holds the upstream response body for archiving.
type Metadata struct {
	Title      string
	BrandModel string
	PriceText  string
	Condition  string
	ImageURL   string
	Raw        []byte
}

// DefaultMetadata returns a bag with every field at its placeholder.
func DefaultMetadata() Metadata {
	return Metadata{
		Title:      PlaceholderTitle,
		BrandModel: PlaceholderBrandModel,
		PriceText:  PlaceholderPrice,
		Condition:  PlaceholderCondition,
		ImageURL:   "",
	}
}

// Record is the persisted marketplace listing row.
type Record struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Price       string    `json:"price"`
	Category    Category  `json:"category"`
	ImageURL    string    `json:"image_url"`
	Link        string    `json:"link"`
	Condition   string    `json:"condition"`
	SellerEmail string    `json:"seller_email"`
	CreatedAt   time.Time `json:"created_at"`
}

// IngestEvent is published after a listing row is persisted.
type IngestEvent struct {
	ListingID   int64    `json:"listing_id"`
	Title       string   `json:"title"`
	Category    Category `json:"category"`
	Link        string   `json:"link"`
	SellerEmail string   `json:"seller_email"`
	Strategy    Strategy `json:"strategy"`
}
