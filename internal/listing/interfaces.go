package listing

import "context"

// Store persists marketplace listings and the site hit counter.
type Store interface {
	InsertListing(ctx context.Context, rec Record) (int64, error)
	ListListings(ctx context.Context) ([]Record, error)
	DeleteListing(ctx context.Context, id int64) error
	RecordHit(ctx context.Context) error
	TotalHits(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close()
}

// Mailer sends outbound notification email.
type Mailer interface {
	// Configured reports whether credentials are present. Submissions fail
	// fast when they are not.
	Configured() bool
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

// Extractor scouts metadata from a single marketplace URL. Implementations
// never fail the pipeline: on any upstream error they return
// DefaultMetadata() together with the error, which callers log and drop.
type Extractor interface {
	Extract(ctx context.Context, url string) (Metadata, error)
}

// Archiver stores raw scout payloads for provenance and returns a URI.
type Archiver interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Publisher pushes ingest events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, event IngestEvent) (string, error)
}
