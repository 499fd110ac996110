// Package ingest orchestrates the listing submission pipeline.
package ingest

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/musicweb/listing-scout/internal/listing"
	"github.com/musicweb/listing-scout/internal/metrics"
	"github.com/musicweb/listing-scout/internal/scout"
)

// Config controls Service behavior.
type Config struct {
	// AdminEmail is CC'd on every notification.
	AdminEmail string
}

// Service is the ingestion coordinator. One Submit call runs the full
// pipeline for one URL: classify, extract, normalize, categorize, persist,
// and maybe notify.
type Service struct {
	store     listing.Store
	mailer    listing.Mailer
	reverb    listing.Extractor
	generic   listing.Extractor
	archiver  listing.Archiver
	publisher listing.Publisher
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Service. The archiver and publisher are optional; pass
// nil to skip raw-payload archiving or event publishing.
func New(
	store listing.Store,
	mailer listing.Mailer,
	reverb listing.Extractor,
	generic listing.Extractor,
	archiver listing.Archiver,
	publisher listing.Publisher,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	return &Service{
		store:     store,
		mailer:    mailer,
		reverb:    reverb,
		generic:   generic,
		archiver:  archiver,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// Submit ingests one submitted URL and returns the scouted title.
//
// Scouting failures never fail the call: a sparse, placeholder-titled
// listing is preferred over rejecting the submission. Only validation,
// missing mail configuration, and persistence errors are fatal.
func (s *Service) Submit(ctx context.Context, req listing.SubmissionRequest) (string, error) {
	if strings.TrimSpace(req.URL) == "" {
		return "", fmt.Errorf("%w: url", listing.ErrMissingField)
	}
	if strings.TrimSpace(req.Email) == "" {
		return "", fmt.Errorf("%w: email", listing.ErrMissingField)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Fail fast before any side effect: a submission we cannot ever
	// notify about should not be persisted.
	if !s.mailer.Configured() {
		return "", listing.ErrMailerNotConfigured
	}

	strategy := scout.ClassifySource(req.URL)
	meta := s.extract(ctx, strategy, req.URL)
	meta = scout.Normalize(meta)
	category := scout.Categorize(meta.Title, req.URL)

	rec := listing.Record{
		Title:       meta.Title,
		Artist:      meta.BrandModel,
		Price:       meta.PriceText,
		Category:    category,
		ImageURL:    meta.ImageURL,
		Link:        req.URL,
		Condition:   meta.Condition,
		SellerEmail: email,
	}
	id, err := s.store.InsertListing(ctx, rec)
	if err != nil {
		metrics.ObserveSubmission(string(category), string(strategy), "persist_error")
		return "", err
	}
	s.logger.Info("listing persisted",
		zap.Int64("listing_id", id),
		zap.String("category", string(category)),
		zap.String("strategy", string(strategy)),
	)

	s.archiveRaw(ctx, id, meta.Raw)
	s.publishEvent(ctx, id, rec, strategy)
	s.notify(ctx, req, email, meta.Title)

	metrics.ObserveSubmission(string(category), string(strategy), "success")
	return meta.Title, nil
}

// extract runs the strategy-selected extractor, absorbing failures into
// placeholder metadata.
func (s *Service) extract(ctx context.Context, strategy listing.Strategy, url string) listing.Metadata {
	extractor := s.generic
	if strategy == listing.StrategyReverb {
		extractor = s.reverb
	}
	meta, err := extractor.Extract(ctx, url)
	if err != nil {
		metrics.ObserveScoutFailure(string(strategy))
		s.logger.Warn("scout failed, continuing with placeholders",
			zap.String("url", url),
			zap.String("strategy", string(strategy)),
			zap.Error(err),
		)
	}
	return meta
}

// archiveRaw stores the raw scout payload best-effort.
func (s *Service) archiveRaw(ctx context.Context, id int64, raw []byte) {
	if s.archiver == nil || len(raw) == 0 {
		return
	}
	path := fmt.Sprintf("listing-%d", id)
	uri, err := s.archiver.PutObject(ctx, path, http.DetectContentType(raw), raw)
	if err != nil {
		s.logger.Warn("archive raw payload failed", zap.Int64("listing_id", id), zap.Error(err))
		return
	}
	if uri != "" {
		s.logger.Debug("raw payload archived", zap.Int64("listing_id", id), zap.String("uri", uri))
	}
}

// publishEvent emits an ingest event best-effort.
func (s *Service) publishEvent(ctx context.Context, id int64, rec listing.Record, strategy listing.Strategy) {
	if s.publisher == nil {
		return
	}
	event := listing.IngestEvent{
		ListingID:   id,
		Title:       rec.Title,
		Category:    rec.Category,
		Link:        rec.Link,
		SellerEmail: rec.SellerEmail,
		Strategy:    strategy,
	}
	if _, err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish ingest event failed", zap.Int64("listing_id", id), zap.Error(err))
	}
}

// notify applies the batch completion rule and sends at most one email.
// A notification failure is logged and swallowed; the persisted listing
// stands and the caller still sees success.
func (s *Service) notify(ctx context.Context, req listing.SubmissionRequest, email, title string) {
	isLastItem := req.IsBulk && req.CurrentCount == req.TotalCount
	if req.IsBulk && !isLastItem {
		return
	}

	var (
		kind    string
		subject string
		body    string
	)
	if req.IsBulk {
		kind = "bulk"
		allTitles := append(append([]string(nil), req.BulkTitles...), title)
		subject, body = bulkEmail(req.TotalCount, allTitles)
	} else {
		kind = "single"
		subject, body = singleEmail(title, req.URL)
	}

	to := []string{s.cfg.AdminEmail, email}
	if s.cfg.AdminEmail == "" {
		to = []string{email}
	}
	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		metrics.ObserveEmail(kind, "error")
		s.logger.Error("notification failed, listing remains persisted",
			zap.String("seller_email", email),
			zap.Error(err),
		)
		return
	}
	metrics.ObserveEmail(kind, "sent")
}
