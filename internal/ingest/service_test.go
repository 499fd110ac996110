package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/musicweb/listing-scout/internal/listing"
	"github.com/musicweb/listing-scout/internal/publisher"
	"github.com/musicweb/listing-scout/internal/store"
)

type fakeMailer struct {
	configured bool
	sendErr    error
	sent       []sentMail
}

type sentMail struct {
	To      []string
	Subject string
	Body    string
}

func (m *fakeMailer) Configured() bool { return m.configured }

func (m *fakeMailer) Send(_ context.Context, to []string, subject, body string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

type fakeExtractor struct {
	meta   listing.Metadata
	err    error
	called int
}

func (e *fakeExtractor) Extract(_ context.Context, url string) (listing.Metadata, error) {
	e.called++
	if e.err != nil {
		return listing.DefaultMetadata(), e.err
	}
	return e.meta, nil
}

type failingStore struct {
	*store.Memory
}

func (failingStore) InsertListing(_ context.Context, _ listing.Record) (int64, error) {
	return 0, &listing.PersistenceError{Err: errors.New("connection refused")}
}

type fakeArchiver struct {
	paths []string
	data  [][]byte
}

func (a *fakeArchiver) PutObject(_ context.Context, path, _ string, data []byte) (string, error) {
	a.paths = append(a.paths, path)
	a.data = append(a.data, data)
	return "mem://" + path, nil
}

func reverbMeta() listing.Metadata {
	return listing.Metadata{
		Title:      "Fender Stratocaster",
		BrandModel: "Fender Stratocaster",
		PriceText:  "$650.00",
		Condition:  "Excellent",
		ImageURL:   "img.jpg",
		Raw:        []byte(`{"title":"Fender Stratocaster"}`),
	}
}

func newTestService(st listing.Store, m *fakeMailer, reverb, generic *fakeExtractor) *Service {
	return New(st, m, reverb, generic, nil, nil, Config{AdminEmail: "bob@musicweb.com"}, nil)
}

func TestSubmit_ReverbItemFullPipeline(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	m := &fakeMailer{configured: true}
	reverb := &fakeExtractor{meta: reverbMeta()}
	generic := &fakeExtractor{}
	svc := newTestService(st, m, reverb, generic)

	title, err := svc.Submit(context.Background(), listing.SubmissionRequest{
		URL:   "https://reverb.com/item/999999?x=1",
		Email: "Seller@Example.com ",
	})
	require.NoError(t, err)
	require.Equal(t, "Fender Stratocaster", title)
	require.Equal(t, 1, reverb.called)
	require.Zero(t, generic.called)

	records, err := st.ListListings(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]
	require.Equal(t, "Fender Stratocaster", rec.Title)
	require.Equal(t, "Fender Stratocaster", rec.Artist)
	require.Equal(t, "$650.00", rec.Price)
	require.Equal(t, listing.CategoryEquipment, rec.Category)
	require.Equal(t, "https://reverb.com/item/999999?x=1", rec.Link)
	require.Equal(t, "seller@example.com", rec.SellerEmail)

	require.Len(t, m.sent, 1)
	require.Equal(t, []string{"bob@musicweb.com", "seller@example.com"}, m.sent[0].To)
	require.Contains(t, m.sent[0].Subject, "Fender Stratocaster")
	require.Contains(t, m.sent[0].Body, "View Original Listing")
}

func TestSubmit_MissingFields(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	m := &fakeMailer{configured: true}
	svc := newTestService(st, m, &fakeExtractor{}, &fakeExtractor{})

	_, err := svc.Submit(context.Background(), listing.SubmissionRequest{Email: "a@b.com"})
	require.ErrorIs(t, err, listing.ErrMissingField)

	_, err = svc.Submit(context.Background(), listing.SubmissionRequest{URL: "https://x.example"})
	require.ErrorIs(t, err, listing.ErrMissingField)

	records, err := st.ListListings(context.Background())
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestSubmit_MailerNotConfiguredIsFatalBeforePersist(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	m := &fakeMailer{configured: false}
	reverb := &fakeExtractor{meta: reverbMeta()}
	svc := newTestService(st, m, reverb, &fakeExtractor{})

	_, err := svc.Submit(context.Background(), listing.SubmissionRequest{
		URL:   "https://reverb.com/item/1",
		Email: "a@b.com",
	})
	require.ErrorIs(t, err, listing.ErrMailerNotConfigured)
	require.Zero(t, reverb.called)

	records, err := st.ListListings(context.Background())
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestSubmit_ScoutFailureStillCreatesListing(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	m := &fakeMailer{configured: true}
	generic := &fakeExtractor{err: &listing.ScoutError{
		Strategy: listing.StrategyGeneric,
		URL:      "https://obscuresite.invalid/x",
		Err:      fmt.Errorf("unexpected status 500"),
	}}
	svc := newTestService(st, m, &fakeExtractor{}, generic)

	title, err := svc.Submit(context.Background(), listing.SubmissionRequest{
		URL:   "https://obscuresite.invalid/x",
		Email: "a@b.com",
	})
	require.NoError(t, err)
	require.Equal(t, listing.PlaceholderTitle, title)

	records, err := st.ListListings(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, listing.PlaceholderTitle, records[0].Title)
	require.Equal(t, listing.PlaceholderPrice, records[0].Price)
	require.Equal(t, listing.CategoryMisc, records[0].Category)
}

func TestSubmit_PersistenceErrorSendsNoMail(t *testing.T) {
	t.Parallel()

	st := failingStore{store.NewMemory()}
	m := &fakeMailer{configured: true}
	svc := newTestService(st, m, &fakeExtractor{meta: reverbMeta()}, &fakeExtractor{})

	_, err := svc.Submit(context.Background(), listing.SubmissionRequest{
		URL:   "https://reverb.com/item/1",
		Email: "a@b.com",
	})
	var persistErr *listing.PersistenceError
	require.ErrorAs(t, err, &persistErr)
	require.Empty(t, m.sent)
}

func TestSubmit_NotificationFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	m := &fakeMailer{configured: true, sendErr: &listing.NotificationError{Err: errors.New("provider 500")}}
	svc := newTestService(st, m, &fakeExtractor{meta: reverbMeta()}, &fakeExtractor{})

	title, err := svc.Submit(context.Background(), listing.SubmissionRequest{
		URL:   "https://reverb.com/item/1",
		Email: "a@b.com",
	})
	require.NoError(t, err)
	require.Equal(t, "Fender Stratocaster", title)

	// The listing stands even though the seller was never notified.
	records, err := st.ListListings(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestSubmit_BulkNotifiesOnlyOnLastItem(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	m := &fakeMailer{configured: true}
	generic := &fakeExtractor{meta: listing.Metadata{
		Title:      "Tour Poster",
		BrandModel: listing.PlaceholderBrandModel,
		PriceText:  "$45.00",
		Condition:  listing.PlaceholderCondition,
	}}
	svc := newTestService(st, m, &fakeExtractor{}, generic)

	var accumulated []string
	for i := 1; i <= 3; i++ {
		title, err := svc.Submit(context.Background(), listing.SubmissionRequest{
			URL:          fmt.Sprintf("https://x.example/posters/%d", i),
			Email:        "a@b.com",
			IsBulk:       true,
			CurrentCount: i,
			TotalCount:   3,
			BulkTitles:   append([]string(nil), accumulated...),
		})
		require.NoError(t, err)
		if i < 3 {
			require.Empty(t, m.sent, "no email before the final batch item")
			accumulated = append(accumulated, title)
		}
	}

	require.Len(t, m.sent, 1)
	mail := m.sent[0]
	require.Contains(t, mail.Subject, "3 Items Added")
	// The body enumerates every title accumulated across the batch, each
	// prefixed with a checkmark.
	require.Equal(t, 3, strings.Count(mail.Body, "Tour Poster"))
	require.Equal(t, 3, strings.Count(mail.Body, "✅"))

	records, err := st.ListListings(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
}

func TestSubmit_BulkCountMismatchSendsNothing(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	m := &fakeMailer{configured: true}
	svc := newTestService(st, m, &fakeExtractor{}, &fakeExtractor{meta: reverbMeta()})

	_, err := svc.Submit(context.Background(), listing.SubmissionRequest{
		URL:          "https://x.example/1",
		Email:        "a@b.com",
		IsBulk:       true,
		CurrentCount: 1,
		TotalCount:   5,
	})
	require.NoError(t, err)
	require.Empty(t, m.sent)
}

func TestSubmit_ArchiverAndPublisherAreBestEffort(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	m := &fakeMailer{configured: true}
	arch := &fakeArchiver{}
	events := publisher.NewMemory()
	svc := New(st, m, &fakeExtractor{meta: reverbMeta()}, &fakeExtractor{}, arch, events,
		Config{AdminEmail: "bob@musicweb.com"}, nil)

	_, err := svc.Submit(context.Background(), listing.SubmissionRequest{
		URL:   "https://reverb.com/item/1",
		Email: "a@b.com",
	})
	require.NoError(t, err)

	require.Len(t, arch.paths, 1)
	require.Equal(t, "listing-1", arch.paths[0])

	published := events.Events()
	require.Len(t, published, 1)
	require.Equal(t, int64(1), published[0].ListingID)
	require.Equal(t, listing.CategoryEquipment, published[0].Category)
	require.Equal(t, listing.StrategyReverb, published[0].Strategy)
}
