package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhages/turismo-api/internal/api"
	"github.com/dhages/turismo-api/internal/catalog"
	"github.com/dhages/turismo-api/internal/dashboard"
	"github.com/dhages/turismo-api/internal/reviews"
	"github.com/dhages/turismo-api/internal/site"
	"github.com/dhages/turismo-api/internal/storage"
)

// ---- mock implementations ----
// Unset fn fields fall back to zero-value returns so each test only wires
// what it asserts on.

type mockCatalogRepo struct {
	fetchFn func(ctx context.Context) ([]catalog.Destination, error)
	getFn   func(ctx context.Context, slug string) (*catalog.Package, error)
}

func (m *mockCatalogRepo) FetchCatalog(ctx context.Context) ([]catalog.Destination, error) {
	if m.fetchFn == nil {
		return nil, nil
	}
	return m.fetchFn(ctx)
}

func (m *mockCatalogRepo) GetPackageBySlug(ctx context.Context, slug string) (*catalog.Package, error) {
	if m.getFn == nil {
		return nil, nil
	}
	return m.getFn(ctx, slug)
}

type mockCache struct {
	getFn        func(ctx context.Context) ([]catalog.Destination, error)
	setFn        func(ctx context.Context, snapshot []catalog.Destination) error
	invalidateFn func(ctx context.Context) error
}

func (m *mockCache) GetCatalog(ctx context.Context) ([]catalog.Destination, error) {
	if m.getFn == nil {
		return nil, nil
	}
	return m.getFn(ctx)
}

func (m *mockCache) SetCatalog(ctx context.Context, snapshot []catalog.Destination) error {
	if m.setFn == nil {
		return nil
	}
	return m.setFn(ctx, snapshot)
}

func (m *mockCache) Invalidate(ctx context.Context) error {
	if m.invalidateFn == nil {
		return nil
	}
	return m.invalidateFn(ctx)
}

type mockCounters struct {
	packageLikeFn func(ctx context.Context, id string) (int64, error)
	packageViewFn func(ctx context.Context, id string) (int64, error)
	photoLikeFn   func(ctx context.Context, id string) (int64, error)
	photoViewFn   func(ctx context.Context, id string) (int64, error)
}

func (m *mockCounters) IncrementPackageLike(ctx context.Context, id string) (int64, error) {
	if m.packageLikeFn == nil {
		return 0, nil
	}
	return m.packageLikeFn(ctx, id)
}

func (m *mockCounters) IncrementPackageView(ctx context.Context, id string) (int64, error) {
	if m.packageViewFn == nil {
		return 0, nil
	}
	return m.packageViewFn(ctx, id)
}

func (m *mockCounters) IncrementPhotoLike(ctx context.Context, id string) (int64, error) {
	if m.photoLikeFn == nil {
		return 0, nil
	}
	return m.photoLikeFn(ctx, id)
}

func (m *mockCounters) IncrementPhotoView(ctx context.Context, id string) (int64, error) {
	if m.photoViewFn == nil {
		return 0, nil
	}
	return m.photoViewFn(ctx, id)
}

type mockContent struct {
	faqsFn         func(ctx context.Context) ([]site.FAQ, error)
	testimonialsFn func(ctx context.Context) ([]site.Testimonial, error)
	subscribeFn    func(ctx context.Context, in site.Subscriber) error
}

func (m *mockContent) ListFAQs(ctx context.Context) ([]site.FAQ, error) {
	if m.faqsFn == nil {
		return nil, nil
	}
	return m.faqsFn(ctx)
}

func (m *mockContent) ListTestimonials(ctx context.Context) ([]site.Testimonial, error) {
	if m.testimonialsFn == nil {
		return nil, nil
	}
	return m.testimonialsFn(ctx)
}

func (m *mockContent) UpsertSubscriber(ctx context.Context, in site.Subscriber) error {
	if m.subscribeFn == nil {
		return nil
	}
	return m.subscribeFn(ctx, in)
}

type mockAdmin struct {
	createDestinationFn func(ctx context.Context, in storage.DestinationInput) (*catalog.Destination, error)
	updateDestinationFn func(ctx context.Context, in storage.DestinationInput) (*catalog.Destination, error)
	deleteDestinationFn func(ctx context.Context, id string) error
	createPackageFn     func(ctx context.Context, in storage.PackageInput) (*catalog.Package, error)
	updatePackageFn     func(ctx context.Context, in storage.PackageInput) (*catalog.Package, error)
	deletePackageFn     func(ctx context.Context, id string) error
	createFAQFn         func(ctx context.Context, question, answer string) (*site.FAQ, error)
	deleteFAQFn         func(ctx context.Context, id string) error
	createTestimonialFn func(ctx context.Context, name, content, kind string) (*site.Testimonial, error)
	deleteTestimonialFn func(ctx context.Context, id string) error
}

func (m *mockAdmin) CreateDestination(ctx context.Context, in storage.DestinationInput) (*catalog.Destination, error) {
	if m.createDestinationFn == nil {
		return &catalog.Destination{}, nil
	}
	return m.createDestinationFn(ctx, in)
}

func (m *mockAdmin) UpdateDestination(ctx context.Context, in storage.DestinationInput) (*catalog.Destination, error) {
	if m.updateDestinationFn == nil {
		return &catalog.Destination{}, nil
	}
	return m.updateDestinationFn(ctx, in)
}

func (m *mockAdmin) DeleteDestination(ctx context.Context, id string) error {
	if m.deleteDestinationFn == nil {
		return nil
	}
	return m.deleteDestinationFn(ctx, id)
}

func (m *mockAdmin) CreatePackage(ctx context.Context, in storage.PackageInput) (*catalog.Package, error) {
	if m.createPackageFn == nil {
		return &catalog.Package{}, nil
	}
	return m.createPackageFn(ctx, in)
}

func (m *mockAdmin) UpdatePackage(ctx context.Context, in storage.PackageInput) (*catalog.Package, error) {
	if m.updatePackageFn == nil {
		return &catalog.Package{}, nil
	}
	return m.updatePackageFn(ctx, in)
}

func (m *mockAdmin) DeletePackage(ctx context.Context, id string) error {
	if m.deletePackageFn == nil {
		return nil
	}
	return m.deletePackageFn(ctx, id)
}

func (m *mockAdmin) CreateFAQ(ctx context.Context, question, answer string) (*site.FAQ, error) {
	if m.createFAQFn == nil {
		return &site.FAQ{}, nil
	}
	return m.createFAQFn(ctx, question, answer)
}

func (m *mockAdmin) DeleteFAQ(ctx context.Context, id string) error {
	if m.deleteFAQFn == nil {
		return nil
	}
	return m.deleteFAQFn(ctx, id)
}

func (m *mockAdmin) CreateTestimonial(ctx context.Context, name, content, kind string) (*site.Testimonial, error) {
	if m.createTestimonialFn == nil {
		return &site.Testimonial{}, nil
	}
	return m.createTestimonialFn(ctx, name, content, kind)
}

func (m *mockAdmin) DeleteTestimonial(ctx context.Context, id string) error {
	if m.deleteTestimonialFn == nil {
		return nil
	}
	return m.deleteTestimonialFn(ctx, id)
}

type mockStats struct {
	collectFn func(ctx context.Context) (*dashboard.Stats, error)
}

func (m *mockStats) Collect(ctx context.Context) (*dashboard.Stats, error) {
	if m.collectFn == nil {
		return &dashboard.Stats{}, nil
	}
	return m.collectFn(ctx)
}

type mockReviews struct {
	fetchFn func(ctx context.Context) ([]reviews.Review, error)
}

func (m *mockReviews) Fetch(ctx context.Context) ([]reviews.Review, error) {
	if m.fetchFn == nil {
		return nil, nil
	}
	return m.fetchFn(ctx)
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// ---- helpers ----

const testToken = "secret-token"

func fixedNow() time.Time {
	return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
}

func departureOn(y int, mo time.Month, d int, price int64) catalog.DepartureDate {
	return catalog.DepartureDate{
		ID:             fmt.Sprintf("date-%d-%02d-%02d", y, mo, d),
		Departure:      time.Date(y, mo, d, 6, 0, 0, 0, time.UTC),
		Return:         time.Date(y, mo, d+4, 22, 0, 0, 0, time.UTC),
		SeatsTotal:     46,
		SeatsAvailable: 20,
		Price:          price,
		PriceCard:      price + 10000,
		Status:         catalog.StatusAvailable,
	}
}

func sampleSnapshot() []catalog.Destination {
	pkg := catalog.Package{
		ID:    "pkg-1",
		Title: "Lençóis Maranhenses",
		Slug:  "lencois-maranhenses-abc12345",
		Dates: []catalog.DepartureDate{
			departureOn(2026, time.February, 1, 120000),
			departureOn(2026, time.April, 10, 150000),
			departureOn(2026, time.May, 5, 160000),
		},
	}
	return []catalog.Destination{{
		ID:       "dest-1",
		Title:    "Maranhão",
		Slug:     "maranhao",
		Packages: []catalog.Package{pkg},
	}}
}

func samplePackage() *catalog.Package {
	snapshot := sampleSnapshot()
	pkg := snapshot[0].Packages[0]
	return &pkg
}

// buildRouter fills unset deps with permissive mocks and a fixed clock.
func buildRouter(d api.Deps) http.Handler {
	if d.Catalog == nil {
		d.Catalog = &mockCatalogRepo{}
	}
	if d.Admin == nil {
		d.Admin = &mockAdmin{}
	}
	if d.Counters == nil {
		d.Counters = &mockCounters{}
	}
	if d.Content == nil {
		d.Content = &mockContent{}
	}
	if d.Cache == nil {
		d.Cache = &mockCache{}
	}
	if d.Stats == nil {
		d.Stats = &mockStats{}
	}
	if d.Now == nil {
		d.Now = fixedNow
	}
	if d.WhatsAppNumber == "" {
		d.WhatsAppNumber = "5598999990000"
	}
	if d.BaseURL == "" {
		d.BaseURL = "https://dhages.example"
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	d.Log = log
	handlers := api.NewHandlers(d)
	return api.NewRouter(handlers, testToken, &mockPinger{}, &mockPinger{}, log)
}

func doJSON(t *testing.T, router http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

// ---- GET /api/v1/destinos ----

func TestListDestinations_CacheHit(t *testing.T) {
	repo := &mockCatalogRepo{
		fetchFn: func(_ context.Context) ([]catalog.Destination, error) {
			t.Fatal("repo should not be called on cache hit")
			return nil, nil
		},
	}
	cache := &mockCache{
		getFn: func(_ context.Context) ([]catalog.Destination, error) { return sampleSnapshot(), nil },
	}

	router := buildRouter(api.Deps{Catalog: repo, Cache: cache})
	w := doJSON(t, router, http.MethodGet, "/api/v1/destinos", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	require.Len(t, body["destinos"], 1)
}

func TestListDestinations_CacheMiss_SetsCache(t *testing.T) {
	setCalled := false
	repo := &mockCatalogRepo{
		fetchFn: func(_ context.Context) ([]catalog.Destination, error) { return sampleSnapshot(), nil },
	}
	cache := &mockCache{
		setFn: func(_ context.Context, snapshot []catalog.Destination) error {
			setCalled = true
			assert.Len(t, snapshot, 1)
			return nil
		},
	}

	router := buildRouter(api.Deps{Catalog: repo, Cache: cache})
	w := doJSON(t, router, http.MethodGet, "/api/v1/destinos", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, setCalled, "cache should be repopulated after a db read")
}

func TestListDestinations_DBError(t *testing.T) {
	repo := &mockCatalogRepo{
		fetchFn: func(_ context.Context) ([]catalog.Destination, error) { return nil, fmt.Errorf("db down") },
	}

	router := buildRouter(api.Deps{Catalog: repo})
	w := doJSON(t, router, http.MethodGet, "/api/v1/destinos", "", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
}

// ---- GET /api/v1/pacotes/{slug} ----

func TestGetPackage_FiltersPastDates(t *testing.T) {
	repo := &mockCatalogRepo{
		getFn: func(_ context.Context, slug string) (*catalog.Package, error) {
			assert.Equal(t, "lencois-maranhenses-abc12345", slug)
			return samplePackage(), nil
		},
	}

	router := buildRouter(api.Deps{Catalog: repo})
	w := doJSON(t, router, http.MethodGet, "/api/v1/pacotes/lencois-maranhenses-abc12345", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	data := body["data"].(map[string]any)
	upcoming := data["upcomingDates"].([]any)
	require.Len(t, upcoming, 2, "the february departure already left")

	first := upcoming[0].(map[string]any)
	assert.Equal(t, catalog.FormatCents(150000), first["price_formatted"])
	assert.Equal(t, catalog.FormatCents(160000), first["price_card_formatted"])
}

func TestGetPackage_NotFound(t *testing.T) {
	router := buildRouter(api.Deps{})
	w := doJSON(t, router, http.MethodGet, "/api/v1/pacotes/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ---- GET /api/v1/pacotes/{slug}/whatsapp ----

func TestPackageWhatsApp_BuildsLink(t *testing.T) {
	repo := &mockCatalogRepo{
		getFn: func(_ context.Context, _ string) (*catalog.Package, error) { return samplePackage(), nil },
	}

	router := buildRouter(api.Deps{Catalog: repo})
	w := doJSON(t, router, http.MethodGet, "/api/v1/pacotes/lencois-maranhenses-abc12345/whatsapp", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	link := body["url"].(string)
	ref := body["ref"].(string)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "wa.me", parsed.Host)
	assert.Equal(t, "/5598999990000", parsed.Path)

	text := parsed.Query().Get("text")
	assert.Contains(t, text, "Lençóis Maranhenses")
	assert.Contains(t, text, "10/04/2026", "next departure must be the first upcoming date")
	assert.Contains(t, text, ref)
	assert.True(t, strings.HasPrefix(ref, "ref-"))
}

// ---- GET /api/v1/search/availability ----

func TestSearchAvailability_WindowAndUpcomingOnly(t *testing.T) {
	cache := &mockCache{
		getFn: func(_ context.Context) ([]catalog.Destination, error) { return sampleSnapshot(), nil },
	}

	router := buildRouter(api.Deps{Cache: cache})
	w := doJSON(t, router, http.MethodGet,
		"/api/v1/search/availability?destino=maranhao&start=2026-04-01&end=2026-04-30", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	rows := body["data"].([]any)
	require.Len(t, rows, 1)

	row := rows[0].(map[string]any)
	assert.Equal(t, "maranhao", row["destinoSlug"])
}

func TestSearchAvailability_NoFiltersReturnsAllUpcoming(t *testing.T) {
	cache := &mockCache{
		getFn: func(_ context.Context) ([]catalog.Destination, error) { return sampleSnapshot(), nil },
	}

	router := buildRouter(api.Deps{Cache: cache})
	w := doJSON(t, router, http.MethodGet, "/api/v1/search/availability", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	rows := body["data"].([]any)
	assert.Len(t, rows, 2, "february departure is excluded before matching")
}

func TestSearchAvailability_BadDate(t *testing.T) {
	router := buildRouter(api.Deps{})
	w := doJSON(t, router, http.MethodGet, "/api/v1/search/availability?start=10-04-2026", "", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---- PATCH /api/v1/stats/* ----

func TestPackageLike_ReturnsNewValue(t *testing.T) {
	counters := &mockCounters{
		packageLikeFn: func(_ context.Context, id string) (int64, error) {
			assert.Equal(t, "pkg-1", id)
			return 8, nil
		},
	}

	router := buildRouter(api.Deps{Counters: counters})
	w := doJSON(t, router, http.MethodPatch, "/api/v1/stats/pacote-like", `{"pacoteId":"pkg-1"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(8), body["like"])
}

func TestPhotoView_NotFound(t *testing.T) {
	counters := &mockCounters{
		photoViewFn: func(_ context.Context, _ string) (int64, error) { return 0, storage.ErrNotFound },
	}

	router := buildRouter(api.Deps{Counters: counters})
	w := doJSON(t, router, http.MethodPatch, "/api/v1/stats/foto-view", `{"fotoId":"gone"}`, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPackageView_MissingID(t *testing.T) {
	router := buildRouter(api.Deps{})
	w := doJSON(t, router, http.MethodPatch, "/api/v1/stats/pacote-view", `{}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---- site content ----

func TestListFAQs_OK(t *testing.T) {
	content := &mockContent{
		faqsFn: func(_ context.Context) ([]site.FAQ, error) {
			return []site.FAQ{{ID: "f1", Question: "Como pago?", Answer: "Pix ou cartão."}}, nil
		},
	}

	router := buildRouter(api.Deps{Content: content})
	w := doJSON(t, router, http.MethodGet, "/api/v1/faqs", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Len(t, body["data"], 1)
}

// ---- GET /api/v1/google-reviews ----

func TestGoogleReviews_OK(t *testing.T) {
	source := &mockReviews{
		fetchFn: func(_ context.Context) ([]reviews.Review, error) {
			return []reviews.Review{
				{ID: "r1", Name: "Ana", Content: "Viagem incrível", StarRating: 5, Type: "text"},
			}, nil
		},
	}

	router := buildRouter(api.Deps{Reviews: source})
	w := doJSON(t, router, http.MethodGet, "/api/v1/google-reviews", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	review := data[0].(map[string]any)
	assert.Equal(t, "Ana", review["name"])
	assert.Equal(t, float64(5), review["starRating"])
}

func TestGoogleReviews_NotConfigured(t *testing.T) {
	router := buildRouter(api.Deps{})
	w := doJSON(t, router, http.MethodGet, "/api/v1/google-reviews", "", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGoogleReviews_UpstreamError(t *testing.T) {
	source := &mockReviews{
		fetchFn: func(_ context.Context) ([]reviews.Review, error) {
			return nil, fmt.Errorf("place details status REQUEST_DENIED")
		},
	}

	router := buildRouter(api.Deps{Reviews: source})
	w := doJSON(t, router, http.MethodGet, "/api/v1/google-reviews", "", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
}

func TestSubscribe_Created(t *testing.T) {
	var saved site.Subscriber
	content := &mockContent{
		subscribeFn: func(_ context.Context, in site.Subscriber) error {
			saved = in
			return nil
		},
	}

	router := buildRouter(api.Deps{Content: content})
	w := doJSON(t, router, http.MethodPost, "/api/v1/subscribers",
		`{"name":"Ana","email":"  ANA@Example.com ","phone":"98999990000"}`, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ana@example.com", saved.Email, "email is normalized before storage")
}

func TestSubscribe_MissingEmail(t *testing.T) {
	router := buildRouter(api.Deps{})
	w := doJSON(t, router, http.MethodPost, "/api/v1/subscribers", `{"name":"Ana"}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---- GET /api/v1/health ----

func TestHealth_OK(t *testing.T) {
	router := buildRouter(api.Deps{})
	w := doJSON(t, router, http.MethodGet, "/api/v1/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["db"])
	assert.Equal(t, "ok", body["redis"])
}

func TestHealth_DBDown(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handlers := api.NewHandlers(api.Deps{
		Catalog: &mockCatalogRepo{}, Admin: &mockAdmin{}, Counters: &mockCounters{},
		Content: &mockContent{}, Cache: &mockCache{}, Stats: &mockStats{}, Log: log,
	})
	router := api.NewRouter(handlers, testToken, &mockPinger{err: fmt.Errorf("db unreachable")}, &mockPinger{}, log)

	w := doJSON(t, router, http.MethodGet, "/api/v1/health", "", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "error", body["db"])
}
