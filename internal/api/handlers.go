package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dhages/turismo-api/internal/catalog"
	"github.com/dhages/turismo-api/internal/inquiry"
	"github.com/dhages/turismo-api/internal/site"
	"github.com/dhages/turismo-api/internal/storage"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	catalog  CatalogRepo
	admin    AdminRepo
	counters CounterRepo
	content  ContentRepo
	cache    CatalogCache
	stats    StatsCollector
	reviews  ReviewSource
	log      *slog.Logger

	whatsAppNumber string
	baseURL        string
	now            func() time.Time
}

// Deps bundles everything Handlers needs.
type Deps struct {
	Catalog  CatalogRepo
	Admin    AdminRepo
	Counters CounterRepo
	Content  ContentRepo
	Cache    CatalogCache
	Stats    StatsCollector
	Log      *slog.Logger

	// Reviews is optional; when nil the google-reviews endpoint reports the
	// integration as not configured.
	Reviews ReviewSource

	WhatsAppNumber string
	BaseURL        string

	// Now overrides the clock in tests. Defaults to time.Now.
	Now func() time.Time
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(d Deps) *Handlers {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Handlers{
		catalog:        d.Catalog,
		admin:          d.Admin,
		counters:       d.Counters,
		content:        d.Content,
		cache:          d.Cache,
		stats:          d.Stats,
		reviews:        d.Reviews,
		log:            d.Log,
		whatsAppNumber: d.WhatsAppNumber,
		baseURL:        strings.TrimRight(d.BaseURL, "/"),
		now:            d.Now,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the standard failure envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

// loadCatalog returns the destination graph, trying the cache first and
// repopulating it after a database read.
func (h *Handlers) loadCatalog(ctx context.Context) ([]catalog.Destination, error) {
	cached, err := h.cache.GetCatalog(ctx)
	if err != nil {
		h.log.Error("cache get failed", "err", err)
	}
	if cached != nil {
		return cached, nil
	}

	snapshot, err := h.catalog.FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	if err := h.cache.SetCatalog(ctx, snapshot); err != nil {
		h.log.Warn("cache set failed after db read", "err", err)
	}
	return snapshot, nil
}

// ListDestinations handles GET /api/v1/destinos.
func (h *Handlers) ListDestinations(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.loadCatalog(r.Context())
	if err != nil {
		h.log.Error("catalog fetch failed", "err", err)
		writeError(w, http.StatusInternalServerError, "erro ao carregar destinos")
		return
	}
	if snapshot == nil {
		snapshot = []catalog.Destination{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "destinos": snapshot})
}

type dateView struct {
	catalog.DepartureDate
	PriceFormatted     string `json:"price_formatted"`
	PriceCardFormatted string `json:"price_card_formatted"`
}

type packageView struct {
	catalog.Package
	Upcoming []dateView `json:"upcomingDates"`
}

func (h *Handlers) packageView(pkg catalog.Package) packageView {
	upcoming := catalog.UpcomingDates(pkg.Dates, h.now())
	views := make([]dateView, 0, len(upcoming))
	for _, d := range upcoming {
		views = append(views, dateView{
			DepartureDate:      d,
			PriceFormatted:     catalog.FormatCents(d.Price),
			PriceCardFormatted: catalog.FormatCents(d.PriceCard),
		})
	}
	return packageView{Package: pkg, Upcoming: views}
}

// GetPackage handles GET /api/v1/pacotes/{slug}.
func (h *Handlers) GetPackage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	pkg, err := h.catalog.GetPackageBySlug(r.Context(), slug)
	if err != nil {
		h.log.Error("package fetch failed", "slug", slug, "err", err)
		writeError(w, http.StatusInternalServerError, "erro ao carregar pacote")
		return
	}
	if pkg == nil {
		writeError(w, http.StatusNotFound, "pacote não encontrado")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": h.packageView(*pkg)})
}

// PackageWhatsApp handles GET /api/v1/pacotes/{slug}/whatsapp.
// Builds a wa.me link carrying a prefilled message and a tracking reference.
func (h *Handlers) PackageWhatsApp(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	pkg, err := h.catalog.GetPackageBySlug(r.Context(), slug)
	if err != nil {
		h.log.Error("package fetch failed", "slug", slug, "err", err)
		writeError(w, http.StatusInternalServerError, "erro ao carregar pacote")
		return
	}
	if pkg == nil {
		writeError(w, http.StatusNotFound, "pacote não encontrado")
		return
	}

	snapshot := *pkg
	snapshot.Dates = catalog.UpcomingDates(pkg.Dates, h.now())

	ref := inquiry.NewReference()
	pageURL := h.baseURL + "/pacotes/" + pkg.Slug
	message := inquiry.PackageMessage(snapshot, pageURL, ref)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"url":     inquiry.WhatsAppLink(h.whatsAppNumber, message),
		"ref":     ref,
	})
}

// SearchAvailability handles GET /api/v1/search/availability.
// Query params: q (free text), destino (destination slug), start and end
// (YYYY-MM-DD, inclusive). Dates already departed are excluded before matching.
func (h *Handlers) SearchAvailability(w http.ResponseWriter, r *http.Request) {
	q := catalog.Query{
		Text:            r.URL.Query().Get("q"),
		DestinationSlug: r.URL.Query().Get("destino"),
	}

	if raw := r.URL.Query().Get("start"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "parâmetro start inválido, use AAAA-MM-DD")
			return
		}
		q.DateFrom = &t
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "parâmetro end inválido, use AAAA-MM-DD")
			return
		}
		q.DateTo = &t
	}

	snapshot, err := h.loadCatalog(r.Context())
	if err != nil {
		h.log.Error("catalog fetch failed", "err", err)
		writeError(w, http.StatusInternalServerError, "erro ao carregar catálogo")
		return
	}

	now := h.now()
	filtered := make([]catalog.Destination, len(snapshot))
	for i, dest := range snapshot {
		filtered[i] = dest
		filtered[i].Packages = make([]catalog.Package, len(dest.Packages))
		for j, pkg := range dest.Packages {
			filtered[i].Packages[j] = pkg
			filtered[i].Packages[j].Dates = catalog.UpcomingDates(pkg.Dates, now)
		}
	}

	rows := catalog.Search(filtered, q)
	if rows == nil {
		rows = []catalog.ResultRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": rows})
}

type counterRequest struct {
	PacoteID string `json:"pacoteId"`
	FotoID   string `json:"fotoId"`
}

// increment decodes the counter request body, applies fn to the id found in
// idField and answers with the new value under counterField.
func (h *Handlers) increment(w http.ResponseWriter, r *http.Request, idField, counterField string, fn func(context.Context, string) (int64, error)) {
	var body counterRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "corpo inválido")
		return
	}

	id := body.PacoteID
	if idField == "fotoId" {
		id = body.FotoID
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, idField+" é obrigatório")
		return
	}

	value, err := fn(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "registro não encontrado")
			return
		}
		h.log.Error("counter update failed", "id", id, "counter", counterField, "err", err)
		writeError(w, http.StatusInternalServerError, "erro ao atualizar contador")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, counterField: value})
}

// PackageLike handles PATCH /api/v1/stats/pacote-like.
func (h *Handlers) PackageLike(w http.ResponseWriter, r *http.Request) {
	h.increment(w, r, "pacoteId", "like", h.counters.IncrementPackageLike)
}

// PackageView handles PATCH /api/v1/stats/pacote-view.
func (h *Handlers) PackageView(w http.ResponseWriter, r *http.Request) {
	h.increment(w, r, "pacoteId", "view", h.counters.IncrementPackageView)
}

// PhotoLike handles PATCH /api/v1/stats/foto-like.
func (h *Handlers) PhotoLike(w http.ResponseWriter, r *http.Request) {
	h.increment(w, r, "fotoId", "like", h.counters.IncrementPhotoLike)
}

// PhotoView handles PATCH /api/v1/stats/foto-view.
func (h *Handlers) PhotoView(w http.ResponseWriter, r *http.Request) {
	h.increment(w, r, "fotoId", "view", h.counters.IncrementPhotoView)
}

// ListFAQs handles GET /api/v1/faqs.
func (h *Handlers) ListFAQs(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.content.ListFAQs(r.Context())
	if err != nil {
		h.log.Error("faq list failed", "err", err)
		writeError(w, http.StatusInternalServerError, "erro ao carregar perguntas")
		return
	}
	if faqs == nil {
		faqs = []site.FAQ{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": faqs})
}

// ListTestimonials handles GET /api/v1/testimonials.
func (h *Handlers) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	items, err := h.content.ListTestimonials(r.Context())
	if err != nil {
		h.log.Error("testimonial list failed", "err", err)
		writeError(w, http.StatusInternalServerError, "erro ao carregar depoimentos")
		return
	}
	if items == nil {
		items = []site.Testimonial{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": items})
}

// GoogleReviews handles GET /api/v1/google-reviews.
// Proxies the agency's Google Places reviews mapped onto the testimonial
// shape, so the site can mix them with the manually entered ones.
func (h *Handlers) GoogleReviews(w http.ResponseWriter, r *http.Request) {
	if h.reviews == nil {
		writeError(w, http.StatusInternalServerError, "avaliações do Google não configuradas")
		return
	}

	items, err := h.reviews.Fetch(r.Context())
	if err != nil {
		h.log.Error("google reviews fetch failed", "err", err)
		writeError(w, http.StatusInternalServerError, "erro ao buscar avaliações")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": items})
}

// Subscribe handles POST /api/v1/subscribers.
// Repeated submissions with the same email update the stored name and phone.
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	var sub site.Subscriber
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "corpo inválido")
		return
	}
	sub.Email = strings.TrimSpace(strings.ToLower(sub.Email))
	if sub.Email == "" {
		writeError(w, http.StatusBadRequest, "email é obrigatório")
		return
	}

	if err := h.content.UpsertSubscriber(r.Context(), sub); err != nil {
		h.log.Error("subscriber upsert failed", "err", err)
		writeError(w, http.StatusInternalServerError, "erro ao salvar inscrição")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

type dbPinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and redis connectivity.
func HealthHandlerFunc(db dbPinger, redis redisPinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "ok"
		redisStatus := "ok"

		if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", "err", err)
			dbStatus = "error"
			status = http.StatusServiceUnavailable
		}

		if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			redisStatus = "error"
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, map[string]string{
			"status": func() string {
				if status == http.StatusOK {
					return "ok"
				}
				return "degraded"
			}(),
			"db":    dbStatus,
			"redis": redisStatus,
		})
	}
}
