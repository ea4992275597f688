package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dhages/turismo-api/internal/dashboard"
	"github.com/dhages/turismo-api/internal/storage"
)

// invalidateCatalog drops the cached destination graph after a write. Cache
// errors are logged but never fail the request.
func (h *Handlers) invalidateCatalog(ctx context.Context) {
	if err := h.cache.Invalidate(ctx); err != nil {
		h.log.Warn("cache invalidate failed", "err", err)
	}
}

// writeStorageError maps repository errors onto the HTTP surface.
func (h *Handlers) writeStorageError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "registro não encontrado")
	case errors.Is(err, storage.ErrConflict):
		writeError(w, http.StatusConflict, "slug já existe")
	default:
		h.log.Error(op+" failed", "err", err)
		writeError(w, http.StatusInternalServerError, "erro interno")
	}
}

// CreateDestination handles POST /api/v1/admin/destinos.
func (h *Handlers) CreateDestination(w http.ResponseWriter, r *http.Request) {
	var in storage.DestinationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "corpo inválido")
		return
	}
	if in.Title == "" {
		writeError(w, http.StatusBadRequest, "title é obrigatório")
		return
	}

	dest, err := h.admin.CreateDestination(r.Context(), in)
	if err != nil {
		h.writeStorageError(w, err, "destination create")
		return
	}

	h.invalidateCatalog(r.Context())
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": dest})
}

// UpdateDestination handles PUT /api/v1/admin/destinos.
// Nested packages are diffed by id: known ids are updated in place, blank ids
// are created, absent ids are removed.
func (h *Handlers) UpdateDestination(w http.ResponseWriter, r *http.Request) {
	var in storage.DestinationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "corpo inválido")
		return
	}
	if in.ID == "" {
		writeError(w, http.StatusBadRequest, "id é obrigatório")
		return
	}

	dest, err := h.admin.UpdateDestination(r.Context(), in)
	if err != nil {
		h.writeStorageError(w, err, "destination update")
		return
	}

	h.invalidateCatalog(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": dest})
}

// DeleteDestination handles DELETE /api/v1/admin/destinos/{id}.
func (h *Handlers) DeleteDestination(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.admin.DeleteDestination(r.Context(), id); err != nil {
		h.writeStorageError(w, err, "destination delete")
		return
	}

	h.invalidateCatalog(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "destino removido"})
}

// CreatePackage handles POST /api/v1/admin/pacotes.
func (h *Handlers) CreatePackage(w http.ResponseWriter, r *http.Request) {
	var in storage.PackageInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "corpo inválido")
		return
	}
	if in.Title == "" || in.DestinationID == "" {
		writeError(w, http.StatusBadRequest, "title e destinoId são obrigatórios")
		return
	}

	pkg, err := h.admin.CreatePackage(r.Context(), in)
	if err != nil {
		h.writeStorageError(w, err, "package create")
		return
	}

	h.invalidateCatalog(r.Context())
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": pkg})
}

// UpdatePackage handles PUT /api/v1/admin/pacotes.
// Photos and dates follow the same id diff as nested packages; counters on
// surviving rows are preserved.
func (h *Handlers) UpdatePackage(w http.ResponseWriter, r *http.Request) {
	var in storage.PackageInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "corpo inválido")
		return
	}
	if in.ID == "" {
		writeError(w, http.StatusBadRequest, "id é obrigatório")
		return
	}

	pkg, err := h.admin.UpdatePackage(r.Context(), in)
	if err != nil {
		h.writeStorageError(w, err, "package update")
		return
	}

	h.invalidateCatalog(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": pkg})
}

// DeletePackage handles DELETE /api/v1/admin/pacotes/{id}.
func (h *Handlers) DeletePackage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.admin.DeletePackage(r.Context(), id); err != nil {
		h.writeStorageError(w, err, "package delete")
		return
	}

	h.invalidateCatalog(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "pacote removido"})
}

// CreateFAQ handles POST /api/v1/admin/faqs.
func (h *Handlers) CreateFAQ(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Question string `json:"pergunta"`
		Answer   string `json:"resposta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "corpo inválido")
		return
	}
	if body.Question == "" || body.Answer == "" {
		writeError(w, http.StatusBadRequest, "pergunta e resposta são obrigatórias")
		return
	}

	faq, err := h.admin.CreateFAQ(r.Context(), body.Question, body.Answer)
	if err != nil {
		h.writeStorageError(w, err, "faq create")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": faq})
}

// DeleteFAQ handles DELETE /api/v1/admin/faqs/{id}.
func (h *Handlers) DeleteFAQ(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteFAQ(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStorageError(w, err, "faq delete")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// CreateTestimonial handles POST /api/v1/admin/testimonials.
func (h *Handlers) CreateTestimonial(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name    string `json:"name"`
		Content string `json:"content"`
		Type    string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "corpo inválido")
		return
	}
	if body.Name == "" || body.Content == "" {
		writeError(w, http.StatusBadRequest, "name e content são obrigatórios")
		return
	}

	item, err := h.admin.CreateTestimonial(r.Context(), body.Name, body.Content, body.Type)
	if err != nil {
		h.writeStorageError(w, err, "testimonial create")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": item})
}

// DeleteTestimonial handles DELETE /api/v1/admin/testimonials/{id}.
func (h *Handlers) DeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteTestimonial(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStorageError(w, err, "testimonial delete")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// DashboardStats handles GET /api/v1/admin/dashboard/pacotes-stats.
func (h *Handlers) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Collect(r.Context())
	if err != nil {
		h.log.Error("dashboard collect failed", "err", err)
		writeError(w, http.StatusInternalServerError, "erro ao montar estatísticas")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*dashboard.Stats
	}{true, stats})
}
