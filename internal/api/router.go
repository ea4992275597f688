package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// NewRouter builds and returns the Chi router with all routes configured.
// The public catalog surface is unauthenticated; everything under
// /api/v1/admin requires bearer auth. Rate limiting is applied globally:
// 120 requests per minute per IP.
func NewRouter(handlers *Handlers, token string, db dbPinger, redisClient redisPinger, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(120, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(db, redisClient, log))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/destinos", handlers.ListDestinations)
		r.Get("/pacotes/{slug}", handlers.GetPackage)
		r.Get("/pacotes/{slug}/whatsapp", handlers.PackageWhatsApp)
		r.Get("/search/availability", handlers.SearchAvailability)

		r.Patch("/stats/pacote-like", handlers.PackageLike)
		r.Patch("/stats/pacote-view", handlers.PackageView)
		r.Patch("/stats/foto-like", handlers.PhotoLike)
		r.Patch("/stats/foto-view", handlers.PhotoView)

		r.Get("/faqs", handlers.ListFAQs)
		r.Get("/testimonials", handlers.ListTestimonials)
		r.Get("/google-reviews", handlers.GoogleReviews)
		r.Post("/subscribers", handlers.Subscribe)

		r.Route("/admin", func(r chi.Router) {
			r.Use(BearerAuth(token))

			r.Post("/destinos", handlers.CreateDestination)
			r.Put("/destinos", handlers.UpdateDestination)
			r.Delete("/destinos/{id}", handlers.DeleteDestination)

			r.Post("/pacotes", handlers.CreatePackage)
			r.Put("/pacotes", handlers.UpdatePackage)
			r.Delete("/pacotes/{id}", handlers.DeletePackage)

			r.Post("/faqs", handlers.CreateFAQ)
			r.Delete("/faqs/{id}", handlers.DeleteFAQ)
			r.Post("/testimonials", handlers.CreateTestimonial)
			r.Delete("/testimonials/{id}", handlers.DeleteTestimonial)

			r.Get("/dashboard/pacotes-stats", handlers.DashboardStats)
		})
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
