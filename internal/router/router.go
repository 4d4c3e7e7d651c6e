package router

import (
	"net/http"

	"kebutuhan-pln/internal/handler"
	"kebutuhan-pln/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	orderHandler *handler.OrderHandler,
	reportHandler *handler.ReportHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> Logging -> CORS -> APIKeyAuth
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(apiKey, logger))

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api/order", func(r chi.Router) {
		r.Use(middleware.Principal(logger))

		r.Post("/create", orderHandler.Create)
		r.Get("/my-orders", orderHandler.MyOrders)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logger))

			r.Get("/all-orders", orderHandler.AllOrders)
			r.Put("/update-status", orderHandler.UpdateStatus)
			r.Delete("/delete/{orderId}", orderHandler.Delete)
			r.Get("/analytics", reportHandler.Analytics)

			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", orderHandler.GetByID)
				r.Put("/update-approved-qty", orderHandler.UpdateApprovedQuantities)
				r.Put("/invoice-suratjalan", orderHandler.UpdateNote)
				r.Post("/surat-jalan/number", orderHandler.NoteNumber)
				// Numbers the note on first view.
				r.Get("/surat-jalan", orderHandler.Note)
				r.Put("/surat-jalan/attachment", orderHandler.AttachNote)
			})
		})
	})

	return r
}
