package financehttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers the DRE endpoints onto the router. The CSV
// export is rate limited since it recomputes the whole matrix per call.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/finance/dre", h.handleReport)
	r.Post("/finance/dre/snapshots", h.handleCreateSnapshot)
	r.Post("/finance/cache/bump", h.handleCacheBump)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/finance/dre/export.csv", h.handleCSV)
	})
}
