package ledger

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes attaches the finance ledger pages under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Dashboard)
	r.Get("/overview.json", h.OverviewJSON)
	r.Get("/transactions", h.List)
	r.Get("/transactions/new", h.ShowForm)
	r.Post("/transactions", h.Create)
	r.Post("/transactions/{id}/delete", h.Delete)
}
