// internal/app/features/presence/routes.go
package presence

import "github.com/go-chi/chi/v5"

// Routes returns the router for presence endpoints (mounted at /api/users).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/online/{id}", h.HandleOnline)
	r.Post("/offline/{id}", h.HandleOffline)
	return r
}
