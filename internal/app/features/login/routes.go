// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes serves POST / (mounted at /login).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleLogin)
	return r
}

// AdminRoutes registers the admin session endpoints on r, which is the
// /api/admin subrouter shared with the guarded admin feature.
func AdminRoutes(r chi.Router, h *Handler) {
	r.Post("/login", h.HandleAdminLogin)
	r.Post("/logout", h.HandleLogout)
}
