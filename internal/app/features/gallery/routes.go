// internal/app/features/gallery/routes.go
package gallery

import (
	"github.com/dalemusser/congregate/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the gallery router (mounted at /api/gallery).
func Routes(h *Handler, guard *auth.Guard) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeApproved)
	r.Post("/", h.HandleSubmit)
	r.With(guard.RequireAdmin).Get("/pending", h.ServePending)
	r.Get("/{id}", h.ServePhoto)
	return r
}
