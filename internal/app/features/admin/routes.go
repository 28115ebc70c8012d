// internal/app/features/admin/routes.go
package admin

import (
	"github.com/dalemusser/congregate/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the guarded admin router (mounted under /api/admin).
func Routes(h *Handler, guard *auth.Guard) chi.Router {
	r := chi.NewRouter()
	r.Use(guard.RequireAdmin)

	r.Get("/pending-users", h.ServePendingUsers)
	r.Post("/approve-user/{id}", h.HandleApproveUser)
	r.Post("/reject-user/{id}", h.HandleRejectUser)
	r.Get("/user-stats", h.ServeUserStats)
	r.Get("/recent-logins", h.ServeRecentLogins)
	r.Get("/audit", h.ServeAudit)

	r.Post("/approve-photo/{id}", h.HandleApprovePhoto)
	r.Delete("/reject-photo/{id}", h.HandleRejectPhoto)

	r.Post("/events", h.HandleCreateEvent)
	return r
}
