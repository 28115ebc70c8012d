// internal/app/features/admin/users.go
package admin

import (
	"net/http"

	uierrors "github.com/dalemusser/congregate/internal/app/features/errors"
	"github.com/dalemusser/congregate/internal/app/store/audit"
	"github.com/go-chi/chi/v5"
)

type approveUserResponse struct {
	Message string `json:"message"`
	PIN     string `json:"pin"`
}

// ServePendingUsers handles GET /api/admin/pending-users.
func (h *Handler) ServePendingUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Workflow.ListPending(r.Context())
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, users)
}

// HandleApproveUser handles POST /api/admin/approve-user/{id}.
// The issued PIN is returned once so the admin can pass it on.
func (h *Handler) HandleApproveUser(w http.ResponseWriter, r *http.Request) {
	pin, err := h.Workflow.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	h.audit(r, audit.EventUserApproved, chi.URLParam(r, "id"))
	uierrors.WriteJSON(w, http.StatusOK, approveUserResponse{Message: "User approved.", PIN: pin})
}

// HandleRejectUser handles POST /api/admin/reject-user/{id}.
func (h *Handler) HandleRejectUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Workflow.Reject(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	h.audit(r, audit.EventUserRejected, chi.URLParam(r, "id"))
	uierrors.WriteMessage(w, http.StatusOK, "User rejected.")
}

// ServeUserStats handles GET /api/admin/user-stats.
func (h *Handler) ServeUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Workflow.Stats(r.Context())
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, stats)
}
