// internal/app/features/admin/photos.go
package admin

import (
	"net/http"

	uierrors "github.com/dalemusser/congregate/internal/app/features/errors"
	"github.com/dalemusser/congregate/internal/app/store/audit"
	"github.com/dalemusser/congregate/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type approvePhotoResponse struct {
	Message string        `json:"message"`
	Photo   *models.Photo `json:"photo"`
}

// HandleApprovePhoto handles POST /api/admin/approve-photo/{id}.
func (h *Handler) HandleApprovePhoto(w http.ResponseWriter, r *http.Request) {
	p, err := h.Gallery.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	h.audit(r, audit.EventPhotoApproved, p.ID.Hex())
	uierrors.WriteJSON(w, http.StatusOK, approvePhotoResponse{Message: "Photo approved.", Photo: p})
}

// HandleRejectPhoto handles DELETE /api/admin/reject-photo/{id}.
func (h *Handler) HandleRejectPhoto(w http.ResponseWriter, r *http.Request) {
	if err := h.Gallery.Reject(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	h.audit(r, audit.EventPhotoRejected, chi.URLParam(r, "id"))
	uierrors.WriteMessage(w, http.StatusOK, "Photo rejected.")
}
