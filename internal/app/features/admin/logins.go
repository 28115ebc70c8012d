// internal/app/features/admin/logins.go
package admin

import (
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/congregate/internal/app/features/errors"
	"github.com/dalemusser/congregate/internal/app/system/apperr"
	"github.com/dalemusser/congregate/internal/domain/models"
)

const defaultRecentLogins = 50

// ServeRecentLogins handles GET /api/admin/recent-logins?limit=N.
func (h *Handler) ServeRecentLogins(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLogins
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.ErrLog.Respond(w, r, apperr.Validation("limit must be a positive number."))
			return
		}
		limit = n
	}

	if h.Logins == nil {
		uierrors.WriteJSON(w, http.StatusOK, []models.LoginRecord{})
		return
	}
	recs, err := h.Logins.Recent(r.Context(), limit)
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Dependency("Failed to fetch login history.", err))
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, recs)
}
