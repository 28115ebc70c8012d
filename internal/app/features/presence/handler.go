// internal/app/features/presence/handler.go
package presence

import (
	"net/http"

	uierrors "github.com/dalemusser/congregate/internal/app/features/errors"
	"github.com/dalemusser/congregate/internal/app/system/approval"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler records when a member's client comes online or goes away. The
// counts feed the admin user stats.
type Handler struct {
	Workflow *approval.Workflow
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(wf *approval.Workflow, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Workflow: wf, ErrLog: errLog, Log: logger}
}

// HandleOnline handles POST /api/users/online/{id}.
func (h *Handler) HandleOnline(w http.ResponseWriter, r *http.Request) {
	h.set(w, r, true)
}

// HandleOffline handles POST /api/users/offline/{id}.
func (h *Handler) HandleOffline(w http.ResponseWriter, r *http.Request) {
	h.set(w, r, false)
}

func (h *Handler) set(w http.ResponseWriter, r *http.Request, online bool) {
	id := chi.URLParam(r, "id")
	if err := h.Workflow.SetOnline(r.Context(), id, online); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	h.Log.Debug("presence updated", zap.String("user_id", id), zap.Bool("online", online))
	uierrors.WriteMessage(w, http.StatusOK, "Status updated.")
}
