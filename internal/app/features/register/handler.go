// internal/app/features/register/handler.go
package register

import (
	"net/http"

	uierrors "github.com/dalemusser/congregate/internal/app/features/errors"
	"github.com/dalemusser/congregate/internal/app/features/shared/reqjson"
	"github.com/dalemusser/congregate/internal/app/system/approval"
	"go.uber.org/zap"
)

type Handler struct {
	Workflow *approval.Workflow
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(wf *approval.Workflow, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Workflow: wf,
		ErrLog:   errLog,
		Log:      logger,
	}
}

type registerRequest struct {
	Email string `json:"email"`
}

// HandleRegister handles POST /register.
// A new registration is stored pending and the admin is notified.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := reqjson.Decode(w, r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	msg, err := h.Workflow.Register(r.Context(), req.Email)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	uierrors.WriteMessage(w, http.StatusCreated, msg)
}
