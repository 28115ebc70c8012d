// internal/app/features/events/handler.go
package events

import (
	"context"
	"fmt"
	"net/http"

	uierrors "github.com/dalemusser/congregate/internal/app/features/errors"
	"github.com/dalemusser/congregate/internal/app/system/apperr"
	"github.com/dalemusser/congregate/internal/app/system/timeouts"
	"github.com/dalemusser/congregate/internal/domain/models"
	"go.uber.org/zap"
)

// Lister returns events newest first. *eventstore.Store implements it.
type Lister interface {
	List(ctx context.Context) ([]models.Event, error)
}

type Handler struct {
	Events Lister
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(events Lister, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Events: events, ErrLog: errLog, Log: logger}
}

// ServeList handles GET /api/events.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Events.List(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Dependency("Failed to fetch events.", fmt.Errorf("list events: %w", err)))
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, list)
}
