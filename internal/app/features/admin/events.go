// internal/app/features/admin/events.go
package admin

import (
	"context"
	"fmt"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/congregate/internal/app/features/errors"
	"github.com/dalemusser/congregate/internal/app/features/shared/reqjson"
	"github.com/dalemusser/congregate/internal/app/store/audit"
	"github.com/dalemusser/congregate/internal/app/system/apperr"
	"github.com/dalemusser/congregate/internal/app/system/htmlsanitize"
	"github.com/dalemusser/congregate/internal/app/system/inputval"
	"github.com/dalemusser/congregate/internal/app/system/normalize"
	"github.com/dalemusser/congregate/internal/app/system/timeouts"
	"github.com/dalemusser/congregate/internal/domain/models"
)

type eventRequest struct {
	Title       string `json:"title" validate:"required,max=200" label:"Title"`
	Date        string `json:"date" validate:"required" label:"Date"`
	Description string `json:"description" validate:"required,max=5000" label:"Description"`
	MediaURL    string `json:"mediaUrl" validate:"required,httpurl" label:"Media URL"`
}

// HandleCreateEvent handles POST /api/admin/events.
func (h *Handler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := reqjson.Decode(w, r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	req.Title = normalize.Text(htmlsanitize.PlainText(req.Title))
	req.Description = normalize.Text(htmlsanitize.PlainText(req.Description))
	req.MediaURL = normalize.Text(req.MediaURL)
	req.Date = normalize.Text(req.Date)

	if res := inputval.Validate(req); res.HasErrors() {
		h.ErrLog.Respond(w, r, apperr.Validation(res.First()))
		return
	}
	date, err := parseEventDate(req.Date)
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Validation("Date must be YYYY-MM-DD or RFC 3339."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, err := h.Events.Create(ctx, models.Event{
		Title:       req.Title,
		Date:        date,
		Description: req.Description,
		MediaURL:    req.MediaURL,
	})
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Dependency("Failed to create event.", fmt.Errorf("create event: %w", err)))
		return
	}

	h.audit(r, audit.EventEventCreated, ev.ID.Hex())
	uierrors.WriteJSON(w, http.StatusCreated, ev)
}

func parseEventDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}
