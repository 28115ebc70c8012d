// internal/app/features/admin/audit.go
package admin

import (
	"context"
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/congregate/internal/app/features/errors"
	"github.com/dalemusser/congregate/internal/app/store/audit"
	"github.com/dalemusser/congregate/internal/app/system/apperr"
	"github.com/dalemusser/congregate/internal/app/system/auth"
	"github.com/dalemusser/congregate/internal/app/system/ratelimit"
	"github.com/dalemusser/congregate/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const defaultAuditLimit = 100

// audit records which admin performed a moderation action. The action has
// already been committed, so a storage failure is only logged.
func (h *Handler) audit(r *http.Request, eventType, targetID string) {
	ev := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		TargetID:  targetID,
		IP:        ratelimit.ClientIP(r),
		Success:   true,
	}
	fields := []zap.Field{zap.String("action", eventType), zap.String("target_id", targetID)}
	if a, ok := auth.CurrentAdmin(r); ok {
		ev.Actor = a.Email
		ev.Details = map[string]string{"via": a.Via}
		fields = append(fields, zap.String("admin", a.Email), zap.String("via", a.Via))
	}
	h.Log.Info("admin action", fields...)

	if h.Audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeouts.Short())
	defer cancel()
	if err := h.Audit.Log(ctx, ev); err != nil {
		h.Log.Warn("failed to store audit event", append(fields, zap.Error(err))...)
	}
}

// ServeAudit handles GET /api/admin/audit?category=&type=&limit=N.
func (h *Handler) ServeAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := audit.QueryFilter{
		Category:  q.Get("category"),
		EventType: q.Get("type"),
		Limit:     defaultAuditLimit,
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			h.ErrLog.Respond(w, r, apperr.Validation("limit must be a positive number."))
			return
		}
		filter.Limit = n
	}

	if h.Audit == nil {
		uierrors.WriteJSON(w, http.StatusOK, []audit.Event{})
		return
	}
	events, err := h.Audit.Query(r.Context(), filter)
	if err != nil {
		h.ErrLog.Respond(w, r, apperr.Dependency("Failed to fetch audit events.", err))
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, events)
}
