// internal/app/features/admin/handler.go
package admin

import (
	"context"

	uierrors "github.com/dalemusser/congregate/internal/app/features/errors"
	"github.com/dalemusser/congregate/internal/app/store/audit"
	"github.com/dalemusser/congregate/internal/app/system/approval"
	"github.com/dalemusser/congregate/internal/app/system/gallery"
	"github.com/dalemusser/congregate/internal/domain/models"
	"go.uber.org/zap"
)

// EventCreator stores new events. *eventstore.Store implements it.
type EventCreator interface {
	Create(ctx context.Context, e models.Event) (models.Event, error)
}

// LoginLister reads the login history. *loginstore.Store implements it.
type LoginLister interface {
	Recent(ctx context.Context, limit int) ([]models.LoginRecord, error)
}

// AuditTrail persists and reads admin actions. *audit.Store implements it.
type AuditTrail interface {
	Log(ctx context.Context, event audit.Event) error
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
}

// Handler serves the admin-only moderation API. Every route is behind
// auth.Guard.RequireAdmin.
type Handler struct {
	Workflow *approval.Workflow
	Gallery  *gallery.Service
	Events   EventCreator
	Logins   LoginLister // nil serves an empty history
	Audit    AuditTrail  // nil keeps actions in the log only
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(wf *approval.Workflow, gal *gallery.Service, events EventCreator, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Workflow: wf,
		Gallery:  gal,
		Events:   events,
		ErrLog:   errLog,
		Log:      logger,
	}
}
