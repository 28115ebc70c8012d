package testutil

import (
	"testing"
	"time"

	"github.com/dalemusser/congregate/internal/app/system/approval"
	"github.com/dalemusser/congregate/internal/app/system/auth"
	"github.com/dalemusser/congregate/internal/app/system/gallery"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Admin credentials seeded by NewApp.
const (
	AdminEmail = "admin@example.com"
	AdminPIN   = "9876"
)

// App wires the approval and gallery services over in-memory fakes so HTTP
// handlers can be tested without Mongo or SMTP.
type App struct {
	Users    *UserStore
	Admins   *AdminStore
	Photos   *PhotoStore
	Files    *Files
	Notifier *Notifier

	Workflow *approval.Workflow
	Gallery  *gallery.Service
	Sessions *auth.SessionManager
	Tokens   *auth.Tokens
	Guard    *auth.Guard
}

// NewApp builds an App with one admin credential and the fixed PIN policy.
func NewApp(t *testing.T) *App {
	t.Helper()
	logger := zap.NewNop()

	a := &App{
		Users:    NewUserStore(),
		Admins:   NewAdminStore(),
		Photos:   NewPhotoStore(),
		Files:    NewFiles(),
		Notifier: &Notifier{},
	}

	hash, err := approval.HashPIN(AdminPIN, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash admin pin: %v", err)
	}
	a.Admins.Put(AdminEmail, hash)

	a.Workflow = approval.New(a.Users, a.Admins, a.Notifier, approval.Config{
		SiteName:         "Test Chapel",
		AdminNotifyEmail: "office@example.com",
		PINPolicy:        approval.PINFixed,
		ApprovalPIN:      approval.DefaultApprovalPIN,
		HashCost:         bcrypt.MinCost,
	}, logger)
	a.Gallery = gallery.New(a.Photos, a.Files, 1<<20, logger)

	a.Sessions, err = auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	a.Tokens, err = auth.NewTokens("test-jwt-secret-0123456789", "congregate-test", time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	a.Guard = auth.NewGuard(a.Sessions, a.Tokens, logger)
	return a
}

// AdminToken returns a valid bearer token for the seeded admin.
func (a *App) AdminToken(t *testing.T) string {
	t.Helper()
	tok, err := a.Tokens.Issue(AdminEmail)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}
