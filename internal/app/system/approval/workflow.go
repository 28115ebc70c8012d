// Package approval implements self-registration gated by admin approval and
// PIN login.
//
// A user starts pending with no PIN. Approve issues a PIN, stores only its
// bcrypt hash, and returns the plain PIN to the admin once. Reject deletes the
// record. Notifications are sent after the state change and never undo it.
package approval

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/congregate/internal/app/store/users"
	"github.com/dalemusser/congregate/internal/app/system/apperr"
	"github.com/dalemusser/congregate/internal/app/system/inputval"
	"github.com/dalemusser/congregate/internal/app/system/mailer"
	"github.com/dalemusser/congregate/internal/app/system/moderation"
	"github.com/dalemusser/congregate/internal/app/system/normalize"
	"github.com/dalemusser/congregate/internal/app/system/notify"
	"github.com/dalemusser/congregate/internal/app/system/timeouts"
	"github.com/dalemusser/congregate/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Client-facing messages.
const (
	MsgRegistered     = "Registration successful. Pending admin approval."
	MsgUserExists     = "User already exists."
	MsgUserNotFound   = "User not found."
	MsgNotApproved    = "Your account has not been approved yet."
	MsgBadCredentials = "Invalid email or PIN."
	MsgBadAdmin       = "Invalid admin credentials."
	MsgCredsRequired  = "Email and PIN are required."
)

// UserStore is the user persistence the workflow needs. *userstore.Store implements it.
type UserStore interface {
	moderation.Store[models.User]
	Create(ctx context.Context, email string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
	CountOnline(ctx context.Context) (int64, error)
	SetOnline(ctx context.Context, id primitive.ObjectID, online bool) error
}

// AdminStore looks up admin credentials. *adminstore.Store implements it.
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminCredential, error)
}

// Config controls PIN issuance and notifications.
type Config struct {
	SiteName         string
	AdminNotifyEmail string // receives registration notices; empty disables them
	PINPolicy        string // PINFixed or PINRandom
	ApprovalPIN      string // PIN issued under PINFixed
	PINLength        int    // digits issued under PINRandom
	HashCost         int    // bcrypt cost; zero means bcrypt.DefaultCost
}

// Workflow is the registration, approval and login state machine.
type Workflow struct {
	users     UserStore
	admins    AdminStore
	notifier  notify.Notifier
	moderator *moderation.Moderator[models.User]
	cfg       Config
	log       *zap.Logger
}

// New creates a Workflow. A nil notifier discards notifications.
func New(users UserStore, admins AdminStore, notifier notify.Notifier, cfg Config, logger *zap.Logger) *Workflow {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if cfg.PINPolicy == "" {
		cfg.PINPolicy = PINFixed
	}
	if cfg.ApprovalPIN == "" {
		cfg.ApprovalPIN = DefaultApprovalPIN
	}
	if cfg.PINLength == 0 {
		cfg.PINLength = 4
	}
	return &Workflow{
		users:     users,
		admins:    admins,
		notifier:  notifier,
		moderator: moderation.New[models.User](users, "user"),
		cfg:       cfg,
		log:       logger,
	}
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	IsAdmin  bool
	Approved bool
	Email    string
	UserID   string
}

// Stats summarizes the user base for the admin dashboard.
type Stats struct {
	TotalUsers  int64 `json:"totalUsers"`
	OnlineUsers int64 `json:"onlineUsers"`
}

// Register creates a pending user for email.
func (w *Workflow) Register(ctx context.Context, email string) (string, error) {
	email = normalize.Email(email)
	if email == "" {
		return "", apperr.Validation("Email is required.")
	}
	if !inputval.IsValidEmail(email) {
		return "", apperr.Validation("A valid email address is required.")
	}

	// The admin address always logs in as admin, so a member account under it
	// could never be used.
	admin, err := w.lookupAdmin(ctx, email)
	if err != nil {
		return "", apperr.Dependency("Registration failed. Please try again.", err)
	}
	if admin != nil {
		return "", apperr.Conflict(MsgUserExists)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	_, err = w.users.GetByEmail(lookupCtx, email)
	cancel()
	switch {
	case err == nil:
		return "", apperr.Conflict(MsgUserExists)
	case !errors.Is(err, mongo.ErrNoDocuments):
		return "", apperr.Dependency("Registration failed. Please try again.", fmt.Errorf("lookup user: %w", err))
	}

	createCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	u, err := w.users.Create(createCtx, email)
	cancel()
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			return "", apperr.Conflict(MsgUserExists)
		}
		return "", apperr.Dependency("Registration failed. Please try again.", fmt.Errorf("create user: %w", err))
	}

	w.log.Info("user registered", zap.String("user_id", u.ID.Hex()))

	if w.cfg.AdminNotifyEmail != "" {
		e := mailer.BuildRegistrationEmail(mailer.RegistrationEmailData{SiteName: w.cfg.SiteName, Email: u.Email})
		e.To = w.cfg.AdminNotifyEmail
		w.notify(ctx, notify.KindRegistration, e, u.ID.Hex())
	}
	return MsgRegistered, nil
}

// Approve approves the user and returns the PIN they will log in with.
// Approving an already approved user re-issues the PIN.
func (w *Workflow) Approve(ctx context.Context, userID string) (string, error) {
	if _, err := w.moderator.ParseID(userID); err != nil {
		return "", err
	}

	pin, err := w.issuePIN()
	if err != nil {
		return "", apperr.Dependency("Failed to approve user.", fmt.Errorf("issue pin: %w", err))
	}
	hash, err := HashPIN(pin, w.cfg.HashCost)
	if err != nil {
		return "", apperr.Dependency("Failed to approve user.", fmt.Errorf("hash pin: %w", err))
	}

	u, err := w.moderator.Approve(ctx, userID, map[string]any{"pin_hash": hash})
	if err != nil {
		return "", err
	}

	w.log.Info("user approved", zap.String("user_id", u.ID.Hex()), zap.String("pin_policy", w.cfg.PINPolicy))

	e := mailer.BuildApprovalEmail(mailer.ApprovalEmailData{SiteName: w.cfg.SiteName, Email: u.Email, PIN: pin})
	w.notify(ctx, notify.KindApproval, e, u.ID.Hex())
	return pin, nil
}

// Reject deletes the user. Pending and approved users can both be rejected.
func (w *Workflow) Reject(ctx context.Context, userID string) error {
	u, err := w.moderator.Reject(ctx, userID)
	if err != nil {
		return err
	}

	w.log.Info("user rejected", zap.String("user_id", u.ID.Hex()), zap.Bool("was_approved", u.Approved))

	e := mailer.BuildRejectionEmail(mailer.RejectionEmailData{SiteName: w.cfg.SiteName, Email: u.Email})
	w.notify(ctx, notify.KindRejection, e, u.ID.Hex())
	return nil
}

// ListPending returns users awaiting approval, oldest first.
func (w *Workflow) ListPending(ctx context.Context) ([]models.User, error) {
	return w.moderator.List(ctx, false)
}

// Stats returns total and online user counts.
func (w *Workflow) Stats(ctx context.Context) (Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	total, err := w.users.Count(ctx)
	if err != nil {
		return Stats{}, apperr.Dependency("Failed to load user stats.", err)
	}
	online, err := w.users.CountOnline(ctx)
	if err != nil {
		return Stats{}, apperr.Dependency("Failed to load user stats.", err)
	}
	return Stats{TotalUsers: total, OnlineUsers: online}, nil
}

// SetOnline updates a user's presence flag.
func (w *Workflow) SetOnline(ctx context.Context, userID string, online bool) error {
	id, err := w.moderator.ParseID(userID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	if err := w.users.SetOnline(ctx, id, online); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound(MsgUserNotFound)
		}
		return apperr.Dependency("Failed to update status.", err)
	}
	return nil
}

// notify hands e to the notifier after a committed change. The send is
// detached from request cancellation and a failure is only logged.
func (w *Workflow) notify(ctx context.Context, kind string, e mailer.Email, userID string) {
	if err := w.notifier.Notify(context.WithoutCancel(ctx), notify.Message{Kind: kind, Email: e}); err != nil {
		w.log.Warn("notification failed",
			zap.String("kind", kind),
			zap.String("user_id", userID),
			zap.Error(err))
	}
}
