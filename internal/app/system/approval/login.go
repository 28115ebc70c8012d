package approval

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/congregate/internal/app/system/apperr"
	"github.com/dalemusser/congregate/internal/app/system/normalize"
	"github.com/dalemusser/congregate/internal/app/system/timeouts"
	"github.com/dalemusser/congregate/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Login authenticates an admin or an approved user.
//
// The admin credential is checked first and an admin login never reads the
// user store. Users are looked up by email alone: an unknown email is
// NotFound, an unapproved user is Forbidden whatever the PIN, and a wrong PIN
// is Auth.
func (w *Workflow) Login(ctx context.Context, email, pin string) (LoginResult, error) {
	email = normalize.Email(email)
	pin = normalize.PIN(pin)
	if email == "" || pin == "" {
		return LoginResult{}, apperr.Validation(MsgCredsRequired)
	}

	admin, err := w.lookupAdmin(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if admin != nil {
		if !CheckPIN(admin.PINHash, pin) {
			w.log.Info("admin login failed", zap.String("reason", "bad_pin"))
			return LoginResult{}, apperr.Auth(MsgBadCredentials)
		}
		w.log.Info("admin login", zap.String("admin_id", admin.ID.Hex()))
		return LoginResult{IsAdmin: true, Approved: true, Email: admin.Email}, nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	u, err := w.users.GetByEmail(lookupCtx, email)
	cancel()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return LoginResult{}, apperr.NotFound(MsgUserNotFound)
		}
		return LoginResult{}, apperr.Dependency("Login failed. Please try again.", fmt.Errorf("lookup user: %w", err))
	}

	if u.IsPending() {
		return LoginResult{}, apperr.Forbidden(MsgNotApproved)
	}
	if !CheckPIN(u.PINHash, pin) {
		w.log.Info("user login failed", zap.String("user_id", u.ID.Hex()), zap.String("reason", "bad_pin"))
		return LoginResult{}, apperr.Auth(MsgBadCredentials)
	}

	onlineCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	if err := w.users.SetOnline(onlineCtx, u.ID, true); err != nil {
		w.log.Warn("failed to mark user online", zap.String("user_id", u.ID.Hex()), zap.Error(err))
	}
	cancel()

	w.log.Info("user login", zap.String("user_id", u.ID.Hex()))
	return LoginResult{Approved: true, Email: u.Email, UserID: u.ID.Hex()}, nil
}

// AdminLogin accepts only the admin credential. Every other outcome is Auth.
func (w *Workflow) AdminLogin(ctx context.Context, email, pin string) (LoginResult, error) {
	email = normalize.Email(email)
	pin = normalize.PIN(pin)
	if email == "" || pin == "" {
		return LoginResult{}, apperr.Auth(MsgBadAdmin)
	}

	admin, err := w.lookupAdmin(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if admin == nil || !CheckPIN(admin.PINHash, pin) {
		return LoginResult{}, apperr.Auth(MsgBadAdmin)
	}
	w.log.Info("admin login", zap.String("admin_id", admin.ID.Hex()))
	return LoginResult{IsAdmin: true, Approved: true, Email: admin.Email}, nil
}

// lookupAdmin returns nil, nil when email is not an admin.
func (w *Workflow) lookupAdmin(ctx context.Context, email string) (*models.AdminCredential, error) {
	if w.admins == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	a, err := w.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperr.Dependency("Login failed. Please try again.", fmt.Errorf("lookup admin: %w", err))
	}
	return a, nil
}
