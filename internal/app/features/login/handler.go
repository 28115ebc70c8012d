// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/congregate/internal/app/features/errors"
	"github.com/dalemusser/congregate/internal/app/features/shared/reqjson"
	"github.com/dalemusser/congregate/internal/app/store/audit"
	"github.com/dalemusser/congregate/internal/app/system/apperr"
	"github.com/dalemusser/congregate/internal/app/system/approval"
	"github.com/dalemusser/congregate/internal/app/system/auth"
	"github.com/dalemusser/congregate/internal/app/system/ratelimit"
	"github.com/dalemusser/congregate/internal/app/system/timeouts"
	"github.com/dalemusser/congregate/internal/domain/models"
	"go.uber.org/zap"
)

// LoginRecorder keeps the login history. *loginstore.Store implements it.
type LoginRecorder interface {
	CreateFrom(ctx context.Context, r *http.Request, email, role, userID string) error
}

// AuditLogger stores security events. *audit.Store implements it.
type AuditLogger interface {
	Log(ctx context.Context, event audit.Event) error
}

type Handler struct {
	Workflow   *approval.Workflow
	SessionMgr *auth.SessionManager
	Tokens     *auth.Tokens
	Limiter    *ratelimit.LoginLimiter // nil disables throttling
	History    LoginRecorder           // nil disables login history
	Audit      AuditLogger             // nil skips failed admin login events
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(
	wf *approval.Workflow,
	sessionMgr *auth.SessionManager,
	tokens *auth.Tokens,
	limiter *ratelimit.LoginLimiter,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Workflow:   wf,
		SessionMgr: sessionMgr,
		Tokens:     tokens,
		Limiter:    limiter,
		ErrLog:     errLog,
		Log:        logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Wire types                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// Request is the JSON body of both login endpoints.
type Request struct {
	Email string `json:"email"`
	PIN   string `json:"pin"`
}

// Response is returned on a successful login.
type Response struct {
	IsAdmin  bool   `json:"isAdmin"`
	Approved bool   `json:"approved"`
	Email    string `json:"email,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Token    string `json:"token,omitempty"`
	Message  string `json:"message"`
}

const (
	msgUserLogin  = "Login successful."
	msgAdminLogin = "Admin login successful."
)

// HandleLogin handles POST /login.
//
// The admin credential is tried first; an admin gets a session cookie and a
// bearer token. Everyone else must be an approved user with the right PIN.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := reqjson.Decode(w, r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	if !h.allow(w, r, req.Email) {
		return
	}

	res, err := h.Workflow.Login(r.Context(), req.Email, req.PIN)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	h.succeed(w, r, res)
}

// HandleAdminLogin handles POST /api/admin/login. Only the admin credential
// is accepted; any failure is 401.
func (h *Handler) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := reqjson.Decode(w, r, &req); err != nil {
		h.adminFailed(r, "", "bad request")
		h.ErrLog.Respond(w, r, apperr.Auth(approval.MsgBadAdmin))
		return
	}
	if !h.allow(w, r, req.Email) {
		return
	}

	res, err := h.Workflow.AdminLogin(r.Context(), req.Email, req.PIN)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindAuth {
			h.adminFailed(r, req.Email, "bad credentials")
		}
		h.ErrLog.Respond(w, r, err)
		return
	}
	h.succeed(w, r, res)
}

// HandleLogout handles POST /api/admin/logout. It always succeeds; a bearer
// token simply expires.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if h.SessionMgr != nil {
		if err := h.SessionMgr.SignOut(w, r); err != nil {
			h.Log.Warn("logout: save session", zap.Error(err))
		}
	}
	uierrors.WriteMessage(w, http.StatusOK, "Logged out.")
}

func (h *Handler) allow(w http.ResponseWriter, r *http.Request, email string) bool {
	if h.Limiter == nil {
		return true
	}
	ok, msg := h.Limiter.Check(r, email)
	if !ok {
		h.Log.Info("login throttled", zap.String("ip", ratelimit.ClientIP(r)))
		uierrors.WriteMessage(w, http.StatusTooManyRequests, msg)
	}
	return ok
}

func (h *Handler) succeed(w http.ResponseWriter, r *http.Request, res approval.LoginResult) {
	if h.Limiter != nil {
		h.Limiter.ResetEmail(res.Email)
	}

	resp := Response{
		IsAdmin:  res.IsAdmin,
		Approved: res.Approved,
		Email:    res.Email,
		UserID:   res.UserID,
		Message:  msgUserLogin,
	}
	if res.IsAdmin {
		tok, err := auth.StartAdmin(w, r, h.SessionMgr, h.Tokens, res.Email)
		if err != nil {
			h.ErrLog.Respond(w, r, apperr.Dependency("Login failed. Please try again.", err))
			return
		}
		resp.Token = tok
		resp.Message = msgAdminLogin
	}
	h.record(r, res)
	uierrors.WriteJSON(w, http.StatusOK, resp)
}

// record appends to the login history. A failure is logged and the login
// still succeeds.
func (h *Handler) record(r *http.Request, res approval.LoginResult) {
	if h.History == nil {
		return
	}
	role := models.LoginRoleMember
	if res.IsAdmin {
		role = models.LoginRoleAdmin
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeouts.Short())
	defer cancel()
	if err := h.History.CreateFrom(ctx, r, res.Email, role, res.UserID); err != nil {
		h.Log.Warn("failed to record login", zap.String("email", res.Email), zap.Error(err))
	}
}

func (h *Handler) adminFailed(r *http.Request, email, reason string) {
	if h.Audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeouts.Short())
	defer cancel()
	err := h.Audit.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventAdminLoginFailed,
		Actor:         email,
		IP:            ratelimit.ClientIP(r),
		FailureReason: reason,
	})
	if err != nil {
		h.Log.Warn("failed to store audit event", zap.String("event", audit.EventAdminLoginFailed), zap.Error(err))
	}
}
