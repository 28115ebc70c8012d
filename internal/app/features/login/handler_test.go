package login_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	uierrors "github.com/dalemusser/congregate/internal/app/features/errors"
	"github.com/dalemusser/congregate/internal/app/features/login"
	"github.com/dalemusser/congregate/internal/app/store/audit"
	"github.com/dalemusser/congregate/internal/app/system/approval"
	"github.com/dalemusser/congregate/internal/app/system/ratelimit"
	"github.com/dalemusser/congregate/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newHandler(app *testutil.App, limiter *ratelimit.LoginLimiter) *login.Handler {
	logger := zap.NewNop()
	return login.NewHandler(app.Workflow, app.Sessions, app.Tokens, limiter, uierrors.NewErrorLogger(logger), logger)
}

func newRouter(h *login.Handler) http.Handler {
	r := chi.NewRouter()
	r.Mount("/login", login.Routes(h))
	r.Route("/api/admin", func(r chi.Router) { login.AdminRoutes(r, h) })
	return r
}

func do(t *testing.T, h http.Handler, target string, body any) *testutil.ResponseRecorder {
	t.Helper()
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.NewJSONRequest(t, "POST", target, body))
	return rec
}

func creds(email, pin string) map[string]string {
	return map[string]string{"email": email, "pin": pin}
}

// approvedUser registers and approves email, returning the issued PIN.
func approvedUser(t *testing.T, app *testutil.App, email string) string {
	t.Helper()
	ctx := context.Background()
	if _, err := app.Workflow.Register(ctx, email); err != nil {
		t.Fatalf("Register: %v", err)
	}
	u, err := app.Users.GetByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	pin, err := app.Workflow.Approve(ctx, u.ID.Hex())
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	return pin
}

func TestLogin_ApprovedUser(t *testing.T) {
	app := testutil.NewApp(t)
	pin := approvedUser(t, app, "a@x.com")
	h := newRouter(newHandler(app, nil))

	rec := do(t, h, "/login", creds("a@x.com", pin))
	rec.AssertStatus(t, http.StatusOK)

	var resp login.Response
	rec.DecodeJSON(t, &resp)
	if resp.IsAdmin || !resp.Approved || resp.Email != "a@x.com" || resp.Token != "" {
		t.Errorf("unexpected response %+v", resp)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("user login must not set an admin session")
	}
}

func TestLogin_Outcomes(t *testing.T) {
	app := testutil.NewApp(t)
	approvedUser(t, app, "ok@x.com")
	if _, err := app.Workflow.Register(context.Background(), "pending@x.com"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	h := newRouter(newHandler(app, nil))

	tests := []struct {
		name   string
		body   map[string]string
		status int
		msg    string
	}{
		{"missing pin", creds("ok@x.com", ""), http.StatusBadRequest, approval.MsgCredsRequired},
		{"unknown email", creds("nobody@x.com", "1153"), http.StatusNotFound, approval.MsgUserNotFound},
		{"pending right pin", creds("pending@x.com", "1153"), http.StatusForbidden, approval.MsgNotApproved},
		{"pending wrong pin", creds("pending@x.com", "0000"), http.StatusForbidden, approval.MsgNotApproved},
		{"wrong pin", creds("ok@x.com", "0000"), http.StatusUnauthorized, approval.MsgBadCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, "/login", tt.body)
			rec.AssertStatus(t, tt.status)
			rec.AssertContains(t, tt.msg)
		})
	}
}

func TestLogin_AdminGetsTokenAndSession(t *testing.T) {
	app := testutil.NewApp(t)
	h := newRouter(newHandler(app, nil))

	rec := do(t, h, "/login", creds(testutil.AdminEmail, testutil.AdminPIN))
	rec.AssertStatus(t, http.StatusOK)

	var resp login.Response
	rec.DecodeJSON(t, &resp)
	if !resp.IsAdmin || resp.Token == "" {
		t.Fatalf("expected admin with token, got %+v", resp)
	}
	if _, err := app.Tokens.Parse(resp.Token); err != nil {
		t.Errorf("token does not verify: %v", err)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie")
	}
	if app.Users.Calls() != 0 {
		t.Errorf("admin login touched the user store %d times", app.Users.Calls())
	}
}

func TestAdminLogin(t *testing.T) {
	app := testutil.NewApp(t)
	approvedUser(t, app, "a@x.com")
	h := newRouter(newHandler(app, nil))

	rec := do(t, h, "/api/admin/login", creds(testutil.AdminEmail, testutil.AdminPIN))
	rec.AssertStatus(t, http.StatusOK)
	var resp login.Response
	rec.DecodeJSON(t, &resp)
	if !resp.IsAdmin || resp.Token == "" {
		t.Errorf("unexpected response %+v", resp)
	}

	// A regular user's credentials are not admin credentials.
	rec = do(t, h, "/api/admin/login", creds("a@x.com", approval.DefaultApprovalPIN))
	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, approval.MsgBadAdmin)

	rec = do(t, h, "/api/admin/login", creds(testutil.AdminEmail, "0000"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestAdminLogout_ExpiresCookie(t *testing.T) {
	app := testutil.NewApp(t)
	h := newRouter(newHandler(app, nil))

	rec := do(t, h, "/api/admin/logout", map[string]string{})
	rec.AssertStatus(t, http.StatusOK)

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 || cookies[0].MaxAge >= 0 {
		t.Errorf("expected an expiring cookie, got %+v", cookies)
	}
}

func TestLogin_Throttled(t *testing.T) {
	app := testutil.NewApp(t)
	limiter := ratelimit.NewLoginLimiter(100, 2)
	defer limiter.Close()
	h := newRouter(newHandler(app, limiter))

	for i := 0; i < 2; i++ {
		do(t, h, "/login", creds(testutil.AdminEmail, "0000")).AssertStatus(t, http.StatusUnauthorized)
	}
	do(t, h, "/login", creds(testutil.AdminEmail, testutil.AdminPIN)).AssertStatus(t, http.StatusTooManyRequests)
}

type history struct {
	mu    sync.Mutex
	roles []string
	err   error
}

func (h *history) CreateFrom(ctx context.Context, r *http.Request, email, role, userID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.roles = append(h.roles, email+"/"+role)
	return h.err
}

func TestLogin_RecordsHistory(t *testing.T) {
	app := testutil.NewApp(t)
	pin := approvedUser(t, app, "a@x.com")
	hist := &history{}
	lh := newHandler(app, nil)
	lh.History = hist
	h := newRouter(lh)

	do(t, h, "/login", creds("a@x.com", pin)).AssertStatus(t, http.StatusOK)
	do(t, h, "/api/admin/login", creds(testutil.AdminEmail, testutil.AdminPIN)).AssertStatus(t, http.StatusOK)
	do(t, h, "/login", creds("a@x.com", "0000")).AssertStatus(t, http.StatusUnauthorized)

	want := []string{"a@x.com/member", testutil.AdminEmail + "/admin"}
	if len(hist.roles) != len(want) || hist.roles[0] != want[0] || hist.roles[1] != want[1] {
		t.Errorf("history = %v, want %v", hist.roles, want)
	}
}

func TestLogin_HistoryFailureDoesNotBlockLogin(t *testing.T) {
	app := testutil.NewApp(t)
	pin := approvedUser(t, app, "a@x.com")
	lh := newHandler(app, nil)
	lh.History = &history{err: errors.New("mongo down")}

	do(t, newRouter(lh), "/login", creds("a@x.com", pin)).AssertStatus(t, http.StatusOK)
}

type auditSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *auditSink) Log(ctx context.Context, e audit.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
	return nil
}

func TestAdminLogin_FailureIsAudited(t *testing.T) {
	app := testutil.NewApp(t)
	sink := &auditSink{}
	lh := newHandler(app, nil)
	lh.Audit = sink
	h := newRouter(lh)

	do(t, h, "/api/admin/login", creds(testutil.AdminEmail, "0000")).AssertStatus(t, http.StatusUnauthorized)
	do(t, h, "/api/admin/login", creds(testutil.AdminEmail, testutil.AdminPIN)).AssertStatus(t, http.StatusOK)

	if len(sink.events) != 1 {
		t.Fatalf("audit events = %d, want 1", len(sink.events))
	}
	ev := sink.events[0]
	if ev.EventType != audit.EventAdminLoginFailed || ev.Actor != testutil.AdminEmail || ev.Success {
		t.Errorf("unexpected audit event %+v", ev)
	}
}
