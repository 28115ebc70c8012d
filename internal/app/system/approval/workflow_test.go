package approval_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/congregate/internal/app/system/apperr"
	"github.com/dalemusser/congregate/internal/app/system/approval"
	"github.com/dalemusser/congregate/internal/app/system/notify"
	"github.com/dalemusser/congregate/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type env struct {
	users    *testutil.UserStore
	admins   *testutil.AdminStore
	notifier *testutil.Notifier
	wf       *approval.Workflow
}

func newEnv(t *testing.T, cfg approval.Config) *env {
	t.Helper()
	e := &env{
		users:    testutil.NewUserStore(),
		admins:   testutil.NewAdminStore(),
		notifier: &testutil.Notifier{},
	}
	cfg.HashCost = bcrypt.MinCost
	if cfg.SiteName == "" {
		cfg.SiteName = "Grace Chapel"
	}
	e.wf = approval.New(e.users, e.admins, e.notifier, cfg, zap.NewNop())
	return e
}

func (e *env) addAdmin(t *testing.T, email, pin string) {
	t.Helper()
	h, err := approval.HashPIN(pin, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPIN: %v", err)
	}
	e.admins.Put(email, h)
}

func (e *env) register(t *testing.T, email string) string {
	t.Helper()
	if _, err := e.wf.Register(context.Background(), email); err != nil {
		t.Fatalf("Register(%q): %v", email, err)
	}
	u, err := e.users.GetByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("registered user missing: %v", err)
	}
	return u.ID.Hex()
}

func TestRegister_CreatesPendingUser(t *testing.T) {
	e := newEnv(t, approval.Config{AdminNotifyEmail: "office@church.org"})

	msg, err := e.wf.Register(context.Background(), "  A@X.com ")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if msg != approval.MsgRegistered {
		t.Errorf("message = %q", msg)
	}

	all := e.users.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 user, got %d", len(all))
	}
	u := all[0]
	if u.Email != "a@x.com" || u.Approved || u.PINHash != "" {
		t.Errorf("unexpected pending user %+v", u)
	}

	msgs := e.notifier.Messages()
	if len(msgs) != 1 || msgs[0].Kind != notify.KindRegistration || msgs[0].Email.To != "office@church.org" {
		t.Errorf("expected one registration notice to the office, got %+v", msgs)
	}
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t, approval.Config{})

	for _, email := range []string{"", "   ", "not-an-email", "a@", "a b@x.com"} {
		_, err := e.wf.Register(context.Background(), email)
		if !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("Register(%q): expected validation error, got %v", email, err)
		}
	}
	if e.users.Len() != 0 {
		t.Error("invalid registrations must not create users")
	}
}

func TestRegister_DuplicateIsConflict(t *testing.T) {
	e := newEnv(t, approval.Config{})
	e.register(t, "a@x.com")

	_, err := e.wf.Register(context.Background(), "A@X.COM")
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if apperr.KindOf(err).Status() != 400 {
		t.Errorf("conflict should map to 400")
	}
	if e.users.Len() != 1 {
		t.Errorf("expected exactly one record, got %d", e.users.Len())
	}
}

func TestRegister_AdminEmailIsConflict(t *testing.T) {
	e := newEnv(t, approval.Config{AdminNotifyEmail: "office@church.org"})
	e.addAdmin(t, "admin@church.org", "2468")

	_, err := e.wf.Register(context.Background(), " Admin@Church.org ")
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if e.users.Len() != 0 {
		t.Errorf("no member record should be stored, got %d", e.users.Len())
	}
	if len(e.notifier.Messages()) != 0 {
		t.Error("no registration notice should be sent")
	}
}

func TestRegister_NotificationFailureKeepsUser(t *testing.T) {
	e := newEnv(t, approval.Config{AdminNotifyEmail: "office@church.org"})
	e.notifier.Err = errors.New("smtp down")

	if _, err := e.wf.Register(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("notification failure must not fail registration: %v", err)
	}
	if e.users.Len() != 1 {
		t.Error("user should still be stored")
	}
}

func TestRegister_StoreFailureIsDependency(t *testing.T) {
	e := newEnv(t, approval.Config{})
	e.users.Fail = true

	_, err := e.wf.Register(context.Background(), "a@x.com")
	if apperr.KindOf(err) != apperr.KindDependency {
		t.Errorf("expected dependency error, got %v", err)
	}
	if apperr.KindOf(err).Status() != 500 {
		t.Error("dependency should map to 500")
	}
}

func TestLogin_BeforeApproval_NotApprovedRegardlessOfPIN(t *testing.T) {
	e := newEnv(t, approval.Config{})
	e.register(t, "a@x.com")

	for _, pin := range []string{"1153", "0000", "1234"} {
		_, err := e.wf.Login(context.Background(), "a@x.com", pin)
		if !apperr.IsKind(err, apperr.KindForbidden) {
			t.Errorf("pin %q: expected not approved, got %v", pin, err)
		}
		if apperr.MessageOf(err) != approval.MsgNotApproved {
			t.Errorf("pin %q: message = %q", pin, apperr.MessageOf(err))
		}
	}
}

func TestApprove_UnknownID_NotFoundAndUnchanged(t *testing.T) {
	e := newEnv(t, approval.Config{})
	e.register(t, "a@x.com")
	before := e.users.All()

	_, err := e.wf.Approve(context.Background(), primitive.NewObjectID().Hex())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if apperr.KindOf(err).Status() != 404 {
		t.Error("not found should map to 404")
	}

	after := e.users.All()
	if len(after) != len(before) || after[0].Approved != before[0].Approved {
		t.Error("store changed after failed approve")
	}
}

func TestApprove_MalformedID(t *testing.T) {
	e := newEnv(t, approval.Config{})

	_, err := e.wf.Approve(context.Background(), "xyz")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestApprove_FixedPIN_NotifiesUser(t *testing.T) {
	e := newEnv(t, approval.Config{})
	id := e.register(t, "a@x.com")

	pin, err := e.wf.Approve(context.Background(), id)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if pin != approval.DefaultApprovalPIN {
		t.Errorf("pin = %q, want %q", pin, approval.DefaultApprovalPIN)
	}

	u := e.users.All()[0]
	if !u.Approved {
		t.Error("user should be approved")
	}
	if u.PINHash == pin || !approval.CheckPIN(u.PINHash, pin) {
		t.Error("store should hold a hash of the issued PIN")
	}

	var approvalMsgs int
	for _, m := range e.notifier.Messages() {
		if m.Kind == notify.KindApproval && m.Email.To == "a@x.com" {
			approvalMsgs++
		}
	}
	if approvalMsgs != 1 {
		t.Errorf("expected one approval notice, got %d", approvalMsgs)
	}
}

func TestApprove_RandomPIN(t *testing.T) {
	e := newEnv(t, approval.Config{PINPolicy: approval.PINRandom, PINLength: 6})
	id := e.register(t, "a@x.com")

	pin, err := e.wf.Approve(context.Background(), id)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if len(pin) != 6 {
		t.Errorf("pin %q should have 6 digits", pin)
	}
	if _, err := e.wf.Login(context.Background(), "a@x.com", pin); err != nil {
		t.Errorf("login with issued random pin failed: %v", err)
	}
}

func TestReject_ThenLogin_NotFound(t *testing.T) {
	e := newEnv(t, approval.Config{})
	id := e.register(t, "a@x.com")

	if err := e.wf.Reject(context.Background(), id); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	_, err := e.wf.Login(context.Background(), "a@x.com", "1153")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found after reject, got %v", err)
	}
	if apperr.IsKind(err, apperr.KindForbidden) {
		t.Error("rejected user must not be reported as not approved")
	}
}

func TestReject_ApprovedUser(t *testing.T) {
	e := newEnv(t, approval.Config{})
	id := e.register(t, "a@x.com")
	if _, err := e.wf.Approve(context.Background(), id); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	if err := e.wf.Reject(context.Background(), id); err != nil {
		t.Fatalf("Reject of approved user failed: %v", err)
	}
	if e.users.Len() != 0 {
		t.Error("user should be deleted")
	}
}

func TestReject_UnknownID(t *testing.T) {
	e := newEnv(t, approval.Config{})

	err := e.wf.Reject(context.Background(), primitive.NewObjectID().Hex())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestLogin_Admin_NeverTouchesUserStore(t *testing.T) {
	e := newEnv(t, approval.Config{})
	e.addAdmin(t, "admin@church.org", "9876")

	res, err := e.wf.Login(context.Background(), "Admin@Church.org", "9876")
	if err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	if !res.IsAdmin {
		t.Error("expected admin result")
	}
	if e.users.Calls() != 0 {
		t.Errorf("admin login made %d user store calls", e.users.Calls())
	}
}

func TestLogin_AdminWrongPIN(t *testing.T) {
	e := newEnv(t, approval.Config{})
	e.addAdmin(t, "admin@church.org", "9876")

	_, err := e.wf.Login(context.Background(), "admin@church.org", "0000")
	if !apperr.IsKind(err, apperr.KindAuth) {
		t.Errorf("expected auth error, got %v", err)
	}
	if e.users.Calls() != 0 {
		t.Error("admin login attempt should not read the user store")
	}
}

func TestLogin_WrongPIN(t *testing.T) {
	e := newEnv(t, approval.Config{})
	id := e.register(t, "a@x.com")
	e.wf.Approve(context.Background(), id)

	_, err := e.wf.Login(context.Background(), "a@x.com", "0000")
	if !apperr.IsKind(err, apperr.KindAuth) {
		t.Errorf("expected auth error, got %v", err)
	}
	if apperr.KindOf(err).Status() != 401 {
		t.Error("auth should map to 401")
	}
}

func TestLogin_MissingFields(t *testing.T) {
	e := newEnv(t, approval.Config{})

	for _, tc := range [][2]string{{"", "1153"}, {"a@x.com", ""}, {" ", " "}} {
		_, err := e.wf.Login(context.Background(), tc[0], tc[1])
		if !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("Login(%q,%q): expected validation error, got %v", tc[0], tc[1], err)
		}
	}
}

func TestEndToEnd_RegisterApproveLogin(t *testing.T) {
	e := newEnv(t, approval.Config{})
	ctx := context.Background()

	if _, err := e.wf.Register(ctx, "a@x.com"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	pending, err := e.wf.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one pending user, got %d", len(pending))
	}

	pin, err := e.wf.Approve(ctx, pending[0].ID.Hex())
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if pin != "1153" {
		t.Fatalf("pin = %q, want 1153", pin)
	}

	res, err := e.wf.Login(ctx, "a@x.com", "1153")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.IsAdmin || !res.Approved || res.Email != "a@x.com" {
		t.Errorf("unexpected login result %+v", res)
	}

	stats, err := e.wf.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalUsers != 1 || stats.OnlineUsers != 1 {
		t.Errorf("stats = %+v, want 1 total and 1 online after login", stats)
	}

	pending, _ = e.wf.ListPending(ctx)
	if len(pending) != 0 {
		t.Error("approved user should leave the pending list")
	}
}

func TestAdminLogin_RejectsUsers(t *testing.T) {
	e := newEnv(t, approval.Config{})
	id := e.register(t, "a@x.com")
	e.wf.Approve(context.Background(), id)

	_, err := e.wf.AdminLogin(context.Background(), "a@x.com", "1153")
	if !apperr.IsKind(err, apperr.KindAuth) {
		t.Errorf("expected auth error for non-admin, got %v", err)
	}
}

func TestSetOnline(t *testing.T) {
	e := newEnv(t, approval.Config{})
	id := e.register(t, "a@x.com")
	ctx := context.Background()

	if err := e.wf.SetOnline(ctx, id, true); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}
	if !e.users.All()[0].Online {
		t.Error("user should be online")
	}
	if err := e.wf.SetOnline(ctx, "bad", true); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if err := e.wf.SetOnline(ctx, primitive.NewObjectID().Hex(), false); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
