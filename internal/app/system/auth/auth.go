package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session keys                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAdminKey    = "is_admin"
	adminEmailKey = "admin_email"
	signedInAtKey = "signed_in_at"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-admin helper                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// Admin is the authenticated admin injected into r.Context().
type Admin struct {
	Email string
	Via   string // "session" or "token"
}

type ctxKey string

const currentAdminKey ctxKey = "currentAdmin"

// CurrentAdmin returns the admin and a "found?" flag.
func CurrentAdmin(r *http.Request) (*Admin, bool) {
	a, ok := r.Context().Value(currentAdminKey).(*Admin)
	return a, ok
}

// WithAdmin returns r carrying a as the current admin.
func WithAdmin(r *http.Request, a *Admin) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentAdminKey, a))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager keeps the admin sign-in in a signed gorilla cookie.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager builds the cookie store.
//
// In production (secure=true) cookies are Secure + SameSite=None so the admin
// page can call the API cross-site over HTTPS. In local dev over http, use
// secure=false so cookies are accepted. An empty key is only allowed outside
// production and is replaced by a random per-process key.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		if secure {
			return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
		}
		sessionKey = string(securecookie.GenerateRandomKey(32))
		logger.Warn("session key not set; using a random key, sessions will not survive restarts")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "congregate-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts
	store.MaxAge(opts.MaxAge)

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SignIn records the admin in the session cookie.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, email string) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values[isAdminKey] = true
	sess.Values[adminEmailKey] = email
	sess.Values[signedInAtKey] = time.Now().UTC().Unix()
	return sess.Save(r, w)
}

// SignOut expires the session cookie.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// StartAdmin signs email into the session cookie and returns a bearer
// token for API clients. Either half may be nil.
func StartAdmin(w http.ResponseWriter, r *http.Request, sessions *SessionManager, tokens *Tokens, email string) (string, error) {
	if sessions != nil {
		if err := sessions.SignIn(w, r, email); err != nil {
			return "", fmt.Errorf("save session: %w", err)
		}
	}
	if tokens == nil {
		return "", nil
	}
	tok, err := tokens.Issue(email)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return tok, nil
}

// admin returns the admin stored in the session, if any. A cookie that fails
// verification is treated as absent.
func (m *SessionManager) admin(r *http.Request) (*Admin, bool) {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		var cerr securecookie.Error
		if errors.As(err, &cerr) && cerr.IsDecode() {
			m.log.Debug("discarding undecodable session cookie", zap.Error(err))
		}
		return nil, false
	}
	if ok, _ := sess.Values[isAdminKey].(bool); !ok {
		return nil, false
	}
	email, _ := sess.Values[adminEmailKey].(string)
	return &Admin{Email: email, Via: "session"}, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// Guard authenticates admin requests from a bearer token or the session cookie.
type Guard struct {
	sessions *SessionManager
	tokens   *Tokens
	log      *zap.Logger
}

func NewGuard(sessions *SessionManager, tokens *Tokens, logger *zap.Logger) *Guard {
	return &Guard{sessions: sessions, tokens: tokens, log: logger}
}

// RequireAdmin rejects the request with 401 unless an admin is authenticated.
// A present but invalid bearer token is rejected even if a session exists.
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw, ok := bearerToken(r); ok {
			claims, err := g.tokens.Parse(raw)
			if err != nil {
				g.log.Debug("rejected admin token", zap.Error(err))
				writeUnauthorized(w, "Invalid or expired token.")
				return
			}
			next.ServeHTTP(w, WithAdmin(r, &Admin{Email: claims.Subject, Via: "token"}))
			return
		}

		if g.sessions != nil {
			if a, ok := g.sessions.admin(r); ok {
				next.ServeHTTP(w, WithAdmin(r, a))
				return
			}
		}

		writeUnauthorized(w, "Access denied. Admin sign-in required.")
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(token), true
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
