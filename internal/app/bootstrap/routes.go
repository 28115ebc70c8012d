// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	adminfeature "github.com/dalemusser/congregate/internal/app/features/admin"
	errorsfeature "github.com/dalemusser/congregate/internal/app/features/errors"
	eventsfeature "github.com/dalemusser/congregate/internal/app/features/events"
	galleryfeature "github.com/dalemusser/congregate/internal/app/features/gallery"
	healthfeature "github.com/dalemusser/congregate/internal/app/features/health"
	loginfeature "github.com/dalemusser/congregate/internal/app/features/login"
	presencefeature "github.com/dalemusser/congregate/internal/app/features/presence"
	registerfeature "github.com/dalemusser/congregate/internal/app/features/register"
	adminstore "github.com/dalemusser/congregate/internal/app/store/admins"
	auditstore "github.com/dalemusser/congregate/internal/app/store/audit"
	eventstore "github.com/dalemusser/congregate/internal/app/store/events"
	loginstore "github.com/dalemusser/congregate/internal/app/store/logins"
	outboxstore "github.com/dalemusser/congregate/internal/app/store/outbox"
	photostore "github.com/dalemusser/congregate/internal/app/store/photos"
	userstore "github.com/dalemusser/congregate/internal/app/store/users"
	"github.com/dalemusser/congregate/internal/app/system/approval"
	"github.com/dalemusser/congregate/internal/app/system/auth"
	"github.com/dalemusser/congregate/internal/app/system/filestore"
	"github.com/dalemusser/congregate/internal/app/system/gallery"
	"github.com/dalemusser/congregate/internal/app/system/notify"
	"github.com/dalemusser/congregate/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It builds the stores, the approval and
// gallery services, admin authentication, and mounts the feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	tokens, err := auth.NewTokens(appCfg.JWTSecret, appCfg.JWTIssuer, appCfg.JWTTTL)
	if err != nil {
		logger.Error("token issuer init failed", zap.Error(err))
		return nil, err
	}
	guard := auth.NewGuard(sessionMgr, tokens, logger)

	files, err := newFileStore(appCfg)
	if err != nil {
		logger.Error("file storage init failed", zap.String("storage_type", appCfg.StorageType), zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	workflow := approval.New(
		userstore.New(db),
		adminstore.New(db),
		newNotifier(appCfg, deps, logger),
		approval.Config{
			SiteName:         appCfg.SiteName,
			AdminNotifyEmail: appCfg.AdminNotifyEmail,
			PINPolicy:        appCfg.PINPolicy,
			ApprovalPIN:      appCfg.ApprovalPIN,
			PINLength:        appCfg.PINLength,
			HashCost:         appCfg.PINHashCost,
		},
		logger,
	)
	gallerySvc := gallery.New(photostore.New(db), files, appCfg.UploadMaxBytes, logger)
	events := eventstore.New(db)

	loginLimiter := ratelimit.NewLoginLimiter(appCfg.LoginRateLimit, appCfg.LoginEmailLimit)
	registerLimiter := ratelimit.New(appCfg.RegisterRateLimit, time.Minute)
	if deps.Background != nil {
		deps.Background.LoginLimiter = loginLimiter
		deps.Background.RegisterLimit = registerLimiter
	}

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	trusted, err := ratelimit.ParseTrustedProxies(appCfg.TrustedProxies)
	if err != nil {
		logger.Error("trusted proxies invalid", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(ratelimit.TrustProxies(trusted))
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(corsOptions(appCfg.CORSAllowedOrigins)))
	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Uploaded photos, when stored on local disk
	if appCfg.StorageType == "local" {
		prefix := "/" + strings.Trim(appCfg.StorageLocalURL, "/")
		r.Handle(prefix+"/*", fileserver.Handler(prefix, appCfg.StorageLocalPath))
	}

	// Registration and login
	registerHandler := registerfeature.NewHandler(workflow, errLog, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler, ratelimit.PerIP(registerLimiter)))

	logins := loginstore.New(db)
	auditTrail := auditstore.New(db)
	loginHandler := loginfeature.NewHandler(workflow, sessionMgr, tokens, loginLimiter, errLog, logger)
	loginHandler.History = logins
	loginHandler.Audit = auditTrail
	r.Mount("/login", loginfeature.Routes(loginHandler))

	// Admin session endpoints plus the guarded moderation API
	adminHandler := adminfeature.NewHandler(workflow, gallerySvc, events, errLog, logger)
	adminHandler.Logins = logins
	adminHandler.Audit = auditTrail
	r.Route("/api/admin", func(r chi.Router) {
		loginfeature.AdminRoutes(r, loginHandler)
		r.Mount("/", adminfeature.Routes(adminHandler, guard))
	})

	// Member presence
	presenceHandler := presencefeature.NewHandler(workflow, errLog, logger)
	r.Mount("/api/users", presencefeature.Routes(presenceHandler))

	// Gallery and events
	galleryHandler := galleryfeature.NewHandler(gallerySvc, errLog, logger)
	r.Mount("/api/gallery", galleryfeature.Routes(galleryHandler, guard))

	eventsHandler := eventsfeature.NewHandler(events, errLog, logger)
	r.Mount("/api/events", eventsfeature.Routes(eventsHandler))

	return r, nil
}

func newFileStore(appCfg AppConfig) (filestore.Store, error) {
	switch appCfg.StorageType {
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return filestore.NewS3(ctx, filestore.S3Config{
			Region:    appCfg.StorageS3Region,
			Bucket:    appCfg.StorageS3Bucket,
			Prefix:    appCfg.StorageS3Prefix,
			Endpoint:  appCfg.StorageS3Endpoint,
			AccessKey: appCfg.StorageS3AccessKey,
			SecretKey: appCfg.StorageS3SecretKey,
			PublicURL: appCfg.StorageS3PublicURL,
		})
	case "local":
		return filestore.NewLocal(appCfg.StorageLocalPath, appCfg.StorageLocalURL)
	default:
		return nil, fmt.Errorf("unknown storage type %q", appCfg.StorageType)
	}
}

// newNotifier queues through the outbox when the delivery worker is enabled
// and otherwise sends inline, bounded by the notify timeout.
func newNotifier(appCfg AppConfig, deps DBDeps, logger *zap.Logger) notify.Notifier {
	if appCfg.OutboxEnabled {
		return notify.NewOutbox(outboxstore.New(deps.MongoDatabase))
	}
	return notify.NewDirect(newMailer(appCfg, logger), appCfg.NotifyTimeout, logger)
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	}
}
