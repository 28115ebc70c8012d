// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/congregate/internal/app/system/approval"
	"github.com/dalemusser/congregate/internal/app/system/inputval"
	"github.com/dalemusser/congregate/internal/app/system/normalize"
	"github.com/dalemusser/congregate/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the congregation site.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, admin_email, etc.
//   - Environment variables: CONGREGATE_MONGO_URI, CONGREGATE_ADMIN_EMAIL, etc.
//   - Command-line flags: --mongo_uri, --admin_email, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "congregate", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size"},

	{Name: "site_name", Default: "Our Church", Desc: "Site name shown in emails"},

	// Admin credential
	{Name: "admin_email", Default: "", Desc: "Admin login email (required)"},
	{Name: "admin_pin", Default: "", Desc: "Admin login PIN (required)"},
	{Name: "admin_notify_email", Default: "", Desc: "Address notified of new registrations (blank disables)"},

	// PIN issuance
	{Name: "pin_policy", Default: approval.PINFixed, Desc: "PIN issued on approval: 'fixed' or 'random'"},
	{Name: "approval_pin", Default: approval.DefaultApprovalPIN, Desc: "PIN issued under the fixed policy"},
	{Name: "pin_length", Default: 4, Desc: "Digits issued under the random policy"},
	{Name: "pin_hash_cost", Default: 10, Desc: "bcrypt cost for stored PINs"},

	// Sessions
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "congregate-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "12h", Desc: "Admin session lifetime"},

	// Tokens
	{Name: "jwt_secret", Default: "dev-only-jwt-secret-change-me-0123456789", Desc: "HS256 secret for admin bearer tokens"},
	{Name: "jwt_issuer", Default: "congregate", Desc: "Issuer claim for admin tokens"},
	{Name: "jwt_ttl", Default: "12h", Desc: "Admin token lifetime"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@example.com", Desc: "From email address"},
	{Name: "mail_from_name", Default: "Our Church", Desc: "From display name"},
	{Name: "mail_implicit_tls", Default: false, Desc: "Use implicit TLS (port 465)"},

	// Notification delivery
	{Name: "notify_timeout", Default: "10s", Desc: "Per-message send timeout"},
	{Name: "outbox_enabled", Default: true, Desc: "Queue notifications and deliver them in the background"},
	{Name: "outbox_interval", Default: "5s", Desc: "Outbox poll interval"},
	{Name: "outbox_max_attempts", Default: 5, Desc: "Delivery attempts before a message is marked failed"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded photos"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "", Desc: "S3 key prefix"},
	{Name: "storage_s3_endpoint", Default: "", Desc: "Custom S3 endpoint (MinIO, R2)"},
	{Name: "storage_s3_access_key", Default: "", Desc: "S3 access key (blank uses the default AWS chain)"},
	{Name: "storage_s3_secret_key", Default: "", Desc: "S3 secret key"},
	{Name: "storage_s3_public_url", Default: "", Desc: "Base URL photos are served from"},
	{Name: "upload_max_bytes", Default: 10 << 20, Desc: "Largest accepted photo in bytes"},

	// HTTP surface
	{Name: "cors_allowed_origins", Default: "*", Desc: "Comma-separated CORS origins"},
	{Name: "trusted_proxies", Default: "", Desc: "Comma-separated proxy IPs or CIDRs allowed to set the client address"},
	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts per address per minute"},
	{Name: "login_email_rate_limit", Default: 10, Desc: "Login attempts per account per five minutes"},
	{Name: "register_rate_limit", Default: 10, Desc: "Registrations per address per minute"},

	{Name: "seed_events", Default: true, Desc: "Insert the default events when the collection is empty"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (CONGREGATE_* for the app) and flags, merged with
// precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CONGREGATE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SiteName: appValues.String("site_name"),

		AdminEmail:       appValues.String("admin_email"),
		AdminPIN:         appValues.String("admin_pin"),
		AdminNotifyEmail: appValues.String("admin_notify_email"),

		PINPolicy:   strings.ToLower(strings.TrimSpace(appValues.String("pin_policy"))),
		ApprovalPIN: appValues.String("approval_pin"),
		PINLength:   appValues.Int("pin_length"),
		PINHashCost: appValues.Int("pin_hash_cost"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 12*time.Hour),

		JWTSecret: appValues.String("jwt_secret"),
		JWTIssuer: appValues.String("jwt_issuer"),
		JWTTTL:    appValues.Duration("jwt_ttl", 12*time.Hour),

		// Email/SMTP
		MailSMTPHost:    appValues.String("mail_smtp_host"),
		MailSMTPPort:    appValues.Int("mail_smtp_port"),
		MailSMTPUser:    appValues.String("mail_smtp_user"),
		MailSMTPPass:    appValues.String("mail_smtp_pass"),
		MailFrom:        appValues.String("mail_from"),
		MailFromName:    appValues.String("mail_from_name"),
		MailImplicitTLS: appValues.Bool("mail_implicit_tls"),

		NotifyTimeout:     appValues.Duration("notify_timeout", 10*time.Second),
		OutboxEnabled:     appValues.Bool("outbox_enabled"),
		OutboxInterval:    appValues.Duration("outbox_interval", 5*time.Second),
		OutboxMaxAttempts: appValues.Int("outbox_max_attempts"),

		// File storage
		StorageType:        strings.ToLower(strings.TrimSpace(appValues.String("storage_type"))),
		StorageLocalPath:   appValues.String("storage_local_path"),
		StorageLocalURL:    appValues.String("storage_local_url"),
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageS3Endpoint:  appValues.String("storage_s3_endpoint"),
		StorageS3AccessKey: appValues.String("storage_s3_access_key"),
		StorageS3SecretKey: appValues.String("storage_s3_secret_key"),
		StorageS3PublicURL: appValues.String("storage_s3_public_url"),
		UploadMaxBytes:     int64(appValues.Int("upload_max_bytes")),

		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),
		TrustedProxies:     splitList(appValues.String("trusted_proxies")),
		LoginRateLimit:     appValues.Int("login_rate_limit"),
		LoginEmailLimit:    appValues.Int("login_email_rate_limit"),
		RegisterRateLimit:  appValues.Int("register_rate_limit"),

		SeedEvents: appValues.Bool("seed_events"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	var problems []error
	if !inputval.IsValidEmail(appCfg.AdminEmail) {
		problems = append(problems, errors.New("admin_email must be set to a valid address"))
	}
	if !inputval.IsValidPIN(normalize.PIN(appCfg.AdminPIN)) {
		problems = append(problems, errors.New("admin_pin must be 4 to 8 digits"))
	}
	if appCfg.AdminNotifyEmail != "" && !inputval.IsValidEmail(appCfg.AdminNotifyEmail) {
		problems = append(problems, errors.New("admin_notify_email is not a valid address"))
	}

	switch appCfg.PINPolicy {
	case approval.PINFixed:
		if !inputval.IsValidPIN(appCfg.ApprovalPIN) {
			problems = append(problems, errors.New("approval_pin must be 4 to 8 digits"))
		}
	case approval.PINRandom:
		if appCfg.PINLength < 4 || appCfg.PINLength > 8 {
			problems = append(problems, errors.New("pin_length must be between 4 and 8"))
		}
	default:
		problems = append(problems, fmt.Errorf("pin_policy must be %q or %q, got %q", approval.PINFixed, approval.PINRandom, appCfg.PINPolicy))
	}

	switch appCfg.StorageType {
	case "local":
		if appCfg.StorageLocalPath == "" {
			problems = append(problems, errors.New("storage_local_path must be set for local storage"))
		}
	case "s3":
		if appCfg.StorageS3Bucket == "" || appCfg.StorageS3Region == "" {
			problems = append(problems, errors.New("storage_s3_bucket and storage_s3_region must be set for s3 storage"))
		}
	default:
		problems = append(problems, fmt.Errorf("storage_type must be 'local' or 's3', got %q", appCfg.StorageType))
	}

	if _, err := ratelimit.ParseTrustedProxies(appCfg.TrustedProxies); err != nil {
		problems = append(problems, err)
	}

	if len(appCfg.JWTSecret) < 16 {
		problems = append(problems, errors.New("jwt_secret must be at least 16 characters"))
	}
	if coreCfg != nil && coreCfg.Env == "prod" {
		if strings.HasPrefix(appCfg.SessionKey, "dev-only") || strings.HasPrefix(appCfg.JWTSecret, "dev-only") {
			problems = append(problems, errors.New("session_key and jwt_secret must be changed in production"))
		}
	}

	if err := errors.Join(problems...); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
