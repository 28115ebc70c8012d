// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, log level); everything specific to
// the congregation site lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Site identity used in notification emails
	SiteName string

	// Admin credential, seeded into the admins collection at startup
	AdminEmail       string
	AdminPIN         string
	AdminNotifyEmail string // receives new-registration notices; blank disables them

	// PIN issuance on approval
	PINPolicy   string // "fixed" or "random"
	ApprovalPIN string // PIN issued under the fixed policy
	PINLength   int    // digits issued under the random policy
	PINHashCost int    // bcrypt cost

	// Admin browser sessions
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// Admin bearer tokens
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	// Email/SMTP configuration
	MailSMTPHost    string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort    int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser    string // SMTP username (empty for Mailpit)
	MailSMTPPass    string // SMTP password
	MailFrom        string // From email address
	MailFromName    string // From display name
	MailImplicitTLS bool   // TLS from the first byte (port 465)

	// Notification delivery
	NotifyTimeout     time.Duration // per-message send bound
	OutboxEnabled     bool          // false sends inline instead of queueing
	OutboxInterval    time.Duration
	OutboxMaxAttempts int

	// File storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files")

	// S3 configuration (only used if StorageType is "s3")
	StorageS3Region    string
	StorageS3Bucket    string
	StorageS3Prefix    string // Key prefix (e.g., "gallery/")
	StorageS3Endpoint  string // Custom endpoint for S3-compatible stores (MinIO, R2)
	StorageS3AccessKey string // Static credentials; blank uses the default AWS chain
	StorageS3SecretKey string
	StorageS3PublicURL string // Base URL photos are served from

	UploadMaxBytes int64

	// HTTP surface
	CORSAllowedOrigins []string
	TrustedProxies     []string
	LoginRateLimit     int // login attempts per address per minute
	LoginEmailLimit    int // login attempts per account per five minutes
	RegisterRateLimit  int // registrations per address per minute

	SeedEvents bool // insert the default events into an empty collection
}
