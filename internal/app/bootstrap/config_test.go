package bootstrap

import (
	"strings"
	"testing"

	"github.com/dalemusser/waffle/config"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		AdminEmail:       "admin@church.org",
		AdminPIN:         "2468",
		PINPolicy:        "fixed",
		ApprovalPIN:      "1153",
		PINLength:        4,
		StorageType:      "local",
		StorageLocalPath: "./uploads",
		SessionKey:       "a-long-random-session-key-for-tests",
		JWTSecret:        "a-long-random-jwt-secret-for-tests",
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		env     string
		wantErr string
	}{
		{name: "valid", mutate: func(*AppConfig) {}},
		{name: "bad mongo uri", mutate: func(c *AppConfig) { c.MongoURI = "postgres://x" }, wantErr: "MongoDB URI"},
		{name: "missing admin email", mutate: func(c *AppConfig) { c.AdminEmail = "" }, wantErr: "admin_email"},
		{name: "missing admin pin", mutate: func(c *AppConfig) { c.AdminPIN = " " }, wantErr: "admin_pin"},
		{name: "non-digit admin pin", mutate: func(c *AppConfig) { c.AdminPIN = "secret" }, wantErr: "admin_pin"},
		{name: "padded admin pin", mutate: func(c *AppConfig) { c.AdminPIN = "4321 \n" }},
		{name: "unknown pin policy", mutate: func(c *AppConfig) { c.PINPolicy = "sequential" }, wantErr: "pin_policy"},
		{name: "bad fixed pin", mutate: func(c *AppConfig) { c.ApprovalPIN = "12" }, wantErr: "approval_pin"},
		{name: "random pin length", mutate: func(c *AppConfig) { c.PINPolicy = "random"; c.PINLength = 12 }, wantErr: "pin_length"},
		{name: "unknown storage", mutate: func(c *AppConfig) { c.StorageType = "ftp" }, wantErr: "storage_type"},
		{name: "s3 without bucket", mutate: func(c *AppConfig) { c.StorageType = "s3" }, wantErr: "storage_s3_bucket"},
		{name: "bad trusted proxy", mutate: func(c *AppConfig) { c.TrustedProxies = []string{"10.0.0.0/40"} }, wantErr: "trusted proxy"},
		{name: "trusted proxies", mutate: func(c *AppConfig) { c.TrustedProxies = []string{"10.0.0.1", "172.16.0.0/12"} }},
		{name: "short jwt secret", mutate: func(c *AppConfig) { c.JWTSecret = "short" }, wantErr: "jwt_secret"},
		{
			name:    "dev secrets in prod",
			mutate:  func(c *AppConfig) { c.SessionKey = "dev-only-change-me" },
			env:     "prod",
			wantErr: "production",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: tt.env}, cfg, testLogger())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.org, ,https://b.org ")
	if len(got) != 2 || got[0] != "https://a.org" || got[1] != "https://b.org" {
		t.Errorf("splitList = %v", got)
	}
}
