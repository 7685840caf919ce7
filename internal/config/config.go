package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode      Mode
	HTTPAddr  string
	PublicURL string
	SiteID    string

	DBDriver string
	DBDSN    string

	AuthHMACSecret  string
	EnableLocalAuth bool

	AdminEmails   []string // allow-list for the admin role
	AdminPassHash string   // bcrypt

	// AllowedEmailDomain restricts student logins, e.g. "u.example.ac.jp".
	AllowedEmailDomain string
	Majors             []string

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	LogLevel      string
	EnableMetrics bool
}

// CORSOrigins picks the origin list for the current mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

// FromEnv reads configuration from the environment, layered over the file
// named by CONFIG_FILE when set.
func FromEnv() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("MODE", string(ModeOffline))
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("SITE_ID", "local")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("AUTH_HMAC_SECRET", "supersecret-dev-key")
	v.SetDefault("ADMIN_EMAILS", "admin@example.com")
	v.SetDefault("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji")
	v.SetDefault("ALLOWED_EMAIL_DOMAIN", "")
	v.SetDefault("MAJORS", "")
	v.SetDefault("CORS_ORIGINS_ONLINE", "https://labrank.mindengage.ai")
	v.SetDefault("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:3010")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ENABLE_METRICS", true)

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	mode := Mode(strings.ToLower(v.GetString("MODE")))
	if mode != ModeOnline && mode != ModeOffline {
		return Config{}, fmt.Errorf("invalid MODE %q", mode)
	}
	// local login is a dev convenience; online deployments opt in explicitly
	v.SetDefault("ENABLE_LOCAL_AUTH", mode == ModeOffline)

	cfg := Config{
		Mode:               mode,
		HTTPAddr:           v.GetString("HTTP_ADDR"),
		PublicURL:          v.GetString("PUBLIC_URL"),
		SiteID:             v.GetString("SITE_ID"),
		DBDriver:           v.GetString("DB_DRIVER"),
		DBDSN:              v.GetString("DB_DSN"),
		AuthHMACSecret:     v.GetString("AUTH_HMAC_SECRET"),
		EnableLocalAuth:    v.GetBool("ENABLE_LOCAL_AUTH"),
		AdminEmails:        lowerAll(csv(v.GetString("ADMIN_EMAILS"))),
		AdminPassHash:      v.GetString("ADMIN_PASS_HASH"),
		AllowedEmailDomain: strings.TrimPrefix(strings.ToLower(v.GetString("ALLOWED_EMAIL_DOMAIN")), "@"),
		Majors:             csv(v.GetString("MAJORS")),
		CORSOriginsOnline:  csv(v.GetString("CORS_ORIGINS_ONLINE")),
		CORSOriginsOffline: csv(v.GetString("CORS_ORIGINS_OFFLINE")),
		LogLevel:           v.GetString("LOG_LEVEL"),
		EnableMetrics:      v.GetBool("ENABLE_METRICS"),
	}
	if cfg.Mode == ModeOnline && cfg.AuthHMACSecret == "supersecret-dev-key" {
		return Config{}, fmt.Errorf("AUTH_HMAC_SECRET must be set in online mode")
	}
	return cfg, nil
}

func csv(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func lowerAll(in []string) []string {
	for i := range in {
		in[i] = strings.ToLower(in[i])
	}
	return in
}
