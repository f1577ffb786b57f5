// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	PanelAddr string // panel-service (tenant-facing)
	AdminAddr string // admin-api-service

	// Routing
	RootDomain    string // bare platform domain (marketing site)
	PreviewSuffix string // ephemeral preview deployments resolve like local hosts

	// Claim gate / sessions
	MinPasswordLen int
	SessionTTL     time.Duration

	// Outbound mail (transactional email API; empty -> log-only dev sender)
	MailerURL   string
	MailerToken string
	MailFrom    string

	// Billing webhook
	BillingWebhookSecret string

	// Redis & Postgres
	RedisURL    string
	DatabaseURL string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:                  env("VOXPANEL_ENV", "dev"),
		PanelAddr:            env("VOXPANEL_HTTP_ADDR", ":8080"),
		AdminAddr:            env("VOXPANEL_ADMIN_ADDR", ":8082"),
		RootDomain:           env("ROOT_DOMAIN", "voxpanel.io"),
		PreviewSuffix:        strings.TrimSpace(env("PREVIEW_SUFFIX", ".vercel.app")),
		MinPasswordLen:       envInt("MIN_PASSWORD_LEN", 8),
		SessionTTL:           envDur("SESSION_TTL_SEC", 86400) * time.Second,
		MailerURL:            env("MAILER_URL", ""),
		MailerToken:          env("MAILER_TOKEN", ""),
		MailFrom:             env("MAIL_FROM", "no-reply@voxpanel.io"),
		BillingWebhookSecret: env("BILLING_WEBHOOK_SECRET", ""),
		RedisURL:             env("REDIS_URL", ""),
		DatabaseURL:          env("DATABASE_URL", ""),
	}
	if cfg.DatabaseURL == "" {
		log.Println("[WARN] DATABASE_URL not set — using in-memory stores for dev")
	}
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		i, _ := strconv.Atoi(v)
		return time.Duration(i)
	}
	return time.Duration(def)
}
