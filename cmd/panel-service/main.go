// cmd/panel-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voxpanel/internal/accounts"
	"voxpanel/internal/billing"
	"voxpanel/internal/claimgate"
	"voxpanel/internal/mailer"
	"voxpanel/pkg/config"
	"voxpanel/pkg/db"
	"voxpanel/pkg/logger"
	"voxpanel/pkg/middleware"
	"voxpanel/pkg/tenants"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	pool := db.MustConnect(cfg, log)
	rdb := db.MustRedis(cfg, log)

	var prov tenants.Provider
	var creds accounts.Store
	if pool != nil {
		prov = tenants.NewPostgresProvider(pool, log)
		if err := tenants.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalw("tenant schema", "err", err)
		}
		if err := accounts.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalw("accounts schema", "err", err)
		}
		if err := tenants.SeedFromEnv(context.Background(), pool, os.Getenv("TENANT_SEED_JSON")); err != nil {
			log.Warnw("seed", "err", err)
		}
		creds = accounts.NewPostgresStore(pool, log)
	} else {
		prov = tenants.NewMemoryProviderFromEnv(log)
		creds = accounts.NewMemoryStore()
	}
	prov = tenants.NewCachedProvider(prov, rdb, log)

	sessions := accounts.NewSessions(rdb, cfg.SessionTTL)
	mail := mailer.New(cfg, log)
	gate := claimgate.New(prov, creds, sessions, mail, cfg.MinPasswordLen, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(log))
	r.Use(middleware.Tracing(cfg))
	r.Use(middleware.HostRewrite(cfg))
	r.Use(middleware.WithTenant(prov))
	r.Use(middleware.RecordUsage(pool, log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("ok")) })
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("pong")) })
	if pool != nil {
		r.Post("/api/webhooks/billing", billing.Handler(cfg.BillingWebhookSecret, pool, log))
	}
	claimgate.Routes(r, gate)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	srv := &http.Server{Addr: cfg.PanelAddr, Handler: r}
	go func() {
		log.Infow("panel-service listening", "addr", cfg.PanelAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	fmt.Println("panel-service stopped")
}
