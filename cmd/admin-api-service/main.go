package main

import (
	"net/http"
	"os"
	"strings"

	"voxpanel/internal/adminapi"
	"voxpanel/pkg/config"
	pdb "voxpanel/pkg/db"
	"voxpanel/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer log.Sync()

	bind := os.Getenv("VOXPANEL_ADMIN_ADDR")
	if strings.TrimSpace(bind) == "" {
		bind = cfg.AdminAddr
	}

	pool := pdb.MustConnect(cfg, log)
	if pool == nil {
		log.Fatal("admin-api requires DATABASE_URL")
	}

	app := adminapi.New(
		log,
		pool,
		adminapi.Config{
			HTTPAddr:     bind,
			OIDCIssuer:   os.Getenv("ADMIN_OIDC_ISSUER"),
			OIDCAudience: os.Getenv("ADMIN_OIDC_AUDIENCE"),
			JWKSURL:      os.Getenv("ADMIN_JWKS_URL"),
			CatalogDir:   os.Getenv("CONNECTOR_CATALOG_DIR"),
		},
	)

	log.Infof("admin-api listening at %s", bind)
	if err := http.ListenAndServe(bind, app.Handler()); err != nil {
		log.Fatalf("listen: %v", err)
	}
}
