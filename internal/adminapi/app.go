package adminapi

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"go.uber.org/zap"

	"voxpanel/internal/accounts"
	"voxpanel/internal/policy"
	"voxpanel/pkg/connectors"
	"voxpanel/pkg/tenants"
)

// Config holds admin-api specific configuration.
type Config struct {
	HTTPAddr     string
	OIDCIssuer   string
	OIDCAudience string
	JWKSURL      string
	CatalogDir   string
}

// App is the admin-api application container: shared deps and config only.
// Request-scoped work goes through context.
type App struct {
	log         *zap.SugaredLogger
	db          *pgxpool.Pool
	settings    SettingsRepo
	catalog     *connectors.Catalog
	adminJWKS   jwk.Set
	adminIssuer string
	adminAud    string
}

// New constructs App and performs one-time startup tasks (schema, seed,
// connector catalog load).
func New(log *zap.SugaredLogger, db *pgxpool.Pool, cfg Config) *App {
	app := &App{
		log:         log,
		db:          db,
		settings:    NewPostgresSettings(db),
		adminIssuer: cfg.OIDCIssuer,
		adminAud:    cfg.OIDCAudience,
	}
	if cfg.JWKSURL != "" {
		app.adminJWKS = mustJWKS(cfg.JWKSURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := tenants.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("ensure tenant schema: %v", err)
	}
	if err := accounts.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("ensure accounts schema: %v", err)
	}
	if err := policy.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("ensure policy schema: %v", err)
	}
	if err := tenants.SeedFromEnv(ctx, db, os.Getenv("TENANT_SEED_JSON")); err != nil {
		log.Warnf("tenant seed failed: %v", err)
	}

	cat, err := connectors.LoadCatalog(cfg.CatalogDir)
	if err != nil {
		log.Fatalf("connector catalog: %v", err)
	}
	app.catalog = cat
	return app
}
