// pkg/tenants/postgres.go
package tenants

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgProvider implements Provider backed by PostgreSQL.
type pgProvider struct {
	dbPool *pgxpool.Pool
	log    *zap.SugaredLogger
}

// NewPostgresProvider constructs a PostgreSQL-backed tenant provider.
func NewPostgresProvider(dbPool *pgxpool.Pool, log *zap.SugaredLogger) Provider {
	return &pgProvider{dbPool: dbPool, log: log}
}

// EnsureSchema creates required tables if they do not already exist.
// Safe to call repeatedly (idempotent). The primary key on
// owner_claims.tenant_id is the single-owner guarantee: concurrent claim
// inserts resolve to one winner at the storage layer.
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tenants (
  id uuid PRIMARY KEY,
  slug text UNIQUE NOT NULL,
  display_name text NOT NULL DEFAULT '',
  setup_completed boolean NOT NULL DEFAULT false,
  created_at timestamptz NOT NULL DEFAULT NOW(),
  updated_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS tenant_domains (
  id uuid PRIMARY KEY,
  tenant_id uuid NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  domain text UNIQUE,
  subdomain text UNIQUE,
  is_primary boolean NOT NULL DEFAULT false,
  connected boolean NOT NULL DEFAULT false,
  created_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS owner_claims (
  tenant_id uuid PRIMARY KEY REFERENCES tenants(id) ON DELETE CASCADE,
  principal_id uuid NOT NULL,
  role text NOT NULL DEFAULT 'owner',
  created_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS panel_settings (
  tenant_id uuid PRIMARY KEY REFERENCES tenants(id) ON DELETE CASCADE,
  plan text NOT NULL DEFAULT 'free',
  support_email text NOT NULL DEFAULT '',
  branding jsonb NOT NULL DEFAULT '{}'::jsonb,
  updated_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS usage_events (
  id BIGSERIAL PRIMARY KEY,
  tenant_id uuid NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  kind text,
  path text,
  status_code int,
  duration_ms int,
  occurred_at timestamptz NOT NULL DEFAULT NOW()
);
ALTER TABLE tenants ADD COLUMN IF NOT EXISTS setup_completed boolean NOT NULL DEFAULT false;
ALTER TABLE tenant_domains ADD COLUMN IF NOT EXISTS connected boolean NOT NULL DEFAULT false;
`)
	return err
}

// SeedFromEnv ingests initial tenants plus their default subdomain bindings.
// jsonSeed format (TENANT_SEED_JSON):
// [{"id":"...","slug":"acme","display_name":"Acme","subdomain":"acme","domain":"voice.acme.com"}]
func SeedFromEnv(ctx context.Context, dbPool *pgxpool.Pool, jsonSeed string) error {
	if jsonSeed == "" {
		return nil
	}
	var entries []struct {
		ID, Slug, DisplayName, Subdomain, Domain string
	}
	if err := json.Unmarshal([]byte(jsonSeed), &entries); err != nil {
		return err
	}
	for _, e := range entries {
		_, _ = dbPool.Exec(ctx, `INSERT INTO tenants(id,slug,display_name)
		  VALUES ($1,$2,$3)
		  ON CONFLICT (id) DO UPDATE SET slug=EXCLUDED.slug,display_name=EXCLUDED.display_name,updated_at=NOW()`,
			e.ID, e.Slug, e.DisplayName)
		if e.Subdomain != "" || e.Domain != "" {
			_, _ = dbPool.Exec(ctx, `INSERT INTO tenant_domains(id,tenant_id,domain,subdomain,is_primary,connected)
			  VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''),true,true)
			  ON CONFLICT DO NOTHING`, uuid.New(), e.ID, e.Domain, e.Subdomain)
		}
	}
	return nil
}

const tenantCols = `id,slug,display_name,setup_completed,created_at,updated_at`

func (p *pgProvider) scanTenant(row pgx.Row) (Tenant, error) {
	var t Tenant
	if err := row.Scan(&t.ID, &t.Slug, &t.DisplayName, &t.SetupCompleted, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Tenant{}, ErrNotFound
	}
	return t, nil
}

func (p *pgProvider) ResolveBySlug(ctx context.Context, slug string) (Tenant, error) {
	return p.scanTenant(p.dbPool.QueryRow(ctx,
		`SELECT `+tenantCols+` FROM tenants WHERE slug=$1`, slug))
}

// ResolveByHost matches the full host against custom domains, then the
// leftmost host label against subdomain bindings.
func (p *pgProvider) ResolveByHost(ctx context.Context, host string) (Tenant, error) {
	if i := strings.Index(host, ":"); i > 0 {
		host = host[:i]
	}
	label := host
	if i := strings.Index(host, "."); i > 0 {
		label = host[:i]
	}
	return p.scanTenant(p.dbPool.QueryRow(ctx, `
		SELECT `+tenantCols+` FROM tenants WHERE id = (
		  SELECT tenant_id FROM tenant_domains
		  WHERE domain=$1 OR subdomain=$2
		  ORDER BY is_primary DESC, created_at ASC LIMIT 1
		)`, host, label))
}

func (p *pgProvider) ResolveByID(ctx context.Context, id string) (Tenant, error) {
	return p.scanTenant(p.dbPool.QueryRow(ctx,
		`SELECT `+tenantCols+` FROM tenants WHERE id=$1`, id))
}

func (p *pgProvider) Domains(ctx context.Context, tenantID string) ([]Domain, error) {
	rows, err := p.dbPool.Query(ctx, `SELECT id,tenant_id,domain,subdomain,is_primary,connected
		FROM tenant_domains WHERE tenant_id=$1 ORDER BY is_primary DESC, created_at ASC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Domain
	for rows.Next() {
		var d Domain
		if err := rows.Scan(&d.ID, &d.TenantID, &d.Domain, &d.Subdomain, &d.Primary, &d.Connected); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// PrimaryDomain returns the binding flagged primary, or the first available
// when none (or several) are flagged.
func (p *pgProvider) PrimaryDomain(ctx context.Context, tenantID string) (Domain, error) {
	ds, err := p.Domains(ctx, tenantID)
	if err != nil {
		return Domain{}, err
	}
	if len(ds) == 0 {
		return Domain{}, ErrNotFound
	}
	return ds[0], nil
}

func (p *pgProvider) IsClaimed(ctx context.Context, tenantID string) (bool, error) {
	var n int
	if err := p.dbPool.QueryRow(ctx,
		`SELECT COUNT(*) FROM owner_claims WHERE tenant_id=$1`, tenantID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (p *pgProvider) OwnerClaim(ctx context.Context, tenantID string) (OwnerClaim, error) {
	var c OwnerClaim
	err := p.dbPool.QueryRow(ctx, `SELECT tenant_id,principal_id,role,created_at
		FROM owner_claims WHERE tenant_id=$1`, tenantID).Scan(&c.TenantID, &c.PrincipalID, &c.Role, &c.CreatedAt)
	if err != nil {
		return OwnerClaim{}, ErrNotFound
	}
	return c, nil
}

// CreateOwnerClaim inserts the claim row. ON CONFLICT DO NOTHING plus the
// affected-row count turns the storage uniqueness constraint into
// ErrClaimConflict, never a silent overwrite.
func (p *pgProvider) CreateOwnerClaim(ctx context.Context, tenantID, principalID string) error {
	tag, err := p.dbPool.Exec(ctx, `INSERT INTO owner_claims(tenant_id,principal_id,role)
		VALUES ($1,$2,'owner') ON CONFLICT (tenant_id) DO NOTHING`, tenantID, principalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrClaimConflict
	}
	return nil
}
