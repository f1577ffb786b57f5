// internal/adminapi/settings.go
package adminapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"voxpanel/pkg/db"
)

// Settings is the persisted per-tenant configuration record. The original
// panel kept this in a reassignable module-level variable; here it lives in
// the store behind a repository so every instance sees the same record.
type Settings struct {
	TenantID     string         `json:"tenant_id"`
	Plan         string         `json:"plan"`
	SupportEmail string         `json:"support_email"`
	Branding     map[string]any `json:"branding"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type SettingsRepo interface {
	Get(ctx context.Context, tenantID string) (Settings, error)
	Put(ctx context.Context, s Settings) error
}

type pgSettings struct {
	db *pgxpool.Pool
}

func NewPostgresSettings(db *pgxpool.Pool) SettingsRepo {
	return &pgSettings{db: db}
}

// Get returns defaults for tenants without a settings row yet.
func (p *pgSettings) Get(ctx context.Context, tenantID string) (Settings, error) {
	s := Settings{TenantID: tenantID, Plan: "free", Branding: map[string]any{}}
	var brandingJSON []byte
	err := p.db.QueryRow(ctx, `SELECT plan,support_email,branding,updated_at
		FROM panel_settings WHERE tenant_id=$1`, tenantID).
		Scan(&s.Plan, &s.SupportEmail, &brandingJSON, &s.UpdatedAt)
	if err != nil {
		return s, nil
	}
	_ = json.Unmarshal(brandingJSON, &s.Branding)
	if s.Branding == nil {
		s.Branding = map[string]any{}
	}
	return s, nil
}

// Put upserts inside a tenant transaction so RLS policies on
// panel_settings see the right tenant.
func (p *pgSettings) Put(ctx context.Context, s Settings) error {
	brandingJSON, _ := json.Marshal(s.Branding)
	tx, err := db.BeginTxWithTenant(ctx, p.db, s.TenantID)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO panel_settings(tenant_id,plan,support_email,branding,updated_at)
		VALUES ($1,$2,$3,$4,NOW())
		ON CONFLICT (tenant_id) DO UPDATE SET
		  plan=EXCLUDED.plan, support_email=EXCLUDED.support_email,
		  branding=EXCLUDED.branding, updated_at=NOW()`,
		s.TenantID, s.Plan, s.SupportEmail, brandingJSON); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (a *App) getSettings(w http.ResponseWriter, r *http.Request) {
	s, err := a.settings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, s, http.StatusOK)
}

func (a *App) putSettings(w http.ResponseWriter, r *http.Request) {
	var s Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	s.TenantID = chi.URLParam(r, "id")
	if s.Plan == "" {
		s.Plan = "free"
	}
	if err := a.settings.Put(r.Context(), s); err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}
