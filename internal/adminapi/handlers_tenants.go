package adminapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"voxpanel/internal/policy"
)

type tenantBody struct {
	Slug           string `json:"slug"`
	DisplayName    string `json:"display_name"`
	Subdomain      string `json:"subdomain"`
	SetupCompleted *bool  `json:"setup_completed"`
}

type tenantRow struct {
	ID             string    `json:"id"`
	Slug           string    `json:"slug"`
	DisplayName    string    `json:"display_name"`
	SetupCompleted bool      `json:"setup_completed"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (a *App) listTenants(w http.ResponseWriter, r *http.Request) {
	rows, err := a.db.Query(r.Context(), `SELECT id,slug,display_name,setup_completed,created_at,updated_at
		FROM tenants ORDER BY created_at DESC`)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()
	out := []tenantRow{}
	for rows.Next() {
		var t tenantRow
		if err := rows.Scan(&t.ID, &t.Slug, &t.DisplayName, &t.SetupCompleted, &t.CreatedAt, &t.UpdatedAt); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		out = append(out, t)
	}
	writeJSON(w, out, http.StatusOK)
}

// createTenant provisions a tenant and its default subdomain binding. The
// slug goes through the admission policy first.
func (a *App) createTenant(w http.ResponseWriter, r *http.Request) {
	var b tenantBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if b.Slug == "" {
		http.Error(w, "missing slug", http.StatusBadRequest)
		return
	}
	dec, err := policy.EvaluateSlug(r.Context(), a.db, b.Slug)
	if err != nil {
		a.log.Warnw("slug admission", "slug", b.Slug, "err", err)
	}
	if !dec.Allow {
		writeJSON(w, map[string]any{"error": "slug rejected", "reasons": dec.Reasons}, http.StatusUnprocessableEntity)
		return
	}
	id := uuid.NewString()
	tag, err := a.db.Exec(r.Context(), `INSERT INTO tenants(id,slug,display_name)
		VALUES ($1,$2,$3) ON CONFLICT (slug) DO NOTHING`, id, b.Slug, b.DisplayName)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if tag.RowsAffected() == 0 {
		http.Error(w, "slug taken", http.StatusConflict)
		return
	}
	sub := b.Subdomain
	if sub == "" {
		sub = b.Slug
	}
	_, err = a.db.Exec(r.Context(), `INSERT INTO tenant_domains(id,tenant_id,subdomain,is_primary,connected)
		VALUES ($1,$2,$3,true,true)`, uuid.NewString(), id, sub)
	if err != nil {
		a.log.Warnw("default subdomain binding", "tenant", id, "err", err)
	}
	writeJSON(w, map[string]any{"id": id, "slug": b.Slug}, http.StatusCreated)
}

func (a *App) getTenant(w http.ResponseWriter, r *http.Request) {
	var t tenantRow
	err := a.db.QueryRow(r.Context(), `SELECT id,slug,display_name,setup_completed,created_at,updated_at
		FROM tenants WHERE id=$1`, chi.URLParam(r, "id")).
		Scan(&t.ID, &t.Slug, &t.DisplayName, &t.SetupCompleted, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			http.Error(w, "tenant not found", http.StatusNotFound)
			return
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, t, http.StatusOK)
}

func (a *App) updateTenant(w http.ResponseWriter, r *http.Request) {
	var b tenantBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	tag, err := a.db.Exec(r.Context(), `UPDATE tenants SET
		display_name=COALESCE(NULLIF($1,''),display_name),
		setup_completed=COALESCE($2,setup_completed),
		updated_at=NOW()
		WHERE id=$3`, b.DisplayName, b.SetupCompleted, chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if tag.RowsAffected() == 0 {
		http.Error(w, "tenant not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}
