package adminapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type domainBody struct {
	Domain    string `json:"domain"`
	Subdomain string `json:"subdomain"`
	Primary   *bool  `json:"primary"`
	Connected *bool  `json:"connected"`
}

type domainRow struct {
	ID        string  `json:"id"`
	TenantID  string  `json:"tenant_id"`
	Domain    *string `json:"domain"`
	Subdomain *string `json:"subdomain"`
	Primary   bool    `json:"primary"`
	Connected bool    `json:"connected"`
}

func (a *App) listDomains(w http.ResponseWriter, r *http.Request) {
	rows, err := a.db.Query(r.Context(), `SELECT id,tenant_id,domain,subdomain,is_primary,connected
		FROM tenant_domains WHERE tenant_id=$1 ORDER BY is_primary DESC, created_at ASC`, chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()
	out := []domainRow{}
	for rows.Next() {
		var d domainRow
		if err := rows.Scan(&d.ID, &d.TenantID, &d.Domain, &d.Subdomain, &d.Primary, &d.Connected); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		out = append(out, d)
	}
	writeJSON(w, out, http.StatusOK)
}

func (a *App) addDomain(w http.ResponseWriter, r *http.Request) {
	tid := chi.URLParam(r, "id")
	var b domainBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if b.Domain == "" && b.Subdomain == "" {
		http.Error(w, "domain or subdomain required", http.StatusBadRequest)
		return
	}
	primary := b.Primary != nil && *b.Primary
	if primary {
		// At most one primary per tenant: demote any existing flag first.
		_, _ = a.db.Exec(r.Context(), `UPDATE tenant_domains SET is_primary=false WHERE tenant_id=$1`, tid)
	}
	id := uuid.NewString()
	_, err := a.db.Exec(r.Context(), `INSERT INTO tenant_domains(id,tenant_id,domain,subdomain,is_primary,connected)
		VALUES ($1,$2,$3,$4,$5,false)`, id, tid, nullIfEmpty(b.Domain), nullIfEmpty(b.Subdomain), primary)
	if err != nil {
		http.Error(w, "domain already bound", http.StatusConflict)
		return
	}
	writeJSON(w, map[string]any{"id": id}, http.StatusCreated)
}

func (a *App) updateDomain(w http.ResponseWriter, r *http.Request) {
	tid := chi.URLParam(r, "id")
	did := chi.URLParam(r, "domainId")
	var b domainBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if b.Primary != nil && *b.Primary {
		_, _ = a.db.Exec(r.Context(), `UPDATE tenant_domains SET is_primary=false WHERE tenant_id=$1`, tid)
	}
	tag, err := a.db.Exec(r.Context(), `UPDATE tenant_domains SET
		is_primary=COALESCE($1,is_primary),
		connected=COALESCE($2,connected)
		WHERE id=$3 AND tenant_id=$4`, b.Primary, b.Connected, did, tid)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if tag.RowsAffected() == 0 {
		http.Error(w, "domain not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}

func (a *App) deleteDomain(w http.ResponseWriter, r *http.Request) {
	tag, err := a.db.Exec(r.Context(), `DELETE FROM tenant_domains WHERE id=$1 AND tenant_id=$2`,
		chi.URLParam(r, "domainId"), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if tag.RowsAffected() == 0 {
		http.Error(w, "domain not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}
