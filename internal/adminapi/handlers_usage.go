package adminapi

import (
	"net/http"
	"strconv"
)

// getUsageSummary rolls usage_events up per tenant over the trailing window
// (default 30 days, ?days= to override).
func (a *App) getUsageSummary(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d > 0 {
			days = d
		}
	}
	rows, err := a.db.Query(r.Context(), `
		SELECT t.id, t.slug, COUNT(u.id), COALESCE(AVG(u.duration_ms),0)
		FROM tenants t
		LEFT JOIN usage_events u ON u.tenant_id = t.id
		  AND u.occurred_at > NOW() - ($1 || ' days')::interval
		GROUP BY t.id, t.slug
		ORDER BY COUNT(u.id) DESC`, days)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()
	type row struct {
		TenantID string  `json:"tenant_id"`
		Slug     string  `json:"slug"`
		Requests int64   `json:"requests"`
		AvgMs    float64 `json:"avg_ms"`
	}
	out := []row{}
	for rows.Next() {
		var rr row
		if err := rows.Scan(&rr.TenantID, &rr.Slug, &rr.Requests, &rr.AvgMs); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		out = append(out, rr)
	}
	writeJSON(w, map[string]any{"days": days, "tenants": out}, http.StatusOK)
}
