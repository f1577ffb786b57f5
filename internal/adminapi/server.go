package adminapi

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Handler builds the HTTP handler with routes and middleware.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Logger, chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	allowed := []string{"http://localhost:3001"}
	if v := strings.TrimSpace(os.Getenv("ADMIN_CORS_ORIGINS")); v != "" {
		parts := strings.Split(v, ",")
		tmp := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				tmp = append(tmp, s)
			}
		}
		if len(tmp) > 0 {
			allowed = tmp
		}
	}

	r.Route("/admin", func(ar chi.Router) {
		ar.Use(cors(allowed))
		ar.Use(a.adminAuth)
		ar.Get("/tenants", a.listTenants)
		ar.Post("/tenants", a.createTenant)
		ar.Get("/tenants/{id}", a.getTenant)
		ar.Put("/tenants/{id}", a.updateTenant)
		ar.Get("/tenants/{id}/domains", a.listDomains)
		ar.Post("/tenants/{id}/domains", a.addDomain)
		ar.Put("/tenants/{id}/domains/{domainId}", a.updateDomain)
		ar.Delete("/tenants/{id}/domains/{domainId}", a.deleteDomain)
		ar.Get("/tenants/{id}/settings", a.getSettings)
		ar.Put("/tenants/{id}/settings", a.putSettings)
		ar.Get("/connectors", a.listConnectors)
		ar.Post("/connectors/normalize", a.normalizeConnectors)
		ar.Get("/usage/summary", a.getUsageSummary)
	})

	return r
}
