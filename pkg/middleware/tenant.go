// pkg/middleware/tenant.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"voxpanel/pkg/tenants"
)

type ctxTenantKey struct{}

// WithTenant resolves the tenant for requests inside the internal tenant
// namespace and attaches it to the request context. Identity comes from the
// rewritten /tenant/{slug} path, the propagated ?slug= query parameter, or
// the raw host, tried in that order. An unresolved tenant is not an error
// here; the claim gate owns the not-found response.
func WithTenant(prov tenants.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug := slugFromPath(r.URL.Path)
			if slug == "" {
				slug = r.URL.Query().Get("slug")
			}
			var t tenants.Tenant
			var err error = tenants.ErrNotFound
			if slug != "" {
				t, err = prov.ResolveBySlug(r.Context(), slug)
			}
			if err != nil {
				t, err = prov.ResolveByHost(r.Context(), r.Host)
			}
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), ctxTenantKey{}, t)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// slugFromPath pulls the slug out of an already-rewritten internal path.
func slugFromPath(path string) string {
	if !strings.HasPrefix(path, TenantPathPrefix+"/") {
		return ""
	}
	rest := strings.TrimPrefix(path, TenantPathPrefix+"/")
	if i := strings.Index(rest, "/"); i >= 0 {
		return rest[:i]
	}
	return rest
}

// TenantFrom returns the tenant attached by WithTenant, if any.
func TenantFrom(ctx context.Context) (tenants.Tenant, bool) {
	if v := ctx.Value(ctxTenantKey{}); v != nil {
		return v.(tenants.Tenant), true
	}
	return tenants.Tenant{}, false
}
