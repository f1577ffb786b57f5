// pkg/middleware/hostresolver.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"voxpanel/pkg/config"
)

// TenantPathPrefix is the internal tenant-scoped route namespace. Externally
// visible URLs never contain it; the resolver rewrites into it.
const TenantPathPrefix = "/tenant"

// One authoritative reserved list. The original panel kept two divergent
// copies (local branch vs subdomain branch); unified here.
var reservedSegments = map[string]bool{
	"admin":        true,
	"api":          true,
	"auth":         true,
	"integrations": true,
	"tenant":       true,
}

var reservedSubdomains = map[string]bool{
	"www":       true,
	"app":       true,
	"admin":     true,
	"dashboard": true,
}

type HostClass int

const (
	ClassPassthrough HostClass = iota
	ClassLocal
	ClassRoot
	ClassSubdomain
)

func (c HostClass) String() string {
	switch c {
	case ClassLocal:
		return "local"
	case ClassRoot:
		return "root"
	case ClassSubdomain:
		return "subdomain"
	}
	return "passthrough"
}

// Resolution is the outcome for one request: either pass through unchanged,
// or rewrite to the internal tenant path. SlugParam marks host-based routing,
// where downstream server-rendered pages cannot see the original host and
// need the slug propagated as a query parameter.
type Resolution struct {
	Class     HostClass
	Rewrite   bool
	Path      string
	Slug      string
	SlugParam bool
}

var rewritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "voxpanel_route_rewrites_total",
	Help: "Tenant path rewrites performed by the host resolver, by host class.",
}, []string{"class"})

// Resolve classifies (host, path) and decides the rewrite. Pure; no I/O.
// Order: asset/API/framework short-circuit, local hosts, root domain,
// tenant subdomain, then passthrough.
func Resolve(rootDomain, previewSuffix, host, path string) Resolution {
	// Assets (any dot in the path), framework-internal, and the API
	// namespace never resolve to a tenant. Checked before everything else
	// so /favicon.ico under a tenant subdomain is never rewritten.
	if strings.Contains(path, ".") || strings.HasPrefix(path, "/_") ||
		path == "/api" || strings.HasPrefix(path, "/api/") {
		return Resolution{Class: ClassPassthrough}
	}

	hostname := host
	if i := strings.Index(hostname, ":"); i > 0 {
		hostname = hostname[:i]
	}

	if hostname == "localhost" || hostname == "127.0.0.1" ||
		(previewSuffix != "" && strings.HasSuffix(hostname, previewSuffix)) {
		// Path-based tenant identity: /<slug>/...
		slug, rest := splitSlug(path)
		if slug == "" || reservedSegments[slug] {
			return Resolution{Class: ClassLocal}
		}
		return Resolution{Class: ClassLocal, Rewrite: true, Slug: slug, Path: tenantPath(slug, rest)}
	}

	if hostname == rootDomain {
		// Bare marketing domain; no tenant context.
		return Resolution{Class: ClassRoot}
	}

	if labels := strings.Split(hostname, "."); len(labels) >= 3 {
		slug := labels[0]
		if reservedSubdomains[slug] {
			return Resolution{Class: ClassSubdomain}
		}
		return Resolution{Class: ClassSubdomain, Rewrite: true, Slug: slug, SlugParam: true, Path: tenantPath(slug, path)}
	}

	return Resolution{Class: ClassPassthrough}
}

// splitSlug returns the first path segment and the remainder (with leading
// slash), e.g. /acme/dashboard/settings -> ("acme", "/dashboard/settings").
func splitSlug(path string) (string, string) {
	p := strings.TrimPrefix(path, "/")
	if p == "" {
		return "", ""
	}
	if i := strings.Index(p, "/"); i >= 0 {
		return p[:i], p[i:]
	}
	return p, ""
}

// tenantPath builds the internal route: the tenant namespace, the slug, then
// the original remainder. A bare root maps to the dashboard root exactly —
// never a trailing-slash variant.
func tenantPath(slug, rest string) string {
	if rest == "" || rest == "/" {
		return TenantPathPrefix + "/" + slug + "/dashboard"
	}
	return TenantPathPrefix + "/" + slug + rest
}

// HostRewrite is the routing middleware: it rewrites r.URL in place for
// tenant-resolved requests and passes everything else through untouched. It
// never produces an error response; unresolvable hosts fall through to the
// router's own not-found handling.
func HostRewrite(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := Resolve(cfg.RootDomain, cfg.PreviewSuffix, r.Host, r.URL.Path)
			if res.Rewrite {
				r.URL.Path = res.Path
				if res.SlugParam {
					q := r.URL.Query()
					q.Set("slug", res.Slug)
					r.URL.RawQuery = q.Encode()
				}
				rewritesTotal.WithLabelValues(res.Class.String()).Inc()
			}
			next.ServeHTTP(w, r)
		})
	}
}
