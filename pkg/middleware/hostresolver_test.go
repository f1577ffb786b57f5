package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"voxpanel/pkg/config"
)

const (
	testRoot    = "voxpanel.io"
	testPreview = ".vercel.app"
)

func TestResolveLocalHosts(t *testing.T) {
	cases := []struct {
		name     string
		host     string
		path     string
		rewrite  bool
		wantPath string
		wantSlug string
	}{
		{"slug with suffix", "localhost:3000", "/acme/dashboard/settings", true, "/tenant/acme/dashboard/settings", "acme"},
		{"bare slug", "localhost:3000", "/acme", true, "/tenant/acme/dashboard", "acme"},
		{"slug trailing slash", "localhost:3000", "/acme/", true, "/tenant/acme/dashboard", "acme"},
		{"loopback ip", "127.0.0.1:3000", "/acme", true, "/tenant/acme/dashboard", "acme"},
		{"preview deployment", "panel-git-main.vercel.app", "/acme/settings", true, "/tenant/acme/settings", "acme"},
		{"root without slug", "localhost:3000", "/", false, "", ""},
		{"reserved admin", "localhost:3000", "/admin/anything", false, "", ""},
		{"reserved api", "localhost:3000", "/api", false, "", ""},
		{"reserved auth", "localhost:3000", "/auth/signin", false, "", ""},
		{"reserved integrations", "localhost:3000", "/integrations/callback", false, "", ""},
		{"reserved tenant namespace", "localhost:3000", "/tenant/acme", false, "", ""},
		{"reserved is exact not prefix", "localhost:3000", "/administrator", true, "/tenant/administrator/dashboard", "administrator"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Resolve(testRoot, testPreview, tc.host, tc.path)
			if res.Rewrite != tc.rewrite {
				t.Fatalf("rewrite = %v, want %v", res.Rewrite, tc.rewrite)
			}
			if !tc.rewrite {
				return
			}
			if res.Path != tc.wantPath {
				t.Errorf("path = %q, want %q", res.Path, tc.wantPath)
			}
			if res.Slug != tc.wantSlug {
				t.Errorf("slug = %q, want %q", res.Slug, tc.wantSlug)
			}
			if res.SlugParam {
				t.Errorf("local rewrites must not propagate slug param")
			}
		})
	}
}

func TestResolveSubdomains(t *testing.T) {
	cases := []struct {
		name     string
		host     string
		path     string
		rewrite  bool
		wantPath string
		wantSlug string
	}{
		{"dashboard path", "tenant1.example.com", "/dashboard", true, "/tenant/tenant1/dashboard", "tenant1"},
		{"root path", "acme.voxpanel.io", "/", true, "/tenant/acme/dashboard", "acme"},
		{"deep path", "acme.voxpanel.io", "/agents/voice", true, "/tenant/acme/agents/voice", "acme"},
		{"reserved www", "www.voxpanel.io", "/pricing", false, "", ""},
		{"reserved app", "app.voxpanel.io", "/", false, "", ""},
		{"reserved admin", "admin.voxpanel.io", "/", false, "", ""},
		{"reserved dashboard", "dashboard.voxpanel.io", "/", false, "", ""},
		{"two labels only", "example.com", "/acme", false, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Resolve(testRoot, testPreview, tc.host, tc.path)
			if res.Rewrite != tc.rewrite {
				t.Fatalf("rewrite = %v, want %v", res.Rewrite, tc.rewrite)
			}
			if !tc.rewrite {
				return
			}
			if res.Path != tc.wantPath {
				t.Errorf("path = %q, want %q", res.Path, tc.wantPath)
			}
			if res.Slug != tc.wantSlug {
				t.Errorf("slug = %q, want %q", res.Slug, tc.wantSlug)
			}
			if !res.SlugParam {
				t.Errorf("subdomain rewrites must propagate slug param")
			}
		})
	}
}

func TestResolveShortCircuits(t *testing.T) {
	hosts := []string{"localhost:3000", "voxpanel.io", "acme.voxpanel.io", "tenant1.example.com"}
	paths := []string{"/logo.png", "/favicon.ico", "/acme/logo.png", "/_next/static/chunk.js", "/api/agents", "/api"}
	for _, h := range hosts {
		for _, p := range paths {
			if res := Resolve(testRoot, testPreview, h, p); res.Rewrite {
				t.Errorf("host %q path %q: expected passthrough, got rewrite to %q", h, p, res.Path)
			}
		}
	}
}

func TestResolveRootDomain(t *testing.T) {
	res := Resolve(testRoot, testPreview, "voxpanel.io", "/pricing")
	if res.Rewrite || res.Class != ClassRoot {
		t.Fatalf("root domain: rewrite=%v class=%v", res.Rewrite, res.Class)
	}
}

func TestHostRewriteMiddleware(t *testing.T) {
	cfg := config.Config{RootDomain: testRoot, PreviewSuffix: testPreview}
	var gotPath, gotSlug string
	handler := HostRewrite(cfg)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSlug = r.URL.Query().Get("slug")
	}))

	req := httptest.NewRequest("GET", "http://tenant1.example.com/dashboard", http.NoBody)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if gotPath != "/tenant/tenant1/dashboard" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotSlug != "tenant1" {
		t.Fatalf("slug param = %q", gotSlug)
	}

	req = httptest.NewRequest("GET", "http://localhost:3000/acme", http.NoBody)
	req.Host = "localhost:3000"
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if gotPath != "/tenant/acme/dashboard" {
		t.Fatalf("local path = %q", gotPath)
	}
	if gotSlug != "" {
		t.Fatalf("local rewrite must not set slug param, got %q", gotSlug)
	}
}
