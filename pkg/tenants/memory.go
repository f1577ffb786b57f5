// pkg/tenants/memory.go
package tenants

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// memProvider is the dev fallback when no DATABASE_URL is configured. The
// claim mutex is what makes CreateOwnerClaim check-and-set atomic here.
type memProvider struct {
	log     *zap.SugaredLogger
	mu      sync.RWMutex
	bySlug  map[string]Tenant
	domains map[string][]Domain   // tenantID -> bindings
	claims  map[string]OwnerClaim // tenantID -> claim
}

func NewMemoryProviderFromEnv(log *zap.SugaredLogger) Provider {
	p := &memProvider{log: log, bySlug: map[string]Tenant{}, domains: map[string][]Domain{}, claims: map[string]OwnerClaim{}}
	seed := os.Getenv("TENANT_SEED_JSON")
	if seed != "" {
		var entries []struct {
			ID, Slug, DisplayName, Subdomain, Domain string
		}
		_ = json.Unmarshal([]byte(seed), &entries)
		for _, e := range entries {
			p.addLocked(Tenant{ID: e.ID, Slug: e.Slug, DisplayName: e.DisplayName, CreatedAt: time.Now(), UpdatedAt: time.Now()}, e.Subdomain, e.Domain)
		}
	} else {
		// sensible localhost default so /acme routes somewhere in dev
		p.addLocked(Tenant{
			ID: "00000000-0000-0000-0000-000000000001", Slug: "acme",
			DisplayName: "Acme (dev)", CreatedAt: time.Now(), UpdatedAt: time.Now(),
		}, "acme", "")
	}
	return p
}

func (m *memProvider) addLocked(t Tenant, subdomain, domain string) {
	m.bySlug[t.Slug] = t
	var ds []Domain
	if subdomain != "" {
		s := subdomain
		ds = append(ds, Domain{ID: uuid.NewString(), TenantID: t.ID, Subdomain: &s, Primary: len(ds) == 0, Connected: true})
	}
	if domain != "" {
		d := domain
		ds = append(ds, Domain{ID: uuid.NewString(), TenantID: t.ID, Domain: &d, Primary: len(ds) == 0, Connected: true})
	}
	m.domains[t.ID] = ds
}

// Add registers a tenant (used by tests and by the admin API in dev mode).
func (m *memProvider) Add(t Tenant, subdomain, domain string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addLocked(t, subdomain, domain)
}

func (m *memProvider) ResolveBySlug(ctx context.Context, slug string) (Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.bySlug[slug]; ok {
		return t, nil
	}
	return Tenant{}, ErrNotFound
}

func (m *memProvider) ResolveByHost(ctx context.Context, host string) (Tenant, error) {
	if i := strings.Index(host, ":"); i > 0 {
		host = host[:i]
	}
	label := host
	if i := strings.Index(host, "."); i > 0 {
		label = host[:i]
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for tid, ds := range m.domains {
		for _, d := range ds {
			if (d.Domain != nil && *d.Domain == host) || (d.Subdomain != nil && *d.Subdomain == label) {
				return m.byIDLocked(tid)
			}
		}
	}
	return Tenant{}, ErrNotFound
}

func (m *memProvider) byIDLocked(id string) (Tenant, error) {
	for _, t := range m.bySlug {
		if t.ID == id {
			return t, nil
		}
	}
	return Tenant{}, ErrNotFound
}

func (m *memProvider) ResolveByID(ctx context.Context, id string) (Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byIDLocked(id)
}

func (m *memProvider) Domains(ctx context.Context, tenantID string) ([]Domain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Domain(nil), m.domains[tenantID]...), nil
}

func (m *memProvider) PrimaryDomain(ctx context.Context, tenantID string) (Domain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ds := m.domains[tenantID]
	if len(ds) == 0 {
		return Domain{}, ErrNotFound
	}
	for _, d := range ds {
		if d.Primary {
			return d, nil
		}
	}
	return ds[0], nil
}

func (m *memProvider) IsClaimed(ctx context.Context, tenantID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.claims[tenantID]
	return ok, nil
}

func (m *memProvider) OwnerClaim(ctx context.Context, tenantID string) (OwnerClaim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.claims[tenantID]; ok {
		return c, nil
	}
	return OwnerClaim{}, ErrNotFound
}

func (m *memProvider) CreateOwnerClaim(ctx context.Context, tenantID, principalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.claims[tenantID]; ok {
		return ErrClaimConflict
	}
	m.claims[tenantID] = OwnerClaim{TenantID: tenantID, PrincipalID: principalID, Role: "owner", CreatedAt: time.Now()}
	return nil
}
