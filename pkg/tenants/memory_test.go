package tenants

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func seedProvider(t *testing.T) Provider {
	t.Helper()
	t.Setenv("TENANT_SEED_JSON", `[
		{"ID":"11111111-1111-1111-1111-111111111111","Slug":"acme","DisplayName":"Acme","Subdomain":"acme","Domain":"voice.acme.com"},
		{"ID":"22222222-2222-2222-2222-222222222222","Slug":"globex","DisplayName":"Globex","Subdomain":"globex"}
	]`)
	return NewMemoryProviderFromEnv(zap.NewNop().Sugar())
}

func TestResolveBySlugAndHost(t *testing.T) {
	prov := seedProvider(t)
	ctx := context.Background()

	bySlug, err := prov.ResolveBySlug(ctx, "acme")
	if err != nil {
		t.Fatalf("by slug: %v", err)
	}
	byDomain, err := prov.ResolveByHost(ctx, "voice.acme.com")
	if err != nil {
		t.Fatalf("by custom domain: %v", err)
	}
	bySub, err := prov.ResolveByHost(ctx, "acme.voxpanel.io:443")
	if err != nil {
		t.Fatalf("by subdomain label: %v", err)
	}
	if bySlug.ID != byDomain.ID || bySlug.ID != bySub.ID {
		t.Fatalf("slug/domain/subdomain must identify the same tenant: %q %q %q", bySlug.ID, byDomain.ID, bySub.ID)
	}

	other, err := prov.ResolveBySlug(ctx, "globex")
	if err != nil {
		t.Fatalf("globex: %v", err)
	}
	if other.ID == bySlug.ID {
		t.Fatal("different slugs resolved to the same tenant")
	}

	if _, err := prov.ResolveBySlug(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPrimaryDomainFallback(t *testing.T) {
	prov := seedProvider(t)
	d, err := prov.PrimaryDomain(context.Background(), "11111111-1111-1111-1111-111111111111")
	if err != nil {
		t.Fatalf("primary: %v", err)
	}
	if d.Subdomain == nil || *d.Subdomain != "acme" {
		t.Fatalf("expected first binding as primary fallback, got %+v", d)
	}
}

func TestIsClaimedIdempotent(t *testing.T) {
	prov := seedProvider(t)
	ctx := context.Background()
	const tid = "11111111-1111-1111-1111-111111111111"

	for i := 0; i < 3; i++ {
		claimed, err := prov.IsClaimed(ctx, tid)
		if err != nil || claimed {
			t.Fatalf("round %d: claimed=%v err=%v", i, claimed, err)
		}
	}
	if err := prov.CreateOwnerClaim(ctx, tid, "owner-1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	for i := 0; i < 3; i++ {
		claimed, err := prov.IsClaimed(ctx, tid)
		if err != nil || !claimed {
			t.Fatalf("round %d after claim: claimed=%v err=%v", i, claimed, err)
		}
	}
}

func TestConcurrentClaimsOneWinner(t *testing.T) {
	prov := seedProvider(t)
	ctx := context.Background()
	const tid = "22222222-2222-2222-2222-222222222222"

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = prov.CreateOwnerClaim(ctx, tid, "principal")
		}(i)
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrClaimConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != attempts-1 {
		t.Fatalf("wins=%d conflicts=%d, want exactly one winner", wins, conflicts)
	}
}
