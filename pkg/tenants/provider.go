package tenants

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned for unknown slugs, hosts and ids.
	ErrNotFound = errors.New("tenant not found")
	// ErrClaimConflict is returned when an owner claim already exists.
	ErrClaimConflict = errors.New("tenant already claimed")
)

type Provider interface {
	// Resolve tenant from a path slug or an incoming host.
	ResolveBySlug(ctx context.Context, slug string) (Tenant, error)
	ResolveByHost(ctx context.Context, host string) (Tenant, error)
	ResolveByID(ctx context.Context, id string) (Tenant, error)

	// Domain bindings for a tenant. PrimaryDomain falls back to the first
	// available binding when none is flagged primary.
	Domains(ctx context.Context, tenantID string) ([]Domain, error)
	PrimaryDomain(ctx context.Context, tenantID string) (Domain, error)

	// Owner-claim state. CreateOwnerClaim must be atomic with respect to
	// "does a claim already exist": concurrent claims resolve to one winner
	// and ErrClaimConflict for the rest.
	IsClaimed(ctx context.Context, tenantID string) (bool, error)
	OwnerClaim(ctx context.Context, tenantID string) (OwnerClaim, error)
	CreateOwnerClaim(ctx context.Context, tenantID, principalID string) error
}
