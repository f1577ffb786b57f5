package tenants

import "time"

// Tenant represents one customer organization with its own dashboard and
// data scope. Provisioned by the admin console; the routing layer only reads.
type Tenant struct {
	ID             string // uuid
	Slug           string // URL-safe short name (acme)
	DisplayName    string
	SetupCompleted bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Domain binds a tenant to a reachable hostname. A tenant may hold several
// (default subdomain + custom domain); at most one should be primary, but the
// store tolerates zero or many and falls back to first available.
type Domain struct {
	ID        string
	TenantID  string
	Domain    *string // full custom hostname, nullable
	Subdomain *string // subdomain label under the platform domain, nullable
	Primary   bool
	Connected bool
}

// OwnerClaim marks a tenant as claimed and names its owner. At most one row
// per tenant; its existence is what flips a tenant from unclaimed to claimed.
type OwnerClaim struct {
	TenantID    string
	PrincipalID string
	Role        string // "owner"
	CreatedAt   time.Time
}
