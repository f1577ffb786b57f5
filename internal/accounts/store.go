package accounts

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials covers unknown principals and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailNotConfirmed deliberately carries the confirmation keyword in
	// its text: the claim gate classifies provider errors by inspecting the
	// message for confirmation/verification wording.
	ErrEmailNotConfirmed = errors.New("email not confirmed: verification pending")
	// ErrEmailTaken is returned when the tenant already has a credential for
	// the address.
	ErrEmailTaken = errors.New("email already registered for tenant")
	// ErrNotFound is returned for unknown principals, emails and tokens.
	ErrNotFound = errors.New("credential not found")
)

// Credential is an email+password identity bound to exactly one tenant.
// Passwords are bcrypt-hashed at rest; the hash never leaves the store.
type Credential struct {
	PrincipalID string
	TenantID    string
	Email       string
	Confirmed   bool
	CreatedAt   time.Time
}

type Store interface {
	// Create hashes the password and persists a new unconfirmed credential,
	// returning its principal id and confirmation token.
	Create(ctx context.Context, tenantID, email, password string) (Credential, string, error)
	// Verify checks the password for the given principal. Order matters:
	// a wrong password is ErrInvalidCredentials even for unconfirmed
	// accounts; a right password on an unconfirmed account is
	// ErrEmailNotConfirmed.
	Verify(ctx context.Context, principalID, password string) (Credential, error)
	ByEmail(ctx context.Context, email string) (Credential, error)
	ByPrincipal(ctx context.Context, principalID string) (Credential, error)
	// Confirm flips the confirmed flag for a valid confirmation token.
	Confirm(ctx context.Context, token string) error
	// NewConfirmToken rotates and returns the confirmation token (resend flow).
	NewConfirmToken(ctx context.Context, principalID string) (string, error)
	// NewResetToken issues a password-reset token for the tenant's credential
	// with that email. Credentials are tenant-scoped, so the same address on
	// another tenant is untouched.
	NewResetToken(ctx context.Context, tenantID, email string) (string, error)
	// ResetPassword consumes a reset token and replaces the password hash.
	ResetPassword(ctx context.Context, token, newPassword string) error
}
