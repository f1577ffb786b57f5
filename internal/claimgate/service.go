// internal/claimgate/service.go
package claimgate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"voxpanel/internal/accounts"
	"voxpanel/internal/mailer"
	"voxpanel/pkg/tenants"
)

// State is where a tenant request lands before any dashboard content renders.
type State string

const (
	StateNoTenant               State = "NO_TENANT"
	StateUnclaimed              State = "UNCLAIMED"
	StateClaimedUnauthenticated State = "CLAIMED_UNAUTHENTICATED"
	StateClaimedAuthenticated   State = "CLAIMED_AUTHENTICATED"
)

// Service decides, per resolved tenant, which of three flows applies:
// claim-account, sign-in, or the authenticated dashboard. Visiting the gate
// mutates nothing; only explicit claim/sign-in submissions do.
type Service struct {
	tenants  tenants.Provider
	creds    accounts.Store
	sessions *accounts.Sessions
	mail     mailer.Sender
	minLen   int
	log      *zap.SugaredLogger
}

func New(prov tenants.Provider, creds accounts.Store, sessions *accounts.Sessions, mail mailer.Sender, minPasswordLen int, log *zap.SugaredLogger) *Service {
	return &Service{tenants: prov, creds: creds, sessions: sessions, mail: mail, minLen: minPasswordLen, log: log}
}

// Resolve looks the tenant up by slug, then by request host, mirroring the
// resolver's equivalence of path-based and host-based identity. Only a
// definitive not-found from the store concludes the tenant is absent; a
// failing store surfaces as the generic fallback instead.
func (s *Service) Resolve(ctx context.Context, slug, host string) (tenants.Tenant, error) {
	if slug != "" {
		t, err := s.tenants.ResolveBySlug(ctx, slug)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, tenants.ErrNotFound) {
			s.log.Errorw("resolve tenant", "slug", slug, "err", err)
			return tenants.Tenant{}, AsError(err)
		}
	}
	t, err := s.tenants.ResolveByHost(ctx, host)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, tenants.ErrNotFound) {
		s.log.Errorw("resolve tenant", "host", host, "err", err)
		return tenants.Tenant{}, AsError(err)
	}
	return tenants.Tenant{}, gateErr(CodeTenantNotFound, "no such workspace")
}

// State classifies the current request against the claim/auth branches.
// Idempotent: with no intervening claim or sign-in it always answers the
// same for the same tenant and session.
func (s *Service) State(ctx context.Context, t tenants.Tenant, sessionToken string) (State, error) {
	claimed, err := s.tenants.IsClaimed(ctx, t.ID)
	if err != nil {
		return StateNoTenant, AsError(err)
	}
	if !claimed {
		return StateUnclaimed, nil
	}
	sess, ok := s.sessions.Get(ctx, sessionToken)
	if !ok || sess.TenantID != t.ID {
		return StateClaimedUnauthenticated, nil
	}
	claim, err := s.tenants.OwnerClaim(ctx, t.ID)
	if err != nil || claim.PrincipalID != sess.PrincipalID {
		return StateClaimedUnauthenticated, nil
	}
	return StateClaimedAuthenticated, nil
}

// Claim creates the owner credential and the owner-claim row for an
// unclaimed tenant. The storage uniqueness constraint is the arbiter:
// concurrent claims get exactly one winner, the rest see ClaimConflict.
// On success the tenant is CLAIMED_UNAUTHENTICATED until the new
// credential confirms and signs in.
func (s *Service) Claim(ctx context.Context, t tenants.Tenant, email, password, confirmPassword string) error {
	if password != confirmPassword {
		return gateErr(CodePasswordMismatch, "passwords do not match")
	}
	if len(password) < s.minLen {
		return gateErr(CodeWeakPassword, fmt.Sprintf("password must be at least %d characters", s.minLen))
	}
	if claimed, err := s.tenants.IsClaimed(ctx, t.ID); err == nil && claimed {
		return gateErr(CodeClaimConflict, "this workspace already has an owner")
	}
	cred, token, err := s.creds.Create(ctx, t.ID, email, password)
	if err != nil {
		if errors.Is(err, accounts.ErrEmailTaken) {
			return gateErr(CodeClaimConflict, "this workspace already has an owner")
		}
		s.log.Errorw("claim: create credential", "tenant", t.ID, "err", err)
		return AsError(err)
	}
	if err := s.tenants.CreateOwnerClaim(ctx, t.ID, cred.PrincipalID); err != nil {
		if errors.Is(err, tenants.ErrClaimConflict) {
			// Lost the race; the stray credential is never referenced by a
			// claim and cannot sign in.
			return gateErr(CodeClaimConflict, "this workspace already has an owner")
		}
		s.log.Errorw("claim: create owner claim", "tenant", t.ID, "err", err)
		return AsError(err)
	}
	if err := s.mail.SendConfirmation(ctx, email, t.Slug, token); err != nil {
		// The claim itself succeeded; the owner can request a resend.
		s.log.Warnw("claim: confirmation mail", "tenant", t.ID, "err", err)
	}
	return nil
}

// SignIn validates the password against this tenant's owner credential
// specifically. A password that is valid for a different tenant's owner is
// still InvalidCredentials here.
func (s *Service) SignIn(ctx context.Context, t tenants.Tenant, password string) (accounts.Session, error) {
	claim, err := s.tenants.OwnerClaim(ctx, t.ID)
	if err != nil {
		return accounts.Session{}, gateErr(CodeInvalidCredentials, "invalid credentials")
	}
	if _, err := s.creds.Verify(ctx, claim.PrincipalID, password); err != nil {
		if isConfirmationError(err) {
			return accounts.Session{}, gateErr(CodeEmailNotConfirmed, "confirm your email address before signing in")
		}
		return accounts.Session{}, gateErr(CodeInvalidCredentials, "invalid credentials")
	}
	sess, err := s.sessions.Issue(ctx, t.ID, claim.PrincipalID)
	if err != nil {
		s.log.Errorw("signin: issue session", "tenant", t.ID, "err", err)
		return accounts.Session{}, AsError(err)
	}
	return sess, nil
}

// RequestReset triggers the out-of-band reset email. State is unchanged.
// The token is scoped to this tenant's credential for the address.
func (s *Service) RequestReset(ctx context.Context, t tenants.Tenant, email string) error {
	token, err := s.creds.NewResetToken(ctx, t.ID, email)
	if err != nil {
		return gateErr(CodeResetRequestFailed, "could not start a password reset")
	}
	if err := s.mail.SendPasswordReset(ctx, email, t.Slug, token); err != nil {
		s.log.Warnw("reset mail", "tenant", t.ID, "err", err)
		return gateErr(CodeResetRequestFailed, "could not send the reset email")
	}
	return nil
}

// CompleteReset consumes an emailed reset token and sets the new password,
// under the same validation as the initial claim.
func (s *Service) CompleteReset(ctx context.Context, token, password, confirmPassword string) error {
	if password != confirmPassword {
		return gateErr(CodePasswordMismatch, "passwords do not match")
	}
	if len(password) < s.minLen {
		return gateErr(CodeWeakPassword, fmt.Sprintf("password must be at least %d characters", s.minLen))
	}
	if err := s.creds.ResetPassword(ctx, token, password); err != nil {
		return gateErr(CodeInvalidCredentials, "invalid or expired reset link")
	}
	return nil
}

// SignOut revokes the session if one is presented. Idempotent.
func (s *Service) SignOut(ctx context.Context, sessionToken string) {
	if sessionToken != "" {
		s.sessions.Revoke(ctx, sessionToken)
	}
}

// ResendConfirmation rotates the owner's confirmation token and re-sends it.
func (s *Service) ResendConfirmation(ctx context.Context, t tenants.Tenant) error {
	claim, err := s.tenants.OwnerClaim(ctx, t.ID)
	if err != nil {
		return gateErr(CodeTenantNotFound, "no such workspace")
	}
	cred, err := s.creds.ByPrincipal(ctx, claim.PrincipalID)
	if err != nil {
		return AsError(err)
	}
	token, err := s.creds.NewConfirmToken(ctx, claim.PrincipalID)
	if err != nil {
		return AsError(err)
	}
	if err := s.mail.SendConfirmation(ctx, cred.Email, t.Slug, token); err != nil {
		s.log.Warnw("resend confirmation", "tenant", t.ID, "err", err)
		return gateErr(CodeResetRequestFailed, "could not send the confirmation email")
	}
	return nil
}

// Confirm consumes a confirmation token from the emailed link.
func (s *Service) Confirm(ctx context.Context, token string) error {
	if err := s.creds.Confirm(ctx, token); err != nil {
		return gateErr(CodeInvalidCredentials, "invalid or expired confirmation link")
	}
	return nil
}

// isConfirmationError distinguishes "email not confirmed" from "wrong
// password" by the provider's error text, since the auth collaborator does
// not expose a typed code for it.
func isConfirmationError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "confirm") || strings.Contains(msg, "verif")
}
