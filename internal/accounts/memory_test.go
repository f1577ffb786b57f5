package accounts

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestVerifyOrderOfChecks(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	cred, token, err := st.Create(ctx, "t1", "owner@example.com", "password123")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Wrong password is InvalidCredentials even while unconfirmed: the
	// password check comes before the confirmation check.
	if _, err := st.Verify(ctx, cred.PrincipalID, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := st.Verify(ctx, cred.PrincipalID, "password123"); !errors.Is(err, ErrEmailNotConfirmed) {
		t.Fatalf("unconfirmed err = %v", err)
	}
	if _, err := st.Verify(ctx, "no-such-principal", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown principal err = %v", err)
	}

	if err := st.Confirm(ctx, token); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	got, err := st.Verify(ctx, cred.PrincipalID, "password123")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.PrincipalID != cred.PrincipalID || !got.Confirmed {
		t.Fatalf("credential = %+v", got)
	}
}

func TestConfirmTokenSingleUse(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	_, token, err := st.Create(ctx, "t1", "owner@example.com", "password123")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.Confirm(ctx, token); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := st.Confirm(ctx, token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second confirm err = %v", err)
	}
	if err := st.Confirm(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty token err = %v", err)
	}
}

func TestEmailUniquePerTenant(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	if _, _, err := st.Create(ctx, "t1", "owner@example.com", "password123"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := st.Create(ctx, "t1", "owner@example.com", "other-password"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate err = %v", err)
	}
	// The same address can own a different tenant.
	if _, _, err := st.Create(ctx, "t2", "owner@example.com", "password123"); err != nil {
		t.Fatalf("create for t2: %v", err)
	}
}

func TestResetPasswordFlow(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	cred, token, err := st.Create(ctx, "t1", "owner@example.com", "password123")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.Confirm(ctx, token); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if _, err := st.NewResetToken(ctx, "t1", "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown email err = %v", err)
	}
	reset, err := st.NewResetToken(ctx, "t1", "owner@example.com")
	if err != nil {
		t.Fatalf("reset token: %v", err)
	}
	if err := st.ResetPassword(ctx, reset, "newpassword456"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := st.ResetPassword(ctx, reset, "again"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("reused reset token err = %v", err)
	}
	if _, err := st.Verify(ctx, cred.PrincipalID, "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password err = %v", err)
	}
	if _, err := st.Verify(ctx, cred.PrincipalID, "newpassword456"); err != nil {
		t.Fatalf("new password: %v", err)
	}
}

// The same address owning two tenants gets two independent reset tokens; a
// reset on one tenant never rewrites the other's password.
func TestResetTokenTenantScoped(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	a, tokA, err := st.Create(ctx, "t1", "owner@example.com", "password-a1")
	if err != nil {
		t.Fatalf("create t1: %v", err)
	}
	b, tokB, err := st.Create(ctx, "t2", "owner@example.com", "password-b1")
	if err != nil {
		t.Fatalf("create t2: %v", err)
	}
	for _, tok := range []string{tokA, tokB} {
		if err := st.Confirm(ctx, tok); err != nil {
			t.Fatalf("confirm: %v", err)
		}
	}

	reset, err := st.NewResetToken(ctx, "t1", "owner@example.com")
	if err != nil {
		t.Fatalf("reset token: %v", err)
	}
	if err := st.ResetPassword(ctx, reset, "password-a2"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := st.Verify(ctx, a.PrincipalID, "password-a2"); err != nil {
		t.Fatalf("t1 new password: %v", err)
	}
	if _, err := st.Verify(ctx, b.PrincipalID, "password-b1"); err != nil {
		t.Fatalf("t2 password must be untouched: %v", err)
	}
}

func TestSessionsMemoryFallback(t *testing.T) {
	s := NewSessions(nil, time.Hour)
	ctx := context.Background()

	sess, err := s.Issue(ctx, "t1", "p1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	got, ok := s.Get(ctx, sess.Token)
	if !ok || got.TenantID != "t1" || got.PrincipalID != "p1" {
		t.Fatalf("get = %+v, %v", got, ok)
	}
	if _, ok := s.Get(ctx, ""); ok {
		t.Fatal("empty token must not resolve")
	}
	if _, ok := s.Get(ctx, "unknown"); ok {
		t.Fatal("unknown token must not resolve")
	}

	s.Revoke(ctx, sess.Token)
	if _, ok := s.Get(ctx, sess.Token); ok {
		t.Fatal("revoked token must not resolve")
	}
}

func TestSessionsExpire(t *testing.T) {
	s := NewSessions(nil, -time.Second)
	sess, err := s.Issue(context.Background(), "t1", "p1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, ok := s.Get(context.Background(), sess.Token); ok {
		t.Fatal("expired session must not resolve")
	}
}
