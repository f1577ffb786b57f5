// internal/accounts/postgres.go
package accounts

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type pgStore struct {
	dbPool *pgxpool.Pool
	log    *zap.SugaredLogger
}

func NewPostgresStore(dbPool *pgxpool.Pool, log *zap.SugaredLogger) Store {
	return &pgStore{dbPool: dbPool, log: log}
}

// EnsureSchema creates the credentials table. Idempotent.
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS credentials (
  principal_id uuid PRIMARY KEY,
  tenant_id uuid NOT NULL,
  email text NOT NULL,
  password_hash text NOT NULL,
  confirmed boolean NOT NULL DEFAULT false,
  confirm_token text,
  reset_token text,
  created_at timestamptz NOT NULL DEFAULT NOW(),
  UNIQUE (tenant_id, email)
);
`)
	return err
}

func (p *pgStore) Create(ctx context.Context, tenantID, email, password string) (Credential, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Credential{}, "", err
	}
	pid := uuid.NewString()
	token := uuid.NewString()
	tag, err := p.dbPool.Exec(ctx, `INSERT INTO credentials(principal_id,tenant_id,email,password_hash,confirm_token)
		VALUES ($1,$2,$3,$4,$5) ON CONFLICT (tenant_id,email) DO NOTHING`, pid, tenantID, email, string(hash), token)
	if err != nil {
		return Credential{}, "", err
	}
	if tag.RowsAffected() == 0 {
		return Credential{}, "", ErrEmailTaken
	}
	c, err := p.ByPrincipal(ctx, pid)
	return c, token, err
}

func (p *pgStore) Verify(ctx context.Context, principalID, password string) (Credential, error) {
	var c Credential
	var hash string
	err := p.dbPool.QueryRow(ctx, `SELECT principal_id,tenant_id,email,confirmed,created_at,password_hash
		FROM credentials WHERE principal_id=$1`, principalID).
		Scan(&c.PrincipalID, &c.TenantID, &c.Email, &c.Confirmed, &c.CreatedAt, &hash)
	if err != nil {
		return Credential{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return Credential{}, ErrInvalidCredentials
	}
	if !c.Confirmed {
		return Credential{}, ErrEmailNotConfirmed
	}
	return c, nil
}

func (p *pgStore) ByEmail(ctx context.Context, email string) (Credential, error) {
	return p.scan(p.dbPool.QueryRow(ctx, `SELECT principal_id,tenant_id,email,confirmed,created_at
		FROM credentials WHERE email=$1 ORDER BY created_at ASC LIMIT 1`, email))
}

func (p *pgStore) ByPrincipal(ctx context.Context, principalID string) (Credential, error) {
	return p.scan(p.dbPool.QueryRow(ctx, `SELECT principal_id,tenant_id,email,confirmed,created_at
		FROM credentials WHERE principal_id=$1`, principalID))
}

type row interface{ Scan(dest ...any) error }

func (p *pgStore) scan(r row) (Credential, error) {
	var c Credential
	if err := r.Scan(&c.PrincipalID, &c.TenantID, &c.Email, &c.Confirmed, &c.CreatedAt); err != nil {
		return Credential{}, ErrNotFound
	}
	return c, nil
}

func (p *pgStore) Confirm(ctx context.Context, token string) error {
	tag, err := p.dbPool.Exec(ctx, `UPDATE credentials SET confirmed=true, confirm_token=NULL
		WHERE confirm_token=$1`, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *pgStore) NewConfirmToken(ctx context.Context, principalID string) (string, error) {
	token := uuid.NewString()
	tag, err := p.dbPool.Exec(ctx, `UPDATE credentials SET confirm_token=$1
		WHERE principal_id=$2 AND confirmed=false`, token, principalID)
	if err != nil {
		return "", err
	}
	if tag.RowsAffected() == 0 {
		return "", ErrNotFound
	}
	return token, nil
}

func (p *pgStore) NewResetToken(ctx context.Context, tenantID, email string) (string, error) {
	token := uuid.NewString()
	tag, err := p.dbPool.Exec(ctx, `UPDATE credentials SET reset_token=$1
		WHERE tenant_id=$2 AND email=$3`, token, tenantID, email)
	if err != nil {
		return "", err
	}
	if tag.RowsAffected() == 0 {
		return "", ErrNotFound
	}
	return token, nil
}

func (p *pgStore) ResetPassword(ctx context.Context, token, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	tag, err := p.dbPool.Exec(ctx, `UPDATE credentials SET password_hash=$1, reset_token=NULL
		WHERE reset_token=$2`, string(hash), token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
