// internal/accounts/memory.go
package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type memCredential struct {
	Credential
	hash         []byte
	confirmToken string
	resetToken   string
}

type memStore struct {
	mu          sync.RWMutex
	byPrincipal map[string]*memCredential
}

func NewMemoryStore() Store {
	return &memStore{byPrincipal: map[string]*memCredential{}}
}

func (m *memStore) Create(ctx context.Context, tenantID, email, password string) (Credential, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Credential{}, "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byPrincipal {
		if c.TenantID == tenantID && c.Email == email {
			return Credential{}, "", ErrEmailTaken
		}
	}
	mc := &memCredential{
		Credential:   Credential{PrincipalID: uuid.NewString(), TenantID: tenantID, Email: email, CreatedAt: time.Now()},
		hash:         hash,
		confirmToken: uuid.NewString(),
	}
	m.byPrincipal[mc.PrincipalID] = mc
	return mc.Credential, mc.confirmToken, nil
}

func (m *memStore) Verify(ctx context.Context, principalID, password string) (Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.byPrincipal[principalID]
	if !ok {
		return Credential{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(c.hash, []byte(password)) != nil {
		return Credential{}, ErrInvalidCredentials
	}
	if !c.Confirmed {
		return Credential{}, ErrEmailNotConfirmed
	}
	return c.Credential, nil
}

func (m *memStore) ByEmail(ctx context.Context, email string) (Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.byPrincipal {
		if c.Email == email {
			return c.Credential, nil
		}
	}
	return Credential{}, ErrNotFound
}

func (m *memStore) ByPrincipal(ctx context.Context, principalID string) (Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.byPrincipal[principalID]; ok {
		return c.Credential, nil
	}
	return Credential{}, ErrNotFound
}

func (m *memStore) Confirm(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byPrincipal {
		if c.confirmToken != "" && c.confirmToken == token {
			c.Confirmed = true
			c.confirmToken = ""
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) NewConfirmToken(ctx context.Context, principalID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byPrincipal[principalID]
	if !ok || c.Confirmed {
		return "", ErrNotFound
	}
	c.confirmToken = uuid.NewString()
	return c.confirmToken, nil
}

func (m *memStore) NewResetToken(ctx context.Context, tenantID, email string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byPrincipal {
		if c.TenantID == tenantID && c.Email == email {
			c.resetToken = uuid.NewString()
			return c.resetToken, nil
		}
	}
	return "", ErrNotFound
}

func (m *memStore) ResetPassword(ctx context.Context, token, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byPrincipal {
		if c.resetToken != "" && c.resetToken == token {
			c.hash = hash
			c.resetToken = ""
			return nil
		}
	}
	return ErrNotFound
}
