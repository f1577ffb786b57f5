// internal/mailer/mailer.go
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"voxpanel/pkg/config"
)

// Sender dispatches the two transactional messages the claim gate needs.
// The panel never talks to the email platform except through this interface.
type Sender interface {
	SendConfirmation(ctx context.Context, to, tenantSlug, token string) error
	SendPasswordReset(ctx context.Context, to, tenantSlug, token string) error
}

// New returns the HTTP-API sender when MAILER_URL is configured, and a
// log-only dev sender otherwise.
func New(cfg config.Config, log *zap.SugaredLogger) Sender {
	if cfg.MailerURL == "" {
		return &logSender{log: log}
	}
	return &httpSender{
		url:   cfg.MailerURL,
		token: cfg.MailerToken,
		from:  cfg.MailFrom,
		cli:   &http.Client{Timeout: 10 * time.Second},
		log:   log,
	}
}

// httpSender posts JSON to a transactional-email API endpoint.
type httpSender struct {
	url   string
	token string
	from  string
	cli   *http.Client
	log   *zap.SugaredLogger
}

func (s *httpSender) send(ctx context.Context, to, template string, vars map[string]string) error {
	body, _ := json.Marshal(map[string]any{
		"from":     s.from,
		"to":       to,
		"template": template,
		"vars":     vars,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.cli.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mailer: %s returned %d", template, resp.StatusCode)
	}
	return nil
}

func (s *httpSender) SendConfirmation(ctx context.Context, to, tenantSlug, token string) error {
	return s.send(ctx, to, "owner-confirmation", map[string]string{"tenant": tenantSlug, "token": token})
}

func (s *httpSender) SendPasswordReset(ctx context.Context, to, tenantSlug, token string) error {
	return s.send(ctx, to, "password-reset", map[string]string{"tenant": tenantSlug, "token": token})
}

// logSender is the dev fallback; it only logs what would have been sent.
type logSender struct {
	log *zap.SugaredLogger
}

func (s *logSender) SendConfirmation(ctx context.Context, to, tenantSlug, token string) error {
	s.log.Infow("mail (dev): confirmation", "to", to, "tenant", tenantSlug, "token", token)
	return nil
}

func (s *logSender) SendPasswordReset(ctx context.Context, to, tenantSlug, token string) error {
	s.log.Infow("mail (dev): password reset", "to", to, "tenant", tenantSlug, "token", token)
	return nil
}
