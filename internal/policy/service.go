// internal/policy/service.go
package policy

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/open-policy-agent/opa/rego"
)

// defaultModule is the built-in slug admission policy: reserved platform
// names are rejected and slugs must be valid lowercase DNS-ish labels.
// Provisioning consults this; the request-path resolver keeps its own
// constant list and never evaluates rego.
const defaultModule = `package panel.admission

reserved := {"admin", "api", "auth", "integrations", "tenant", "www", "app", "dashboard"}

default allow = false

allow {
	not reserved[input.slug]
	regex.match("^[a-z0-9]([a-z0-9-]{0,38}[a-z0-9])?$", input.slug)
}

reasons[r] {
	reserved[input.slug]
	r := "reserved_name"
}

reasons[r] {
	not regex.match("^[a-z0-9]([a-z0-9-]{0,38}[a-z0-9])?$", input.slug)
	r := "invalid_label"
}

decide := {"allow": allow, "reasons": reasons}
`

type Decision struct {
	Allow   bool     `json:"allow"`
	Reasons []string `json:"reasons,omitempty"`
}

// EnsureSchema creates the policy override table. Idempotent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS admission_policies (
  version BIGSERIAL PRIMARY KEY,
  rego text NOT NULL,
  published boolean NOT NULL DEFAULT false,
  created_at timestamptz NOT NULL DEFAULT NOW()
);`)
	return err
}

// EvaluateSlug runs the latest published admission policy (or the built-in
// default) against a proposed slug. Evaluation failure denies: a broken
// override must not open provisioning up.
func EvaluateSlug(ctx context.Context, pool *pgxpool.Pool, slug string) (Decision, error) {
	mod := defaultModule
	if pool != nil {
		var override string
		_ = pool.QueryRow(ctx, `SELECT rego FROM admission_policies
			WHERE published ORDER BY version DESC LIMIT 1`).Scan(&override)
		if override != "" {
			mod = override
		}
	}
	r := rego.New(
		rego.Query("data.panel.admission.decide"),
		rego.Module("admission.rego", mod),
		rego.Input(map[string]any{"slug": slug}),
	)
	rs, err := r.Eval(ctx)
	if err != nil || len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return Decision{Allow: false, Reasons: []string{"policy_error"}}, err
	}
	dec := Decision{}
	if m, ok := rs[0].Expressions[0].Value.(map[string]any); ok {
		dec.Allow, _ = m["allow"].(bool)
		if rr, ok := m["reasons"].([]any); ok {
			for _, v := range rr {
				if s, ok := v.(string); ok {
					dec.Reasons = append(dec.Reasons, s)
				}
			}
		}
	}
	return dec, nil
}
