// internal/billing/webhook.go
package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Event is the slice of the billing payload the panel cares about. All other
// billing logic lives with the payment platform; only tenant-state
// transitions happen here.
type Event struct {
	Type     string `json:"type"`
	TenantID string `json:"tenant_id"`
	Plan     string `json:"plan"`
}

// Handler verifies the shared-secret HMAC signature and applies the event's
// tenant-state transition. Unknown event types are acknowledged and ignored.
func Handler(secret string, db *pgxpool.Pool, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		if secret != "" && !validSignature(secret, body, r.Header.Get("X-Billing-Signature")) {
			http.Error(w, "bad signature", http.StatusUnauthorized)
			return
		}
		var ev Event
		if err := json.Unmarshal(body, &ev); err != nil || ev.TenantID == "" {
			http.Error(w, "bad event", http.StatusBadRequest)
			return
		}
		switch ev.Type {
		case "checkout.completed":
			_, err = db.Exec(r.Context(), `UPDATE tenants SET setup_completed=true, updated_at=NOW() WHERE id=$1`, ev.TenantID)
		case "subscription.updated":
			_, err = db.Exec(r.Context(), `INSERT INTO panel_settings(tenant_id,plan,updated_at)
				VALUES ($1,$2,NOW())
				ON CONFLICT (tenant_id) DO UPDATE SET plan=EXCLUDED.plan, updated_at=NOW()`, ev.TenantID, ev.Plan)
		default:
			log.Debugw("billing event ignored", "type", ev.Type)
		}
		if err != nil {
			log.Errorw("billing event apply", "type", ev.Type, "tenant", ev.TenantID, "err", err)
			http.Error(w, "apply failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"received":true}`))
	}
}

func validSignature(secret string, body []byte, sig string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := hex.EncodeToString(mac.Sum(nil))
	return sig != "" && hmac.Equal([]byte(want), []byte(sig))
}
