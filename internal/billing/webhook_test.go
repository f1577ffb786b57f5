package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func post(h http.HandlerFunc, body, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/billing", strings.NewReader(body))
	if sig != "" {
		req.Header.Set("X-Billing-Signature", sig)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestWebhookSignatureChecks(t *testing.T) {
	const secret = "whsec_test"
	h := Handler(secret, nil, zap.NewNop().Sugar())
	body := `{"type":"invoice.created","tenant_id":"t1"}`

	if rec := post(h, body, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing signature status = %d", rec.Code)
	}
	if rec := post(h, body, "deadbeef"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong signature status = %d", rec.Code)
	}
	// Signature over different bytes must not transfer.
	if rec := post(h, body, sign(secret, `{"type":"other"}`)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("transplanted signature status = %d", rec.Code)
	}
	if rec := post(h, body, sign(secret, body)); rec.Code != http.StatusOK {
		t.Fatalf("valid signature status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestWebhookRejectsMalformedEvents(t *testing.T) {
	const secret = "whsec_test"
	h := Handler(secret, nil, zap.NewNop().Sugar())

	for _, body := range []string{
		`not json`,
		`{"type":"checkout.completed"}`, // no tenant
		`{}`,
	} {
		if rec := post(h, body, sign(secret, body)); rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q status = %d", body, rec.Code)
		}
	}
}

func TestWebhookIgnoresUnknownEventTypes(t *testing.T) {
	const secret = "whsec_test"
	h := Handler(secret, nil, zap.NewNop().Sugar())
	body := `{"type":"invoice.finalized","tenant_id":"t1"}`

	rec := post(h, body, sign(secret, body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); !strings.Contains(got, `"received":true`) {
		t.Fatalf("body = %s", got)
	}
}
