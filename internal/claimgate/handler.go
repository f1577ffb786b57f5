// internal/claimgate/handler.go
package claimgate

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"voxpanel/pkg/middleware"
	"voxpanel/pkg/problems"
	"voxpanel/pkg/tenants"
)

const sessionCookie = "voxpanel_session"

// Routes mounts the gate's HTTP surface under the internal tenant namespace.
// The host resolver has already rewritten external URLs into
// /tenant/{slug}/...; WithTenant has attached the tenant when it resolved.
func Routes(r chi.Router, svc *Service) {
	r.Route(middleware.TenantPathPrefix+"/{slug}", func(tr chi.Router) {
		tr.Get("/", svc.handleProbe)
		tr.Get("/dashboard", svc.handleDashboard)
		tr.Get("/dashboard/*", svc.handleDashboard)
		tr.Post("/claim", svc.handleClaim)
		tr.Post("/signin", svc.handleSignIn)
		tr.Post("/signout", svc.handleSignOut)
		tr.Post("/reset", svc.handleReset)
		tr.Post("/reset/complete", svc.handleResetComplete)
		tr.Post("/resend-confirmation", svc.handleResend)
		tr.Get("/confirm", svc.handleConfirm)
	})
}

func (s *Service) tenant(r *http.Request) (tenants.Tenant, error) {
	if t, ok := middleware.TenantFrom(r.Context()); ok {
		return t, nil
	}
	return s.Resolve(r.Context(), chi.URLParam(r, "slug"), r.Host)
}

func (s *Service) sessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// handleProbe reports which flow applies without side effects.
func (s *Service) handleProbe(w http.ResponseWriter, r *http.Request) {
	t, err := s.tenant(r)
	if err != nil {
		writeError(w, err)
		return
	}
	st, err := s.State(r.Context(), t, s.sessionToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"tenant": t.Slug, "display_name": t.DisplayName, "state": st}, http.StatusOK)
}

// handleDashboard is the terminal branch: render for the authenticated
// owner, otherwise report the flow the UI should present.
func (s *Service) handleDashboard(w http.ResponseWriter, r *http.Request) {
	t, err := s.tenant(r)
	if err != nil {
		writeError(w, err)
		return
	}
	st, err := s.State(r.Context(), t, s.sessionToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if st != StateClaimedAuthenticated {
		writeJSON(w, map[string]any{"tenant": t.Slug, "state": st}, http.StatusOK)
		return
	}
	writeJSON(w, map[string]any{
		"tenant":          t.Slug,
		"display_name":    t.DisplayName,
		"state":           st,
		"setup_completed": t.SetupCompleted,
	}, http.StatusOK)
}

type claimBody struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (s *Service) handleClaim(w http.ResponseWriter, r *http.Request) {
	t, err := s.tenant(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var b claimBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := s.Claim(r.Context(), t, b.Email, b.Password, b.ConfirmPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "state": StateClaimedUnauthenticated}, http.StatusCreated)
}

func (s *Service) handleSignIn(w http.ResponseWriter, r *http.Request) {
	t, err := s.tenant(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var b struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	sess, err := s.SignIn(r.Context(), t, b.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, map[string]any{"ok": true, "state": StateClaimedAuthenticated}, http.StatusOK)
}

func (s *Service) handleReset(w http.ResponseWriter, r *http.Request) {
	t, err := s.tenant(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var b struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := s.RequestReset(r.Context(), t, b.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}

func (s *Service) handleResetComplete(w http.ResponseWriter, r *http.Request) {
	var b struct {
		Token           string `json:"token"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := s.CompleteReset(r.Context(), b.Token, b.Password, b.ConfirmPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}

func (s *Service) handleSignOut(w http.ResponseWriter, r *http.Request) {
	s.SignOut(r.Context(), s.sessionToken(r))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}

func (s *Service) handleResend(w http.ResponseWriter, r *http.Request) {
	t, err := s.tenant(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.ResendConfirmation(r.Context(), t); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}

func (s *Service) handleConfirm(w http.ResponseWriter, r *http.Request) {
	if err := s.Confirm(r.Context(), r.URL.Query().Get("token")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders the taxonomy entry as an RFC 7807 style payload.
func writeError(w http.ResponseWriter, err error) {
	ge := AsError(err)
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(ge.Status())
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   problems.Type(string(ge.Code)),
		"title":  ge.Message,
		"status": ge.Status(),
		"code":   ge.Code,
	})
}
