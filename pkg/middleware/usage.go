// pkg/middleware/usage.go
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"voxpanel/pkg/db"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// RecordUsage writes one usage_events row per tenant-resolved request,
// best-effort and off the request path. A nil pool disables recording.
func RecordUsage(pool *pgxpool.Pool, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if pool == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t, ok := TenantFrom(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			path := r.URL.Path
			next.ServeHTTP(sw, r)
			dur := time.Since(start)
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				// Insert under a tenant transaction so the usage_events RLS
				// policy sees the right tenant.
				tx, err := db.BeginTxWithTenant(ctx, pool, t.ID)
				if err != nil {
					log.Debugw("usage event", "tenant", t.ID, "err", err)
					return
				}
				if _, err := tx.Exec(ctx, `INSERT INTO usage_events(tenant_id,kind,path,status_code,duration_ms)
					VALUES ($1,'panel',$2,$3,$4)`, t.ID, path, sw.status, dur.Milliseconds()); err != nil {
					_ = tx.Rollback(ctx)
					log.Debugw("usage event", "tenant", t.ID, "err", err)
					return
				}
				if err := tx.Commit(ctx); err != nil {
					log.Debugw("usage event", "tenant", t.ID, "err", err)
				}
			}()
		})
	}
}
