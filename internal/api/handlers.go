package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/signature-relay/internal/domain"
	"github.com/ignite/signature-relay/internal/pkg/httputil"
)

// StatsReader is the slice of the tracking service the stats API needs.
type StatsReader interface {
	Stats(ctx context.Context, bannerID string) (*domain.BannerStats, error)
}

// Handlers holds dependencies for the dashboard-facing endpoints.
type Handlers struct {
	stats StatsReader
	db    *sql.DB
}

// NewHandlers creates the API handlers. db may be nil in tests; the health
// check then skips the ping.
func NewHandlers(stats StatsReader, db *sql.DB) *Handlers {
	return &Handlers{stats: stats, db: db}
}

// HealthCheck reports liveness and database reachability.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status = "degraded"
		}
	}
	httputil.OK(w, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now(),
	})
}

// BannerStats returns the aggregate view/click counts for one banner.
func (h *Handlers) BannerStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.BadRequest(w, "missing banner id")
		return
	}
	st, err := h.stats.Stats(r.Context(), id)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{
		"success": true,
		"stats":   st,
	})
}
