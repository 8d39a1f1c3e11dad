package relay

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/signature-relay/internal/pkg/httputil"
	"github.com/ignite/signature-relay/internal/pkg/logger"
)

// SecretStore validates the optional x-relay-secret header against the
// active relay configurations.
type SecretStore interface {
	IsActiveSecret(ctx context.Context, secret string) (bool, error)
}

// Handler is the relay ingress endpoint.
type Handler struct {
	pipeline *Pipeline
	secrets  SecretStore
	dedup    Deduper
}

// NewHandler creates the ingress handler. secrets and dedup may be nil;
// a nil secrets store accepts every request (open-webhook mode) and a nil
// deduper disables message-id dedup.
func NewHandler(pipeline *Pipeline, secrets SecretStore, dedup Deduper) *Handler {
	return &Handler{pipeline: pipeline, secrets: secrets, dedup: dedup}
}

// Register attaches the relay ingress to r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/relay", h.HandleInbound)
}

// Routes returns a standalone router for the relay ingress.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

// HandleInbound receives one webhook delivery and runs it through the
// pipeline. Guard checks run before the body is even parsed; a guarded
// request is a successful no-op, not an error.
func (h *Handler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	// Secret check first: an unauthorized caller learns nothing else.
	if secret := r.Header.Get(HeaderRelaySecret); secret != "" {
		if h.secrets == nil {
			httputil.Unauthorized(w, "relay secret not accepted")
			return
		}
		ok, err := h.secrets.IsActiveSecret(r.Context(), secret)
		if err != nil {
			httputil.InternalError(w, err)
			return
		}
		if !ok {
			httputil.Unauthorized(w, "invalid relay secret")
			return
		}
	}

	if AlreadyProcessed(r.Header) {
		httputil.OK(w, map[string]interface{}{
			"success": true,
			"message": "already processed by relay, skipping duplicate",
		})
		return
	}

	e, err := Normalize(r)
	if err != nil {
		if errors.Is(err, ErrMissingFields) {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.BadRequest(w, "malformed payload: "+err.Error())
		return
	}

	if h.dedup != nil && e.MessageID != "" {
		seen, err := h.dedup.Seen(r.Context(), e.MessageID)
		if err == nil && seen {
			logger.Info("duplicate delivery skipped", "message_id", e.MessageID)
			httputil.OK(w, map[string]interface{}{
				"success":   true,
				"messageId": e.MessageID,
				"message":   "message already processed, skipping duplicate",
			})
			return
		}
	}

	result, err := h.pipeline.Process(r.Context(), e)
	if err != nil {
		logger.Error("relay pipeline failed", "error", err, "message_id", e.MessageID)
		httputil.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	httputil.OK(w, map[string]interface{}{
		"success":       true,
		"messageId":     e.MessageID,
		"forwardResult": result,
	})
}
