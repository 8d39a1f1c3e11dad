package tracking

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/signature-relay/internal/pkg/httputil"
)

// 1x1 transparent GIF
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
	0x80, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x2c,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02,
	0x02, 0x44, 0x01, 0x00, 0x3b,
}

// Handler serves the view-pixel and click-redirect endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a tracking HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register attaches the tracking endpoints to r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/track/view.gif", h.HandleView)
	r.Get("/track/view", h.HandleView)
	r.Post("/track/view", h.HandleView)
	r.Get("/track/click", h.HandleClick)
	r.Post("/track/click", h.HandleClick)
}

// Routes returns a standalone router for the tracking endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

// HandleView records a view event and serves the pixel. The pixel is served
// on every path through this handler, including total tracking failure:
// a broken image in the recipient's mail client is never acceptable.
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	in := ViewInput{
		TrackingID: param(r, "tid"),
		BannerID:   param(r, "banner_id"),
		Recipient:  param(r, "user_email"),
		UserAgent:  r.UserAgent(),
		IPAddress:  realIP(r),
		Referrer:   r.Referer(),
	}
	h.svc.RecordView(r.Context(), in)
	h.servePixel(w)
}

// HandleClick records a click event and redirects. Humans arrive via GET and
// get a 302 to the click-through URL; programmatic callers POST and get the
// redirect target as JSON.
func (h *Handler) HandleClick(w http.ResponseWriter, r *http.Request) {
	in := ClickInput{
		TrackingID:  param(r, "tid"),
		BannerID:    param(r, "banner_id"),
		CampaignID:  param(r, "campaign_id"),
		Recipient:   param(r, "user_email"),
		Metadata:    param(r, "metadata"),
		OriginalURL: param(r, "url"),
		UserAgent:   r.UserAgent(),
		IPAddress:   realIP(r),
		Referrer:    r.Referer(),
	}

	redirect, err := h.svc.RecordClick(r.Context(), in)
	if err != nil {
		status := http.StatusNotFound
		msg := "banner not found"
		if errors.Is(err, ErrNoRedirect) {
			msg = "banner has no click-through URL"
		} else if !errors.Is(err, ErrBannerNotFound) {
			status = http.StatusInternalServerError
			msg = "click tracking failed"
		}
		httputil.JSON(w, status, map[string]interface{}{
			"success":      false,
			"redirect_url": nil,
			"message":      msg,
		})
		return
	}

	if r.Method == http.MethodGet {
		http.Redirect(w, r, redirect, http.StatusFound)
		return
	}
	httputil.OK(w, map[string]interface{}{
		"success":      true,
		"redirect_url": redirect,
		"message":      "click recorded",
	})
}

func (h *Handler) servePixel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Write(pixelGIF)
}

// param reads a value from the query string, falling back to a form field
// for POST bodies.
func param(r *http.Request, key string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	if r.Method == http.MethodPost {
		return r.PostFormValue(key)
	}
	return ""
}

func realIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
