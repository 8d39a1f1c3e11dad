package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/ignite/signature-relay/internal/domain"
)

// ErrMissingFields marks a payload that lacks from, to or subject. The
// request is rejected before any side effect.
var ErrMissingFields = errors.New("payload missing from, to or subject")

// jsonPayload is the direct-POST shape. `to` may arrive as a string or an
// array, and the HTML body under any of htmlBody/html/text.
type jsonPayload struct {
	From      string          `json:"from"`
	To        json.RawMessage `json:"to"`
	Subject   string          `json:"subject"`
	HTMLBody  string          `json:"htmlBody"`
	HTML      string          `json:"html"`
	Text      string          `json:"text"`
	TextBody  string          `json:"textBody"`
	MessageID string          `json:"messageId"`
}

// Normalize turns whatever shape the webhook delivered into the canonical
// Email record. Dispatches on Content-Type: JSON for direct posts, multipart
// or urlencoded forms for inbound-parse webhooks (which may carry a raw MIME
// blob under an "email" field).
func Normalize(r *http.Request) (*domain.Email, error) {
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "application/json"):
		return normalizeJSON(r)
	case strings.HasPrefix(ct, "multipart/form-data"),
		strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		return normalizeForm(r)
	default:
		return nil, fmt.Errorf("unsupported content type %q", ct)
	}
}

func normalizeJSON(r *http.Request) (*domain.Email, error) {
	var p jsonPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode JSON payload: %w", err)
	}

	e := &domain.Email{
		From:    p.From,
		To:      parseRecipients(p.To),
		Subject: p.Subject,
		// "text" is the last-resort key for the HTML body, not the plain
		// body: direct posts that only carry "text" still get full injection.
		HTMLBody:  firstNonEmpty(p.HTMLBody, p.HTML, p.Text),
		TextBody:  p.TextBody,
		MessageID: p.MessageID,
	}
	return validated(e)
}

func normalizeForm(r *http.Request) (*domain.Email, error) {
	// 10 MB in-memory cap; inbound-parse messages beyond that spill to disk.
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}

	field := func(keys ...string) string {
		for _, k := range keys {
			if v := r.PostFormValue(k); v != "" {
				return v
			}
		}
		return ""
	}

	e := &domain.Email{
		From:      field("from"),
		To:        splitRecipients(field("to")),
		Subject:   field("subject"),
		HTMLBody:  field("html", "body-html"),
		TextBody:  field("text", "body-plain"),
		MessageID: field("messageId", "message-id"),
	}

	// Raw MIME blob: extract the first text/html and text/plain parts.
	if raw := field("email"); raw != "" && e.HTMLBody == "" && e.TextBody == "" {
		e.HTMLBody, e.TextBody = extractMIMEParts(raw)
		if e.MessageID == "" {
			e.MessageID = extractMessageID(raw)
		}
	}
	return validated(e)
}

func validated(e *domain.Email) (*domain.Email, error) {
	if e.From == "" || len(e.To) == 0 || e.Subject == "" {
		return nil, ErrMissingFields
	}
	return e, nil
}

// parseRecipients accepts both `"a@b.c"` and `["a@b.c","d@e.f"]`.
func parseRecipients(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return cleanRecipients(list)
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return splitRecipients(single)
	}
	return nil
}

func splitRecipients(s string) []string {
	if s == "" {
		return nil
	}
	return cleanRecipients(strings.Split(s, ","))
}

func cleanRecipients(in []string) []string {
	var out []string
	for _, r := range in {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

var (
	htmlPartRegex  = regexp.MustCompile(`(?si)Content-Type:\s*text/html[^\n]*\n(?:[^\r\n]+\r?\n)*\r?\n(.*?)(?:\r?\n--|\z)`)
	textPartRegex  = regexp.MustCompile(`(?si)Content-Type:\s*text/plain[^\n]*\n(?:[^\r\n]+\r?\n)*\r?\n(.*?)(?:\r?\n--|\z)`)
	messageIDRegex = regexp.MustCompile(`(?mi)^Message-ID:\s*<?([^>\r\n]+)>?`)
)

// extractMIMEParts pulls the first text/html and text/plain parts out of a
// raw MIME message by boundary-delimited pattern matching. Deliberately
// basic: no nested multipart walking, no transfer-encoding decode. Callers
// depend on this lossy extraction; upgrading it to a real MIME parser is a
// behavior change, not a cleanup.
func extractMIMEParts(raw string) (html, text string) {
	if m := htmlPartRegex.FindStringSubmatch(raw); m != nil {
		html = strings.TrimSpace(m[1])
	}
	if m := textPartRegex.FindStringSubmatch(raw); m != nil {
		text = strings.TrimSpace(m[1])
	}
	return html, text
}

func extractMessageID(raw string) string {
	if m := messageIDRegex.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
