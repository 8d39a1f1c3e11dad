package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/signature-relay/internal/domain"
	"github.com/ignite/signature-relay/internal/pkg/logger"
)

// SendGridForwarder delivers messages via the SendGrid v3 Mail Send API.
type SendGridForwarder struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewSendGridForwarder creates a SendGrid forwarder. baseURL may be empty
// for the production API.
func NewSendGridForwarder(apiKey, baseURL string) *SendGridForwarder {
	if baseURL == "" {
		baseURL = "https://api.sendgrid.com/v3"
	}
	return &SendGridForwarder{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Forward sends the message to all recipients in a single API call.
func (s *SendGridForwarder) Forward(ctx context.Context, e *domain.Email) (*domain.ForwardResult, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("SendGrid API key not configured")
	}

	to := make([]map[string]string, len(e.To))
	for i, addr := range e.To {
		to[i] = map[string]string{"email": addr}
	}

	fromEmail, fromName := splitAddress(e.From)
	payload := map[string]interface{}{
		"personalizations": []map[string]interface{}{
			{"to": to},
		},
		"from":    map[string]string{"email": fromEmail, "name": fromName},
		"subject": e.Subject,
		"content": contentBlocks(e),
		// The relay carries its own tracking; provider-side rewriting would
		// wrap our wrapped links a second time.
		"tracking_settings": map[string]interface{}{
			"click_tracking": map[string]bool{"enable": false},
			"open_tracking":  map[string]bool{"enable": false},
		},
	}
	if len(e.Headers) > 0 {
		payload["headers"] = e.Headers
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/mail/send", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("SendGrid error %d: %s", resp.StatusCode, string(body))
	}

	messageID := resp.Header.Get("X-Message-Id")
	if messageID == "" {
		messageID = uuid.New().String()
	}

	recipients := make([]domain.RecipientStatus, len(e.To))
	for i, addr := range e.To {
		recipients[i] = domain.RecipientStatus{Email: addr, Accepted: true}
	}

	logger.Info("sendgrid accepted message",
		"message_id", messageID, "from", logger.RedactEmail(fromEmail), "recipient_count", len(e.To))
	return &domain.ForwardResult{
		Success:    true,
		StatusCode: resp.StatusCode,
		MessageID:  messageID,
		Provider:   "sendgrid",
		Recipients: recipients,
	}, nil
}

// contentBlocks builds the ordered content array. SendGrid requires
// text/plain before text/html when both are present.
func contentBlocks(e *domain.Email) []map[string]string {
	var blocks []map[string]string
	if e.TextBody != "" {
		blocks = append(blocks, map[string]string{"type": "text/plain", "value": e.TextBody})
	}
	if e.HTMLBody != "" {
		blocks = append(blocks, map[string]string{"type": "text/html", "value": e.HTMLBody})
	}
	return blocks
}

// splitAddress parses a raw From value into address and display name.
// Bare addresses come back with an empty name.
func splitAddress(raw string) (email, name string) {
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return raw, ""
	}
	return addr.Address, addr.Name
}
