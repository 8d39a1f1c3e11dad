package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/ignite/signature-relay/internal/domain"
	"github.com/ignite/signature-relay/internal/pkg/logger"
)

// GraphForwarder delivers messages through Microsoft Graph's sendMail
// endpoint, sending as the original sender's mailbox. Requires an app
// registration with the application-level Mail.Send permission.
type GraphForwarder struct {
	baseURL string
	client  *http.Client
}

// NewGraphForwarder creates a Graph forwarder using the client-credentials
// flow. Token acquisition and refresh are handled by the oauth2 transport.
func NewGraphForwarder(tenantID, clientID, clientSecret string) *GraphForwarder {
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", tenantID),
		Scopes:       []string{"https://graph.microsoft.com/.default"},
	}
	client := cc.Client(context.Background())
	client.Timeout = 60 * time.Second
	return &GraphForwarder{
		baseURL: "https://graph.microsoft.com/v1.0",
		client:  client,
	}
}

type graphRecipient struct {
	EmailAddress struct {
		Address string `json:"address"`
	} `json:"emailAddress"`
}

func graphRecipients(addrs []string) []graphRecipient {
	out := make([]graphRecipient, len(addrs))
	for i, a := range addrs {
		out[i].EmailAddress.Address = a
	}
	return out
}

// Forward posts a sendMail request under the sender's own mailbox, so the
// message lands in their Sent Items like any message they wrote.
func (g *GraphForwarder) Forward(ctx context.Context, e *domain.Email) (*domain.ForwardResult, error) {
	senderEmail, _ := splitAddress(e.From)

	body := map[string]string{"contentType": "HTML", "content": e.HTMLBody}
	if e.HTMLBody == "" {
		body = map[string]string{"contentType": "Text", "content": e.TextBody}
	}

	headers := make([]map[string]string, 0, len(e.Headers))
	for k, v := range e.Headers {
		// Graph only accepts custom headers with an x- prefix; ours all
		// carry one already.
		headers = append(headers, map[string]string{"name": k, "value": v})
	}

	payload := map[string]interface{}{
		"message": map[string]interface{}{
			"subject":                e.Subject,
			"body":                   body,
			"toRecipients":           graphRecipients(e.To),
			"internetMessageHeaders": headers,
		},
		"saveToSentItems": true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	url := fmt.Sprintf("%s/users/%s/sendMail", g.baseURL, senderEmail)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("graph sendMail %d: %s", resp.StatusCode, string(respBody))
	}

	recipients := make([]domain.RecipientStatus, len(e.To))
	for i, addr := range e.To {
		recipients[i] = domain.RecipientStatus{Email: addr, Accepted: true}
	}

	logger.Info("graph accepted message",
		"message_id", e.MessageID, "sender", logger.RedactEmail(senderEmail), "recipient_count", len(e.To))
	return &domain.ForwardResult{
		Success:    true,
		StatusCode: resp.StatusCode,
		MessageID:  e.MessageID,
		Provider:   "graph",
		Recipients: recipients,
	}, nil
}
