package domain

// Email is the canonical message record every pipeline component operates on.
// The payload normalizer produces it from whatever shape the webhook
// delivered (JSON, form fields, or a raw MIME blob); nothing downstream ever
// sees the original payload.
type Email struct {
	From      string            `json:"from"`
	To        []string          `json:"to"`
	Subject   string            `json:"subject"`
	HTMLBody  string            `json:"html_body"`
	TextBody  string            `json:"text_body"`
	MessageID string            `json:"message_id"`
	Headers   map[string]string `json:"headers,omitempty"`
}

// ForwardResult is returned by a Forwarder after attempting delivery.
type ForwardResult struct {
	Success    bool              `json:"success"`
	StatusCode int               `json:"status_code"`
	MessageID  string            `json:"message_id"`
	Provider   string            `json:"provider"`
	Recipients []RecipientStatus `json:"recipients,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// RecipientStatus is the per-recipient breakdown of a multi-recipient send.
type RecipientStatus struct {
	Email    string `json:"email"`
	Accepted bool   `json:"accepted"`
	Error    string `json:"error,omitempty"`
}
