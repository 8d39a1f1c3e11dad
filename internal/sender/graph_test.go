package sender

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newGraphTestForwarder bypasses the oauth2 transport so the test server
// sees plain requests.
func newGraphTestForwarder(url string) *GraphForwarder {
	return &GraphForwarder{
		baseURL: url,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func TestGraphForward(t *testing.T) {
	var captured map[string]interface{}
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("payload not json: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	f := newGraphTestForwarder(srv.URL)
	result, err := f.Forward(context.Background(), testEmail())
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if !result.Success || result.Provider != "graph" || result.StatusCode != http.StatusAccepted {
		t.Errorf("result = %+v", result)
	}

	// Sends as the bare sender address, not the display-name form.
	if !strings.HasSuffix(path, "/users/jane@co.com/sendMail") {
		t.Errorf("path = %s", path)
	}

	msg, _ := captured["message"].(map[string]interface{})
	body, _ := msg["body"].(map[string]interface{})
	if body["contentType"] != "HTML" {
		t.Errorf("body = %v", body)
	}
	if captured["saveToSentItems"] != true {
		t.Errorf("saveToSentItems = %v", captured["saveToSentItems"])
	}
	rcpts, _ := msg["toRecipients"].([]interface{})
	if len(rcpts) != 2 {
		t.Errorf("toRecipients = %v", rcpts)
	}
}

func TestGraphForwardError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":"ErrorAccessDenied"}}`))
	}))
	defer srv.Close()

	f := newGraphTestForwarder(srv.URL)
	_, err := f.Forward(context.Background(), testEmail())
	if err == nil || !strings.Contains(err.Error(), "ErrorAccessDenied") {
		t.Fatalf("want surfaced api error, got %v", err)
	}
}
