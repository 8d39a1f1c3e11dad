package relay

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func jsonRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/relay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestNormalizeJSON(t *testing.T) {
	e, err := Normalize(jsonRequest(`{
		"from": "jane@co.com",
		"to": ["bob@other.com", "carl@other.com"],
		"subject": "hello",
		"htmlBody": "<p>hi</p>",
		"textBody": "hi",
		"messageId": "m-1"
	}`))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if e.From != "jane@co.com" || len(e.To) != 2 || e.Subject != "hello" {
		t.Errorf("envelope = %+v", e)
	}
	if e.HTMLBody != "<p>hi</p>" || e.TextBody != "hi" || e.MessageID != "m-1" {
		t.Errorf("bodies = %+v", e)
	}
}

func TestNormalizeJSONAltKeys(t *testing.T) {
	// `to` as a comma string, HTML under `html`. `text` is an HTML fallback
	// key, not the plain body, so it is ignored when `html` is present.
	e, err := Normalize(jsonRequest(`{
		"from": "a@b.c",
		"to": "x@y.z, w@y.z",
		"subject": "s",
		"html": "<b>h</b>",
		"text": "t"
	}`))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(e.To) != 2 || e.To[1] != "w@y.z" {
		t.Errorf("to = %v", e.To)
	}
	if e.HTMLBody != "<b>h</b>" || e.TextBody != "" {
		t.Errorf("bodies = %+v", e)
	}
}

func TestNormalizeJSONTextKeyIsHTMLFallback(t *testing.T) {
	// A direct post carrying only `text` still fills the HTML body, so the
	// message gets full injection rather than the text-only path.
	e, err := Normalize(jsonRequest(`{
		"from": "a@b.c",
		"to": "x@y.z",
		"subject": "s",
		"text": "hello"
	}`))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if e.HTMLBody != "hello" {
		t.Errorf("HTMLBody = %q, want %q", e.HTMLBody, "hello")
	}
	if e.TextBody != "" {
		t.Errorf("TextBody = %q, want empty", e.TextBody)
	}
}

func TestNormalizeJSONMissingFields(t *testing.T) {
	cases := []string{
		`{"to": ["x@y.z"], "subject": "s"}`,
		`{"from": "a@b.c", "subject": "s"}`,
		`{"from": "a@b.c", "to": ["x@y.z"]}`,
	}
	for _, body := range cases {
		if _, err := Normalize(jsonRequest(body)); !errors.Is(err, ErrMissingFields) {
			t.Errorf("body %s: err = %v, want ErrMissingFields", body, err)
		}
	}
}

func TestNormalizeMultipartDirectFields(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("from", `"Jane Doe" <jane@co.com>`)
	mw.WriteField("to", "bob@other.com")
	mw.WriteField("subject", "multipart hello")
	mw.WriteField("html", "<p>form html</p>")
	mw.WriteField("text", "form text")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/relay", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	e, err := Normalize(req)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if e.From != `"Jane Doe" <jane@co.com>` || e.HTMLBody != "<p>form html</p>" || e.TextBody != "form text" {
		t.Errorf("email = %+v", e)
	}
}

const rawMIME = "From: jane@co.com\r\n" +
	"To: bob@other.com\r\n" +
	"Subject: raw\r\n" +
	"Message-ID: <abc123@co.com>\r\n" +
	"Content-Type: multipart/alternative; boundary=\"XYZ\"\r\n" +
	"\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"plain part\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>html part</p>\r\n" +
	"--XYZ--\r\n"

func TestNormalizeMultipartRawMIME(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("from", "jane@co.com")
	mw.WriteField("to", "bob@other.com")
	mw.WriteField("subject", "raw")
	mw.WriteField("email", rawMIME)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/relay", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	e, err := Normalize(req)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if e.HTMLBody != "<p>html part</p>" {
		t.Errorf("html = %q", e.HTMLBody)
	}
	if e.TextBody != "plain part" {
		t.Errorf("text = %q", e.TextBody)
	}
	if e.MessageID != "abc123@co.com" {
		t.Errorf("messageId = %q", e.MessageID)
	}
}

func TestNormalizeURLEncodedForm(t *testing.T) {
	form := url.Values{
		"from":      {"a@b.c"},
		"to":        {"x@y.z"},
		"subject":   {"s"},
		"body-html": {"<i>h</i>"},
	}
	req := httptest.NewRequest(http.MethodPost, "/relay", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	e, err := Normalize(req)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if e.HTMLBody != "<i>h</i>" {
		t.Errorf("html = %q", e.HTMLBody)
	}
}

func TestNormalizeUnsupportedContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/relay", strings.NewReader("x"))
	req.Header.Set("Content-Type", "text/csv")
	if _, err := Normalize(req); err == nil {
		t.Error("expected error for unsupported content type")
	}
}
