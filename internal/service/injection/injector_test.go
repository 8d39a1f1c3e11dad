package injection

import (
	"strings"
	"testing"

	"github.com/ignite/signature-relay/internal/domain"
)

const (
	testSig    = `<p><strong>Jane Doe</strong><br>Head of Ops<br>jane@co.com</p>`
	testBanner = `<a href="https://promo.example.com/sale"><img src="https://cdn.example.com/sale.png"></a>`
)

func TestApplyOrdering(t *testing.T) {
	e := &domain.Email{HTMLBody: "<p>original message</p>"}
	Apply(e, testSig, testBanner)

	bannerAt := strings.Index(e.HTMLBody, "sale.png")
	originalAt := strings.Index(e.HTMLBody, "original message")
	sigAt := strings.Index(e.HTMLBody, "Jane Doe")
	if bannerAt == -1 || originalAt == -1 || sigAt == -1 {
		t.Fatalf("missing pieces in body: %s", e.HTMLBody)
	}
	if !(bannerAt < originalAt && originalAt < sigAt) {
		t.Errorf("want banner < original < signature, got %d/%d/%d", bannerAt, originalAt, sigAt)
	}
	if !strings.Contains(e.HTMLBody, BannerMarker) {
		t.Error("banner marker missing from injected body")
	}
	if !strings.Contains(e.HTMLBody, `border-top`) {
		t.Error("signature container missing")
	}
}

func TestApplyIdempotent(t *testing.T) {
	e := &domain.Email{HTMLBody: "<p>original message</p>", TextBody: "original message"}
	Apply(e, testSig, testBanner)
	once := *e

	Apply(e, testSig, testBanner)
	if e.HTMLBody != once.HTMLBody {
		t.Errorf("second Apply changed HTML body:\nonce: %s\ntwice: %s", once.HTMLBody, e.HTMLBody)
	}
	if e.TextBody != once.TextBody {
		t.Errorf("second Apply changed text body:\nonce: %s\ntwice: %s", once.TextBody, e.TextBody)
	}
}

func TestBannerSkippedWhenPixelPresent(t *testing.T) {
	// A body carrying the tracking pixel was injected by a previous pass,
	// even if our comment marker was stripped by an intermediate MTA.
	body := `<p>hi</p><img src="https://track.example.com/track/view.gif?tid=x">`
	e := &domain.Email{HTMLBody: body}
	Apply(e, "", testBanner)
	if strings.Count(e.HTMLBody, "sale.png") != 0 {
		t.Errorf("banner injected despite pixel hint: %s", e.HTMLBody)
	}
}

func TestSignatureDuplicateHeuristic(t *testing.T) {
	e := &domain.Email{HTMLBody: "<p>message</p>" + testSig}
	Apply(e, testSig, "")
	if strings.Count(e.HTMLBody, "Jane Doe") != 1 {
		t.Errorf("signature duplicated: %s", e.HTMLBody)
	}
}

func TestTextBodyGetsSignatureOnly(t *testing.T) {
	e := &domain.Email{HTMLBody: "<p>msg</p>", TextBody: "msg"}
	Apply(e, testSig, testBanner)

	if !strings.Contains(e.TextBody, "Jane Doe") {
		t.Errorf("text body missing stripped signature: %q", e.TextBody)
	}
	if strings.Contains(e.TextBody, "<") {
		t.Errorf("text body contains markup: %q", e.TextBody)
	}
	if strings.Contains(e.TextBody, "sale.png") || strings.Contains(e.TextBody, "promo.example.com") {
		t.Errorf("banner leaked into text body: %q", e.TextBody)
	}
}

func TestEmptyBodiesGetPlaceholder(t *testing.T) {
	e := &domain.Email{}
	Apply(e, "", "")
	if strings.TrimSpace(e.HTMLBody) == "" && strings.TrimSpace(e.TextBody) == "" {
		t.Error("expected a non-empty placeholder body")
	}
}

func TestStripTags(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"a &amp; b", "a & b"},
		{"<style>p{color:red}</style>text", "text"},
		{"<script>alert(1)</script>safe", "safe"},
		{"<script>if (1<2) { alert(1) }</script>safe", "safe"},
		{"<style type=\"text/css\">a{x:1}</style><script defer>f()</script>ok", "ok"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := StripTags(tc.in); got != tc.want {
			t.Errorf("StripTags(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
