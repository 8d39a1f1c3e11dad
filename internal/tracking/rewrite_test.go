package tracking

import (
	"net/url"
	"strings"
	"testing"
)

func TestRewriteRoutesLinks(t *testing.T) {
	rw := &Rewriter{BaseURL: "https://track.example.com"}
	banner := `<a href="https://promo.example.com/sale?x=1">Sale</a> <a href="https://other.example.com/b">B</a>`

	out := rw.Rewrite(banner, "tid-1")

	if strings.Contains(out, `href="https://promo.example.com`) {
		t.Errorf("original link left unrewritten: %s", out)
	}
	if got := strings.Count(out, "https://track.example.com/track/click?tid=tid-1"); got != 2 {
		t.Errorf("want 2 rewritten links, got %d: %s", got, out)
	}
	if !strings.Contains(out, "url="+url.QueryEscape("https://promo.example.com/sale?x=1")) {
		t.Errorf("original URL not carried in query: %s", out)
	}
}

func TestRewriteAppendsPixel(t *testing.T) {
	rw := &Rewriter{BaseURL: "https://track.example.com"}
	out := rw.Rewrite(`<b>no links</b>`, "tid-2")

	if !strings.Contains(out, `https://track.example.com/track/view.gif?tid=tid-2`) {
		t.Errorf("pixel missing: %s", out)
	}
	if !strings.Contains(out, `width="1" height="1"`) {
		t.Errorf("pixel not 1x1: %s", out)
	}
	if !strings.HasPrefix(out, "<b>no links</b>") {
		t.Errorf("banner content altered: %s", out)
	}
}

func TestRewriteSkipsTrackingAndRelativeLinks(t *testing.T) {
	rw := &Rewriter{BaseURL: "https://track.example.com"}
	banner := `<a href="https://track.example.com/track/click?tid=old">done</a><a href="#anchor">top</a>`

	out := rw.rewriteLinks(banner, "tid-3")

	if strings.Contains(out, "tid=tid-3") {
		t.Errorf("already-tracked or relative link rewritten: %s", out)
	}
}

func TestRewriteUnterminatedHref(t *testing.T) {
	rw := &Rewriter{BaseURL: "https://track.example.com"}
	banner := `<a href="https://broken`
	if out := rw.rewriteLinks(banner, "t"); out != banner {
		t.Errorf("malformed HTML should pass through, got %s", out)
	}
}
