package tracking

import (
	"fmt"
	"net/url"
	"strings"
)

// Rewriter rewrites banner HTML so engagement routes through the tracking
// endpoints. BaseURL is the public origin of this service, e.g.
// "https://track.example.com".
type Rewriter struct {
	BaseURL string
}

// ClickURL builds the redirect URL for one original link.
func (rw *Rewriter) ClickURL(trackingID, originalURL string) string {
	return fmt.Sprintf("%s/track/click?tid=%s&url=%s",
		rw.BaseURL, url.QueryEscape(trackingID), url.QueryEscape(originalURL))
}

// PixelURL builds the view-pixel URL. The "view.gif" filename is the stable
// hint the injector uses to recognize an already-processed body.
func (rw *Rewriter) PixelURL(trackingID string) string {
	return fmt.Sprintf("%s/track/view.gif?tid=%s", rw.BaseURL, url.QueryEscape(trackingID))
}

// Rewrite routes every href in the banner HTML through the click endpoint and
// appends the view pixel. Links that already point at a /track/ path are left
// alone. Plain substring scanning, not an HTML parser: banner snippets are
// small, admin-authored fragments.
func (rw *Rewriter) Rewrite(bannerHTML, trackingID string) string {
	out := rw.rewriteLinks(bannerHTML, trackingID)
	pixel := fmt.Sprintf(`<img src="%s" width="1" height="1" alt="" style="display:block;border:0;">`,
		rw.PixelURL(trackingID))
	return out + pixel
}

func (rw *Rewriter) rewriteLinks(html, trackingID string) string {
	var b strings.Builder
	rest := html
	for {
		i := strings.Index(rest, `href="`)
		if i == -1 {
			b.WriteString(rest)
			break
		}
		start := i + len(`href="`)
		end := strings.Index(rest[start:], `"`)
		if end == -1 {
			b.WriteString(rest)
			break
		}
		original := rest[start : start+end]
		b.WriteString(rest[:start])
		if strings.Contains(original, "/track/") || !strings.HasPrefix(original, "http") {
			b.WriteString(original)
		} else {
			b.WriteString(rw.ClickURL(trackingID, original))
		}
		rest = rest[start+end:]
	}
	return b.String()
}
