package injection

import (
	"html"
	"regexp"
	"strings"

	"github.com/ignite/signature-relay/internal/domain"
)

// Markers left in injected bodies so a re-processed message is recognized.
// PixelPathHint is the stable filename substring of the view-tracking pixel;
// its presence alone is proof a previous pass already injected content.
const (
	BannerMarker    = "<!-- sigrelay:banner -->"
	TrackingAttr    = `data-sigrelay-tracking="applied"`
	PixelPathHint   = "track/view.gif"
	sigPrefixProbe  = 50
	placeholderBody = "<div>&nbsp;</div>"
)

// Apply splices the resolved signature and banner into the email's bodies in
// place. Either input may be empty. Running Apply twice with the same inputs
// yields the same body as running it once.
func Apply(e *domain.Email, signatureHTML, bannerHTML string) {
	if bannerHTML != "" {
		e.HTMLBody = injectBanner(e.HTMLBody, bannerHTML)
	}
	if signatureHTML != "" {
		e.HTMLBody = injectSignature(e.HTMLBody, signatureHTML)
		// Plain-text bodies get the signature only. Banners are an HTML
		// concern in the current design; keep the asymmetry.
		if e.TextBody != "" {
			e.TextBody = injectTextSignature(e.TextBody, signatureHTML)
		}
	}
	// The downstream provider rejects empty-content messages.
	if strings.TrimSpace(e.HTMLBody) == "" && strings.TrimSpace(e.TextBody) == "" {
		e.HTMLBody = placeholderBody
	}
}

// injectBanner prepends the banner above the existing body inside a
// fixed-margin container. Skipped when any injection marker is already
// present in the body.
func injectBanner(body, bannerHTML string) string {
	if alreadyInjected(body) {
		return body
	}
	var b strings.Builder
	b.WriteString(`<div style="margin:0 0 16px 0;" `)
	b.WriteString(TrackingAttr)
	b.WriteString(">")
	b.WriteString(BannerMarker)
	b.WriteString(bannerHTML)
	b.WriteString("</div>")
	b.WriteString(body)
	return b.String()
}

// injectSignature appends the signature below the existing body inside a
// top-bordered container. The duplicate check is a substring probe on the
// first 50 characters of the signature source: approximate on purpose, since
// reply chains embed earlier copies with arbitrary surrounding markup.
func injectSignature(body, signatureHTML string) string {
	probe := signatureHTML
	if len(probe) > sigPrefixProbe {
		probe = probe[:sigPrefixProbe]
	}
	if probe != "" && strings.Contains(body, probe) {
		return body
	}
	var b strings.Builder
	b.WriteString(body)
	b.WriteString(`<div style="border-top:1px solid #d0d0d0;margin-top:24px;padding-top:12px;">`)
	b.WriteString(signatureHTML)
	b.WriteString("</div>")
	return b.String()
}

func injectTextSignature(body, signatureHTML string) string {
	sig := StripTags(signatureHTML)
	if sig == "" {
		return body
	}
	if strings.Contains(body, sig) {
		return body
	}
	return body + "\n\n--\n" + sig
}

func alreadyInjected(body string) bool {
	return strings.Contains(body, BannerMarker) ||
		strings.Contains(body, TrackingAttr) ||
		strings.Contains(body, PixelPathHint)
}

var (
	tagRegex   = regexp.MustCompile(`(?s)<script\b.*?</script>|<style\b.*?</style>|<[^>]*>`)
	spaceRegex = regexp.MustCompile(`[ \t]+`)
	blankRegex = regexp.MustCompile(`\n{3,}`)
)

// StripTags renders HTML down to plain text for the text-body signature.
// Best-effort: tags removed, entities decoded, whitespace collapsed. Not a
// layout engine and doesn't try to be.
func StripTags(s string) string {
	s = tagRegex.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = spaceRegex.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	s = strings.Join(lines, "\n")
	s = blankRegex.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
