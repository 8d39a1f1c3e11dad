package relay

import (
	"net/http"
	"strings"
)

// Marker headers. Set on every message the relay forwards; their presence on
// an inbound request means this message already went through injection and
// must be passed over, not re-processed.
const (
	HeaderProcessedByRelay  = "X-Processed-By-Relay"
	HeaderSkipTransportRule = "X-Skip-Transport-Rule"
	HeaderRelaySecret       = "X-Relay-Secret"
)

// AlreadyProcessed reports whether the inbound request carries either marker
// header. Pure header inspection, no side effects.
func AlreadyProcessed(h http.Header) bool {
	return isTrue(h.Get(HeaderProcessedByRelay)) || isTrue(h.Get(HeaderSkipTransportRule))
}

// MarkerHeaders returns the headers to attach to an outgoing message so a
// looped-back copy is recognized.
func MarkerHeaders() map[string]string {
	return map[string]string{
		HeaderProcessedByRelay:  "true",
		HeaderSkipTransportRule: "true",
	}
}

func isTrue(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}
