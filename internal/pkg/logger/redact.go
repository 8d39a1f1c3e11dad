package logger

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// piiKeyHints are key-name substrings that mark a field as carrying an
// address. A hinted key with a non-address value (e.g. recipient_count)
// passes through untouched.
var piiKeyHints = []string{"email", "sender", "recipient", "from"}

// redactValue masks addresses in one log field. Hinted keys get their whole
// value masked when it is an address; every other field only has embedded
// addresses replaced, so ids, counts and URLs survive.
func redactValue(key, val string) string {
	key = strings.ToLower(key)
	for _, hint := range piiKeyHints {
		if strings.Contains(key, hint) && strings.Contains(val, "@") {
			return RedactEmail(val)
		}
	}
	return emailRegex.ReplaceAllStringFunc(val, RedactEmail)
}

// RedactEmail masks an address for safe logging, keeping the domain and at
// most two leading characters of the local part:
// "john.doe@example.com" → "jo***@example.com". Local parts of one or two
// characters are masked entirely, and values that are not addresses at all
// come back as "***@***".
func RedactEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***@***"
	}
	if len(local) > 2 {
		return local[:2] + "***@" + domain
	}
	return "***@" + domain
}
