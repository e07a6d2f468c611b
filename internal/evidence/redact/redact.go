// Package redact maps raw PII-bearing values to display-safe masked forms
// before they enter an exported artifact. Redaction is irreversible; the
// payload redactor matches key substrings rather than exact names so novel
// spellings (phoneNumber, auth_token) still get caught. Over-redaction is
// accepted - the system fails closed.
package redact

import "strings"

const (
	// Sentinel for absent or empty input, distinguishable from a masked value.
	None = "none"

	// Redacted replaces the entire value of a sensitive payload key.
	Redacted = "[REDACTED]"

	invalidEmail = "[invalid email]"

	fullPhoneMask = "***-***-***"
	fullIDMask    = "****"
)

// sensitiveKeySubstrings marks a payload key sensitive when the lowercased
// key contains any of these. Keep this list permissive.
var sensitiveKeySubstrings = []string{
	"phone",
	"email",
	"password",
	"token",
	"secret",
	"api_key",
	"apikey",
	"auth",
	"credential",
	"private_key",
	"privatekey",
}

// Phone masks a phone number, keeping only the last 3 digits.
func Phone(s string) string {
	if s == "" {
		return None
	}
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) < 3 {
		return fullPhoneMask
	}
	return "***-***-" + d[len(d)-3:]
}

// Email keeps the first 2 characters of the local part and the full domain.
func Email(s string) string {
	if s == "" {
		return None
	}
	at := strings.Index(s, "@")
	if at <= 0 {
		return invalidEmail
	}
	local, domain := s[:at], s[at:]
	if len(local) <= 2 {
		return local + "***" + domain
	}
	return local[:2] + "***" + domain
}

// ID masks an opaque identifier (user, peer, session, channel), keeping the
// first and last 4 characters when the ID is long enough to survive that.
func ID(s string) string {
	if s == "" {
		return None
	}
	if len(s) < 8 {
		return fullIDMask
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// Payload deep-redacts an arbitrary decoded JSON value. Sensitive keys are
// replaced wholesale (their values are not inspected further, even when
// structured); non-sensitive maps and slices recurse; scalars pass through.
// A non-map, non-slice top-level value yields an empty map.
func Payload(v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return redactMap(m)
}

func redactMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sensitiveKey(k) {
			out[k] = Redacted
			continue
		}
		out[k] = redactValue(v)
	}
	return out
}

func redactValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return redactMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = redactValue(item)
		}
		return out
	default:
		return v
	}
}

func sensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, sub := range sensitiveKeySubstrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
