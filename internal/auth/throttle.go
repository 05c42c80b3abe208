package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ThrottleError is returned while a throttle key is locked out.
type ThrottleError struct {
	Seconds int
}

func (e *ThrottleError) Error() string {
	return fmt.Sprintf("Too many login attempts. Please try again in %d seconds.", e.Seconds)
}

// ThrottleKey is the limiter key of a login attempt: the transliterated,
// lowercased email and the client ip.
func ThrottleKey(email, ip string) string {
	return strings.ToLower(transliterate(email)) + ":" + ip
}

func transliterate(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
