// internal/adapters/booking/tokens.go
package booking

import (
	"regexp"
	"strings"

	"hostel_rates/internal/domain"
)

// Markers embedded in the landing page's inline scripts. The page layout
// changes often, so every extraction is best-effort.
var (
	rePagename  = regexp.MustCompile(`hotelName:\s*"(.+?)"`)
	reCountry   = regexp.MustCompile(`hotelCountry:\s*"(.+?)"`)
	reCSRFToken = regexp.MustCompile(`b_csrf_token:\s*'(.+?)'`)
	reURLSlug   = regexp.MustCompile(`hotel/\w+/([^./]+)`)
)

// ExtractTokens pulls the session identifiers out of a landing page. A
// missing pagename falls back to a name derived from the URL, a missing
// country to "unknown", a missing token to the empty string; the
// availability client tolerates all three.
func ExtractTokens(body, pageURL string) domain.PageTokens {
	t := domain.PageTokens{CountryCode: "unknown"}
	if m := rePagename.FindStringSubmatch(body); m != nil {
		t.Pagename = m[1]
	} else {
		t.Pagename = FallbackPagename(pageURL)
	}
	if m := reCountry.FindStringSubmatch(body); m != nil {
		t.CountryCode = m[1]
	}
	if m := reCSRFToken.FindStringSubmatch(body); m != nil {
		t.CSRFToken = m[1]
	}
	return t
}

// FallbackPagename derives a human-readable name from the URL's property
// slug: separators become spaces, words are title-cased.
// "hotel/es/hostal-nuevo-colon.es.html" -> "Hostal Nuevo Colon".
func FallbackPagename(pageURL string) string {
	m := reURLSlug.FindStringSubmatch(pageURL)
	if m == nil {
		return ""
	}
	words := strings.FieldsFunc(m[1], func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
