package domain

import (
	"strings"
	"time"
)

// Category classifies a property's pricing. It decides which room price is
// the scraped ground truth and which one is derived from it.
type Category string

const (
	CategoryPrivate Category = "Privado"
	CategoryShared  Category = "Compartido"
	CategoryHybrid  Category = "Hibrido"
)

// ParseCategory accepts the property-list spellings, including the accented
// "Híbrido" variant.
func ParseCategory(s string) (Category, bool) {
	switch strings.TrimSpace(s) {
	case "Privado":
		return CategoryPrivate, true
	case "Compartido":
		return CategoryShared, true
	case "Hibrido", "Híbrido":
		return CategoryHybrid, true
	}
	return "", false
}

// SharedIsScraped reports whether the scraped price represents a shared room.
// Hybrid properties list their shared rooms.
func (c Category) SharedIsScraped() bool { return c != CategoryPrivate }

// Property is one lodging unit being priced. Identity is the URL; the list
// is immutable during a run.
type Property struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	URL      string   `json:"url"`
}

// DayRecord is one calendar day exactly as the availability endpoint
// returns it.
type DayRecord struct {
	Checkin           string `json:"checkin"`
	Available         bool   `json:"available"`
	AvgPriceFormatted string `json:"avgPriceFormatted"`
	MinLengthOfStay   int    `json:"minLengthOfStay"`
}

// DayPrice is a normalized day record. Normalization guarantees
// Price > 0.01; days without sellable inventory never reach aggregation.
type DayPrice struct {
	Date      time.Time `json:"date"`
	Price     float64   `json:"price"`
	Available bool      `json:"available"`
}

// DateWindow is the requested scrape window. A nil End means a single day.
type DateWindow struct {
	Start time.Time
	End   *time.Time
}

// IsRange reports whether the window spans more than one calendar day.
func (w DateWindow) IsRange() bool { return w.End != nil && !w.End.Equal(w.Start) }

// Days is the inclusive span length in calendar days.
func (w DateWindow) Days() int {
	if w.End == nil {
		return 1
	}
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// PageTokens are the session identifiers recovered from a landing page.
// Every field is optional: a missing token means the availability query may
// be rejected, which is handled as a normal per-query failure.
type PageTokens struct {
	Pagename    string `json:"pagename"`
	CountryCode string `json:"countryCode"`
	CSRFToken   string `json:"csrfToken"`
}

// AvailabilityQuery is one structured request against the availability
// endpoint.
type AvailabilityQuery struct {
	Pagename    string
	CountryCode string
	CSRFToken   string
	Adults      int
	Window      DateWindow
}

// PropertyResult is the per-property outcome of one batch run. Exactly one
// shape applies: Failure set (failure shape), or the price slices populated
// (success shape, possibly with per-adult-count errors attached).
type PropertyResult struct {
	Property Property

	Failure *RateError

	Prices1Adult  []DayPrice
	Prices2Adults []DayPrice
	Err1Adult     *RateError
	Err2Adults    *RateError
}

// Failed reports whether the whole property failed before any availability
// data was obtained.
func (r PropertyResult) Failed() bool { return r.Failure != nil }

// PricesFor returns the normalized prices for the given adult count.
func (r PropertyResult) PricesFor(adults int) []DayPrice {
	if adults == 1 {
		return r.Prices1Adult
	}
	return r.Prices2Adults
}

// ErrFor returns the captured availability error for the given adult count.
func (r PropertyResult) ErrFor(adults int) *RateError {
	if adults == 1 {
		return r.Err1Adult
	}
	return r.Err2Adults
}
