package domain

import (
	"context"
	"time"
)

// BookingClient is the outbound boundary to the booking site.
type BookingClient interface {
	// FetchLandingPage GETs the property page and returns the body together
	// with the final URL after redirects.
	FetchLandingPage(ctx context.Context, url string) (body string, finalURL string, err error)

	// QueryAvailability issues one structured availability query and returns
	// the per-day records in remote order.
	QueryAvailability(ctx context.Context, q AvailabilityQuery) ([]DayRecord, error)
}

// TokenSource extracts session tokens from a landing-page document. Keeping
// it a function value keeps the pipeline independent of how (or whether)
// extraction succeeds; every PageTokens field may be empty.
type TokenSource func(body, pageURL string) PageTokens

// Cache is a best-effort key/value store; callers degrade to live fetches
// when it misses or errors.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// PropertyStore supplies the ordered property list for a run.
type PropertyStore interface {
	Load(ctx context.Context) ([]Property, error)
}
