// internal/adapters/booking/client.go
package booking

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hostel_rates/internal/adapters/observability"
	"hostel_rates/internal/domain"
)

const (
	graphqlPath = "/dml/graphql?lang=en-gb"

	// The remote calendar rejects windows longer than roughly a month.
	maxCalendarDays = 30

	maxAttempts = 4

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.131 Safari/537.36"
)

// availabilityCalendarQuery is the GraphQL document the booking site's own
// frontend issues for its availability calendar.
const availabilityCalendarQuery = "query AvailabilityCalendar($input: AvailabilityCalendarQueryInput!) {\n  availabilityCalendar(input: $input) {\n    ... on AvailabilityCalendarQueryResult {\n      hotelId\n      days {\n        available\n        avgPriceFormatted\n        checkin\n        minLengthOfStay\n        __typename\n      }\n      __typename\n    }\n    ... on AvailabilityCalendarQueryError {\n      message\n      __typename\n    }\n    __typename\n  }\n}\n"

type Client struct {
	base string
	ua   string
	hc   *http.Client
	rl   *rate.Limiter
}

// New builds a client against base (scheme + host). rps bounds outbound
// calls client-side; the remote applies no advertised limit of its own.
func New(base, userAgent string, rps int) *Client {
	if rps <= 0 {
		rps = 2
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		ua:   userAgent,
		hc:   &http.Client{Timeout: 30 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// FetchLandingPage GETs a property page. A non-2xx response is a FetchError
// carrying the status; transport failures surface as QueryError.
func (c *Client) FetchLandingPage(ctx context.Context, pageURL string) (string, string, error) {
	start := time.Now()
	resp, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.ua)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		return req, nil
	})
	if err != nil {
		observability.ObserveExternal("booking", "landing", 0, time.Since(start))
		return "", "", &domain.RateError{Kind: domain.KindQueryError, Msg: "landing page fetch failed", Err: err}
	}
	defer resp.Body.Close()
	observability.ObserveExternal("booking", "landing", resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", "", &domain.RateError{Kind: domain.KindFetchError, Status: resp.StatusCode, Msg: "landing page fetch"}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", &domain.RateError{Kind: domain.KindQueryError, Msg: "read landing page body", Err: err}
	}
	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return string(body), finalURL, nil
}

// availabilityEnvelope is the availability response shape. The calendar is
// a union: a result carries days, an error carries a message.
type availabilityEnvelope struct {
	Data struct {
		AvailabilityCalendar *struct {
			HotelID int64              `json:"hotelId"`
			Days    []domain.DayRecord `json:"days"`
			Message string             `json:"message"`
		} `json:"availabilityCalendar"`
	} `json:"data"`
}

// QueryAvailability POSTs one AvailabilityCalendar query. The requested day
// count is the inclusive window span capped at maxCalendarDays. Records come
// back in remote order; no re-sorting happens here.
func (c *Client) QueryAvailability(ctx context.Context, q domain.AvailabilityQuery) ([]domain.DayRecord, error) {
	days := q.Window.Days()
	if days > maxCalendarDays {
		days = maxCalendarDays
	}

	payload := map[string]any{
		"operationName": "AvailabilityCalendar",
		"variables": map[string]any{
			"input": map[string]any{
				"travelPurpose": 2,
				"pagenameDetails": map[string]any{
					"countryCode": q.CountryCode,
					"pagename":    q.Pagename,
				},
				"searchConfig": map[string]any{
					"searchConfigDate": map[string]any{
						"startDate":    q.Window.Start.Format("2006-01-02"),
						"amountOfDays": days,
					},
					"nbAdults": q.Adults,
					"nbRooms":  1,
				},
			},
		},
		"extensions": map[string]any{},
		"query":      availabilityCalendarQuery,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &domain.RateError{Kind: domain.KindQueryError, Msg: "marshal availability query", Err: err}
	}

	start := time.Now()
	resp, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+graphqlPath, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", c.ua)
		req.Header.Set("Origin", c.base)
		req.Header.Set("X-Booking-Csrf-Token", q.CSRFToken)
		return req, nil
	})
	if err != nil {
		observability.ObserveExternal("booking", "availability", 0, time.Since(start))
		return nil, &domain.RateError{Kind: domain.KindQueryError, Msg: "availability query failed", Err: err}
	}
	defer resp.Body.Close()
	observability.ObserveExternal("booking", "availability", resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &domain.RateError{
			Kind:   domain.KindTransportError,
			Status: resp.StatusCode,
			Msg:    strings.TrimSpace(string(b)),
		}
	}

	var env availabilityEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &domain.RateError{Kind: domain.KindQueryError, Msg: "decode availability response", Err: err}
	}
	cal := env.Data.AvailabilityCalendar
	if cal == nil {
		return nil, &domain.RateError{Kind: domain.KindSchemaError, Msg: "response missing availabilityCalendar envelope"}
	}
	if cal.Days == nil {
		msg := cal.Message
		if msg == "" {
			msg = "response missing days"
		}
		return nil, &domain.RateError{Kind: domain.KindSchemaError, Msg: msg}
	}
	return cal.Days, nil
}

// do sends a request with client-side rate limiting and bounded retries on
// 429, transient 5xx and network errors, honoring Retry-After when provided.
// A response with a non-retryable (or retry-exhausted) status is returned to
// the caller unclassified; classification stays with the endpoint methods.
func (c *Client) do(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		// fresh request each attempt so the body can be re-read
		req, err := build()
		if err != nil {
			return nil, err
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < maxAttempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}

		if retryable(resp.StatusCode) && i < maxAttempts-1 {
			wait := retryAfter(resp)
			io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			if !sleepCtx(ctx, wait) {
				return nil, ctx.Err()
			}
			continue
		}

		return resp, nil
	}

	return nil, lastErr
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if
// absent or invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% concurrency-safe jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
