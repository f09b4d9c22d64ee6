package app

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hostel_rates/internal/adapters/observability"
	"hostel_rates/internal/domain"
)

// Scraper fetches and normalizes availability for properties. It holds no
// mutable state across tasks; each task only returns a value.
type Scraper struct {
	client   domain.BookingClient
	extract  domain.TokenSource
	cache    domain.Cache // optional
	workers  int
	tokenTTL time.Duration
}

func NewScraper(client domain.BookingClient, extract domain.TokenSource, cache domain.Cache, workers int, tokenTTL time.Duration) *Scraper {
	if workers <= 0 {
		workers = 8
	}
	if tokenTTL <= 0 {
		tokenTTL = 15 * time.Minute
	}
	return &Scraper{client: client, extract: extract, cache: cache, workers: workers, tokenTTL: tokenTTL}
}

// FetchBatch runs FetchProperty over props with semaphore-bounded
// concurrency. The returned slice is index-aligned with props regardless of
// completion order, and one property's failure never disturbs its siblings.
// Cancelling ctx aborts the whole batch as a unit.
func (s *Scraper) FetchBatch(ctx context.Context, props []domain.Property, w domain.DateWindow) []domain.PropertyResult {
	results := make([]domain.PropertyResult, len(props))
	sem := semaphore.NewWeighted(int64(s.workers))
	var wg sync.WaitGroup

	for i, p := range props {
		if err := sem.Acquire(ctx, 1); err != nil {
			// batch canceled: mark the rest without launching them
			for j := i; j < len(props); j++ {
				results[j] = domain.PropertyResult{Property: props[j], Failure: domain.AsRateError(err)}
			}
			break
		}
		wg.Add(1)
		go func(i int, p domain.Property) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = s.FetchProperty(ctx, p, w)
		}(i, p)
	}

	wg.Wait()
	return results
}

// FetchProperty runs one property end-to-end: tokens, then two independent
// availability queries (2 adults, then 1). Each query's failure is captured
// on the result without aborting the sibling query.
func (s *Scraper) FetchProperty(ctx context.Context, p domain.Property, w domain.DateWindow) domain.PropertyResult {
	res := domain.PropertyResult{Property: p}

	if strings.TrimSpace(p.URL) == "" {
		log.Warn().Str("property", p.Name).Msg("property has no url")
		res.Failure = &domain.RateError{Kind: domain.KindMissingURL, Msg: "no url configured"}
		observability.ObserveBatch("missing_url")
		return res
	}

	tokens, err := s.tokens(ctx, p)
	if err != nil {
		re := domain.AsRateError(err)
		log.Warn().Str("property", p.Name).Str("kind", string(re.Kind)).Err(err).Msg("landing page failed")
		res.Failure = re
		observability.ObserveBatch("failed")
		return res
	}

	partial := false
	for _, adults := range []int{2, 1} {
		recs, qerr := s.client.QueryAvailability(ctx, domain.AvailabilityQuery{
			Pagename:    tokens.Pagename,
			CountryCode: tokens.CountryCode,
			CSRFToken:   tokens.CSRFToken,
			Adults:      adults,
			Window:      w,
		})
		if qerr != nil {
			re := domain.AsRateError(qerr)
			log.Warn().Str("property", p.Name).Int("adults", adults).
				Str("kind", string(re.Kind)).Err(qerr).Msg("availability query failed")
			if re.Kind == domain.KindTransportError && re.Status == http.StatusForbidden {
				// rejection usually means the CSRF token went stale
				s.dropTokens(ctx, p)
			}
			if adults == 1 {
				res.Err1Adult = re
			} else {
				res.Err2Adults = re
			}
			partial = true
			continue
		}
		prices := NormalizeDays(recs)
		if adults == 1 {
			res.Prices1Adult = prices
		} else {
			res.Prices2Adults = prices
		}
	}

	if partial {
		observability.ObserveBatch("partial")
	} else {
		observability.ObserveBatch("ok")
	}
	return res
}

// tokens returns cached page tokens for the property, fetching and
// extracting on a miss. Cache failures degrade to a live fetch.
func (s *Scraper) tokens(ctx context.Context, p domain.Property) (domain.PageTokens, error) {
	key := "tokens:" + p.URL

	var t domain.PageTokens
	if s.cache != nil {
		if ok, err := s.cache.Get(ctx, key, &t); err == nil && ok {
			return t, nil
		}
	}

	body, finalURL, err := s.client.FetchLandingPage(ctx, p.URL)
	if err != nil {
		return domain.PageTokens{}, err
	}
	t = s.extract(body, finalURL)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, t, s.tokenTTL); err != nil {
			log.Debug().Str("property", p.Name).Err(err).Msg("token cache set failed")
		}
	}
	return t, nil
}

// dropTokens invalidates the cached tokens so the next run re-extracts them
// from a fresh landing page.
func (s *Scraper) dropTokens(ctx context.Context, p domain.Property) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, "tokens:"+p.URL); err != nil {
		log.Debug().Str("property", p.Name).Err(err).Msg("token cache del failed")
	}
}
