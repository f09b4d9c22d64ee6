package app

import (
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"hostel_rates/internal/domain"
)

// minValidPrice is the "no inventory" threshold: the remote reports
// unbookable days as zero-priced even when flagged available.
const minValidPrice = 0.01

// priceNumber matches the leading numeric substring of a formatted price,
// e.g. "101.5" out of "101.5 €".
var priceNumber = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// NormalizeDays converts raw day records into an ordered price sequence.
// Records with no parsable numeric substring, an unparsable checkin date, or
// a price at or below minValidPrice are dropped, not replaced.
func NormalizeDays(recs []domain.DayRecord) []domain.DayPrice {
	out := make([]domain.DayPrice, 0, len(recs))
	dropped := 0
	for _, r := range recs {
		date, err := time.Parse("2006-01-02", r.Checkin)
		if err != nil {
			dropped++
			continue
		}
		m := priceNumber.FindStringSubmatch(r.AvgPriceFormatted)
		if m == nil {
			dropped++
			continue
		}
		price, err := strconv.ParseFloat(m[1], 64)
		if err != nil || price <= minValidPrice {
			dropped++
			continue
		}
		out = append(out, domain.DayPrice{Date: date, Price: price, Available: r.Available})
	}
	if dropped > 0 {
		log.Debug().Int("dropped", dropped).Int("total", len(recs)).
			Msg("filtered days without sellable inventory")
	}
	return out
}

// FilterValid drops entries at or below the validity threshold. Normalized
// sequences already satisfy it, so applying it twice is a no-op.
func FilterValid(prices []domain.DayPrice) []domain.DayPrice {
	out := make([]domain.DayPrice, 0, len(prices))
	for _, p := range prices {
		if p.Price > minValidPrice {
			out = append(out, p)
		}
	}
	return out
}
