package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"hostel_rates/internal/adapters/booking"
	"hostel_rates/internal/adapters/observability"
	"hostel_rates/internal/adapters/rediscache"
	"hostel_rates/internal/app"
	"hostel_rates/internal/domain"
	"hostel_rates/internal/shared"
	"hostel_rates/internal/storage/propstore"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.Serve()

	window, err := parseWindow(cfg.StartDate, cfg.EndDate)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scrape window")
	}

	client := booking.New(cfg.BookingBase, cfg.UserAgent, cfg.ScrapeRPS)

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		cache = rediscache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}

	scraper := app.NewScraper(client, booking.ExtractTokens, cache, cfg.Workers, cfg.TokenTTL)
	svc := app.NewRateService(propstore.New(cfg.PropsFile), scraper)

	log.Info().
		Str("start", window.Start.Format("2006-01-02")).
		Int("days", window.Days()).
		Int("workers", cfg.Workers).
		Msg("scrape starting")

	report, err := svc.Run(ctx, window)
	if err != nil {
		log.Fatal().Err(err).Msg("scrape run failed")
	}

	for _, f := range report.Failures {
		log.Warn().
			Str("property", f.Property).
			Int("adults", f.Adults).
			Str("kind", string(f.Kind)).
			Str("msg", f.Message).
			Msg("property error")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatal().Err(err).Msg("encode report failed")
	}

	log.Info().
		Int("properties", report.Properties).
		Int("rows", len(report.Rows)).
		Int("failures", len(report.Failures)).
		Msg("scrape completed")
}

// parseWindow builds the scrape window from the configured dates. An empty
// start means today; an empty end means a single day.
func parseWindow(startStr, endStr string) (domain.DateWindow, error) {
	var w domain.DateWindow
	if startStr == "" {
		now := time.Now().UTC()
		w.Start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return w, err
		}
		w.Start = start
	}
	if endStr != "" {
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return w, err
		}
		if end.Before(w.Start) {
			return w, &domain.RateError{Kind: domain.KindQueryError, Msg: "END_DATE precedes START_DATE"}
		}
		w.End = &end
	}
	return w, nil
}
