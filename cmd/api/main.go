package main

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"hostel_rates/internal/adapters/booking"
	server "hostel_rates/internal/adapters/http_server"
	"hostel_rates/internal/adapters/observability"
	"hostel_rates/internal/adapters/rediscache"
	"hostel_rates/internal/app"
	"hostel_rates/internal/domain"
	"hostel_rates/internal/shared"
	"hostel_rates/internal/storage/propstore"
)

func main() {
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	client := booking.New(cfg.BookingBase, cfg.UserAgent, cfg.ScrapeRPS)

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		cache = rediscache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}

	scraper := app.NewScraper(client, booking.ExtractTokens, cache, cfg.Workers, cfg.TokenTTL)
	svc := app.NewRateService(propstore.New(cfg.PropsFile), scraper)

	// a run fans out over the whole property list; give it room
	srv := server.New(3 * time.Minute)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{R: svc})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
