package shared

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	BookingBase string
	UserAgent   string
	Workers     int
	ScrapeRPS   int
	TokenTTL    time.Duration
	PropsFile   string
	StartDate   string
	EndDate     string
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	return Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		RedisAddr:   env("REDIS_ADDR", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),
		BookingBase: env("BOOKING_BASE_URL", "https://www.booking.com"),
		UserAgent:   env("SCRAPE_USER_AGENT", ""),
		Workers:     atoi("SCRAPE_WORKERS", 8),
		ScrapeRPS:   atoi("SCRAPE_RPS", 2),
		TokenTTL:    time.Duration(atoi("TOKEN_TTL_SECONDS", 900)) * time.Second,
		PropsFile:   env("PROPERTIES_FILE", ""),
		StartDate:   env("START_DATE", ""),
		EndDate:     env("END_DATE", ""),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
