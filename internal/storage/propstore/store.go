// Package propstore supplies the property list: a built-in default set,
// optionally extended from a JSON file of the form
// {"hostels":[{"name":..,"type":..,"url":.. or "link":..}]}.
package propstore

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"

	"hostel_rates/internal/domain"
)

// Defaults is the built-in property list.
var Defaults = []domain.Property{
	{Name: "Hostal Ramos", Category: domain.CategoryPrivate, URL: "https://www.booking.com/hotel/es/hostal-ramos.es.html"},
	{Name: "Hostal Santa Ana", Category: domain.CategoryHybrid, URL: "https://www.booking.com/hotel/es/hostal-santa-ana.es.html"},
	{Name: "Hostal Europa", Category: domain.CategoryHybrid, URL: "https://www.booking.com/hotel/es/hostal-europa.es.html"},
	{Name: "Hostal Levante Barcelona", Category: domain.CategoryPrivate, URL: "https://www.booking.com/hotel/es/hostal-levante-s-c-p.es.html"},
	{Name: "Hostal Nuevo Colon", Category: domain.CategoryHybrid, URL: "https://www.booking.com/hotel/es/hostal-nuevo-colon.es.html"},
	{Name: "Hostal Benidorm", Category: domain.CategoryPrivate, URL: "https://www.booking.com/hotel/es/hostal-benidorm.es.html"},
	{Name: "Hostal Fina", Category: domain.CategoryPrivate, URL: "https://www.booking.com/hotel/es/hostal-fina.es.html"},
	{Name: "Hostal Paris", Category: domain.CategoryPrivate, URL: "https://www.booking.com/hotel/es/hostal-paris.es.html"},
	{Name: "Pensión Iznájar Barcelona", Category: domain.CategoryPrivate, URL: "https://www.booking.com/hotel/es/hostal-iznajar-barcelona.es.html"},
	{Name: "Hotel Lloret Ramblas", Category: domain.CategoryPrivate, URL: "https://www.booking.com/hotel/es/lloret.es.html"},
	{Name: "Hostal Lausanne", Category: domain.CategoryPrivate, URL: "https://www.booking.com/hotel/es/hostal-lausanne.es.html"},
	{Name: "Hostal Hera", Category: domain.CategoryPrivate, URL: "https://www.booking.com/hotel/es/pension-francia.es.html"},
	{Name: "Hostal Marenostrum", Category: domain.CategoryPrivate, URL: "https://www.booking.com/hotel/es/hostal-mare-nostrum.es.html"},
	{Name: "Hotel Lyon", Category: domain.CategoryPrivate, URL: "https://www.booking.com/hotel/es/lyon.es.html"},
	{Name: "Pensión 45", Category: domain.CategoryShared, URL: "https://www.booking.com/hotel/es/pension-45.es.html"},
	{Name: "Hostal Capitol Ramblas", Category: domain.CategoryShared, URL: "https://www.booking.com/hotel/es/hostal-capitol-ramblas.es.html"},
}

type Store struct {
	path string // optional; empty means defaults only
}

func New(path string) *Store { return &Store{path: path} }

type fileEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url"`
	Link string `json:"link"` // accepted alias for url
}

type fileDoc struct {
	Hostels []fileEntry `json:"hostels"`
}

// Load returns the defaults plus any entries from the configured file, in
// file order. File problems (missing, unreadable, invalid JSON) degrade to
// the defaults with a warning rather than failing the run.
func (s *Store) Load(ctx context.Context) ([]domain.Property, error) {
	props := append([]domain.Property(nil), Defaults...)
	if s.path == "" {
		return props, nil
	}

	b, err := os.ReadFile(s.path)
	if err != nil {
		log.Warn().Str("path", s.path).Err(err).Msg("property file unreadable, using defaults")
		return props, nil
	}
	var doc fileDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		log.Warn().Str("path", s.path).Err(err).Msg("property file is not valid JSON, using defaults")
		return props, nil
	}

	added := 0
	for _, e := range doc.Hostels {
		url := e.URL
		if url == "" {
			url = e.Link
		}
		if url == "" {
			// kept anyway; the fetcher classifies it as missing_url
			log.Warn().Str("property", e.Name).Msg("property entry has no url")
		}
		cat, ok := domain.ParseCategory(e.Type)
		if !ok {
			log.Warn().Str("property", e.Name).Str("type", e.Type).Msg("unknown property type, entry skipped")
			continue
		}
		props = append(props, domain.Property{Name: e.Name, Category: cat, URL: url})
		added++
	}
	log.Info().Int("defaults", len(Defaults)).Int("fromFile", added).Str("path", s.path).Msg("property list loaded")
	return props, nil
}
