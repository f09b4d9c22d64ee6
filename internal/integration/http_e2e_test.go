//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"hostel_rates/internal/adapters/booking"
	httpserver "hostel_rates/internal/adapters/http_server"
	"hostel_rates/internal/adapters/rediscache"
	"hostel_rates/internal/app"
	"hostel_rates/internal/domain"
)

// staticStore serves a fixed property list so the run never leaves the
// test's fake booking site.
type staticStore struct{ props []domain.Property }

func (s *staticStore) Load(ctx context.Context) ([]domain.Property, error) {
	return s.props, nil
}

// fakeBookingSite serves a landing page carrying all three session markers
// and an availability endpoint returning one priced day per query.
func fakeBookingSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/hotel/es/hostal-e2e.es.html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
<script>
  booking.env = { hotelName: "hostal-e2e", hotelCountry: "es" };
  utag_data = { b_csrf_token: 'e2e-token' };
</script>`))
	})

	mux.HandleFunc("/dml/graphql", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("X-Booking-Csrf-Token") != "e2e-token" {
			http.Error(w, "csrf", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"availabilityCalendar":{"hotelId":1,"days":[
			{"checkin":"2026-09-01","available":true,"avgPriceFormatted":"101"}
		]}}}`))
	})

	return httptest.NewServer(mux)
}

func TestHTTP_EndToEnd_Rates(t *testing.T) {
	site := fakeBookingSite(t)
	defer site.Close()

	mr := miniredis.RunT(t)
	cache := rediscache.New(mr.Addr(), "", 0)

	client := booking.New(site.URL, "", 100)
	scraper := app.NewScraper(client, booking.ExtractTokens, cache, 2, time.Minute)
	store := &staticStore{props: []domain.Property{{
		Name:     "Hostal E2E",
		Category: domain.CategoryPrivate,
		URL:      site.URL + "/hotel/es/hostal-e2e.es.html",
	}}}
	svc := app.NewRateService(store, scraper)

	srv := httpserver.New(time.Minute)
	srv.MountHandlers(&httpserver.Handlers{R: svc})
	api := httptest.NewServer(srv.Mux())
	defer api.Close()

	body := bytes.NewBufferString(`{"start":"2026-09-01"}`)
	res, err := http.Post(api.URL+"/v1/rates", "application/json", body)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}

	var report app.RateReport
	if err := json.NewDecoder(res.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Properties != 1 || len(report.Failures) != 0 {
		t.Fatalf("report = %+v, want 1 clean property", report)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("rows = %+v, want 2-adult and 1-adult rows", report.Rows)
	}

	two := report.Rows[0]
	if two.Adults != 2 || two.Private == nil || two.Shared == nil {
		t.Fatalf("2-adult row = %+v", two)
	}
	if math.Abs(two.Private.FinalPrice-82.8) > 1e-9 {
		t.Errorf("private final = %v, want 82.8", two.Private.FinalPrice)
	}
	if math.Abs(two.Shared.FinalPrice-64.22) > 1e-9 {
		t.Errorf("shared final = %v, want 64.22", two.Shared.FinalPrice)
	}

	one := report.Rows[1]
	if one.Adults != 1 || one.Private != nil || one.Shared == nil {
		t.Fatalf("1-adult row = %+v", one)
	}

	// the landing page tokens must have been cached under the property URL
	if !mr.Exists("tokens:" + site.URL + "/hotel/es/hostal-e2e.es.html") {
		t.Error("tokens not cached after the run")
	}

	// invalid window is rejected before any scraping
	res2, err := http.Post(api.URL+"/v1/rates", "application/json",
		bytes.NewBufferString(`{"start":"2026-09-05","end":"2026-09-01"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer res2.Body.Close()
	if res2.StatusCode != http.StatusBadRequest {
		t.Fatalf("inverted range status = %d, want 400", res2.StatusCode)
	}
}
