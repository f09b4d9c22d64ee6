package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsMux_ExposesPipelineCounters(t *testing.T) {
	ObserveBatch("ok")
	ObserveExternal("booking", "availability", 200, 10*time.Millisecond)
	ObserveCache("redis", "hit")

	ts := httptest.NewServer(metricsMux())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}

	b, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	body := string(b)
	for _, want := range []string{
		"hostelrates_batch_properties_total",
		"hostelrates_scrape_requests_total",
		"hostelrates_cache_events_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("%s missing from metrics endpoint", want)
		}
	}
}
