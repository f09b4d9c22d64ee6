package app

import (
	"context"

	"hostel_rates/internal/domain"
)

// RateService is the pipeline's public face: load the property list, fetch
// and normalize a batch, derive the rate rows. All state lives for one run.
type RateService struct {
	store   domain.PropertyStore
	scraper *Scraper
}

func NewRateService(store domain.PropertyStore, scraper *Scraper) *RateService {
	return &RateService{store: store, scraper: scraper}
}

// RateReport is one run's complete output: rows and failures, both in
// property order.
type RateReport struct {
	Start      string    `json:"start"`
	End        string    `json:"end,omitempty"`
	Properties int       `json:"properties"`
	Rows       []RateRow `json:"rows"`
	Failures   []Failure `json:"failures"`
}

// Run executes one batch over the configured property list.
func (s *RateService) Run(ctx context.Context, w domain.DateWindow) (RateReport, error) {
	props, err := s.store.Load(ctx)
	if err != nil {
		return RateReport{}, err
	}

	results := s.scraper.FetchBatch(ctx, props, w)
	rows, fails := BuildRows(results, w)

	rep := RateReport{
		Start:      w.Start.Format("2006-01-02"),
		Properties: len(props),
		Rows:       rows,
		Failures:   fails,
	}
	if w.End != nil {
		rep.End = w.End.Format("2006-01-02")
	}
	return rep, nil
}
