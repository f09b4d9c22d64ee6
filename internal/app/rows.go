package app

import (
	"math"

	"github.com/rs/zerolog/log"

	"hostel_rates/internal/domain"
)

// RateRow is one reportable derived-price row. Monetary fields are rounded
// to 2 decimals here and nowhere earlier.
type RateRow struct {
	Property       string          `json:"property"`
	Category       domain.Category `json:"category"`
	URL            string          `json:"url"`
	Adults         int             `json:"adults"`
	Method         Method          `json:"method"`
	Representative float64         `json:"representativePrice"`
	TouristTax     float64         `json:"touristTax"`
	Private        *RoomRow        `json:"private,omitempty"`
	Shared         *RoomRow        `json:"shared,omitempty"`
	DaysAvailable  *int            `json:"daysAvailable,omitempty"`
	TotalDays      *int            `json:"totalDaysInRange,omitempty"`
}

// RoomRow is one room variant of a rate row.
type RoomRow struct {
	Price      float64 `json:"price"`
	Calculated bool    `json:"calculated"`
	Margin     float64 `json:"margin"`
	FinalPrice float64 `json:"finalPrice"`
}

// Failure is one reportable error, attached to a whole property (Adults 0)
// or to a single adult count.
type Failure struct {
	Property string           `json:"property"`
	URL      string           `json:"url"`
	Adults   int              `json:"adults,omitempty"`
	Kind     domain.ErrorKind `json:"kind"`
	Status   int              `json:"status,omitempty"`
	Message  string           `json:"message,omitempty"`
}

// BuildRows partitions batch results into derived rate rows and failures.
// Input order is preserved; within a property the 2-adult row precedes the
// 1-adult row. A missing row for a property/adult-count means "no data",
// never zero.
func BuildRows(results []domain.PropertyResult, w domain.DateWindow) ([]RateRow, []Failure) {
	rows := make([]RateRow, 0, len(results)*2)
	var fails []Failure

	for _, r := range results {
		if r.Failed() {
			fails = append(fails, failureFor(r.Property, 0, r.Failure))
			continue
		}
		for _, adults := range []int{2, 1} {
			if re := r.ErrFor(adults); re != nil {
				fails = append(fails, failureFor(r.Property, adults, re))
				continue
			}
			ap, err := DerivePricing(r.PricesFor(adults), w, r.Property.Category, adults)
			if err != nil {
				re := domain.AsRateError(err)
				log.Warn().Str("property", r.Property.Name).Int("adults", adults).
					Str("kind", string(re.Kind)).Msg("no derived price")
				fails = append(fails, failureFor(r.Property, adults, re))
				continue
			}
			rows = append(rows, toRow(r.Property, ap))
		}
	}
	return rows, fails
}

func failureFor(p domain.Property, adults int, re *domain.RateError) Failure {
	return Failure{
		Property: p.Name,
		URL:      p.URL,
		Adults:   adults,
		Kind:     re.Kind,
		Status:   re.Status,
		Message:  re.Msg,
	}
}

func toRow(p domain.Property, ap *AdultPricing) RateRow {
	row := RateRow{
		Property:       p.Name,
		Category:       p.Category,
		URL:            p.URL,
		Adults:         ap.Adults,
		Method:         ap.Method,
		Representative: round2(ap.Representative),
		TouristTax:     round2(touristTaxPerAdult * float64(ap.Adults)),
		Private:        toRoomRow(ap.Private),
		Shared:         toRoomRow(ap.Shared),
	}
	if ap.Method == MethodMean {
		da, td := ap.DaysAvailable, ap.TotalDays
		row.DaysAvailable = &da
		row.TotalDays = &td
	}
	return row
}

func toRoomRow(rp *RoomPrice) *RoomRow {
	if rp == nil {
		return nil
	}
	return &RoomRow{
		Price:      round2(rp.Price),
		Calculated: rp.Calculated,
		Margin:     round2(rp.Margin),
		FinalPrice: round2(rp.FinalPrice),
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
