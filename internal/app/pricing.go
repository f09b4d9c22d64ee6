package app

import (
	"fmt"
	"time"

	"hostel_rates/internal/domain"
)

// Business constants for the derived variants. The tourist tax is per adult
// per night; the margin is taken from the post-tax price.
const (
	touristTaxPerAdult = 5.5
	marginRate         = 0.08
	sharedFromPrivate  = 0.8
	privateFromShared  = 1.2
)

// Method is how the representative price summarizes the window.
type Method string

const (
	MethodMin  Method = "min"  // single-day selections
	MethodMean Method = "mean" // range selections
)

// RoomPrice is one derived room variant, unrounded; rounding happens only
// at row assembly.
type RoomPrice struct {
	Price      float64
	Calculated bool // derived from the other room category's scraped price
	TouristTax float64
	Margin     float64
	FinalPrice float64
}

// AdultPricing is the derived pricing for one property and adult count.
// Private stays nil for the 1-adult case: the business rule deliberately
// produces only the shared-room variant for single travellers.
type AdultPricing struct {
	Adults         int
	Method         Method
	Representative float64
	Private        *RoomPrice
	Shared         *RoomPrice
	DaysAvailable  int // range selections only
	TotalDays      int // range selections only
}

// DerivePricing computes the representative price for the window and its
// room variants for the given category and adult count. When no valid day
// remains after filtering, it returns a NoValidPrices error and the
// property/adult-count combination contributes no row.
func DerivePricing(prices []domain.DayPrice, w domain.DateWindow, cat domain.Category, adults int) (*AdultPricing, error) {
	valid := FilterValid(prices)

	out := &AdultPricing{Adults: adults}
	if w.IsRange() {
		if len(valid) == 0 {
			return nil, &domain.RateError{
				Kind: domain.KindNoValidPrices,
				Msg:  fmt.Sprintf("no valid prices in range for %d adult(s)", adults),
			}
		}
		out.Method = MethodMean
		out.Representative = meanPrice(valid)
		out.DaysAvailable = len(valid)
		out.TotalDays = w.Days()
	} else {
		day := filterDate(valid, w.Start)
		if len(day) == 0 {
			return nil, &domain.RateError{
				Kind: domain.KindNoValidPrices,
				Msg:  fmt.Sprintf("no availability on %s for %d adult(s)", w.Start.Format("2006-01-02"), adults),
			}
		}
		out.Method = MethodMin
		out.Representative = minPrice(day)
	}

	var private, shared float64
	var privateCalc, sharedCalc bool
	if cat.SharedIsScraped() {
		shared = out.Representative
		private = out.Representative * privateFromShared
		privateCalc = true
	} else {
		private = out.Representative
		shared = out.Representative * sharedFromPrivate
		sharedCalc = true
	}

	tax := touristTaxPerAdult * float64(adults)
	if adults == 2 {
		out.Private = roomVariant(private, privateCalc, tax)
	}
	out.Shared = roomVariant(shared, sharedCalc, tax)
	return out, nil
}

// roomVariant applies the tax-then-margin derivation:
// net = price − tax, margin = net × 8%, final = net − margin.
func roomVariant(price float64, calculated bool, tax float64) *RoomPrice {
	net := price - tax
	margin := net * marginRate
	return &RoomPrice{
		Price:      price,
		Calculated: calculated,
		TouristTax: tax,
		Margin:     margin,
		FinalPrice: net - margin,
	}
}

// filterDate keeps entries on the exact calendar date.
func filterDate(prices []domain.DayPrice, day time.Time) []domain.DayPrice {
	out := make([]domain.DayPrice, 0, 1)
	for _, p := range prices {
		if sameDate(p.Date, day) {
			out = append(out, p)
		}
	}
	return out
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func minPrice(prices []domain.DayPrice) float64 {
	m := prices[0].Price
	for _, p := range prices[1:] {
		if p.Price < m {
			m = p.Price
		}
	}
	return m
}

func meanPrice(prices []domain.DayPrice) float64 {
	var sum float64
	for _, p := range prices {
		sum += p.Price
	}
	return sum / float64(len(prices))
}
