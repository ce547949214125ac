package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
)

// DepreciationSource identifies valuations produced by DepreciationCalculator.
const DepreciationSource = "simulated-depreciation-model-v2"

const (
	fallbackMilesPerYear = 15000
	loanToRetailRatio    = 0.95
	minRetailValue       = 500000
	minLoanValue         = 475000
)

type keywordValue struct {
	keywords []string
	value    float64
}

// New-vehicle prices in NGN by make keyword, checked in order.
var basePrices = []keywordValue{
	{[]string{"mercedes", "range rover"}, 30_000_000},
	{[]string{"bmw", "audi", "lexus"}, 25_000_000},
	{[]string{"ford", "chevrolet"}, 18_000_000},
	{[]string{"toyota"}, 15_000_000},
	{[]string{"honda", "nissan"}, 12_000_000},
	{[]string{"hyundai", "kia"}, 10_000_000},
}

var depreciationRates = []keywordValue{
	{[]string{"toyota", "honda", "nissan", "mazda"}, 0.12},
	{[]string{"hyundai", "kia"}, 0.14},
	{[]string{"ford", "chevrolet", "dodge"}, 0.16},
	{[]string{"bmw", "mercedes", "audi", "lexus", "range rover"}, 0.18},
}

var conditionFactors = []keywordValue{
	{[]string{"excellent", "new", "mint"}, 1.10},
	{[]string{"very good", "great"}, 1.05},
	{[]string{"good"}, 1.0},
	{[]string{"fair", "average"}, 0.90},
	{[]string{"poor", "bad"}, 0.75},
	{[]string{"salvage", "damaged"}, 0.50},
}

// DepreciationCalculator estimates a vehicle's value from make, age, mileage
// and condition when no external valuation is available.
type DepreciationCalculator struct{}

// NewDepreciationCalculator creates a DepreciationCalculator.
func NewDepreciationCalculator() DepreciationCalculator {
	return DepreciationCalculator{}
}

// Calculate returns an NGN valuation for the vehicle as of asOf.
func (DepreciationCalculator) Calculate(v model.VehicleSnapshot, asOf time.Time) model.ValuationResult {
	age := max(0, asOf.Year()-v.Year)
	brand := strings.ToLower(v.Make)

	base := lookup(brand, basePrices, 20_000_000)
	rate := depreciationRate(brand, age)
	depreciated := base * math.Pow(1-rate, float64(age))

	retail := math.Round(depreciated * mileageFactor(v.Mileage, age) * lookup(strings.ToLower(v.Condition), conditionFactors, 1))
	loan := math.Round(retail * loanToRetailRatio)

	return model.ValuationResult{
		RetailValue: decimal.NewFromFloat(math.Max(retail, minRetailValue)),
		LoanValue:   decimal.NewFromFloat(math.Max(loan, minLoanValue)),
		Currency:    "NGN",
		Make:        v.Make,
		Model:       v.Model,
		Year:        v.Year,
		Source:      DepreciationSource,
		ProviderRef: fmt.Sprintf("sim-%d", asOf.UnixMilli()),
	}
}

func lookup(s string, table []keywordValue, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	for _, row := range table {
		for _, k := range row.keywords {
			if strings.Contains(s, k) {
				return row.value
			}
		}
	}
	return fallback
}

// depreciationRate slows down for older vehicles.
func depreciationRate(brand string, age int) float64 {
	rate := lookup(brand, depreciationRates, 0.15)
	switch {
	case age > 10:
		rate *= 0.6
	case age > 5:
		rate *= 0.8
	}
	return rate
}

// mileageFactor buckets the mileage ratio against the expected annual distance.
// Unknown mileage and brand-new vehicles are not adjusted.
func mileageFactor(mileage *int, age int) float64 {
	if mileage == nil || *mileage == 0 || age == 0 {
		return 1
	}
	ratio := float64(*mileage) / float64(fallbackMilesPerYear*age)
	switch {
	case ratio < 0.8:
		return 1.05
	case ratio <= 1.2:
		return 1.0
	case ratio <= 1.5:
		return 0.90
	case ratio <= 2.0:
		return 0.80
	default:
		return 0.70
	}
}
