package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var twelve = decimal.NewFromInt(12)

// MonthlyPayment returns the fixed payment that amortizes principal over
// termMonths at annualRate (a fraction, 0.25 = 25%). The result is not
// rounded; callers round to their display precision. termMonths must be positive.
//
//	r       = annualRate / 12
//	payment = P * r * (1+r)^n / ((1+r)^n - 1)
func MonthlyPayment(principal, annualRate decimal.Decimal, termMonths int) decimal.Decimal {
	n := decimal.NewFromInt(int64(termMonths))
	monthlyRate := annualRate.Div(twelve)
	if monthlyRate.IsZero() {
		return principal.Div(n)
	}

	// float64 for the power, decimal for the money.
	r := monthlyRate.InexactFloat64()
	factor := math.Pow(1+r, float64(termMonths))
	return decimal.NewFromFloat(principal.InexactFloat64() * r * factor / (factor - 1))
}

// TotalInterest is the interest paid over the life of the loan.
func TotalInterest(monthlyPayment decimal.Decimal, termMonths int, principal decimal.Decimal) decimal.Decimal {
	return monthlyPayment.Mul(decimal.NewFromInt(int64(termMonths))).Sub(principal)
}

// AmortizationEntry is an immutable value object representing one period in an
// amortization schedule.
type AmortizationEntry struct {
	DueDate          time.Time
	Payment          decimal.Decimal
	Principal        decimal.Decimal
	Interest         decimal.Decimal
	RemainingBalance decimal.Decimal
	Period           int
}

// GenerateAmortizationSchedule computes a fixed-payment schedule for an offer.
// The payment is rounded to 2 dp; the last period absorbs the rounding so the
// balance reaches exactly zero.
func GenerateAmortizationSchedule(
	principal, annualRate decimal.Decimal,
	termMonths int,
	startDate time.Time,
) []AmortizationEntry {
	if termMonths <= 0 || !principal.IsPositive() {
		return nil
	}

	payment := MonthlyPayment(principal, annualRate, termMonths).Round(2)
	monthlyRate := annualRate.Div(twelve)

	schedule := make([]AmortizationEntry, 0, termMonths)
	remaining := principal

	for period := 1; period <= termMonths; period++ {
		interest := remaining.Mul(monthlyRate).Round(2)
		principalPart := payment.Sub(interest)

		if period == termMonths || principalPart.GreaterThan(remaining) {
			principalPart = remaining
		}

		remaining = remaining.Sub(principalPart)

		schedule = append(schedule, AmortizationEntry{
			Period:           period,
			DueDate:          startDate.AddDate(0, period, 0),
			Payment:          principalPart.Add(interest),
			Principal:        principalPart,
			Interest:         interest,
			RemainingBalance: remaining,
		})

		if remaining.IsZero() {
			break
		}
	}

	return schedule
}
