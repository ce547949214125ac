package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
	"github.com/Nathan-Yinka/autochek-API/pkg/money"
)

var oneThousand = decimal.NewFromInt(1000)

// MileageAdjustment is the outcome of adjusting baseline values for mileage.
// AdjLoan and AdjRetail are the clamped adjustments. Adjustments and adjusted
// values are rounded to a whole currency unit.
type MileageAdjustment struct {
	AdjustedLoanValue   decimal.Decimal
	AdjustedRetailValue decimal.Decimal
	DeltaMiles          int
	AdjLoan             decimal.Decimal
	AdjRetail           decimal.Decimal
}

// MileageAdjuster moves baseline valuations up for low mileage and down for
// high mileage relative to the policy's expected annual mileage.
type MileageAdjuster struct {
	policy valueobject.PolicyConfig
}

// NewMileageAdjuster creates a MileageAdjuster.
func NewMileageAdjuster(policy valueobject.PolicyConfig) MileageAdjuster {
	return MileageAdjuster{policy: policy}
}

// Adjust applies the mileage adjustment as of asOf. A nil mileage means the
// odometer reading is unknown and the baseline is returned unchanged; a zero
// reading is a real reading.
func (m MileageAdjuster) Adjust(
	baselineLoan, baselineRetail decimal.Decimal,
	mileage *int,
	vehicleYear int,
	asOf time.Time,
) MileageAdjustment {
	if mileage == nil {
		return MileageAdjustment{
			AdjustedLoanValue:   baselineLoan,
			AdjustedRetailValue: baselineRetail,
			AdjLoan:             decimal.Zero,
			AdjRetail:           decimal.Zero,
		}
	}

	age := max(0, asOf.Year()-vehicleYear)
	expected := age * m.policy.ExpectedMilesPerYear
	delta := *mileage - expected

	thousands := decimal.NewFromInt(int64(delta)).Div(oneThousand)
	adjLoan := clampAdjustment(thousands.Mul(m.policy.LoanAdjPer1k).Neg(), m.policy.MileageAdjCapPct.Mul(baselineLoan)).Round(0)
	adjRetail := clampAdjustment(thousands.Mul(m.policy.RetailAdjPer1k).Neg(), m.policy.MileageAdjCapPct.Mul(baselineRetail)).Round(0)

	return MileageAdjustment{
		AdjustedLoanValue:   decimal.Max(decimal.Zero, baselineLoan.Add(adjLoan)).Round(0),
		AdjustedRetailValue: decimal.Max(decimal.Zero, baselineRetail.Add(adjRetail)).Round(0),
		DeltaMiles:          delta,
		AdjLoan:             adjLoan,
		AdjRetail:           adjRetail,
	}
}

func clampAdjustment(raw, capAbs decimal.Decimal) decimal.Decimal {
	capAbs = capAbs.Abs()
	return decimal.Min(decimal.Max(raw, capAbs.Neg()), capAbs)
}

// Explain renders the adjustment for display.
func (m MileageAdjuster) Explain(adj MileageAdjustment, currency string) string {
	switch {
	case adj.DeltaMiles == 0:
		return "Average mileage - no adjustment"
	case adj.DeltaMiles < 0:
		return fmt.Sprintf("Low mileage (+%s miles below expected): Loan value +%s, Retail value +%s",
			money.FormatAmount(decimal.NewFromInt(int64(-adj.DeltaMiles))),
			money.Display(adj.AdjLoan.Abs(), currency),
			money.Display(adj.AdjRetail.Abs(), currency))
	default:
		return fmt.Sprintf("High mileage (+%s miles above expected): Loan value -%s, Retail value -%s",
			money.FormatAmount(decimal.NewFromInt(int64(adj.DeltaMiles))),
			money.Display(adj.AdjLoan.Abs(), currency),
			money.Display(adj.AdjRetail.Abs(), currency))
	}
}
