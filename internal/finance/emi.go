package finance

import (
	"errors"

	"github.com/shopspring/decimal"
)

// DefaultAnnualRate is the indicative rate (percent per annum) quoted by the loan wizard
var DefaultAnnualRate = decimal.NewFromInt(12)

var (
	decimalOneHundred = decimal.NewFromInt(100)
	decimalTwelve     = decimal.NewFromInt(12)
)

// EMIBreakdown is the repayment schedule summary for an amortizing loan
type EMIBreakdown struct {
	Principal     decimal.Decimal `json:"principal"`
	AnnualRate    decimal.Decimal `json:"interestRate"`
	TenureMonths  int             `json:"tenure"`
	MonthlyEMI    decimal.Decimal `json:"emi"`
	TotalInterest decimal.Decimal `json:"totalInterest"`
	TotalPayable  decimal.Decimal `json:"totalAmount"`
}

// CalculateEMI applies EMI = P*r*(1+r)^n / ((1+r)^n - 1) with r the monthly rate.
// The installment is rounded to paise and the totals are derived from the rounded value.
func CalculateEMI(principal, annualRate decimal.Decimal, tenureMonths int) (EMIBreakdown, error) {
	if !principal.IsPositive() {
		return EMIBreakdown{}, errors.New("principal must be positive")
	}
	if tenureMonths <= 0 {
		return EMIBreakdown{}, errors.New("tenure must be positive")
	}
	if annualRate.IsNegative() {
		return EMIBreakdown{}, errors.New("interest rate must not be negative")
	}

	n := decimal.NewFromInt(int64(tenureMonths))

	var emi decimal.Decimal
	if annualRate.IsZero() {
		emi = principal.DivRound(n, 2)
	} else {
		r := annualRate.Div(decimalTwelve).Div(decimalOneHundred)
		growth := decimal.NewFromInt(1)
		onePlusR := growth.Add(r)
		for i := 0; i < tenureMonths; i++ {
			growth = growth.Mul(onePlusR)
		}
		emi = principal.Mul(r).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1))).Round(2)
	}

	total := emi.Mul(n)
	return EMIBreakdown{
		Principal:     principal,
		AnnualRate:    annualRate,
		TenureMonths:  tenureMonths,
		MonthlyEMI:    emi,
		TotalInterest: total.Sub(principal),
		TotalPayable:  total,
	}, nil
}
