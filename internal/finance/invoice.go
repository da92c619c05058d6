package finance

import (
	"github.com/shopspring/decimal"
)

// LineItem is one billed row before totals are applied
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
}

// Amount is quantity times rate, rounded to paise
func (l LineItem) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.Rate).Round(2)
}

// InvoiceTotals is the tax-exclusive breakdown of an invoice
type InvoiceTotals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"taxAmount"`
	Total     decimal.Decimal `json:"total"`
}

// CalculateInvoiceTotals sums the line amounts and applies taxRate (percent) on the subtotal
func CalculateInvoiceTotals(items []LineItem, taxRate decimal.Decimal) InvoiceTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount())
	}
	tax := subtotal.Mul(taxRate).DivRound(decimalOneHundred, 2)
	return InvoiceTotals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}

// Sum adds amounts without going through floating point
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
