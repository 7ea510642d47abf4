package domain

import "github.com/shopspring/decimal"

const Currency = "USD"

var TaxRate = decimal.RequireFromString("0.08")

type Charges struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Currency string
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComputeCharges fills each LineTotal and rounds after every step: each line,
// the subtotal, the tax and the total.
func ComputeCharges(lines []LineItem) Charges {
	subtotal := decimal.Zero
	for i := range lines {
		lines[i].LineTotal = round2(lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(lines[i].Quantity))))
		subtotal = subtotal.Add(lines[i].LineTotal)
	}
	subtotal = round2(subtotal)
	tax := round2(subtotal.Mul(TaxRate))
	return Charges{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    round2(subtotal.Add(tax)),
		Currency: Currency,
	}
}
