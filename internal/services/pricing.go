package service

import "github.com/shopspring/decimal"

// ReferralDiscountRate is taken off the subtotal when a valid referral applies.
var ReferralDiscountRate = decimal.RequireFromString("0.12")

type Quote struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// PriceTickets prices quantity tickets. Discount and total are each rounded
// half-up to cents exactly once.
func PriceTickets(quantity int, unitPrice decimal.Decimal, withReferral bool) Quote {
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	discount := decimal.Zero
	if withReferral {
		discount = subtotal.Mul(ReferralDiscountRate).Round(2)
	}
	return Quote{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount).Round(2),
	}
}
