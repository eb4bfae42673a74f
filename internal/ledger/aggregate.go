package ledger

import (
	"github.com/shopspring/decimal"
	"github.com/trude-tech/trude-carwash/internal/core"
)

// PayoutRate is the commission applied to car-wash revenue only, never to
// drinks. Fixed business constant; named here so tests can pin it.
var PayoutRate = decimal.RequireFromString("0.30")

// Summary holds the aggregated view of a filtered sale sequence. Amounts are
// accumulated as fixed-point decimals so repeated additions cannot drift.
type Summary struct {
	TotalRevenue decimal.Decimal                     `json:"total_revenue"`
	BySource     map[core.SaleSource]decimal.Decimal `json:"by_source"`
	PaidTotal    decimal.Decimal                     `json:"paid_total"`
	UnpaidTotal  decimal.Decimal                     `json:"unpaid_total"`
	Payout       decimal.Decimal                     `json:"payout"`
}

// Aggregate sums a normalized sale sequence into a Summary. Empty input is a
// valid empty summary: every total is zero, payout is zero. Records whose
// status is neither Paid nor Unpaid contribute to the revenue totals but to
// neither settlement split. Payout is rounded half-up to 2 decimal places.
func Aggregate(sales []core.NormalizedSale) Summary {
	total := decimal.Zero
	paid := decimal.Zero
	unpaid := decimal.Zero
	bySource := map[core.SaleSource]decimal.Decimal{
		core.SourceCarWash: decimal.Zero,
		core.SourceDrink:   decimal.Zero,
	}

	for _, s := range sales {
		amount := decimal.NewFromFloat(s.Amount)
		total = total.Add(amount)
		bySource[s.Source] = bySource[s.Source].Add(amount)

		switch {
		case core.StatusEquals(s.PaymentStatus, core.StatusPaid):
			paid = paid.Add(amount)
		case core.StatusEquals(s.PaymentStatus, core.StatusUnpaid):
			unpaid = unpaid.Add(amount)
		}
	}

	return Summary{
		TotalRevenue: total,
		BySource:     bySource,
		PaidTotal:    paid,
		UnpaidTotal:  unpaid,
		Payout:       bySource[core.SourceCarWash].Mul(PayoutRate).Round(2),
	}
}

// SumByCategory groups filtered sales by an arbitrary label (payment method,
// source) for chart series. Keys with no records simply do not appear.
func SumByCategory(sales []core.NormalizedSale, key func(core.NormalizedSale) string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, s := range sales {
		k := key(s)
		out[k] = out[k].Add(decimal.NewFromFloat(s.Amount))
	}
	return out
}
