// Package ledger turns raw car-wash and drink sale records into filtered,
// deduplicated, time-bucketed financial summaries. Every function here is a
// pure transform over explicit inputs; the dashboard, the per-source reports
// and the overall report all go through the same contract.
package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/trude-tech/trude-carwash/internal/core"
)

// All is the unrestricted value for a filter dimension. An empty string is
// treated the same way.
const All = "All"

// FilterSpec is the conjunctive set of constraints applied before
// aggregation. Each field defaults to "no restriction"; a record passes only
// if it satisfies every non-All constraint.
type FilterSpec struct {
	Source        string    `json:"source"`
	PaymentMethod string    `json:"payment_method"`
	PaymentStatus string    `json:"payment_status"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
}

// Validate rejects malformed specs. A range with start after end is an input
// error everywhere; the policy is deliberately uniform across the dashboard
// and all report tabs.
func (f FilterSpec) Validate() error {
	if !f.StartDate.IsZero() && !f.EndDate.IsZero() && f.StartDate.After(f.EndDate) {
		return fmt.Errorf("%w: start date %s is after end date %s",
			core.ErrInvalidInput, f.StartDate.Format(core.DateLayout), f.EndDate.Format(core.DateLayout))
	}
	return nil
}

func unrestricted(value string) bool {
	return value == "" || value == All
}

// sameOrAfter / sameOrBefore compare calendar dates, ignoring any time
// component a stored timestamp may carry. Bounds are inclusive on both ends,
// so start == end matches exactly that day.
func sameOrAfter(d, bound time.Time) bool {
	dy, dm, dd := d.Date()
	by, bm, bd := bound.Date()
	return time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC).
		Compare(time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)) >= 0
}

func sameOrBefore(d, bound time.Time) bool {
	return sameOrAfter(bound, d)
}

// Normalize merges independently fetched car-wash and drink collections into
// one sequence of NormalizedSale. Pure transform: empty input on either side
// is fine, order follows the inputs (car-wash first).
func Normalize(carWash []*core.CarWashSale, drinks []*core.DrinkSale) []core.NormalizedSale {
	out := make([]core.NormalizedSale, 0, len(carWash)+len(drinks))
	for _, s := range carWash {
		out = append(out, s.Normalized())
	}
	for _, s := range drinks {
		out = append(out, s.Normalized())
	}
	return out
}

// Filter returns the normalized sales satisfying every constraint of spec.
// Filters are conjunctive, never disjunctive. An invalid spec is rejected
// before any record is touched.
func Filter(sales []core.NormalizedSale, spec FilterSpec) ([]core.NormalizedSale, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	out := make([]core.NormalizedSale, 0, len(sales))
	for _, s := range sales {
		if !unrestricted(spec.Source) && string(s.Source) != spec.Source {
			continue
		}
		if !unrestricted(spec.PaymentMethod) && s.PaymentMethod != spec.PaymentMethod {
			continue
		}
		if !unrestricted(spec.PaymentStatus) && !core.StatusEquals(s.PaymentStatus, core.PaymentStatus(spec.PaymentStatus)) {
			continue
		}
		if !spec.StartDate.IsZero() && !sameOrAfter(s.Date, spec.StartDate) {
			continue
		}
		if !spec.EndDate.IsZero() && !sameOrBefore(s.Date, spec.EndDate) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// SortNewestFirst orders sales for tabular listings: latest date on top.
// Trend series stay oldest-first; only tables flip the order.
func SortNewestFirst(sales []core.NormalizedSale) {
	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].Date.After(sales[j].Date)
	})
}
