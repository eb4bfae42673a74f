package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trude-tech/trude-carwash/internal/core"
)

// Granularity selects the calendar period a trend series is bucketed by.
type Granularity string

const (
	// ByDay groups by exact calendar date.
	ByDay Granularity = "day"
	// ByWeek groups by ISO week. The convention is fixed: weeks start on
	// Monday and a bucket is keyed by that Monday's date.
	ByWeek Granularity = "week"
)

// TrendPoint is one period's revenue in a trend series.
type TrendPoint struct {
	Period string          `json:"period"`
	Amount decimal.Decimal `json:"amount"`
}

// BucketByPeriod sums amounts per calendar period and returns the series
// ordered by period ascending, ready for charting. The series is sparse: a
// period with no matching records does not appear; gap filling, if a chart
// needs it, belongs to the presentation layer.
func BucketByPeriod(sales []core.NormalizedSale, granularity Granularity) ([]TrendPoint, error) {
	if granularity != ByDay && granularity != ByWeek {
		return nil, fmt.Errorf("%w: granularity %q must be day or week", core.ErrInvalidInput, granularity)
	}

	buckets := make(map[string]decimal.Decimal)
	for _, s := range sales {
		key := periodKey(s.Date, granularity)
		buckets[key] = buckets[key].Add(decimal.NewFromFloat(s.Amount))
	}

	out := make([]TrendPoint, 0, len(buckets))
	for key, amount := range buckets {
		out = append(out, TrendPoint{Period: key, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Period < out[j].Period
	})
	return out, nil
}

// periodKey renders the bucket key: the date itself for daily buckets, the
// week's Monday for weekly ones. Both use the YYYY-MM-DD layout, so string
// ordering equals chronological ordering.
func periodKey(d time.Time, granularity Granularity) string {
	if granularity == ByWeek {
		d = mondayOf(d)
	}
	return d.Format(core.DateLayout)
}

func mondayOf(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	y, m, day := d.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
