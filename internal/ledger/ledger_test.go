package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trude-tech/trude-carwash/internal/core"
)

func day(value string) time.Time {
	d, err := time.Parse(core.DateLayout, value)
	if err != nil {
		panic(err)
	}
	return d
}

func carWash(date string, price float64, method string, status core.PaymentStatus) *core.CarWashSale {
	return &core.CarWashSale{
		Date:          day(date),
		CarType:       "Saloon",
		PlateNumber:   "KDA 123A",
		ServiceType:   "Full-service wash",
		Price:         price,
		PaymentMethod: method,
		PaymentStatus: status,
	}
}

func drink(date string, qty int, unitPrice float64, method string, status core.PaymentStatus) *core.DrinkSale {
	return &core.DrinkSale{
		Date:          day(date),
		DrinkName:     "Soda",
		Quantity:      qty,
		UnitPrice:     unitPrice,
		Total:         core.RecomputeTotal(qty, unitPrice),
		PaymentMethod: method,
		PaymentStatus: status,
	}
}

func TestNormalizeLengthAndAmounts(t *testing.T) {
	washes := []*core.CarWashSale{
		carWash("2024-01-01", 100, core.PaymentCash, core.StatusPaid),
		carWash("2024-01-02", 250.50, core.PaymentMpesa, core.StatusUnpaid),
	}
	drinks := []*core.DrinkSale{
		drink("2024-01-01", 3, 50, core.PaymentCash, core.StatusPaid),
	}

	normalized := Normalize(washes, drinks)
	require.Len(t, normalized, len(washes)+len(drinks))

	assert.Equal(t, 100.0, normalized[0].Amount)
	assert.Equal(t, core.SourceCarWash, normalized[0].Source)
	assert.Equal(t, 250.50, normalized[1].Amount)
	assert.Equal(t, 150.0, normalized[2].Amount)
	assert.Equal(t, core.SourceDrink, normalized[2].Source)
}

func TestNormalizeEmptyInputs(t *testing.T) {
	assert.Empty(t, Normalize(nil, nil))
	assert.Len(t, Normalize(nil, []*core.DrinkSale{drink("2024-01-01", 1, 10, core.PaymentCash, core.StatusPaid)}), 1)
}

func TestFilterUnrestrictedIsIdentity(t *testing.T) {
	sales := Normalize(
		[]*core.CarWashSale{
			carWash("2024-01-01", 100, core.PaymentCash, core.StatusPaid),
			carWash("2024-01-03", 300, core.PaymentMpesa, core.StatusUnpaid),
		},
		[]*core.DrinkSale{drink("2024-01-02", 2, 75, core.PaymentCash, core.StatusPaid)},
	)

	for _, spec := range []FilterSpec{
		{},
		{Source: All, PaymentMethod: All, PaymentStatus: All},
	} {
		got, err := Filter(sales, spec)
		require.NoError(t, err)
		assert.Equal(t, sales, got)
	}
}

func TestFilterConjunctive(t *testing.T) {
	sales := Normalize(
		[]*core.CarWashSale{
			carWash("2024-01-01", 100, core.PaymentCash, core.StatusPaid),
			carWash("2024-01-02", 200, core.PaymentMpesa, core.StatusUnpaid),
			carWash("2024-01-05", 300, core.PaymentCash, core.StatusUnpaid),
		},
		[]*core.DrinkSale{drink("2024-01-02", 1, 80, core.PaymentCash, core.StatusUnpaid)},
	)

	tests := []struct {
		name string
		spec FilterSpec
		want int
	}{
		{"source only", FilterSpec{Source: string(core.SourceDrink)}, 1},
		{"method only", FilterSpec{PaymentMethod: core.PaymentCash}, 3},
		{"status only", FilterSpec{PaymentStatus: string(core.StatusUnpaid)}, 3},
		{"status case-insensitive", FilterSpec{PaymentStatus: "unpaid"}, 3},
		{"source and method", FilterSpec{Source: string(core.SourceCarWash), PaymentMethod: core.PaymentCash}, 2},
		{"range", FilterSpec{StartDate: day("2024-01-02"), EndDate: day("2024-01-05")}, 3},
		{"everything", FilterSpec{
			Source:        string(core.SourceCarWash),
			PaymentMethod: core.PaymentCash,
			PaymentStatus: string(core.StatusUnpaid),
			StartDate:     day("2024-01-02"),
			EndDate:       day("2024-01-05"),
		}, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Filter(sales, tc.spec)
			require.NoError(t, err)
			assert.Len(t, got, tc.want)
		})
	}
}

func TestFilterSingleDayRange(t *testing.T) {
	sales := Normalize([]*core.CarWashSale{
		carWash("2024-01-01", 100, core.PaymentCash, core.StatusPaid),
		carWash("2024-01-02", 200, core.PaymentCash, core.StatusPaid),
		carWash("2024-01-03", 300, core.PaymentCash, core.StatusPaid),
	}, nil)

	got, err := Filter(sales, FilterSpec{StartDate: day("2024-01-02"), EndDate: day("2024-01-02")})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 200.0, got[0].Amount)
}

func TestFilterRejectsInvertedRange(t *testing.T) {
	sales := Normalize([]*core.CarWashSale{carWash("2024-01-01", 100, core.PaymentCash, core.StatusPaid)}, nil)

	_, err := Filter(sales, FilterSpec{StartDate: day("2024-02-01"), EndDate: day("2024-01-01")})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestAggregateEmpty(t *testing.T) {
	summary := Aggregate(nil)

	assert.True(t, summary.TotalRevenue.IsZero())
	assert.True(t, summary.PaidTotal.IsZero())
	assert.True(t, summary.UnpaidTotal.IsZero())
	assert.True(t, summary.Payout.IsZero())
}

func TestAggregatePayoutOnCarWashOnly(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   string
	}{
		{"round total", []float64{1000}, "300"},
		{"split total", []float64{400, 600}, "300"},
		{"non-terminating case", []float64{333.33}, "100"}, // 99.999 rounds half-up
		{"cents", []float64{10.01}, "3"},                   // 3.003 -> 3.00
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var washes []*core.CarWashSale
			for _, p := range tc.prices {
				washes = append(washes, carWash("2024-01-01", p, core.PaymentCash, core.StatusPaid))
			}
			summary := Aggregate(Normalize(washes, nil))
			assert.True(t, summary.Payout.Equal(decimal.RequireFromString(tc.want)),
				"payout = %s, want %s", summary.Payout, tc.want)
		})
	}
}

func TestAggregatePayoutIgnoresDrinks(t *testing.T) {
	summary := Aggregate(Normalize(
		[]*core.CarWashSale{carWash("2024-01-01", 1000, core.PaymentCash, core.StatusPaid)},
		[]*core.DrinkSale{drink("2024-01-01", 10, 100, core.PaymentCash, core.StatusPaid)},
	))

	assert.True(t, summary.TotalRevenue.Equal(decimal.NewFromInt(2000)))
	assert.True(t, summary.BySource[core.SourceCarWash].Equal(decimal.NewFromInt(1000)))
	assert.True(t, summary.BySource[core.SourceDrink].Equal(decimal.NewFromInt(1000)))
	assert.True(t, summary.Payout.Equal(decimal.NewFromInt(300)))
}

func TestAggregatePaidUnpaidSplit(t *testing.T) {
	summary := Aggregate(Normalize([]*core.CarWashSale{
		carWash("2024-01-01", 100, core.PaymentCash, core.StatusPaid),
		carWash("2024-01-01", 200, core.PaymentCash, core.StatusUnpaid),
		carWash("2024-01-01", 50, core.PaymentCash, "unpaid"), // mixed case still counts
	}, nil))

	assert.True(t, summary.PaidTotal.Equal(decimal.NewFromInt(100)))
	assert.True(t, summary.UnpaidTotal.Equal(decimal.NewFromInt(250)))
	assert.True(t, summary.TotalRevenue.Equal(decimal.NewFromInt(350)))
}

func TestAggregateNoFloatDrift(t *testing.T) {
	// 0.1 added 1000 times drifts under float64 accumulation; the decimal
	// path must land on exactly 100.
	washes := make([]*core.CarWashSale, 1000)
	for i := range washes {
		washes[i] = carWash("2024-01-01", 0.1, core.PaymentCash, core.StatusPaid)
	}
	summary := Aggregate(Normalize(washes, nil))
	assert.True(t, summary.TotalRevenue.Equal(decimal.NewFromInt(100)),
		"total = %s", summary.TotalRevenue)
}

func TestBucketByDayOrderedAscending(t *testing.T) {
	// Inserted out of order on purpose.
	sales := Normalize([]*core.CarWashSale{
		carWash("2024-01-03", 300, core.PaymentCash, core.StatusPaid),
		carWash("2024-01-01", 100, core.PaymentCash, core.StatusPaid),
		carWash("2024-01-02", 200, core.PaymentCash, core.StatusPaid),
	}, nil)

	points, err := BucketByPeriod(sales, ByDay)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, "2024-01-01", points[0].Period)
	assert.True(t, points[0].Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "2024-01-02", points[1].Period)
	assert.True(t, points[1].Amount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "2024-01-03", points[2].Period)
	assert.True(t, points[2].Amount.Equal(decimal.NewFromInt(300)))

	summary := Aggregate(sales)
	assert.True(t, summary.TotalRevenue.Equal(decimal.NewFromInt(600)))
	assert.True(t, summary.PaidTotal.Equal(decimal.NewFromInt(600)))
	assert.True(t, summary.UnpaidTotal.IsZero())
	assert.True(t, summary.Payout.Equal(decimal.NewFromInt(180)))
}

func TestBucketByWeekMondayKey(t *testing.T) {
	// 2024-01-01 is a Monday; 2024-01-07 the following Sunday; 2024-01-08
	// opens the next ISO week.
	sales := Normalize([]*core.CarWashSale{
		carWash("2024-01-01", 100, core.PaymentCash, core.StatusPaid),
		carWash("2024-01-07", 200, core.PaymentCash, core.StatusPaid),
		carWash("2024-01-08", 400, core.PaymentCash, core.StatusPaid),
	}, nil)

	points, err := BucketByPeriod(sales, ByWeek)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "2024-01-01", points[0].Period)
	assert.True(t, points[0].Amount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "2024-01-08", points[1].Period)
	assert.True(t, points[1].Amount.Equal(decimal.NewFromInt(400)))
}

func TestBucketSparseNoZeroFill(t *testing.T) {
	sales := Normalize([]*core.CarWashSale{
		carWash("2024-01-01", 100, core.PaymentCash, core.StatusPaid),
		carWash("2024-01-10", 200, core.PaymentCash, core.StatusPaid),
	}, nil)

	points, err := BucketByPeriod(sales, ByDay)
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestBucketRejectsUnknownGranularity(t *testing.T) {
	_, err := BucketByPeriod(nil, Granularity("month"))
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestSumByCategory(t *testing.T) {
	sales := Normalize([]*core.CarWashSale{
		carWash("2024-01-01", 100, core.PaymentCash, core.StatusPaid),
		carWash("2024-01-01", 200, core.PaymentMpesa, core.StatusPaid),
		carWash("2024-01-02", 50, core.PaymentCash, core.StatusPaid),
	}, nil)

	byMethod := SumByCategory(sales, func(s core.NormalizedSale) string { return s.PaymentMethod })
	require.Len(t, byMethod, 2)
	assert.True(t, byMethod[core.PaymentCash].Equal(decimal.NewFromInt(150)))
	assert.True(t, byMethod[core.PaymentMpesa].Equal(decimal.NewFromInt(200)))
}

func TestSortNewestFirst(t *testing.T) {
	sales := Normalize([]*core.CarWashSale{
		carWash("2024-01-01", 100, core.PaymentCash, core.StatusPaid),
		carWash("2024-01-03", 300, core.PaymentCash, core.StatusPaid),
		carWash("2024-01-02", 200, core.PaymentCash, core.StatusPaid),
	}, nil)

	SortNewestFirst(sales)
	assert.Equal(t, 300.0, sales[0].Amount)
	assert.Equal(t, 200.0, sales[1].Amount)
	assert.Equal(t, 100.0, sales[2].Amount)
}
