package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trude-tech/trude-carwash/internal/core"
	"github.com/trude-tech/trude-carwash/internal/events"
	"github.com/trude-tech/trude-carwash/internal/ledger"
)

type fakeCarWashRepo struct {
	sales map[string]*core.CarWashSale
}

func newFakeCarWashRepo() *fakeCarWashRepo {
	return &fakeCarWashRepo{sales: make(map[string]*core.CarWashSale)}
}

func (r *fakeCarWashRepo) Create(_ context.Context, sale *core.CarWashSale) error {
	cp := *sale
	r.sales[sale.ID] = &cp
	return nil
}

func (r *fakeCarWashRepo) GetByID(_ context.Context, id string) (*core.CarWashSale, error) {
	sale, ok := r.sales[id]
	if !ok {
		return nil, fmt.Errorf("%w: car wash sale %s", core.ErrNotFound, id)
	}
	cp := *sale
	return &cp, nil
}

func (r *fakeCarWashRepo) ListByDateRange(_ context.Context, start, end time.Time) ([]*core.CarWashSale, error) {
	var out []*core.CarWashSale
	for _, sale := range r.sales {
		if !start.IsZero() && sale.Date.Before(start) {
			continue
		}
		if !end.IsZero() && sale.Date.After(end) {
			continue
		}
		cp := *sale
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *fakeCarWashRepo) UpdateFields(_ context.Context, sale *core.CarWashSale) error {
	if _, ok := r.sales[sale.ID]; !ok {
		return fmt.Errorf("%w: car wash sale %s", core.ErrNotFound, sale.ID)
	}
	cp := *sale
	r.sales[sale.ID] = &cp
	return nil
}

func (r *fakeCarWashRepo) UpdateStatus(_ context.Context, id string, status core.PaymentStatus) error {
	sale, ok := r.sales[id]
	if !ok {
		return fmt.Errorf("%w: car wash sale %s", core.ErrNotFound, id)
	}
	sale.PaymentStatus = status
	return nil
}

type fakeDrinkRepo struct {
	sales map[string]*core.DrinkSale
}

func newFakeDrinkRepo() *fakeDrinkRepo {
	return &fakeDrinkRepo{sales: make(map[string]*core.DrinkSale)}
}

func (r *fakeDrinkRepo) Create(_ context.Context, sale *core.DrinkSale) error {
	cp := *sale
	r.sales[sale.ID] = &cp
	return nil
}

func (r *fakeDrinkRepo) GetByID(_ context.Context, id string) (*core.DrinkSale, error) {
	sale, ok := r.sales[id]
	if !ok {
		return nil, fmt.Errorf("%w: drink sale %s", core.ErrNotFound, id)
	}
	cp := *sale
	return &cp, nil
}

func (r *fakeDrinkRepo) ListByDateRange(_ context.Context, start, end time.Time) ([]*core.DrinkSale, error) {
	var out []*core.DrinkSale
	for _, sale := range r.sales {
		if !start.IsZero() && sale.Date.Before(start) {
			continue
		}
		if !end.IsZero() && sale.Date.After(end) {
			continue
		}
		cp := *sale
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *fakeDrinkRepo) UpdateFields(_ context.Context, sale *core.DrinkSale) error {
	if _, ok := r.sales[sale.ID]; !ok {
		return fmt.Errorf("%w: drink sale %s", core.ErrNotFound, sale.ID)
	}
	cp := *sale
	r.sales[sale.ID] = &cp
	return nil
}

func (r *fakeDrinkRepo) UpdateStatus(_ context.Context, id string, status core.PaymentStatus) error {
	sale, ok := r.sales[id]
	if !ok {
		return fmt.Errorf("%w: drink sale %s", core.ErrNotFound, id)
	}
	sale.PaymentStatus = status
	return nil
}

func (r *fakeDrinkRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.sales[id]; !ok {
		return fmt.Errorf("%w: drink sale %s", core.ErrNotFound, id)
	}
	delete(r.sales, id)
	return nil
}

type fakeCache struct {
	store       map[string][]byte
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	payload, ok := c.store[key]
	return payload, ok
}

func (c *fakeCache) Set(_ context.Context, key string, payload []byte) error {
	c.store[key] = payload
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context) error {
	c.store = make(map[string][]byte)
	c.invalidated++
	return nil
}

func newTestSalesService() (*SalesService, *fakeCarWashRepo, *fakeDrinkRepo, *fakeCache) {
	carWashRepo := newFakeCarWashRepo()
	drinkRepo := newFakeDrinkRepo()
	cache := newFakeCache()
	svc := NewSalesService(carWashRepo, drinkRepo, cache, events.NewEventBus())
	return svc, carWashRepo, drinkRepo, cache
}

func date(value string) time.Time {
	parsed, err := time.Parse(core.DateLayout, value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestAddCarWashSale(t *testing.T) {
	svc, repo, _, cache := newTestSalesService()

	sale := &core.CarWashSale{
		Date:          date("2024-03-01"),
		CarType:       "Saloon",
		PlateNumber:   "KDA 123A",
		ServiceType:   "Full-service wash",
		Price:         500,
		PaymentMethod: core.PaymentCash,
		PaymentStatus: core.StatusPaid,
	}
	require.NoError(t, svc.AddCarWashSale(context.Background(), sale))

	assert.NotEmpty(t, sale.ID)
	assert.Len(t, repo.sales, 1)
	assert.Equal(t, 1, cache.invalidated)
}

func TestAddCarWashSaleStampsToday(t *testing.T) {
	svc, _, _, _ := newTestSalesService()

	sale := &core.CarWashSale{
		CarType:       "Van",
		PlateNumber:   "KCB 456B",
		ServiceType:   "Half-service wash",
		Price:         300,
		PaymentMethod: core.PaymentMpesa,
		PaymentStatus: core.StatusUnpaid,
	}
	require.NoError(t, svc.AddCarWashSale(context.Background(), sale))

	assert.Equal(t, time.Now().Format(core.DateLayout), sale.Date.Format(core.DateLayout))
}

func TestAddCarWashSaleRejectsInvalid(t *testing.T) {
	svc, repo, _, cache := newTestSalesService()

	sale := &core.CarWashSale{
		Date:          date("2024-03-01"),
		CarType:       "Saloon",
		PlateNumber:   "KDA 123A",
		ServiceType:   "Full-service wash",
		Price:         -5,
		PaymentMethod: core.PaymentCash,
		PaymentStatus: core.StatusPaid,
	}
	err := svc.AddCarWashSale(context.Background(), sale)

	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Empty(t, repo.sales)
	assert.Zero(t, cache.invalidated)
}

func TestMarkCarWashSalePaidIdempotent(t *testing.T) {
	svc, repo, _, cache := newTestSalesService()

	sale := &core.CarWashSale{
		Date:          date("2024-03-01"),
		CarType:       "Truck",
		PlateNumber:   "KDD 789C",
		ServiceType:   "Full-service wash",
		Price:         1000,
		PaymentMethod: core.PaymentMpesa,
		PaymentStatus: core.StatusUnpaid,
	}
	require.NoError(t, svc.AddCarWashSale(context.Background(), sale))
	invalidationsAfterAdd := cache.invalidated

	require.NoError(t, svc.MarkCarWashSalePaid(context.Background(), sale.ID))
	assert.Equal(t, core.StatusPaid, repo.sales[sale.ID].PaymentStatus)
	assert.Equal(t, invalidationsAfterAdd+1, cache.invalidated)

	// Second call is a no-op: no extra invalidation, status unchanged.
	require.NoError(t, svc.MarkCarWashSalePaid(context.Background(), sale.ID))
	assert.Equal(t, core.StatusPaid, repo.sales[sale.ID].PaymentStatus)
	assert.Equal(t, invalidationsAfterAdd+1, cache.invalidated)
}

func TestMarkCarWashSalePaidNotFound(t *testing.T) {
	svc, _, _, _ := newTestSalesService()

	err := svc.MarkCarWashSalePaid(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSaveCarWashBatchPartialFailure(t *testing.T) {
	svc, repo, _, _ := newTestSalesService()

	good := &core.CarWashSale{
		Date:          date("2024-03-01"),
		CarType:       "Saloon",
		PlateNumber:   "KDA 111A",
		ServiceType:   "Full-service wash",
		Price:         500,
		PaymentMethod: core.PaymentCash,
		PaymentStatus: core.StatusPaid,
	}
	other := &core.CarWashSale{
		Date:          date("2024-03-01"),
		CarType:       "Van",
		PlateNumber:   "KCB 222B",
		ServiceType:   "Half-service wash",
		Price:         300,
		PaymentMethod: core.PaymentCash,
		PaymentStatus: core.StatusUnpaid,
	}
	require.NoError(t, svc.AddCarWashSale(context.Background(), good))
	require.NoError(t, svc.AddCarWashSale(context.Background(), other))

	goodEdit := *good
	goodEdit.Price = 600
	badEdit := *other
	badEdit.Price = -1

	result := svc.SaveCarWashBatch(context.Background(), []core.CarWashSale{goodEdit, badEdit})

	assert.Equal(t, 1, result.Applied)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, other.ID, result.Failures[0].ID)
	assert.False(t, result.OK())

	// The good row landed, the bad row left its record untouched.
	assert.Equal(t, 600.0, repo.sales[good.ID].Price)
	assert.Equal(t, 300.0, repo.sales[other.ID].Price)
}

func TestListCarWashSalesFilters(t *testing.T) {
	svc, _, _, _ := newTestSalesService()
	ctx := context.Background()

	for i, sale := range []*core.CarWashSale{
		{Date: date("2024-03-01"), CarType: "Saloon", PlateNumber: "A", ServiceType: "Full-service wash", Price: 500, PaymentMethod: core.PaymentCash, PaymentStatus: core.StatusPaid},
		{Date: date("2024-03-02"), CarType: "Van", PlateNumber: "B", ServiceType: "Half-service wash", Price: 300, PaymentMethod: core.PaymentMpesa, PaymentStatus: core.StatusUnpaid},
		{Date: date("2024-03-03"), CarType: "Truck", PlateNumber: "C", ServiceType: "Full-service wash", Price: 1000, PaymentMethod: core.PaymentCash, PaymentStatus: core.StatusUnpaid},
	} {
		require.NoError(t, svc.AddCarWashSale(ctx, sale), "sale %d", i)
	}

	unpaidCash, err := svc.ListCarWashSales(ctx, ledger.FilterSpec{
		PaymentMethod: core.PaymentCash,
		PaymentStatus: string(core.StatusUnpaid),
	})
	require.NoError(t, err)
	require.Len(t, unpaidCash, 1)
	assert.Equal(t, "C", unpaidCash[0].PlateNumber)

	ranged, err := svc.ListCarWashSales(ctx, ledger.FilterSpec{
		StartDate: date("2024-03-01"),
		EndDate:   date("2024-03-02"),
	})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	_, err = svc.ListCarWashSales(ctx, ledger.FilterSpec{
		StartDate: date("2024-03-05"),
		EndDate:   date("2024-03-01"),
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestUpdateDrinkSaleRecomputesTotal(t *testing.T) {
	svc, _, drinkRepo, _ := newTestSalesService()
	ctx := context.Background()

	sale := &core.DrinkSale{
		Date:          date("2024-03-01"),
		DrinkName:     "Soda",
		Quantity:      2,
		UnitPrice:     50,
		PaymentMethod: core.PaymentCash,
		PaymentStatus: core.StatusPaid,
	}
	require.NoError(t, svc.AddDrinkSale(ctx, sale))
	assert.Equal(t, 100.0, sale.Total)

	edit := *sale
	edit.Quantity = 5
	edit.Total = 9999 // stale, must be recomputed
	require.NoError(t, svc.UpdateDrinkSale(ctx, &edit))

	stored := drinkRepo.sales[sale.ID]
	require.NotNil(t, stored)
	assert.Equal(t, 250.0, stored.Total)
}

func TestDeleteDrinkSale(t *testing.T) {
	svc, _, drinkRepo, cache := newTestSalesService()
	ctx := context.Background()

	sale := &core.DrinkSale{
		Date:          date("2024-03-01"),
		DrinkName:     "Water",
		Quantity:      1,
		UnitPrice:     30,
		PaymentMethod: core.PaymentCash,
		PaymentStatus: core.StatusPaid,
	}
	require.NoError(t, svc.AddDrinkSale(ctx, sale))
	invalidations := cache.invalidated

	require.NoError(t, svc.DeleteDrinkSale(ctx, sale.ID))
	assert.Empty(t, drinkRepo.sales)
	assert.Equal(t, invalidations+1, cache.invalidated)

	assert.ErrorIs(t, svc.DeleteDrinkSale(ctx, sale.ID), core.ErrNotFound)
}

func TestMarkDrinkSalePaidIdempotent(t *testing.T) {
	svc, _, drinkRepo, _ := newTestSalesService()
	ctx := context.Background()

	sale := &core.DrinkSale{
		Date:          date("2024-03-01"),
		DrinkName:     "Juice",
		Quantity:      2,
		UnitPrice:     80,
		PaymentMethod: core.PaymentMpesa,
		PaymentStatus: core.StatusUnpaid,
	}
	require.NoError(t, svc.AddDrinkSale(ctx, sale))

	require.NoError(t, svc.MarkDrinkSalePaid(ctx, sale.ID))
	assert.Equal(t, core.StatusPaid, drinkRepo.sales[sale.ID].PaymentStatus)

	require.NoError(t, svc.MarkDrinkSalePaid(ctx, sale.ID))
	assert.Equal(t, core.StatusPaid, drinkRepo.sales[sale.ID].PaymentStatus)
}
