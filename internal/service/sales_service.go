package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trude-tech/trude-carwash/internal/core"
	"github.com/trude-tech/trude-carwash/internal/events"
	"github.com/trude-tech/trude-carwash/internal/ledger"
)

// SalesService handles recording and mutating car-wash and drink sales.
// Every write invalidates the summary cache and emits a dashboard event.
type SalesService struct {
	carWashRepo core.CarWashSaleRepository
	drinkRepo   core.DrinkSaleRepository
	cache       core.SummaryCache
	eventBus    *events.EventBus
}

// NewSalesService creates a new sales service
func NewSalesService(
	carWashRepo core.CarWashSaleRepository,
	drinkRepo core.DrinkSaleRepository,
	cache core.SummaryCache,
	eventBus *events.EventBus,
) *SalesService {
	return &SalesService{
		carWashRepo: carWashRepo,
		drinkRepo:   drinkRepo,
		cache:       cache,
		eventBus:    eventBus,
	}
}

// afterWrite drops cached summaries and publishes the given event. A cache
// failure must not fail the write that already committed.
func (s *SalesService) afterWrite(ctx context.Context, publish func()) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx)
	}
	if s.eventBus != nil {
		publish()
	}
}

// AddCarWashSale records a new car-wash sale. The current date is stamped
// unless the sale was explicitly backdated.
func (s *SalesService) AddCarWashSale(ctx context.Context, sale *core.CarWashSale) error {
	if sale.Date.IsZero() {
		sale.Date = today()
	}
	if err := sale.Validate(); err != nil {
		return err
	}

	sale.ID = uuid.New().String()
	sale.CreatedAt = time.Now()

	if err := s.carWashRepo.Create(ctx, sale); err != nil {
		return err
	}

	s.afterWrite(ctx, func() { s.eventBus.PublishSaleRecorded(sale) })
	return nil
}

// ListCarWashSales retrieves car-wash sales matching the filter, newest-first.
func (s *SalesService) ListCarWashSales(ctx context.Context, spec ledger.FilterSpec) ([]*core.CarWashSale, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	sales, err := s.carWashRepo.ListByDateRange(ctx, spec.StartDate, spec.EndDate)
	if err != nil {
		return nil, err
	}

	out := make([]*core.CarWashSale, 0, len(sales))
	for _, sale := range sales {
		if spec.PaymentMethod != "" && spec.PaymentMethod != ledger.All && sale.PaymentMethod != spec.PaymentMethod {
			continue
		}
		if spec.PaymentStatus != "" && spec.PaymentStatus != ledger.All &&
			!core.StatusEquals(sale.PaymentStatus, core.PaymentStatus(spec.PaymentStatus)) {
			continue
		}
		out = append(out, sale)
	}
	return out, nil
}

// UpdateCarWashSale applies a field edit to an existing sale.
func (s *SalesService) UpdateCarWashSale(ctx context.Context, sale *core.CarWashSale) error {
	if sale.ID == "" {
		return fmt.Errorf("%w: sale id is required", core.ErrInvalidInput)
	}
	if sale.Date.IsZero() {
		// Field edits never move the sale date.
		existing, err := s.carWashRepo.GetByID(ctx, sale.ID)
		if err != nil {
			return err
		}
		sale.Date = existing.Date
	}
	if err := sale.Validate(); err != nil {
		return err
	}

	if err := s.carWashRepo.UpdateFields(ctx, sale); err != nil {
		return err
	}

	s.afterWrite(ctx, func() { s.eventBus.PublishSaleUpdated(string(core.SourceCarWash), sale.ID) })
	return nil
}

// MarkCarWashSalePaid transitions a sale to Paid. Idempotent: an already-Paid
// sale is left alone and no error is returned.
func (s *SalesService) MarkCarWashSalePaid(ctx context.Context, id string) error {
	sale, err := s.carWashRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !sale.MarkPaid() {
		return nil
	}

	if err := s.carWashRepo.UpdateStatus(ctx, id, core.StatusPaid); err != nil {
		return err
	}

	s.afterWrite(ctx, func() { s.eventBus.PublishSalePaid(string(core.SourceCarWash), id) })
	return nil
}

// SaveCarWashBatch applies a multi-row edit. Each row is updated
// independently; a failed row never aborts the rest. The result itemizes
// per-row failures.
func (s *SalesService) SaveCarWashBatch(ctx context.Context, sales []core.CarWashSale) core.BatchResult {
	var result core.BatchResult
	for i := range sales {
		sale := sales[i]
		if err := s.UpdateCarWashSale(ctx, &sale); err != nil {
			result.Failures = append(result.Failures, core.RowFailure{ID: sale.ID, Error: err.Error()})
			continue
		}
		result.Applied++
	}
	return result
}

// AddDrinkSale records a new drink sale, recomputing the derived total.
func (s *SalesService) AddDrinkSale(ctx context.Context, sale *core.DrinkSale) error {
	if sale.Date.IsZero() {
		sale.Date = today()
	}
	if err := sale.Validate(); err != nil {
		return err
	}

	sale.ID = uuid.New().String()
	sale.CreatedAt = time.Now()

	if err := s.drinkRepo.Create(ctx, sale); err != nil {
		return err
	}

	s.afterWrite(ctx, func() { s.eventBus.PublishSaleRecorded(sale) })
	return nil
}

// ListDrinkSales retrieves drink sales matching the filter, newest-first.
func (s *SalesService) ListDrinkSales(ctx context.Context, spec ledger.FilterSpec) ([]*core.DrinkSale, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	sales, err := s.drinkRepo.ListByDateRange(ctx, spec.StartDate, spec.EndDate)
	if err != nil {
		return nil, err
	}

	out := make([]*core.DrinkSale, 0, len(sales))
	for _, sale := range sales {
		if spec.PaymentMethod != "" && spec.PaymentMethod != ledger.All && sale.PaymentMethod != spec.PaymentMethod {
			continue
		}
		if spec.PaymentStatus != "" && spec.PaymentStatus != ledger.All &&
			!core.StatusEquals(sale.PaymentStatus, core.PaymentStatus(spec.PaymentStatus)) {
			continue
		}
		out = append(out, sale)
	}
	return out, nil
}

// UpdateDrinkSale applies a field edit, always recomputing the total from
// quantity and unit price. A stored total is never trusted after an edit.
func (s *SalesService) UpdateDrinkSale(ctx context.Context, sale *core.DrinkSale) error {
	if sale.ID == "" {
		return fmt.Errorf("%w: sale id is required", core.ErrInvalidInput)
	}
	if sale.Date.IsZero() {
		existing, err := s.drinkRepo.GetByID(ctx, sale.ID)
		if err != nil {
			return err
		}
		sale.Date = existing.Date
	}
	if err := sale.Validate(); err != nil {
		return err
	}

	if err := s.drinkRepo.UpdateFields(ctx, sale); err != nil {
		return err
	}

	s.afterWrite(ctx, func() { s.eventBus.PublishSaleUpdated(string(core.SourceDrink), sale.ID) })
	return nil
}

// MarkDrinkSalePaid transitions a drink sale to Paid, idempotently.
func (s *SalesService) MarkDrinkSalePaid(ctx context.Context, id string) error {
	sale, err := s.drinkRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !sale.MarkPaid() {
		return nil
	}

	if err := s.drinkRepo.UpdateStatus(ctx, id, core.StatusPaid); err != nil {
		return err
	}

	s.afterWrite(ctx, func() { s.eventBus.PublishSalePaid(string(core.SourceDrink), id) })
	return nil
}

// SaveDrinkBatch applies a multi-row edit over drink sales with the same
// independent-row semantics as SaveCarWashBatch.
func (s *SalesService) SaveDrinkBatch(ctx context.Context, sales []core.DrinkSale) core.BatchResult {
	var result core.BatchResult
	for i := range sales {
		sale := sales[i]
		if err := s.UpdateDrinkSale(ctx, &sale); err != nil {
			result.Failures = append(result.Failures, core.RowFailure{ID: sale.ID, Error: err.Error()})
			continue
		}
		result.Applied++
	}
	return result
}

// DeleteDrinkSale permanently removes a drink sale. Deletion is explicit and
// exposed for drinks only.
func (s *SalesService) DeleteDrinkSale(ctx context.Context, id string) error {
	if err := s.drinkRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.afterWrite(ctx, func() { s.eventBus.PublishSaleDeleted(string(core.SourceDrink), id) })
	return nil
}

func today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
