package core

import (
	"context"
	"time"
)

// CarWashSaleRepository defines the interface for car-wash sale data access
type CarWashSaleRepository interface {
	Create(ctx context.Context, sale *CarWashSale) error
	GetByID(ctx context.Context, id string) (*CarWashSale, error)
	// ListByDateRange returns sales dated within [start, end] inclusive,
	// newest-first. Zero bounds mean no restriction on that side.
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*CarWashSale, error)
	UpdateFields(ctx context.Context, sale *CarWashSale) error
	UpdateStatus(ctx context.Context, id string, status PaymentStatus) error
}

// DrinkSaleRepository defines the interface for drink sale data access
type DrinkSaleRepository interface {
	Create(ctx context.Context, sale *DrinkSale) error
	GetByID(ctx context.Context, id string) (*DrinkSale, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*DrinkSale, error)
	UpdateFields(ctx context.Context, sale *DrinkSale) error
	UpdateStatus(ctx context.Context, id string, status PaymentStatus) error
	Delete(ctx context.Context, id string) error
}

// UserRepository defines the interface for staff account access
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) error
}

// SummaryCache caches rendered dashboard summaries. Write paths invalidate;
// a miss is not an error condition.
type SummaryCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte) error
	Invalidate(ctx context.Context) error
}
