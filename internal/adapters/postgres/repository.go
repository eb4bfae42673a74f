package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/trude-tech/trude-carwash/internal/core"
)

// Repository implements CarWashSaleRepository, DrinkSaleRepository and
// UserRepository using GORM with the pgx driver
type Repository struct {
	db                *gorm.DB
	carWashRepository *carWashSaleRepository
	drinkRepository   *drinkSaleRepository
	userRepository    *userRepository
}

// carWashSaleRepository implements CarWashSaleRepository methods
type carWashSaleRepository struct {
	*Repository
}

// drinkSaleRepository implements DrinkSaleRepository methods
type drinkSaleRepository struct {
	*Repository
}

// userRepository implements UserRepository methods
type userRepository struct {
	*Repository
}

// NewRepository creates a new Postgres repository instance
func NewRepository(dbURL string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := &Repository{db: db}
	repo.carWashRepository = &carWashSaleRepository{Repository: repo}
	repo.drinkRepository = &drinkSaleRepository{Repository: repo}
	repo.userRepository = &userRepository{Repository: repo}
	return repo, nil
}

// CarWashSaleRepository returns the CarWashSaleRepository interface implementation
func (r *Repository) CarWashSaleRepository() core.CarWashSaleRepository {
	return r.carWashRepository
}

// DrinkSaleRepository returns the DrinkSaleRepository interface implementation
func (r *Repository) DrinkSaleRepository() core.DrinkSaleRepository {
	return r.drinkRepository
}

// UserRepository returns the UserRepository interface implementation
func (r *Repository) UserRepository() core.UserRepository {
	return r.userRepository
}

// dateRangeScope applies an inclusive calendar-date window. Zero bounds mean
// no restriction on that side.
func dateRangeScope(query *gorm.DB, start, end time.Time) *gorm.DB {
	if !start.IsZero() {
		query = query.Where("date >= ?", start.Format(core.DateLayout))
	}
	if !end.IsZero() {
		query = query.Where("date <= ?", end.Format(core.DateLayout))
	}
	return query
}

// CarWashSaleRepository implementation

// Create inserts a new car-wash sale
func (r *carWashSaleRepository) Create(ctx context.Context, sale *core.CarWashSale) error {
	model := CarWashSaleModelFromDomain(sale)
	if err := r.db.WithContext(ctx).Table("car_wash_sales").Create(model).Error; err != nil {
		return fmt.Errorf("failed to create car wash sale: %w", err)
	}
	return nil
}

// GetByID retrieves a car-wash sale by its ID
func (r *carWashSaleRepository) GetByID(ctx context.Context, id string) (*core.CarWashSale, error) {
	var model CarWashSaleModel
	if err := r.db.WithContext(ctx).Table("car_wash_sales").Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("car wash sale %s: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get car wash sale: %w", err)
	}
	return model.ToDomain(), nil
}

// ListByDateRange retrieves car-wash sales within the inclusive window,
// newest-first for tabular listings
func (r *carWashSaleRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]*core.CarWashSale, error) {
	var models []CarWashSaleModel
	query := dateRangeScope(r.db.WithContext(ctx).Table("car_wash_sales"), start, end)
	if err := query.Order("date DESC, created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list car wash sales: %w", err)
	}

	sales := make([]*core.CarWashSale, len(models))
	for i := range models {
		sales[i] = models[i].ToDomain()
	}
	return sales, nil
}

// UpdateFields updates the editable fields of a car-wash sale
func (r *carWashSaleRepository) UpdateFields(ctx context.Context, sale *core.CarWashSale) error {
	result := r.db.WithContext(ctx).Table("car_wash_sales").
		Where("id = ?", sale.ID).
		Updates(map[string]interface{}{
			"car_type":       sale.CarType,
			"plate_number":   sale.PlateNumber,
			"service_type":   sale.ServiceType,
			"price":          sale.Price,
			"payment_method": sale.PaymentMethod,
			"payment_status": string(sale.PaymentStatus),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update car wash sale: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("car wash sale %s: %w", sale.ID, core.ErrNotFound)
	}
	return nil
}

// UpdateStatus updates the payment status of a car-wash sale
func (r *carWashSaleRepository) UpdateStatus(ctx context.Context, id string, status core.PaymentStatus) error {
	result := r.db.WithContext(ctx).Table("car_wash_sales").
		Where("id = ?", id).
		Update("payment_status", string(status))

	if result.Error != nil {
		return fmt.Errorf("failed to update payment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("car wash sale %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// DrinkSaleRepository implementation

// Create inserts a new drink sale
func (r *drinkSaleRepository) Create(ctx context.Context, sale *core.DrinkSale) error {
	model := DrinkSaleModelFromDomain(sale)
	if err := r.db.WithContext(ctx).Table("drink_sales").Create(model).Error; err != nil {
		return fmt.Errorf("failed to create drink sale: %w", err)
	}
	return nil
}

// GetByID retrieves a drink sale by its ID
func (r *drinkSaleRepository) GetByID(ctx context.Context, id string) (*core.DrinkSale, error) {
	var model DrinkSaleModel
	if err := r.db.WithContext(ctx).Table("drink_sales").Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("drink sale %s: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get drink sale: %w", err)
	}
	return model.ToDomain(), nil
}

// ListByDateRange retrieves drink sales within the inclusive window, newest-first
func (r *drinkSaleRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]*core.DrinkSale, error) {
	var models []DrinkSaleModel
	query := dateRangeScope(r.db.WithContext(ctx).Table("drink_sales"), start, end)
	if err := query.Order("date DESC, created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list drink sales: %w", err)
	}

	sales := make([]*core.DrinkSale, len(models))
	for i := range models {
		sales[i] = models[i].ToDomain()
	}
	return sales, nil
}

// UpdateFields updates the editable fields of a drink sale. The caller is
// expected to have recomputed Total from Quantity and UnitPrice already.
func (r *drinkSaleRepository) UpdateFields(ctx context.Context, sale *core.DrinkSale) error {
	result := r.db.WithContext(ctx).Table("drink_sales").
		Where("id = ?", sale.ID).
		Updates(map[string]interface{}{
			"drink_name":     sale.DrinkName,
			"quantity":       sale.Quantity,
			"unit_price":     sale.UnitPrice,
			"total":          sale.Total,
			"payment_method": sale.PaymentMethod,
			"payment_status": string(sale.PaymentStatus),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update drink sale: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("drink sale %s: %w", sale.ID, core.ErrNotFound)
	}
	return nil
}

// UpdateStatus updates the payment status of a drink sale
func (r *drinkSaleRepository) UpdateStatus(ctx context.Context, id string, status core.PaymentStatus) error {
	result := r.db.WithContext(ctx).Table("drink_sales").
		Where("id = ?", id).
		Update("payment_status", string(status))

	if result.Error != nil {
		return fmt.Errorf("failed to update payment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("drink sale %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// Delete permanently removes a drink sale. No soft delete, no tombstone.
func (r *drinkSaleRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Table("drink_sales").
		Where("id = ?", id).
		Delete(&DrinkSaleModel{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete drink sale: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("drink sale %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// UserRepository implementation

// GetByUsername retrieves a staff account by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*core.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Table("users").Where("username = ?", username).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", username, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return model.ToDomain(), nil
}

// Create creates a new staff account
func (r *userRepository) Create(ctx context.Context, user *core.User) error {
	model := &UserModel{
		ID:           user.ID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Table("users").Create(model).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Database Models (with GORM tags)

// CarWashSaleModel represents the car_wash_sales table structure
type CarWashSaleModel struct {
	ID            string    `gorm:"column:id;type:uuid;primaryKey"`
	Date          time.Time `gorm:"column:date;type:date;not null;index"`
	CarType       string    `gorm:"column:car_type;type:varchar(50);not null"`
	PlateNumber   string    `gorm:"column:plate_number;type:varchar(20)"`
	ServiceType   string    `gorm:"column:service_type;type:varchar(50);not null"`
	Price         float64   `gorm:"column:price;type:decimal(10,2);not null"`
	PaymentMethod string    `gorm:"column:payment_method;type:varchar(20);not null"`
	PaymentStatus string    `gorm:"column:payment_status;type:varchar(10);not null;index"`
	CreatedAt     time.Time `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP"`
}

func (CarWashSaleModel) TableName() string {
	return "car_wash_sales"
}

// CarWashSaleModelFromDomain creates CarWashSaleModel from core.CarWashSale
func CarWashSaleModelFromDomain(sale *core.CarWashSale) *CarWashSaleModel {
	return &CarWashSaleModel{
		ID:            sale.ID,
		Date:          sale.Date,
		CarType:       sale.CarType,
		PlateNumber:   sale.PlateNumber,
		ServiceType:   sale.ServiceType,
		Price:         sale.Price,
		PaymentMethod: sale.PaymentMethod,
		PaymentStatus: string(sale.PaymentStatus),
		CreatedAt:     sale.CreatedAt,
	}
}

// ToDomain converts CarWashSaleModel to core.CarWashSale
func (m *CarWashSaleModel) ToDomain() *core.CarWashSale {
	return &core.CarWashSale{
		ID:            m.ID,
		Date:          m.Date,
		CarType:       m.CarType,
		PlateNumber:   m.PlateNumber,
		ServiceType:   m.ServiceType,
		Price:         m.Price,
		PaymentMethod: m.PaymentMethod,
		PaymentStatus: core.PaymentStatus(m.PaymentStatus),
		CreatedAt:     m.CreatedAt,
	}
}

// DrinkSaleModel represents the drink_sales table structure
type DrinkSaleModel struct {
	ID            string    `gorm:"column:id;type:uuid;primaryKey"`
	Date          time.Time `gorm:"column:date;type:date;not null;index"`
	DrinkName     string    `gorm:"column:drink_name;type:varchar(50);not null"`
	Quantity      int       `gorm:"column:quantity;type:integer;not null"`
	UnitPrice     float64   `gorm:"column:unit_price;type:decimal(10,2);not null"`
	Total         float64   `gorm:"column:total;type:decimal(10,2);not null"`
	PaymentMethod string    `gorm:"column:payment_method;type:varchar(20);not null"`
	PaymentStatus string    `gorm:"column:payment_status;type:varchar(10);not null;index"`
	CreatedAt     time.Time `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP"`
}

func (DrinkSaleModel) TableName() string {
	return "drink_sales"
}

// DrinkSaleModelFromDomain creates DrinkSaleModel from core.DrinkSale
func DrinkSaleModelFromDomain(sale *core.DrinkSale) *DrinkSaleModel {
	return &DrinkSaleModel{
		ID:            sale.ID,
		Date:          sale.Date,
		DrinkName:     sale.DrinkName,
		Quantity:      sale.Quantity,
		UnitPrice:     sale.UnitPrice,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		PaymentStatus: string(sale.PaymentStatus),
		CreatedAt:     sale.CreatedAt,
	}
}

// ToDomain converts DrinkSaleModel to core.DrinkSale
func (m *DrinkSaleModel) ToDomain() *core.DrinkSale {
	return &core.DrinkSale{
		ID:            m.ID,
		Date:          m.Date,
		DrinkName:     m.DrinkName,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		Total:         m.Total,
		PaymentMethod: m.PaymentMethod,
		PaymentStatus: core.PaymentStatus(m.PaymentStatus),
		CreatedAt:     m.CreatedAt,
	}
}

// UserModel represents the users table structure
type UserModel struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey"`
	Username     string    `gorm:"column:username;type:varchar(100);not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP"`
}

func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts UserModel to core.User
func (m *UserModel) ToDomain() *core.User {
	return &core.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}
