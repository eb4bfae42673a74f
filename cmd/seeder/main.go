package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/trude-tech/trude-carwash/internal/config"
	"github.com/trude-tech/trude-carwash/internal/core"
)

// SeedSale represents one car wash sale in the seed data JSON
type SeedSale struct {
	CarType       string  `json:"car_type"`
	PlateNumber   string  `json:"plate_number"`
	ServiceType   string  `json:"service_type"`
	Price         float64 `json:"price"`
	PaymentMethod string  `json:"payment_method"`
	PaymentStatus string  `json:"payment_status"`
}

// SeedDrink represents one drink sale in the seed data JSON
type SeedDrink struct {
	DrinkName     string  `json:"drink_name"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unit_price"`
	PaymentMethod string  `json:"payment_method"`
	PaymentStatus string  `json:"payment_status"`
}

// SaleData holds sample sales seeded for a fresh install
var SaleData = []byte(`[
  { "car_type": "Saloon", "plate_number": "KDA 123A", "service_type": "Full-service wash", "price": 500, "payment_method": "Cash", "payment_status": "Paid" },
  { "car_type": "Van", "plate_number": "KCB 456B", "service_type": "Half-service wash", "price": 300, "payment_method": "M-Pesa", "payment_status": "Paid" },
  { "car_type": "Truck", "plate_number": "KDD 789C", "service_type": "Full-service wash", "price": 1000, "payment_method": "M-Pesa", "payment_status": "Unpaid" },
  { "car_type": "Bus", "plate_number": "KCE 321D", "service_type": "Full-service wash", "price": 1200, "payment_method": "Card", "payment_status": "Paid" },
  { "car_type": "Bike", "plate_number": "KMC 654E", "service_type": "Half-service wash", "price": 150, "payment_method": "Cash", "payment_status": "Paid" }
]`)

// DrinkData holds sample drink sales
var DrinkData = []byte(`[
  { "drink_name": "Soda", "quantity": 3, "unit_price": 50, "payment_method": "Cash", "payment_status": "Paid" },
  { "drink_name": "Water", "quantity": 2, "unit_price": 30, "payment_method": "M-Pesa", "payment_status": "Paid" },
  { "drink_name": "Energy Drink", "quantity": 1, "unit_price": 150, "payment_method": "Cash", "payment_status": "Unpaid" }
]`)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DBURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()

	seedAdminUser(ctx, db)
	seedCarWashSales(ctx, db)
	seedDrinkSales(ctx, db)
}

// seedAdminUser upserts the staff login account. Credentials come from
// ADMIN_USERNAME / ADMIN_PASSWORD, with development defaults.
func seedAdminUser(ctx context.Context, db *gorm.DB) {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	var existingID string
	result := db.WithContext(ctx).Table("users").
		Select("id").
		Where("username = ?", username).
		Limit(1).
		Scan(&existingID)
	if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
		log.Fatalf("Failed to check existing user %s: %v", username, result.Error)
	}

	if existingID != "" {
		if err := db.WithContext(ctx).Table("users").
			Where("id = ?", existingID).
			Updates(map[string]interface{}{
				"password_hash": string(hash),
			}).Error; err != nil {
			log.Fatalf("Failed to update user %s: %v", username, err)
		}
		log.Printf("Seeder: updated user %q", username)
		return
	}

	if err := db.WithContext(ctx).Table("users").Create(map[string]interface{}{
		"id":            uuid.New().String(),
		"username":      username,
		"password_hash": string(hash),
		"created_at":    time.Now(),
	}).Error; err != nil {
		log.Fatalf("Failed to insert user %s: %v", username, err)
	}
	log.Printf("Seeder: created user %q", username)
}

func seedCarWashSales(ctx context.Context, db *gorm.DB) {
	var sales []SeedSale
	if err := json.Unmarshal(SaleData, &sales); err != nil {
		log.Fatalf("Failed to parse sale data: %v", err)
	}

	today := time.Now().Format(core.DateLayout)
	inserted := 0
	for _, sale := range sales {
		if err := db.WithContext(ctx).Table("car_wash_sales").Create(map[string]interface{}{
			"id":             uuid.New().String(),
			"date":           today,
			"car_type":       sale.CarType,
			"plate_number":   sale.PlateNumber,
			"service_type":   sale.ServiceType,
			"price":          sale.Price,
			"payment_method": sale.PaymentMethod,
			"payment_status": sale.PaymentStatus,
			"created_at":     time.Now(),
		}).Error; err != nil {
			log.Fatalf("Failed to insert car wash sale %s: %v", sale.PlateNumber, err)
		}
		inserted++
	}
	log.Printf("Seeder: inserted %d car wash sales", inserted)
}

func seedDrinkSales(ctx context.Context, db *gorm.DB) {
	var drinks []SeedDrink
	if err := json.Unmarshal(DrinkData, &drinks); err != nil {
		log.Fatalf("Failed to parse drink data: %v", err)
	}

	today := time.Now().Format(core.DateLayout)
	inserted := 0
	for _, drink := range drinks {
		total := core.RecomputeTotal(drink.Quantity, drink.UnitPrice)
		if err := db.WithContext(ctx).Table("drink_sales").Create(map[string]interface{}{
			"id":             uuid.New().String(),
			"date":           today,
			"drink_name":     drink.DrinkName,
			"quantity":       drink.Quantity,
			"unit_price":     drink.UnitPrice,
			"total":          total,
			"payment_method": drink.PaymentMethod,
			"payment_status": drink.PaymentStatus,
			"created_at":     time.Now(),
		}).Error; err != nil {
			log.Fatalf("Failed to insert drink sale %s: %v", drink.DrinkName, err)
		}
		inserted++
	}
	log.Printf("Seeder: inserted %d drink sales", inserted)
}
