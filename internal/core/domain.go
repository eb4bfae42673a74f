package core

import "time"

// DateLayout is the calendar-date format used across the system.
// Sales carry a calendar date with no time component.
const DateLayout = "2006-01-02"

// CarWashSale represents a single recorded car-wash transaction
type CarWashSale struct {
	ID            string        `json:"id"`
	Date          time.Time     `json:"date"`
	CarType       string        `json:"car_type"`
	PlateNumber   string        `json:"plate_number"`
	ServiceType   string        `json:"service_type"`
	Price         float64       `json:"price"`
	PaymentMethod string        `json:"payment_method"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// DrinkSale represents a single recorded drink transaction.
// Total is derived: it is recomputed from Quantity * UnitPrice on every
// write and never accepted as independently edited input.
type DrinkSale struct {
	ID            string        `json:"id"`
	Date          time.Time     `json:"date"`
	DrinkName     string        `json:"drink_name"`
	Quantity      int           `json:"quantity"`
	UnitPrice     float64       `json:"unit_price"`
	Total         float64       `json:"total"`
	PaymentMethod string        `json:"payment_method"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NormalizedSale is the unified projection of either sale kind used by the
// ledger for filtering and aggregation. Amount is price for car-wash sales
// and total for drink sales. Source is never ambiguous.
type NormalizedSale struct {
	Date          time.Time     `json:"date"`
	Amount        float64       `json:"amount"`
	Source        SaleSource    `json:"source"`
	PaymentMethod string        `json:"payment_method"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

// SaleSource tags which ledger a normalized sale came from
type SaleSource string

const (
	SourceCarWash SaleSource = "CarWash"
	SourceDrink   SaleSource = "Drink"
)

// PaymentStatus represents the settlement state of a sale
type PaymentStatus string

const (
	StatusPaid   PaymentStatus = "Paid"
	StatusUnpaid PaymentStatus = "Unpaid"
)

// Payment methods accepted at the till
const (
	PaymentCash  = "Cash"
	PaymentMpesa = "M-Pesa"
	PaymentCard  = "Card"
)

// CarTypes enumerates the vehicle categories on the car-wash form
var CarTypes = []string{"Saloon", "Bus", "Van", "Truck", "Bike", "Other"}

// ServiceTypes enumerates the wash services offered
var ServiceTypes = []string{"Full-service wash", "Half-service wash"}

// DrinkNames enumerates the drinks sold at the counter
var DrinkNames = []string{"Soda", "Water", "Juice", "Energy Drink", "Other"}

// PaymentMethods enumerates the accepted payment methods
var PaymentMethods = []string{PaymentCash, PaymentMpesa, PaymentCard}

// User represents a staff account that can log into the system
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
