package core

import (
	"fmt"
	"math"
	"strings"
)

// StatusEquals compares payment statuses case-insensitively. Stored rows may
// carry status strings in mixed case; comparison must not depend on it.
func StatusEquals(a PaymentStatus, b PaymentStatus) bool {
	return strings.EqualFold(string(a), string(b))
}

// NormalizeStatus canonicalizes a status string to the Paid/Unpaid
// enumeration, rejecting anything else.
func NormalizeStatus(raw string) (PaymentStatus, error) {
	switch {
	case strings.EqualFold(raw, string(StatusPaid)):
		return StatusPaid, nil
	case strings.EqualFold(raw, string(StatusUnpaid)):
		return StatusUnpaid, nil
	default:
		return "", fmt.Errorf("%w: payment status %q must be Paid or Unpaid", ErrInvalidInput, raw)
	}
}

// MarkPaid transitions the sale from Unpaid to Paid. The transition is
// idempotent: marking an already-Paid sale is a no-op, never an error. There
// is no reverse transition. Returns whether the status actually changed.
func (s *CarWashSale) MarkPaid() bool {
	changed := !StatusEquals(s.PaymentStatus, StatusPaid)
	s.PaymentStatus = StatusPaid
	return changed
}

// MarkPaid transitions the drink sale to Paid, idempotently.
func (s *DrinkSale) MarkPaid() bool {
	changed := !StatusEquals(s.PaymentStatus, StatusPaid)
	s.PaymentStatus = StatusPaid
	return changed
}

// RecomputeTotal returns quantity * unitPrice rounded to 2 decimal places.
// A drink sale's total is always derived this way; stored totals are never
// trusted after an edit.
func RecomputeTotal(quantity int, unitPrice float64) float64 {
	return math.Round(float64(quantity)*unitPrice*100) / 100
}

// Validate checks a car-wash sale before it reaches the store.
func (s *CarWashSale) Validate() error {
	if s.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if s.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	status, err := NormalizeStatus(string(s.PaymentStatus))
	if err != nil {
		return err
	}
	s.PaymentStatus = status
	return nil
}

// Validate checks a drink sale and recomputes its derived total.
func (s *DrinkSale) Validate() error {
	if s.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if s.UnitPrice < 0 {
		return fmt.Errorf("%w: unit price must not be negative", ErrInvalidInput)
	}
	if s.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	status, err := NormalizeStatus(string(s.PaymentStatus))
	if err != nil {
		return err
	}
	s.PaymentStatus = status
	s.Total = RecomputeTotal(s.Quantity, s.UnitPrice)
	return nil
}

// Normalized projects a car-wash sale into the ledger view.
func (s *CarWashSale) Normalized() NormalizedSale {
	return NormalizedSale{
		Date:          s.Date,
		Amount:        s.Price,
		Source:        SourceCarWash,
		PaymentMethod: s.PaymentMethod,
		PaymentStatus: s.PaymentStatus,
	}
}

// Normalized projects a drink sale into the ledger view.
func (s *DrinkSale) Normalized() NormalizedSale {
	return NormalizedSale{
		Date:          s.Date,
		Amount:        s.Total,
		Source:        SourceDrink,
		PaymentMethod: s.PaymentMethod,
		PaymentStatus: s.PaymentStatus,
	}
}
