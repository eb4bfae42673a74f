package core

import "errors"

// Sentinel errors surfaced by services and adapters. Callers match with
// errors.Is; adapters wrap them with context via fmt.Errorf and %w.
var (
	// ErrInvalidInput marks a sale or filter that failed defensive validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks an update or delete against an absent record id
	ErrNotFound = errors.New("record not found")
)

// RowFailure records one failed row in a multi-row save. The batch is not
// atomic: remaining rows still apply and each failure is reported on its own.
type RowFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BatchResult summarizes a multi-row save: how many rows applied and an
// itemized list of the rows that did not.
type BatchResult struct {
	Applied  int          `json:"applied"`
	Failures []RowFailure `json:"failures"`
}

// OK reports whether every row in the batch applied.
func (b BatchResult) OK() bool {
	return len(b.Failures) == 0
}
