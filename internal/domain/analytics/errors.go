package analytics

import "errors"

// Record validation errors. Adapters map these onto skipped-row tallies
// rather than failing a whole upload.
var (
	ErrMissingOrderID   = errors.New("shipment record has no order id")
	ErrInvalidOrderDate = errors.New("shipment record has no valid order date")
	ErrNegativeAmount   = errors.New("shipment record has a negative amount")
	ErrInvalidQuantity  = errors.New("shipment record quantity must be positive")
	ErrInvalidStatus    = errors.New("shipment record status is not a known value")
)
