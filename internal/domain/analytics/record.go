// Package analytics holds the normalized shipment model and the pure
// aggregation logic that turns marketplace export rows into metric bundles.
package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Platform identifies a supported marketplace
type Platform string

const (
	PlatformAmazon   Platform = "amazon"
	PlatformFlipkart Platform = "flipkart"
	PlatformMeesho   Platform = "meesho"
)

// SupportedPlatforms returns all platforms an upload may be tagged with
func SupportedPlatforms() []Platform {
	return []Platform{PlatformAmazon, PlatformFlipkart, PlatformMeesho}
}

// IsValidPlatform checks whether the tag names a supported platform
func IsValidPlatform(tag string) bool {
	for _, p := range SupportedPlatforms() {
		if string(p) == tag {
			return true
		}
	}
	return false
}

// ShipmentStatus is the normalized transaction status
type ShipmentStatus string

const (
	StatusDelivered ShipmentStatus = "delivered"
	StatusReturned  ShipmentStatus = "returned"
	StatusCancelled ShipmentStatus = "cancelled"
)

// IsValid checks if the status is one of the enumerated values
func (s ShipmentStatus) IsValid() bool {
	switch s {
	case StatusDelivered, StatusReturned, StatusCancelled:
		return true
	}
	return false
}

// ShipmentRecord is one normalized transaction/shipment row. Every platform
// adapter maps its export schema onto this shape; the aggregator never sees
// platform-specific column names.
type ShipmentRecord struct {
	OrderID       string
	OrderDate     time.Time
	State         string
	ProductCode   string
	HSNCode       string
	Quantity      int64
	SaleAmount    decimal.Decimal
	TaxAmount     decimal.Decimal
	TaxableAmount decimal.Decimal
	// TCSAmount is populated for Amazon rows only, zero elsewhere
	TCSAmount decimal.Decimal
	GSTRate   string
	Status    ShipmentStatus
}

// Validate checks the record invariants: non-negative amounts, a valid
// calendar date and an enumerated status.
func (r *ShipmentRecord) Validate() error {
	if r.OrderID == "" {
		return ErrMissingOrderID
	}
	if r.OrderDate.IsZero() {
		return ErrInvalidOrderDate
	}
	if r.SaleAmount.IsNegative() || r.TaxAmount.IsNegative() || r.TaxableAmount.IsNegative() {
		return ErrNegativeAmount
	}
	if r.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !r.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// Month returns the calendar year-month key of the order date
func (r *ShipmentRecord) Month() string {
	return r.OrderDate.Format("2006-01")
}

// IsCancelled reports whether the order was cancelled before fulfilment
func (r *ShipmentRecord) IsCancelled() bool {
	return r.Status == StatusCancelled
}

// IsReturned reports whether the shipment was returned by the buyer
func (r *ShipmentRecord) IsReturned() bool {
	return r.Status == StatusReturned
}
