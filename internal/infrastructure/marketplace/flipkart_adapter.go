package marketplace

import (
	"github.com/shopspring/decimal"

	"github.com/gstboard/backend/internal/domain/analytics"
	"github.com/gstboard/backend/internal/infrastructure/csvtable"
)

// Flipkart sales report column names
const (
	flipkartColOrderID       = "order_id"
	flipkartColOrderDate     = "order_date"
	flipkartColEventType     = "event_type"
	flipkartColCustomerState = "customer_state"
	flipkartColFSN           = "fsn"
	flipkartColHSN           = "hsn_code"
	flipkartColQuantity      = "quantity"
	flipkartColInvoiceAmount = "final_invoice_amount"
	flipkartColGSTAmount     = "total_gst_amount"
	flipkartColTaxableValue  = "taxable_value"
	flipkartColGSTRate       = "gst_rate"
)

// Flipkart event types
const (
	flipkartEventSale         = "Sale"
	flipkartEventReturn       = "Return"
	flipkartEventCancellation = "Cancellation"
)

// FlipkartAdapter normalizes Flipkart seller sales report exports
type FlipkartAdapter struct{}

// NewFlipkartAdapter creates a FlipkartAdapter
func NewFlipkartAdapter() *FlipkartAdapter {
	return &FlipkartAdapter{}
}

// Platform returns the platform this adapter handles
func (a *FlipkartAdapter) Platform() analytics.Platform {
	return analytics.PlatformFlipkart
}

// RequiredColumns lists the report headers the upload must carry
func (a *FlipkartAdapter) RequiredColumns() []string {
	return []string{
		flipkartColOrderID,
		flipkartColOrderDate,
		flipkartColEventType,
		flipkartColCustomerState,
		flipkartColHSN,
		flipkartColQuantity,
		flipkartColInvoiceAmount,
		flipkartColGSTAmount,
		flipkartColTaxableValue,
		flipkartColGSTRate,
	}
}

// Normalize maps sales report rows onto shipment records
func (a *FlipkartAdapter) Normalize(rows []*csvtable.Row) *NormalizeResult {
	result := newNormalizeResult(len(rows))

	for _, row := range rows {
		record, rowErr := a.normalizeRow(row)
		if rowErr != nil {
			result.skip(*rowErr)
			continue
		}
		result.Records = append(result.Records, *record)
	}

	return result
}

func (a *FlipkartAdapter) normalizeRow(row *csvtable.Row) (*analytics.ShipmentRecord, *csvtable.RowError) {
	orderID := row.Get(flipkartColOrderID)
	if orderID == "" {
		err := csvtable.NewRowError(row.LineNumber, flipkartColOrderID, csvtable.ErrCodeRequiredField, "order id is empty")
		return nil, &err
	}

	status, ok := flipkartStatus(row.Get(flipkartColEventType))
	if !ok {
		err := csvtable.NewRowErrorWithValue(row.LineNumber, flipkartColEventType, csvtable.ErrCodeInvalidValue,
			"unknown event type", row.Get(flipkartColEventType))
		return nil, &err
	}

	orderDate, parseErr := parseDate(row.Get(flipkartColOrderDate))
	if parseErr != nil {
		err := csvtable.NewRowErrorWithValue(row.LineNumber, flipkartColOrderDate, csvtable.ErrCodeInvalidDate,
			"unparseable order date", row.Get(flipkartColOrderDate))
		return nil, &err
	}

	quantity, parseErr := parseQuantity(row.Get(flipkartColQuantity))
	if parseErr != nil || quantity <= 0 {
		err := csvtable.NewRowErrorWithValue(row.LineNumber, flipkartColQuantity, csvtable.ErrCodeInvalidType,
			"quantity must be a positive integer", row.Get(flipkartColQuantity))
		return nil, &err
	}

	amounts := make([]decimal.Decimal, 3)
	for i, col := range []string{flipkartColInvoiceAmount, flipkartColGSTAmount, flipkartColTaxableValue} {
		value, parseErr := parseAmount(row.Get(col))
		if parseErr != nil {
			err := csvtable.NewRowErrorWithValue(row.LineNumber, col, csvtable.ErrCodeInvalidType,
				"invalid decimal value", row.Get(col))
			return nil, &err
		}
		if value.IsNegative() {
			// Flipkart reports return and cancellation events with
			// negative amounts; keep the magnitude.
			if status == analytics.StatusDelivered {
				err := csvtable.NewRowErrorWithValue(row.LineNumber, col, csvtable.ErrCodeNegativeValue,
					"negative amount on sale row", row.Get(col))
				return nil, &err
			}
			value = value.Neg()
		}
		amounts[i] = value
	}

	return &analytics.ShipmentRecord{
		OrderID:       orderID,
		OrderDate:     orderDate,
		State:         normalizeStateName(row.Get(flipkartColCustomerState)),
		ProductCode:   row.Get(flipkartColFSN),
		HSNCode:       row.Get(flipkartColHSN),
		Quantity:      quantity,
		SaleAmount:    amounts[0],
		TaxAmount:     amounts[1],
		TaxableAmount: amounts[2],
		TCSAmount:     decimal.Zero,
		GSTRate:       row.Get(flipkartColGSTRate),
		Status:        status,
	}, nil
}

// flipkartStatus maps a report event type onto the normalized status
func flipkartStatus(eventType string) (analytics.ShipmentStatus, bool) {
	switch eventType {
	case flipkartEventSale:
		return analytics.StatusDelivered, true
	case flipkartEventReturn:
		return analytics.StatusReturned, true
	case flipkartEventCancellation:
		return analytics.StatusCancelled, true
	}
	return "", false
}
