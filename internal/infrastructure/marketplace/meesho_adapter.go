package marketplace

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gstboard/backend/internal/domain/analytics"
	"github.com/gstboard/backend/internal/infrastructure/csvtable"
)

// Meesho GST sales report column names
const (
	meeshoColSubOrderNo   = "sub_order_no"
	meeshoColOrderDate    = "order_date"
	meeshoColOrderStatus  = "order_status"
	meeshoColState        = "end_customer_state_new"
	meeshoColProductName  = "product_name"
	meeshoColHSN          = "hsn_code"
	meeshoColQuantity     = "quantity"
	meeshoColInvoiceValue = "total_invoice_value"
	meeshoColTaxAmount    = "tax_amount"
	meeshoColTaxableValue = "total_taxable_sale_value"
	meeshoColGSTRate      = "gst_rate"
)

// MeeshoAdapter normalizes Meesho GST sales report exports. Meesho sellers
// may additionally export a separate returns report; ReturnsColumns and
// MergeReturns cover that second file.
type MeeshoAdapter struct{}

// NewMeeshoAdapter creates a MeeshoAdapter
func NewMeeshoAdapter() *MeeshoAdapter {
	return &MeeshoAdapter{}
}

// Platform returns the platform this adapter handles
func (a *MeeshoAdapter) Platform() analytics.Platform {
	return analytics.PlatformMeesho
}

// RequiredColumns lists the report headers the upload must carry
func (a *MeeshoAdapter) RequiredColumns() []string {
	return []string{
		meeshoColSubOrderNo,
		meeshoColOrderDate,
		meeshoColOrderStatus,
		meeshoColState,
		meeshoColHSN,
		meeshoColQuantity,
		meeshoColInvoiceValue,
		meeshoColTaxAmount,
		meeshoColTaxableValue,
		meeshoColGSTRate,
	}
}

// ReturnsColumns lists the headers the optional returns report must carry
func (a *MeeshoAdapter) ReturnsColumns() []string {
	return []string{meeshoColSubOrderNo}
}

// Normalize maps sales report rows onto shipment records
func (a *MeeshoAdapter) Normalize(rows []*csvtable.Row) *NormalizeResult {
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

// MergeReturns flips records named in the returns report to returned
// status. Cancelled orders stay cancelled; a cancellation never shipped, so
// it cannot come back. Returns the number of records flipped.
func (a *MeeshoAdapter) MergeReturns(records []analytics.ShipmentRecord, returnRows []*csvtable.Row) int {
	returned := make(map[string]struct{}, len(returnRows))
	for _, row := range returnRows {
		if id := row.Get(meeshoColSubOrderNo); id != "" {
			returned[id] = struct{}{}
		}
	}

	flipped := 0
	for i := range records {
		if _, ok := returned[records[i].OrderID]; !ok {
			continue
		}
		if records[i].Status != analytics.StatusDelivered {
			continue
		}
		records[i].Status = analytics.StatusReturned
		flipped++
	}
	return flipped
}

func (a *MeeshoAdapter) normalizeRow(row *csvtable.Row) (*analytics.ShipmentRecord, *csvtable.RowError) {
	orderID := row.Get(meeshoColSubOrderNo)
	if orderID == "" {
		err := csvtable.NewRowError(row.LineNumber, meeshoColSubOrderNo, csvtable.ErrCodeRequiredField, "sub order no is empty")
		return nil, &err
	}

	status, ok := meeshoStatus(row.Get(meeshoColOrderStatus))
	if !ok {
		err := csvtable.NewRowErrorWithValue(row.LineNumber, meeshoColOrderStatus, csvtable.ErrCodeInvalidValue,
			"unknown order status", row.Get(meeshoColOrderStatus))
		return nil, &err
	}

	orderDate, parseErr := parseDate(row.Get(meeshoColOrderDate))
	if parseErr != nil {
		err := csvtable.NewRowErrorWithValue(row.LineNumber, meeshoColOrderDate, csvtable.ErrCodeInvalidDate,
			"unparseable order date", row.Get(meeshoColOrderDate))
		return nil, &err
	}

	quantity, parseErr := parseQuantity(row.Get(meeshoColQuantity))
	if parseErr != nil || quantity <= 0 {
		err := csvtable.NewRowErrorWithValue(row.LineNumber, meeshoColQuantity, csvtable.ErrCodeInvalidType,
			"quantity must be a positive integer", row.Get(meeshoColQuantity))
		return nil, &err
	}

	amounts := make([]decimal.Decimal, 3)
	for i, col := range []string{meeshoColInvoiceValue, meeshoColTaxAmount, meeshoColTaxableValue} {
		value, parseErr := parseAmount(row.Get(col))
		if parseErr != nil {
			err := csvtable.NewRowErrorWithValue(row.LineNumber, col, csvtable.ErrCodeInvalidType,
				"invalid decimal value", row.Get(col))
			return nil, &err
		}
		if value.IsNegative() {
			err := csvtable.NewRowErrorWithValue(row.LineNumber, col, csvtable.ErrCodeNegativeValue,
				"negative amount", row.Get(col))
			return nil, &err
		}
		amounts[i] = value
	}

	return &analytics.ShipmentRecord{
		OrderID:       orderID,
		OrderDate:     orderDate,
		State:         normalizeStateName(row.Get(meeshoColState)),
		ProductCode:   row.Get(meeshoColProductName),
		HSNCode:       row.Get(meeshoColHSN),
		Quantity:      quantity,
		SaleAmount:    amounts[0],
		TaxAmount:     amounts[1],
		TaxableAmount: amounts[2],
		TCSAmount:     decimal.Zero,
		GSTRate:       row.Get(meeshoColGSTRate),
		Status:        status,
	}, nil
}

// meeshoStatus maps the report order status onto the normalized status.
// RTO (return to origin) shipments count as returns.
func meeshoStatus(orderStatus string) (analytics.ShipmentStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(orderStatus)) {
	case "delivered", "shipped", "door_step_exchanged":
		return analytics.StatusDelivered, true
	case "return", "rto":
		return analytics.StatusReturned, true
	case "cancelled":
		return analytics.StatusCancelled, true
	}
	return "", false
}
