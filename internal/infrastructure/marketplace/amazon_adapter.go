package marketplace

import (
	"github.com/shopspring/decimal"

	"github.com/gstboard/backend/internal/domain/analytics"
	"github.com/gstboard/backend/internal/infrastructure/csvtable"
)

// Amazon MTR (Merchant Tax Report) column names
const (
	amazonColOrderID          = "Order Id"
	amazonColTransactionType  = "Transaction Type"
	amazonColOrderDate        = "Order Date"
	amazonColShipToState      = "Ship To State"
	amazonColSKU              = "Sku"
	amazonColHSN              = "Hsn/sac"
	amazonColQuantity         = "Quantity"
	amazonColInvoiceAmount    = "Invoice Amount"
	amazonColTotalTaxAmount   = "Total Tax Amount"
	amazonColTaxExclusiveGros = "Tax Exclusive Gross"
	amazonColTCSIGST          = "Tcs Igst Amount"
	amazonColTCSCGST          = "Tcs Cgst Amount"
	amazonColTCSSGST          = "Tcs Sgst Amount"
	amazonColTCSUTGST         = "Tcs Utgst Amount"
)

// Amazon MTR transaction types
const (
	amazonTxShipment = "Shipment"
	amazonTxRefund   = "Refund"
	amazonTxCancel   = "Cancel"
)

// AmazonAdapter normalizes Amazon MTR report exports. Amazon is the only
// platform reporting tax collected at source; the four TCS components are
// summed into a single amount.
type AmazonAdapter struct{}

// NewAmazonAdapter creates an AmazonAdapter
func NewAmazonAdapter() *AmazonAdapter {
	return &AmazonAdapter{}
}

// Platform returns the platform this adapter handles
func (a *AmazonAdapter) Platform() analytics.Platform {
	return analytics.PlatformAmazon
}

// RequiredColumns lists the MTR headers the upload must carry
func (a *AmazonAdapter) RequiredColumns() []string {
	return []string{
		amazonColOrderID,
		amazonColTransactionType,
		amazonColOrderDate,
		amazonColShipToState,
		amazonColHSN,
		amazonColQuantity,
		amazonColInvoiceAmount,
		amazonColTotalTaxAmount,
		amazonColTaxExclusiveGros,
		amazonColTCSIGST,
		amazonColTCSCGST,
		amazonColTCSSGST,
		amazonColTCSUTGST,
	}
}

// Normalize maps MTR rows onto shipment records
func (a *AmazonAdapter) Normalize(rows []*csvtable.Row) *NormalizeResult {
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

// normalizeRow converts one MTR row, or explains why it was dropped
func (a *AmazonAdapter) normalizeRow(row *csvtable.Row) (*analytics.ShipmentRecord, *csvtable.RowError) {
	orderID := row.Get(amazonColOrderID)
	if orderID == "" {
		err := csvtable.NewRowError(row.LineNumber, amazonColOrderID, csvtable.ErrCodeRequiredField, "order id is empty")
		return nil, &err
	}

	status, ok := amazonStatus(row.Get(amazonColTransactionType))
	if !ok {
		err := csvtable.NewRowErrorWithValue(row.LineNumber, amazonColTransactionType, csvtable.ErrCodeInvalidValue,
			"unknown transaction type", row.Get(amazonColTransactionType))
		return nil, &err
	}

	orderDate, parseErr := parseDate(row.Get(amazonColOrderDate))
	if parseErr != nil {
		err := csvtable.NewRowErrorWithValue(row.LineNumber, amazonColOrderDate, csvtable.ErrCodeInvalidDate,
			"unparseable order date", row.Get(amazonColOrderDate))
		return nil, &err
	}

	quantity, parseErr := parseQuantity(row.Get(amazonColQuantity))
	if parseErr != nil || quantity <= 0 {
		err := csvtable.NewRowErrorWithValue(row.LineNumber, amazonColQuantity, csvtable.ErrCodeInvalidType,
			"quantity must be a positive integer", row.Get(amazonColQuantity))
		return nil, &err
	}

	// Refund and cancel rows carry negative amounts on MTR reports; the
	// normalized schema keeps magnitudes and encodes direction as status.
	invoiceAmount, rowErr := a.amount(row, amazonColInvoiceAmount, status)
	if rowErr != nil {
		return nil, rowErr
	}
	taxAmount, rowErr := a.amount(row, amazonColTotalTaxAmount, status)
	if rowErr != nil {
		return nil, rowErr
	}
	taxableAmount, rowErr := a.amount(row, amazonColTaxExclusiveGros, status)
	if rowErr != nil {
		return nil, rowErr
	}

	tcs := decimal.Zero
	for _, col := range []string{amazonColTCSIGST, amazonColTCSCGST, amazonColTCSSGST, amazonColTCSUTGST} {
		component, rowErr := a.amount(row, col, status)
		if rowErr != nil {
			return nil, rowErr
		}
		tcs = tcs.Add(component)
	}

	return &analytics.ShipmentRecord{
		OrderID:       orderID,
		OrderDate:     orderDate,
		State:         normalizeStateName(row.Get(amazonColShipToState)),
		ProductCode:   row.Get(amazonColSKU),
		HSNCode:       row.Get(amazonColHSN),
		Quantity:      quantity,
		SaleAmount:    invoiceAmount,
		TaxAmount:     taxAmount,
		TaxableAmount: taxableAmount,
		TCSAmount:     tcs,
		Status:        status,
	}, nil
}

// amount parses a money column. Shipment rows must be non-negative;
// refund/cancel rows may be reported negative and are flipped to magnitude.
func (a *AmazonAdapter) amount(row *csvtable.Row, column string, status analytics.ShipmentStatus) (decimal.Decimal, *csvtable.RowError) {
	value, parseErr := parseAmount(row.Get(column))
	if parseErr != nil {
		err := csvtable.NewRowErrorWithValue(row.LineNumber, column, csvtable.ErrCodeInvalidType,
			"invalid decimal value", row.Get(column))
		return decimal.Zero, &err
	}
	if value.IsNegative() {
		if status == analytics.StatusDelivered {
			err := csvtable.NewRowErrorWithValue(row.LineNumber, column, csvtable.ErrCodeNegativeValue,
				"negative amount on shipment row", row.Get(column))
			return decimal.Zero, &err
		}
		value = value.Neg()
	}
	return value, nil
}

// amazonStatus maps an MTR transaction type onto the normalized status
func amazonStatus(txType string) (analytics.ShipmentStatus, bool) {
	switch txType {
	case amazonTxShipment:
		return analytics.StatusDelivered, true
	case amazonTxRefund:
		return analytics.StatusReturned, true
	case amazonTxCancel:
		return analytics.StatusCancelled, true
	}
	return "", false
}
