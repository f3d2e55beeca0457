package marketplace

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gstboard/backend/internal/domain/analytics"
	"github.com/gstboard/backend/internal/infrastructure/csvtable"
)

const amazonHeader = "Order Id,Transaction Type,Order Date,Ship To State,Sku,Hsn/sac,Quantity,Invoice Amount,Total Tax Amount,Tax Exclusive Gross,Tcs Igst Amount,Tcs Cgst Amount,Tcs Sgst Amount,Tcs Utgst Amount\n"

func TestAmazonAdapter_RequiredColumns(t *testing.T) {
	adapter := NewAmazonAdapter()
	assert.Equal(t, analytics.PlatformAmazon, adapter.Platform())
	assert.Contains(t, adapter.RequiredColumns(), "Tcs Utgst Amount")

	parser := newParser(t, amazonHeader)
	assert.NoError(t, CheckSchema(adapter, parser))
}

func TestAmazonAdapter_Normalize(t *testing.T) {
	csvText := amazonHeader +
		"403-001,Shipment,2024-06-01,Maharashtra,SKU-A,6109,2,590.00,90.00,500.00,2.50,0,0,0\n" +
		"403-002,Refund,2024-06-10,karnataka,SKU-B,6109,1,-295.00,-45.00,-250.00,-1.25,0,0,0\n" +
		"403-003,Cancel,2024-06-12,Delhi,SKU-C,6204,1,0,0,0,0,0,0,0\n"

	result := NewAmazonAdapter().Normalize(parseRows(t, csvText))

	require.Len(t, result.Records, 3)
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 0, result.SkippedRows())

	shipment := result.Records[0]
	assert.Equal(t, "403-001", shipment.OrderID)
	assert.Equal(t, analytics.StatusDelivered, shipment.Status)
	assert.Equal(t, "MAHARASHTRA", shipment.State)
	assert.Equal(t, "SKU-A", shipment.ProductCode)
	assert.Equal(t, "6109", shipment.HSNCode)
	assert.Equal(t, int64(2), shipment.Quantity)
	assert.True(t, shipment.SaleAmount.Equal(decimal.RequireFromString("590.00")))
	assert.True(t, shipment.TaxAmount.Equal(decimal.RequireFromString("90.00")))
	assert.True(t, shipment.TaxableAmount.Equal(decimal.RequireFromString("500.00")))
	assert.True(t, shipment.TCSAmount.Equal(decimal.RequireFromString("2.50")))
	assert.True(t, shipment.OrderDate.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))

	// refund amounts are reported negative on MTR and kept as magnitudes
	refund := result.Records[1]
	assert.Equal(t, analytics.StatusReturned, refund.Status)
	assert.Equal(t, "KARNATAKA", refund.State)
	assert.True(t, refund.SaleAmount.Equal(decimal.RequireFromString("295.00")))
	assert.True(t, refund.TCSAmount.Equal(decimal.RequireFromString("1.25")))

	assert.Equal(t, analytics.StatusCancelled, result.Records[2].Status)
}

func TestAmazonAdapter_MissingTCSColumn(t *testing.T) {
	header := "Order Id,Transaction Type,Order Date,Ship To State,Sku,Hsn/sac,Quantity,Invoice Amount,Total Tax Amount,Tax Exclusive Gross,Tcs Igst Amount,Tcs Cgst Amount,Tcs Sgst Amount\n"

	parser := newParser(t, header)
	err := CheckSchema(NewAmazonAdapter(), parser)
	require.Error(t, err)

	var mismatch *SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, analytics.PlatformAmazon, mismatch.Platform)
	assert.Equal(t, []string{"Tcs Utgst Amount"}, mismatch.Columns)
}

func TestAmazonAdapter_TCSComponentsSummed(t *testing.T) {
	csvText := amazonHeader +
		"403-010,Shipment,2024-06-01,Goa,SKU-A,6109,1,118.00,18.00,100.00,0.25,0.25,0.25,0.25\n"

	result := NewAmazonAdapter().Normalize(parseRows(t, csvText))
	require.Len(t, result.Records, 1)
	assert.True(t, result.Records[0].TCSAmount.Equal(decimal.RequireFromString("1.00")))
}

func TestAmazonAdapter_SkipsBadRows(t *testing.T) {
	tests := []struct {
		name       string
		row        string
		wantColumn string
		wantCode   string
	}{
		{
			name:       "missing order id",
			row:        ",Shipment,2024-06-01,Goa,SKU,6109,1,118,18,100,0,0,0,0",
			wantColumn: "Order Id",
			wantCode:   csvtable.ErrCodeRequiredField,
		},
		{
			name:       "unknown transaction type",
			row:        "403-1,FreeReplacement,2024-06-01,Goa,SKU,6109,1,118,18,100,0,0,0,0",
			wantColumn: "Transaction Type",
			wantCode:   csvtable.ErrCodeInvalidValue,
		},
		{
			name:       "bad date",
			row:        "403-1,Shipment,June first,Goa,SKU,6109,1,118,18,100,0,0,0,0",
			wantColumn: "Order Date",
			wantCode:   csvtable.ErrCodeInvalidDate,
		},
		{
			name:       "zero quantity",
			row:        "403-1,Shipment,2024-06-01,Goa,SKU,6109,0,118,18,100,0,0,0,0",
			wantColumn: "Quantity",
			wantCode:   csvtable.ErrCodeInvalidType,
		},
		{
			name:       "negative amount on shipment",
			row:        "403-1,Shipment,2024-06-01,Goa,SKU,6109,1,-118,18,100,0,0,0,0",
			wantColumn: "Invoice Amount",
			wantCode:   csvtable.ErrCodeNegativeValue,
		},
		{
			name:       "unparseable amount",
			row:        "403-1,Shipment,2024-06-01,Goa,SKU,6109,1,abc,18,100,0,0,0,0",
			wantColumn: "Invoice Amount",
			wantCode:   csvtable.ErrCodeInvalidType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewAmazonAdapter().Normalize(parseRows(t, amazonHeader+tt.row+"\n"))
			assert.Empty(t, result.Records)
			require.Equal(t, 1, result.SkippedRows())

			issue := result.Skipped.Errors()[0]
			assert.Equal(t, tt.wantColumn, issue.Column)
			assert.Equal(t, tt.wantCode, issue.Code)
			assert.Equal(t, 2, issue.Row)
		})
	}
}

func TestAmazonAdapter_GoodRowsSurviveBadNeighbors(t *testing.T) {
	csvText := amazonHeader +
		"403-001,Shipment,2024-06-01,Goa,SKU,6109,1,118,18,100,0,0,0,0\n" +
		"403-002,Shipment,bad date,Goa,SKU,6109,1,118,18,100,0,0,0,0\n" +
		"403-003,Refund,2024-06-05,Goa,SKU,6109,1,-118,-18,-100,0,0,0,0\n"

	result := NewAmazonAdapter().Normalize(parseRows(t, csvText))
	assert.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.SkippedRows())
	assert.Equal(t, 3, result.TotalRows)
}
