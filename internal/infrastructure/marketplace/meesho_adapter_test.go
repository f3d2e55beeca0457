package marketplace

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gstboard/backend/internal/domain/analytics"
	"github.com/gstboard/backend/internal/infrastructure/csvtable"
)

const meeshoHeader = "sub_order_no,order_date,order_status,end_customer_state_new,product_name,hsn_code,quantity,total_invoice_value,tax_amount,total_taxable_sale_value,gst_rate\n"

func TestMeeshoAdapter_RequiredColumns(t *testing.T) {
	adapter := NewMeeshoAdapter()
	assert.Equal(t, analytics.PlatformMeesho, adapter.Platform())

	// product_name is informational, its absence must not reject the file
	assert.NotContains(t, adapter.RequiredColumns(), meeshoColProductName)

	parser := newParser(t, meeshoHeader)
	assert.NoError(t, CheckSchema(adapter, parser))
}

func TestMeeshoAdapter_Normalize(t *testing.T) {
	csvText := meeshoHeader +
		"SO-500,15-07-2024,Delivered,tamil nadu,Cotton Kurti,6204,1,531.00,81.00,450.00,18\n" +
		"SO-501,16-07-2024,RTO,Kerala,Cotton Kurti,6204,1,531.00,81.00,450.00,18\n" +
		"SO-502,17-07-2024,Return,Kerala,Saree,6211,1,236.00,36.00,200.00,18\n" +
		"SO-503,18-07-2024,Cancelled,Bihar,Saree,6211,2,0,0,0,5\n"

	result := NewMeeshoAdapter().Normalize(parseRows(t, csvText))

	require.Len(t, result.Records, 4)
	assert.Equal(t, 0, result.SkippedRows())

	delivered := result.Records[0]
	assert.Equal(t, "SO-500", delivered.OrderID)
	assert.Equal(t, analytics.StatusDelivered, delivered.Status)
	assert.Equal(t, "TAMIL NADU", delivered.State)
	assert.Equal(t, "Cotton Kurti", delivered.ProductCode)
	assert.Equal(t, "18", delivered.GSTRate)
	assert.True(t, delivered.SaleAmount.Equal(decimal.RequireFromString("531.00")))
	assert.True(t, delivered.TaxableAmount.Equal(decimal.RequireFromString("450.00")))
	assert.True(t, delivered.TCSAmount.IsZero())

	// RTO and buyer return both normalize to returned
	assert.Equal(t, analytics.StatusReturned, result.Records[1].Status)
	assert.Equal(t, analytics.StatusReturned, result.Records[2].Status)
	assert.Equal(t, analytics.StatusCancelled, result.Records[3].Status)
}

func TestMeeshoAdapter_SkipsBadRows(t *testing.T) {
	tests := []struct {
		name       string
		row        string
		wantColumn string
		wantCode   string
	}{
		{
			name:       "missing sub order no",
			row:        ",15-07-2024,Delivered,Goa,Kurti,6204,1,531,81,450,18",
			wantColumn: "sub_order_no",
			wantCode:   csvtable.ErrCodeRequiredField,
		},
		{
			name:       "unknown order status",
			row:        "SO-1,15-07-2024,Exchanged,Goa,Kurti,6204,1,531,81,450,18",
			wantColumn: "order_status",
			wantCode:   csvtable.ErrCodeInvalidValue,
		},
		{
			name:       "bad date",
			row:        "SO-1,yesterday,Delivered,Goa,Kurti,6204,1,531,81,450,18",
			wantColumn: "order_date",
			wantCode:   csvtable.ErrCodeInvalidDate,
		},
		{
			name:       "negative invoice value",
			row:        "SO-1,15-07-2024,Delivered,Goa,Kurti,6204,1,-531,81,450,18",
			wantColumn: "total_invoice_value",
			wantCode:   csvtable.ErrCodeNegativeValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewMeeshoAdapter().Normalize(parseRows(t, meeshoHeader+tt.row+"\n"))
			assert.Empty(t, result.Records)
			require.Equal(t, 1, result.SkippedRows())

			issue := result.Skipped.Errors()[0]
			assert.Equal(t, tt.wantColumn, issue.Column)
			assert.Equal(t, tt.wantCode, issue.Code)
		})
	}
}

func TestMeeshoAdapter_MergeReturns(t *testing.T) {
	adapter := NewMeeshoAdapter()

	csvText := meeshoHeader +
		"SO-600,15-07-2024,Delivered,Goa,Kurti,6204,1,531,81,450,18\n" +
		"SO-601,15-07-2024,Delivered,Goa,Kurti,6204,1,531,81,450,18\n" +
		"SO-602,15-07-2024,Cancelled,Goa,Kurti,6204,1,0,0,0,18\n"
	result := adapter.Normalize(parseRows(t, csvText))
	require.Len(t, result.Records, 3)

	returnRows := parseRows(t, "sub_order_no,return_reason\nSO-601,damaged\nSO-602,whatever\nSO-999,unknown order\n")
	flipped := adapter.MergeReturns(result.Records, returnRows)

	assert.Equal(t, 1, flipped)
	assert.Equal(t, analytics.StatusDelivered, result.Records[0].Status)
	assert.Equal(t, analytics.StatusReturned, result.Records[1].Status)
	// cancelled orders never shipped, a returns row cannot flip them
	assert.Equal(t, analytics.StatusCancelled, result.Records[2].Status)
}
