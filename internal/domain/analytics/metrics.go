package analytics

import "github.com/shopspring/decimal"

// GroupTotals is the per-group slice of a breakdown: shipment count,
// quantity and the sales/tax subtotals for one state, month, HSN code or
// GST rate.
type GroupTotals struct {
	Shipments int64           `json:"shipments"`
	Quantity  int64           `json:"quantity"`
	Sales     decimal.Decimal `json:"sales"`
	Tax       decimal.Decimal `json:"tax"`
}

// MetricsBundle is the derived, read-only aggregate handed to the
// presentation layer. Sums over each breakdown equal the ungrouped totals.
type MetricsBundle struct {
	TotalShipments int64           `json:"total_shipments"`
	TotalQuantity  int64           `json:"total_quantity"`
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalTax       decimal.Decimal `json:"total_tax"`
	TotalTaxable   decimal.Decimal `json:"total_taxable"`
	TotalTCS       decimal.Decimal `json:"total_tcs"`
	ReturnedCount  int64           `json:"returned_count"`
	CancelledCount int64           `json:"cancelled_count"`
	// ReturnRate is (returned+cancelled)/total shipments, in [0,1]
	ReturnRate decimal.Decimal `json:"return_rate"`

	ByState   map[string]GroupTotals `json:"by_state"`
	ByMonth   map[string]GroupTotals `json:"by_month"`
	ByProduct map[string]GroupTotals `json:"by_product"`
	ByGSTRate map[string]GroupTotals `json:"by_gst_rate"`
}

// returnRatePlaces bounds the precision of the return-rate division so the
// value is stable regardless of input size.
const returnRatePlaces = 6

// EmptyMetricsBundle returns a bundle with zero totals and empty group maps.
// An empty upload produces this, not an error.
func EmptyMetricsBundle() MetricsBundle {
	return MetricsBundle{
		TotalSales:   decimal.Zero,
		TotalTax:     decimal.Zero,
		TotalTaxable: decimal.Zero,
		TotalTCS:     decimal.Zero,
		ReturnRate:   decimal.Zero,
		ByState:      make(map[string]GroupTotals),
		ByMonth:      make(map[string]GroupTotals),
		ByProduct:    make(map[string]GroupTotals),
		ByGSTRate:    make(map[string]GroupTotals),
	}
}

// IsZero reports whether the bundle carries no shipments at all
func (b *MetricsBundle) IsZero() bool {
	return b.TotalShipments == 0
}

// Aggregate computes a MetricsBundle from a sequence of normalized records.
// It is a pure single-pass function: a permuted copy of the same sequence
// yields an identical bundle.
//
// Revenue policy: cancelled orders are excluded from the sales, tax and
// quantity totals and from every breakdown subtotal, but they still count
// toward TotalShipments and the return-rate denominator.
func Aggregate(records []ShipmentRecord) MetricsBundle {
	bundle := EmptyMetricsBundle()
	bundle.TotalShipments = int64(len(records))

	for i := range records {
		r := &records[i]

		switch r.Status {
		case StatusReturned:
			bundle.ReturnedCount++
		case StatusCancelled:
			bundle.CancelledCount++
		}

		if r.IsCancelled() {
			continue
		}

		bundle.TotalQuantity += r.Quantity
		bundle.TotalSales = bundle.TotalSales.Add(r.SaleAmount)
		bundle.TotalTax = bundle.TotalTax.Add(r.TaxAmount)
		bundle.TotalTaxable = bundle.TotalTaxable.Add(r.TaxableAmount)
		bundle.TotalTCS = bundle.TotalTCS.Add(r.TCSAmount)

		accumulate(bundle.ByState, r.State, r)
		accumulate(bundle.ByMonth, r.Month(), r)
		accumulate(bundle.ByProduct, r.HSNCode, r)
		accumulate(bundle.ByGSTRate, r.GSTRate, r)
	}

	if bundle.TotalShipments > 0 {
		flagged := decimal.NewFromInt(bundle.ReturnedCount + bundle.CancelledCount)
		total := decimal.NewFromInt(bundle.TotalShipments)
		bundle.ReturnRate = flagged.DivRound(total, returnRatePlaces)
	}

	return bundle
}

// accumulate folds one record into a breakdown group
func accumulate(groups map[string]GroupTotals, key string, r *ShipmentRecord) {
	if key == "" {
		key = "unknown"
	}
	g, ok := groups[key]
	if !ok {
		g = GroupTotals{Sales: decimal.Zero, Tax: decimal.Zero}
	}
	g.Shipments++
	g.Quantity += r.Quantity
	g.Sales = g.Sales.Add(r.SaleAmount)
	g.Tax = g.Tax.Add(r.TaxAmount)
	groups[key] = g
}
