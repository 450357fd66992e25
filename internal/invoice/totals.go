package invoice

import (
	"strings"

	"proforma/internal"
	"proforma/internal/catalog"
	"proforma/internal/util"
)

// ComputeOrderTotals prices one order against the resolved lookup. Values are
// kept unrounded; rounding happens only when they are displayed.
func ComputeOrderTotals(order internal.Order, lookup map[string]internal.ResolvedProduct, cfg Config) internal.OrderTotals {
	rate := cfg.Tax.VATRatePercent
	runBatch := strings.TrimSpace(cfg.Invoice.BatchNumber)

	lines := []internal.LineTotal{}
	subtotal := 0.0
	for _, line := range order.Lines {
		if inStock, ok := cfg.InStock[line.SKU]; ok && !inStock {
			continue
		}

		info, known := lookup[line.SKU]
		unitPrice := 0.0
		if known {
			unitPrice = info.Price
		}

		title := displayTitle(line, info, known)
		brand := strings.TrimSpace(info.Brand)
		if brand == "" {
			brand = catalog.BrandFromTitle(title)
		}
		batch := util.FirstNonBlank(line.Batch, info.Batch, runBatch)

		lineTotal := unitPrice * float64(line.Amount)
		subtotal += lineTotal
		lines = append(lines, internal.LineTotal{
			Title:     title,
			SKU:       line.SKU,
			GTIN:      info.GTIN,
			Brand:     brand,
			Batch:     batch,
			BBD:       strings.TrimSpace(info.BBD),
			ArticleNo: strings.TrimSpace(info.ArticleNo),
			Qty:       line.Amount,
			UnitPrice: unitPrice,
			LineTotal: lineTotal,
		})
	}

	noItems := len(lines) == 0
	shipping := 0.0
	if !noItems && cfg.Shipping.Mode == ShippingFixed {
		shipping = cfg.Shipping.FixedAmount
	}

	var vat, total float64
	if cfg.Tax.PricesIncludeVAT {
		total = subtotal + shipping
		vat = total - total/(1+rate/100)
	} else {
		vat = (subtotal + shipping) * (rate / 100)
		total = subtotal + shipping + vat
	}

	return internal.OrderTotals{
		Lines:            lines,
		Subtotal:         subtotal,
		ShippingAmount:   shipping,
		VATAmount:        vat,
		Total:            total,
		VATRate:          rate,
		NoItemsAvailable: noItems,
	}
}

// displayTitle prefers a real catalog title over the packlist text. A title
// equal to the bare SKU id only means the catalog had none.
func displayTitle(line internal.OrderLine, info internal.ResolvedProduct, known bool) string {
	if known {
		if t := strings.TrimSpace(info.Title); t != "" && info.Title != info.ID {
			return t
		}
	}
	if p := strings.TrimSpace(line.Product); p != "" {
		return p
	}
	if known && info.Title != "" {
		return info.Title
	}
	return line.SKU
}

// Aggregate sums per-order totals for the summary page. Subtotal includes
// shipping, matching the "subtotal net" line.
type Aggregate struct {
	Subtotal float64
	VAT      float64
	Total    float64
}

func SumTotals(all []internal.OrderTotals) Aggregate {
	var agg Aggregate
	for _, t := range all {
		agg.Subtotal += t.Subtotal + t.ShippingAmount
		agg.VAT += t.VATAmount
		agg.Total += t.Total
	}
	return agg
}
