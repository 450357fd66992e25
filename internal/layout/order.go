package layout

import (
	"strconv"
	"strings"
)

var (
	itemWidths = []float64{26, 40, 68, 58, 48, 36, 89, 38, 28, 28, 64}
	itemLabels = []string{
		"Pos", "Marke", "EAN", "Charge/Batch", "BBD", "Art.-Nr.",
		"Produkt / Product", "Menge", "Preis", "USt%", "Gesamt",
	}
	itemCutoffs     = []int{0, 8, 13, 14, 10, 8}
	descriptionCut  = 36
	itemSize        = 7.0
	noItemsText     = "No items available / Nicht verfügbar"
	invoiceBodySize = 9.0
)

func (c *composer) invoice(in Input, entry OrderEntry) {
	c.newPage(PageInvoice)

	ref := entry.Order.Tracking
	if ref == "" {
		ref = "–"
	}
	c.line(Text{Value: "Proforma", Size: 18, Color: Ink})
	c.line(plain("Rechnungsnummer / Invoice number: "+entry.Number, 10))
	c.line(plain("Order ref: "+ref, invoiceBodySize))
	c.line(plain("Rechnungsdatum / Invoice date: "+ISODate(in.Date), invoiceBodySize))
	c.line(placeholderText("Zahlungskonditionen / Payment terms: ", in.PaymentTerms, "[Payment terms]", invoiceBodySize))
	if terms := strings.TrimSpace(in.DeliveryTerms); terms != "" {
		c.line(plain("Lieferkonditionen / Delivery terms: "+terms, invoiceBodySize))
	}
	c.space(LineHeight * 0.5)

	c.line(placeholderText("Firmenname / Company name: ", in.Receiver.Name, "[Buyer name]", invoiceBodySize))
	address, noAddress := Placeholder(in.Receiver.Address, "[Address]")
	for _, l := range addressLines(address) {
		t := plain(l, 8)
		if noAddress {
			t.Color = PlaceholderColor
			t.Placeholder = true
		}
		c.line(t)
	}
	if vat := strings.TrimSpace(in.Receiver.VATNumber); vat != "" {
		c.line(plain("USt-IdNr. "+vat, 8))
	}
	c.space(LineHeight)

	c.itemTable(in, entry)
	c.space(LineHeight)

	if c.y < TotalsMinY {
		c.newPage(PageInvoiceContinued)
	}
	c.orderTotals(in, entry)
	c.space(LineHeight)
	c.line(Text{Value: "Rechnungsnummer / Invoice number: " + entry.Number, Size: 8, Color: LabelColor})
}

// itemTable writes the header and item rows, continuing on a fresh page with
// the header repeated when the rows would run into the bottom margin.
func (c *composer) itemTable(in Input, entry OrderEntry) {
	rows := itemRows(in, entry)
	done := 0
	for {
		take := ItemRowsPerPage(c.y)
		if take > len(rows)-done {
			take = len(rows) - done
		}
		c.add(RowHeight, headerRow(itemWidths, itemLabels, itemSize, true)...)
		for _, r := range rows[done : done+take] {
			c.add(RowHeight, r...)
		}
		done += take
		if done >= len(rows) {
			return
		}
		c.newPage(PageInvoiceContinued)
		c.add(continuedRowHeight, Cell{Width: ContentWidth, Texts: []Text{
			{Value: entry.Number + " (continued) / Fortsetzung", Size: 10, Color: ContinuedColor},
		}})
	}
}

func itemRows(in Input, entry OrderEntry) [][]Cell {
	t := entry.Totals
	if t.NoItemsAvailable || len(t.Lines) == 0 {
		row := make([]Cell, len(itemWidths))
		for i, w := range itemWidths {
			row[i] = Cell{Width: w, Border: true}
		}
		row[0] = tableCell(itemWidths[0], "–", itemSize, AlignLeft)
		row[6] = tableCell(itemWidths[6], noItemsText, itemSize, AlignLeft)
		row[10] = tableCell(itemWidths[10], Money(0, in.Currency), itemSize, AlignRight)
		return [][]Cell{row}
	}

	vat := Percent(t.VATRate) + "%"
	out := make([][]Cell, 0, len(t.Lines))
	for i, l := range t.Lines {
		values := []string{
			strconv.Itoa(i + 1),
			Cut(l.Brand, itemCutoffs[1]),
			Cut(l.GTIN, itemCutoffs[2]),
			Cut(l.Batch, itemCutoffs[3]),
			Cut(l.BBD, itemCutoffs[4]),
			Cut(l.ArticleNo, itemCutoffs[5]),
			Ellipsize(l.Title, descriptionCut),
			strconv.Itoa(l.Qty),
			Fixed2(l.UnitPrice),
			vat,
			Money(l.LineTotal, in.Currency),
		}
		row := make([]Cell, len(values))
		for j, v := range values {
			align := AlignLeft
			if j == len(values)-1 {
				align = AlignRight
			}
			row[j] = tableCell(itemWidths[j], v, itemSize, align)
		}
		out = append(out, row)
	}
	return out
}

func (c *composer) orderTotals(in Input, entry OrderEntry) {
	t := entry.Totals
	type line struct {
		label, value string
		size         float64
	}
	lines := []line{{"Zwischensumme / Subtotal net", Money(t.Subtotal, in.Currency), 9}}
	if t.ShippingAmount > 0 {
		lines = append(lines, line{"Versandkosten / Shipping", Money(t.ShippingAmount, in.Currency), 9})
	}
	lines = append(lines,
		line{"Umsatzsteuer / VAT " + Percent(t.VATRate) + "%", Money(t.VATAmount, in.Currency), 9},
		line{"Total gross:", Money(t.Total, in.Currency), 10},
	)
	for _, l := range lines {
		c.add(LineHeight,
			Cell{Width: totalsLabelOffset},
			Cell{Width: ContentWidth - totalsLabelOffset, Texts: []Text{
				plain(l.label, l.size),
				{Value: l.value, Size: l.size, Color: Black, Align: AlignRight},
			}},
		)
	}
}
