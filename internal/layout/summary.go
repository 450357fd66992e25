package layout

import (
	"strings"
)

var (
	summaryGridWidths  = []float64{320 - Margin, PageWidth - Margin - 320}
	addressLeftWidth   = PageWidth/2 + 20 - Margin
	indexWidths        = []float64{124, 240, PageWidth - Margin - 400}
	totalsLabelOffset  = 360 - Margin
	footerLeftWidth    = 300 - Margin
	detailValueOffset  = 195 - Margin
	detailValueWidth   = 118.0
	customerNameLimit  = 35
	summaryDetailSize  = 8.0
	summaryTotalsSize  = 9.0
	continuedRowHeight = LineHeight * 1.5
)

func (c *composer) summary(in Input) {
	c.newPage(PageSummary)

	if in.Logo != nil {
		w, h := in.Logo.Scaled()
		if w > 0 && h > 0 {
			if w > ContentWidth {
				w = ContentWidth
			}
			c.add(h, Cell{Width: ContentWidth - w}, Cell{Width: w, Image: in.Logo})
			c.space(LineHeight)
		}
	}

	date := GermanDate(in.Date)
	c.line(
		Text{Value: "Proforma", Size: 18, Color: Ink},
		Text{Value: "Rechnungsnummer / Invoice number: " + in.BaseNumber, Size: 10, Color: Black, Align: AlignRight},
	)
	c.line(
		plain("Rechnungsdatum / Invoice date:", 9),
		Text{Value: date, Size: 9, Color: Black, Align: AlignRight},
	)
	c.rule(4)

	c.summaryGrid(in, date)
	c.space(LineHeight)
	c.rule(LineHeight)

	c.buyerBlock(in)
	c.space(LineHeight)

	c.orderIndex(in)

	c.grandTotals(in)
	c.space(LineHeight)
	c.footer(in)
}

func (c *composer) summaryGrid(in Input, date string) {
	paymentTerms, noTerms := Placeholder(in.PaymentTerms, "[Payment terms]")
	details := []struct {
		label, value string
		missing      bool
	}{
		{"Bestelldatum / Order date:", date, false},
		{"Fälligkeitsdatum / Due date:", "sofort", false},
		{"Zahlungskonditionen / Payment terms:", paymentTerms, noTerms},
		{"Lieferkonditionen / Delivery terms:", dashIfBlank(in.DeliveryTerms), false},
		{"Kommentar / Comments:", dashIfBlank(in.FooterNotes), false},
	}

	totals := []struct {
		label, value string
		size         float64
	}{
		{"Zwischensumme / Subtotal net", MoneyComma(in.Grand.Subtotal, in.Currency), summaryTotalsSize},
		{"Umsatzsteuer / VAT " + Percent(in.VATRate) + "%", MoneyComma(in.Grand.VAT, in.Currency), summaryTotalsSize},
		{"Gesamtbetrag brutto / Total gross", MoneyComma(in.Grand.Total, in.Currency), summaryTotalsSize + 1},
	}

	for i, d := range details {
		value := plain(TruncateToWidth(d.value, summaryDetailSize, detailValueWidth), summaryDetailSize)
		value.Left = detailValueOffset
		if d.missing {
			value.Color = PlaceholderColor
			value.Placeholder = true
		}
		left := Cell{
			Width:  summaryGridWidths[0],
			Border: true,
			Texts: []Text{
				{Value: d.label, Size: summaryDetailSize, Color: Black, Left: 4},
				value,
			},
		}

		right := Cell{Width: summaryGridWidths[1], Border: true}
		if i < len(totals) {
			t := totals[i]
			right.Texts = []Text{
				{Value: t.label, Size: summaryDetailSize, Color: Black, Left: 4},
				{Value: t.value, Size: t.size, Color: Black, Align: AlignRight, Right: 4},
			}
		}
		c.add(RowHeight, left, right)
	}
}

// buyerBlock prints billing and delivery address side by side. There is no
// separate delivery address, so both columns show the receiver.
func (c *composer) buyerBlock(in Input) {
	label := func(s string) Text {
		return Text{Value: s, Size: 8, Color: LabelColor}
	}
	name := placeholderText("", in.Receiver.Name, "[Buyer name]", 9)

	address, noAddress := Placeholder(in.Receiver.Address, "[Address]")
	var addrTexts []Text
	for _, l := range addressLines(address) {
		t := plain(l, 8)
		if noAddress {
			t.Color = PlaceholderColor
			t.Placeholder = true
		}
		addrTexts = append(addrTexts, t)
	}

	left := []Text{label("Firmenname / Company name:"), name, label("Anschrift / Address:")}
	left = append(left, addrTexts...)
	if vat := strings.TrimSpace(in.Receiver.VATNumber); vat != "" {
		left = append(left, plain("USt-IdNr. "+vat, 8))
	}

	right := []Text{label("Lieferadresse / Delivery address:"), name}
	right = append(right, addrTexts...)

	c.pairColumns(addressLeftWidth, left, right)
}

func (c *composer) orderIndex(in Input) {
	orders := in.Orders
	done := 0
	for done < len(orders) {
		take := SummaryRowsPerPage(c.y)
		if take > len(orders)-done {
			take = len(orders) - done
		}
		c.indexTable(in, orders[done:done+take])
		done += take

		if done >= len(orders) {
			c.space(LineHeight)
			break
		}
		c.newPage(PageSummaryContinued)
		c.add(continuedRowHeight, Cell{Width: ContentWidth, Texts: []Text{
			{Value: "Summary (continued) / Fortsetzung", Size: 10, Color: ContinuedColor},
		}})
	}
}

func (c *composer) indexTable(in Input, entries []OrderEntry) {
	c.add(RowHeight, headerRow(indexWidths, []string{"Order ref", "Customer", "Total"}, 9, true)...)
	for _, e := range entries {
		ref := e.Order.Tracking
		if ref == "" {
			ref = "-"
		}
		name := e.Order.Name
		if name == "" {
			name = in.Receiver.Name
		}
		c.add(RowHeight,
			tableCell(indexWidths[0], ref, 8, AlignLeft),
			tableCell(indexWidths[1], Ellipsize(name, customerNameLimit), 8, AlignLeft),
			tableCell(indexWidths[2], Money(e.Totals.Total, in.Currency), 8, AlignRight),
		)
	}
}

func (c *composer) grandTotals(in Input) {
	rows := []struct {
		label, value string
		size         float64
	}{
		{"Zwischensumme / Subtotal net", MoneyComma(in.Grand.Subtotal, in.Currency), 9},
		{"Umsatzsteuer / VAT " + Percent(in.VATRate) + "%", MoneyComma(in.Grand.VAT, in.Currency), 9},
		{"Gesamtbetrag brutto / Total gross", MoneyComma(in.Grand.Total, in.Currency), 10},
	}
	for _, r := range rows {
		c.add(LineHeight,
			Cell{Width: totalsLabelOffset},
			Cell{Width: ContentWidth - totalsLabelOffset, Texts: []Text{
				plain(r.label, 9),
				{Value: r.value, Size: r.size, Color: Black, Align: AlignRight},
			}},
		)
	}
}

func (c *composer) footer(in Input) {
	s := in.Sender
	title := func(v string) Text {
		return Text{Value: v, Size: 9, Color: SectionColor}
	}

	left := []Text{
		title("Zahlungsdetails / Payment Information"),
		placeholderText("", s.BankName, "[Bank]", 8),
	}
	if addr := strings.TrimSpace(s.BankAddress); addr != "" {
		left = append(left, plain(addr, 8))
	}
	left = append(left,
		placeholderText("IBAN: ", s.BankAccount, "[IBAN]", 8),
		placeholderText("BIC: ", s.SWIFT, "[BIC]", 8),
	)
	if in.BaseNumber != "" {
		left = append(left, plain("Zahlungsreferenz / Payment reference: "+in.BaseNumber, 8))
	}

	right := []Text{
		title("Weitere Informationen / Company Information"),
		placeholderText("", s.Name, "[Company]", 8),
	}
	for i, l := range addressLines(s.Address) {
		if i == 2 {
			break
		}
		right = append(right, plain(l, 8))
	}
	for _, kv := range []struct{ label, value string }{
		{"CEO: ", s.CEO},
		{"Phone: ", s.Phone},
		{"Web: ", s.Website},
		{"Email: ", s.Email},
	} {
		if kv.value != "" {
			right = append(right, plain(kv.label+kv.value, 8))
		}
	}

	c.pairColumns(footerLeftWidth, left, right)
}
