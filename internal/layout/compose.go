package layout

import (
	"math"
	"time"

	"proforma/internal"
)

type OrderEntry struct {
	Order  internal.Order
	Totals internal.OrderTotals
	Number string
}

type GrandTotals struct {
	Subtotal float64
	VAT      float64
	Total    float64
}

// Input is everything Compose needs. It carries already computed totals; the
// layout never prices anything itself.
type Input struct {
	Sender        internal.SenderProfile
	Receiver      internal.ReceiverProfile
	Currency      string
	VATRate       float64
	PaymentTerms  string
	DeliveryTerms string
	FooterNotes   string
	BaseNumber    string
	Date          time.Time
	Orders        []OrderEntry
	Grand         GrandTotals
	Logo          *Logo
}

// Compose lays out the summary page followed by one invoice per order.
func Compose(in Input) Document {
	c := &composer{doc: Document{Title: in.BaseNumber, Author: in.Sender.Name}}
	c.summary(in)
	for _, entry := range in.Orders {
		c.invoice(in, entry)
	}
	return c.doc
}

// SummaryRowsPerPage is how many index rows fit below y while leaving room
// for the header row, the grand totals and the footer.
func SummaryRowsPerPage(y float64) int {
	n := int(math.Floor((y-(Margin+SummaryFooterReserve))/RowHeight)) - 1
	if n < 1 {
		return 1
	}
	return n
}

// ItemRowsPerPage is how many item rows fit below y above the bottom margin,
// header row excluded.
func ItemRowsPerPage(y float64) int {
	n := int(math.Floor((y-Margin)/RowHeight)) - 1
	if n < 1 {
		return 1
	}
	return n
}

type composer struct {
	doc Document
	y   float64
}

func (c *composer) newPage(kind PageKind) {
	c.doc.Pages = append(c.doc.Pages, Page{Kind: kind})
	c.y = pageTop
}

func (c *composer) add(height float64, cells ...Cell) {
	p := &c.doc.Pages[len(c.doc.Pages)-1]
	p.Rows = append(p.Rows, Row{Top: c.y, Height: height, Cells: cells})
	c.y -= height
}

func (c *composer) space(height float64) {
	c.add(height)
}

func (c *composer) rule(height float64) {
	color := TableLineColor
	p := &c.doc.Pages[len(c.doc.Pages)-1]
	p.Rows = append(p.Rows, Row{Top: c.y, Height: height, Rule: &color})
	c.y -= height
}

func (c *composer) line(texts ...Text) {
	c.add(LineHeight, Cell{Width: ContentWidth, Texts: texts})
}

func plain(value string, size float64) Text {
	return Text{Value: value, Size: size, Color: Black}
}

func placeholderText(prefix, value, hint string, size float64) Text {
	v, missing := Placeholder(value, hint)
	t := plain(prefix+v, size)
	if missing {
		t.Color = PlaceholderColor
		t.Placeholder = true
	}
	return t
}

// tableCell fits text into a bordered cell of the given width: cut to the
// character budget and padded by 3pt from the edge it is aligned to.
func tableCell(width float64, value string, size float64, align Align) Cell {
	t := Text{
		Value: Ellipsize(value, CellBudget(width, size)),
		Size:  size,
		Color: Black,
		Align: align,
	}
	if align == AlignRight {
		t.Right = 3
	} else {
		t.Left = 3
	}
	return Cell{Width: width, Texts: []Text{t}, Border: true}
}

func headerRow(widths []float64, labels []string, size float64, rightAlignLast bool) []Cell {
	fill := HeaderFill
	cells := make([]Cell, len(labels))
	for i, label := range labels {
		align := AlignLeft
		if rightAlignLast && i == len(labels)-1 {
			align = AlignRight
		}
		cells[i] = tableCell(widths[i], label, size, align)
		cells[i].Fill = &fill
	}
	return cells
}

// pairColumns zips two independently flowing text columns into rows.
func (c *composer) pairColumns(leftWidth float64, left, right []Text) {
	n := len(left)
	if len(right) > n {
		n = len(right)
	}
	for i := 0; i < n; i++ {
		l := Cell{Width: leftWidth}
		if i < len(left) {
			l.Texts = []Text{fitText(left[i], l.Width)}
		}
		r := Cell{Width: ContentWidth - leftWidth}
		if i < len(right) {
			r.Texts = []Text{fitText(right[i], r.Width)}
		}
		c.add(LineHeight, l, r)
	}
}

// fitText keeps t on one line inside a cell of the given width.
func fitText(t Text, width float64) Text {
	t.Value = TruncateToWidth(t.Value, t.Size, width-t.Left-t.Right-columnGap)
	return t
}
