package layout

import "strings"

// Geometry in PDF points. Vertical positions count down from the top edge of
// the page towards the bottom margin, the same way PDF user space does.
const (
	PageWidth            = 595.0
	PageHeight           = 841.0
	Margin               = 36.0
	ContentWidth         = PageWidth - 2*Margin
	LineHeight           = 14.0
	RowHeight            = 14.0
	LogoMaxHeight        = 40.0
	SummaryFooterReserve = 160.0
	TotalsMinY           = Margin + 120
	columnGap            = 4.0
	pageTop              = PageHeight - Margin
)

type Color struct {
	R, G, B float64
}

var (
	Black            = Color{}
	Ink              = Color{0.1, 0.1, 0.1}
	TableLineColor   = Color{0.4, 0.4, 0.4}
	HeaderFill       = Color{0.92, 0.92, 0.92}
	PlaceholderColor = Color{0.5, 0.5, 0.55}
	LabelColor       = Color{0.4, 0.4, 0.4}
	SectionColor     = Color{0.2, 0.2, 0.2}
	ContinuedColor   = Color{0.3, 0.3, 0.3}
)

type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

type PageKind string

const (
	PageSummary          PageKind = "summary"
	PageSummaryContinued PageKind = "summary_continued"
	PageInvoice          PageKind = "invoice"
	PageInvoiceContinued PageKind = "invoice_continued"
)

type Document struct {
	Title  string
	Author string
	Pages  []Page
}

type Page struct {
	Kind PageKind
	Rows []Row
}

// Row is one horizontal band of a page. Cells are laid out left to right and
// their widths add up to at most ContentWidth.
type Row struct {
	Top    float64
	Height float64
	Cells  []Cell
	Rule   *Color
}

type Cell struct {
	Width  float64
	Texts  []Text
	Image  *Logo
	Fill   *Color
	Border bool
}

type Text struct {
	Value       string
	Size        float64
	Color       Color
	Align       Align
	Left        float64
	Right       float64
	Placeholder bool
}

type Logo struct {
	Data   []byte
	Format string
	Width  float64
	Height float64
}

// Scaled returns the drawn size: never taller than LogoMaxHeight, never upscaled.
func (l Logo) Scaled() (float64, float64) {
	if l.Height <= 0 {
		return 0, 0
	}
	scale := LogoMaxHeight / l.Height
	if scale > 1 {
		scale = 1
	}
	return l.Width * scale, l.Height * scale
}

func (p Page) Bottom() float64 {
	if len(p.Rows) == 0 {
		return pageTop
	}
	last := p.Rows[len(p.Rows)-1]
	return last.Top - last.Height
}

func (p Page) Texts() []string {
	var out []string
	for _, r := range p.Rows {
		for _, c := range r.Cells {
			for _, t := range c.Texts {
				out = append(out, t.Value)
			}
		}
	}
	return out
}

func (p Page) Contains(s string) bool {
	for _, t := range p.Texts() {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}

func (d Document) CountPages(kind PageKind) int {
	n := 0
	for _, p := range d.Pages {
		if p.Kind == kind {
			n++
		}
	}
	return n
}
