package render

import (
	"fmt"
	"math"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"proforma/internal/layout"
)

const (
	mmPerPoint = 25.4 / 72
	// the layout keeps its own bottom margin; maroto only needs to stay out
	// of the way of the last footer line.
	bottomMarginPt = 10.0
	gridSize       = int(layout.ContentWidth)
	ruleThickness  = 0.5 * mmPerPoint
	// vertical steps are multiples of 1/64 mm, which float64 adds exactly
	heightStep = 1.0 / 64
)

func mm(pt float64) float64 {
	return pt * mmPerPoint
}

// height converts a vertical distance and snaps it to heightStep. maroto pads
// every page with a spacer that must end exactly on the page break line; any
// rounding drift in the sum of row heights pushes it over and leaves a blank
// page behind.
func height(pt float64) float64 {
	return math.Round(mm(pt)/heightStep) * heightStep
}

// Renderer turns a composed layout.Document into PDF bytes with maroto.
type Renderer struct{}

func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(doc layout.Document) ([]byte, error) {
	builder := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(mm(layout.Margin)).
		WithRightMargin(mm(layout.Margin)).
		WithTopMargin(height(layout.Margin)).
		WithBottomMargin(height(bottomMarginPt)).
		WithMaxGridSize(gridSize).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9})
	if doc.Title != "" {
		builder = builder.WithTitle(doc.Title, true)
	}
	if doc.Author != "" {
		builder = builder.WithAuthor(doc.Author, true)
	}

	m := maroto.New(builder.Build())
	for _, p := range doc.Pages {
		pg := page.New()
		for _, lr := range p.Rows {
			pg.Add(buildRow(lr))
		}
		m.AddPages(pg)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return out.GetBytes(), nil
}

func buildRow(lr layout.Row) core.Row {
	if lr.Rule != nil {
		return line.NewRow(height(lr.Height), props.Line{
			Color:     color(*lr.Rule),
			Thickness: ruleThickness,
		})
	}

	r := row.New(height(lr.Height))
	if len(lr.Cells) == 0 {
		return r
	}

	sizes := gridSizes(lr.Cells)
	cols := make([]core.Col, 0, len(lr.Cells))
	for i, c := range lr.Cells {
		cols = append(cols, buildCol(c, sizes[i], lr.Height))
	}
	return r.Add(cols...)
}

// gridSizes rounds the cumulative cell edges so neighbouring columns never
// overlap or leave a gap, and the row never exceeds the grid.
func gridSizes(cells []layout.Cell) []int {
	sizes := make([]int, len(cells))
	edge := 0.0
	prev := 0
	for i, c := range cells {
		edge += c.Width
		next := int(math.Round(edge))
		if next > gridSize {
			next = gridSize
		}
		sizes[i] = next - prev
		prev = next
	}
	return sizes
}

func buildCol(c layout.Cell, size int, rowHeight float64) core.Col {
	cl := col.New(size)

	if c.Image != nil {
		ext := extension.Png
		if c.Image.Format == "jpg" {
			ext = extension.Jpg
		}
		cl.Add(image.NewFromBytes(c.Image.Data, ext, props.Rect{Percent: 100}))
	}
	for _, t := range c.Texts {
		cl.Add(text.New(t.Value, textProps(t, rowHeight)))
	}

	if c.Fill != nil || c.Border {
		style := &props.Cell{}
		if c.Fill != nil {
			style.BackgroundColor = color(*c.Fill)
		}
		if c.Border {
			style.BorderType = border.Full
			style.BorderColor = color(layout.TableLineColor)
			style.BorderThickness = ruleThickness
		}
		cl.WithStyle(style)
	}
	return cl
}

// textProps places the text on the row's baseline band: the glyphs sit 4pt
// above the bottom edge of the row.
func textProps(t layout.Text, rowHeight float64) props.Text {
	top := rowHeight - 4 - t.Size*0.75
	if top < 0 {
		top = 0
	}
	p := props.Text{
		Size:  t.Size,
		Top:   mm(top),
		Left:  mm(t.Left),
		Right: mm(t.Right),
		Color: color(t.Color),
		Align: align.Left,
	}
	if t.Align == layout.AlignRight {
		p.Align = align.Right
	}
	return p
}

func color(c layout.Color) *props.Color {
	return &props.Color{
		Red:   int(math.Round(c.R * 255)),
		Green: int(math.Round(c.G * 255)),
		Blue:  int(math.Round(c.B * 255)),
	}
}
