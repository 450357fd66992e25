package invoice

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"proforma/internal"
	"proforma/internal/catalog"
	"proforma/internal/layout"
)

var ErrNoOrders = errors.New("no orders")

type Renderer interface {
	Render(doc layout.Document) ([]byte, error)
}

type Result struct {
	Bytes      []byte
	NextNumber int
	BaseNumber string
	SubNumbers []string
	Currency   string
	IssuedAt   time.Time
	Document   layout.Document
	Totals     []internal.OrderTotals
}

type Engine struct {
	renderer Renderer
}

func NewEngine(r Renderer) *Engine {
	return &Engine{renderer: r}
}

// BuildInvoiceDocument prices the orders, lays out the summary and one invoice
// per order and renders the result. cfg is read only; the returned NextNumber
// is what the caller stores once it decides to commit.
func (e *Engine) BuildInvoiceDocument(orders []internal.Order, cfg Config, products []internal.CatalogProduct) (Result, error) {
	if len(orders) == 0 {
		return Result{}, ErrNoOrders
	}

	now := cfg.now()
	numbering := NewNumbering(cfg.Invoice.Prefix, cfg.Invoice.NextNumber, now)
	lookup := catalog.Resolve(products, cfg.CustomProducts, cfg.Prices)

	entries := make([]layout.OrderEntry, len(orders))
	totals := make([]internal.OrderTotals, len(orders))
	subs := make([]string, len(orders))
	for i, order := range orders {
		totals[i] = ComputeOrderTotals(order, lookup, cfg)
		subs[i] = numbering.Sub(i + 1)
		entries[i] = layout.OrderEntry{Order: order, Totals: totals[i], Number: subs[i]}
	}
	agg := SumTotals(totals)

	doc := layout.Compose(layout.Input{
		Sender:        cfg.Sender,
		Receiver:      cfg.Receiver,
		Currency:      cfg.currency(),
		VATRate:       totals[0].VATRate,
		PaymentTerms:  cfg.Invoice.PaymentTerms,
		DeliveryTerms: cfg.Invoice.DeliveryTerms,
		FooterNotes:   cfg.Invoice.FooterNotes,
		BaseNumber:    numbering.Base,
		Date:          now,
		Orders:        entries,
		Grand:         layout.GrandTotals{Subtotal: agg.Subtotal, VAT: agg.VAT, Total: agg.Total},
		Logo:          loadLogo(cfg.Sender.LogoPath),
	})

	blob, err := e.renderer.Render(doc)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Bytes:      blob,
		NextNumber: numbering.Next,
		BaseNumber: numbering.Base,
		SubNumbers: subs,
		Currency:   cfg.currency(),
		IssuedAt:   now,
		Document:   doc,
		Totals:     totals,
	}, nil
}

// loadLogo returns nil for anything that is not a readable PNG or JPEG; the
// summary page is then drawn without a logo.
func loadLogo(path string) *layout.Logo {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpg"
	default:
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	imgCfg, decoded, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || (decoded != "png" && decoded != "jpeg") {
		return nil
	}
	if (format == "png") != (decoded == "png") {
		return nil
	}

	return &layout.Logo{
		Data:   data,
		Format: format,
		Width:  float64(imgCfg.Width),
		Height: float64(imgCfg.Height),
	}
}
