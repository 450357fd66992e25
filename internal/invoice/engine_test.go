package invoice

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ledongthuc/pdf"

	"proforma/internal"
	"proforma/internal/layout"
	"proforma/internal/packlist"
	"proforma/internal/render"
)

type failingRenderer struct{}

func (failingRenderer) Render(layout.Document) ([]byte, error) {
	return nil, errors.New("disk full")
}

func testConfig() Config {
	return Config{
		Sender:   internal.SenderProfile{Name: "Acme GmbH"},
		Receiver: internal.ReceiverProfile{Name: "Globex Ltd", Address: "1 Market St"},
		Tax:      Tax{VATRatePercent: 20},
		Invoice:  Settings{Currency: "EUR", Prefix: "INV", NextNumber: 7, PaymentTerms: "Net 30"},
		Now:      time.Date(2026, time.January, 30, 10, 0, 0, 0, time.UTC),
	}
}

var exampleCatalog = []internal.CatalogProduct{
	{ID: "SKU1", Price: fp(10)},
	{ID: "SKU2", Price: fp(5)},
}

func TestBuildEndToEnd(t *testing.T) {
	raw := "Name;Tracking;Product;Amount;SKU;Batch\n" +
		"Alice;TRK1;Widget;3;SKU1;\n" +
		"Alice;TRK1;Gadget;2;SKU2;\n"
	orders := packlist.ParseOrders(raw)

	res, err := NewEngine(render.New()).BuildInvoiceDocument(orders, testConfig(), exampleCatalog)
	if err != nil {
		t.Fatal(err)
	}

	agg := SumTotals(res.Totals)
	if !approx(agg.Subtotal, 40) || !approx(agg.VAT, 8) || !approx(agg.Total, 48) {
		t.Fatalf("agg=%+v", agg)
	}
	if res.BaseNumber != "INV-2026-00007" || res.NextNumber != 8 {
		t.Fatalf("base=%s next=%d", res.BaseNumber, res.NextNumber)
	}
	if !res.Document.Pages[0].Contains("48,00 EUR") {
		t.Fatalf("summary=%v", res.Document.Pages[0].Texts())
	}

	reader, err := pdf.NewReader(bytes.NewReader(res.Bytes), int64(len(res.Bytes)))
	if err != nil {
		t.Fatal(err)
	}
	if reader.NumPage() != 1+len(orders) {
		t.Fatalf("pages=%d", reader.NumPage())
	}
}

func TestSingleOrderExample(t *testing.T) {
	order := internal.Order{Name: "Alice", Tracking: "TRK1", Lines: []internal.OrderLine{
		{Product: "Widget", SKU: "SKU1", Amount: 3},
		{Product: "Gadget", SKU: "SKU2", Amount: 2},
	}}

	res, err := NewEngine(render.New()).BuildInvoiceDocument([]internal.Order{order}, testConfig(), exampleCatalog)
	if err != nil {
		t.Fatal(err)
	}
	got := res.Totals[0]
	if !approx(got.Subtotal, 40) || !approx(got.VATAmount, 8) || !approx(got.Total, 48) {
		t.Fatalf("totals=%+v", got)
	}
}

func TestPreviewDoesNotAdvanceNumber(t *testing.T) {
	cfg := testConfig()
	engine := NewEngine(render.New())
	orders := []internal.Order{{Name: "Alice", Lines: []internal.OrderLine{{SKU: "SKU1", Amount: 1}}}}

	for i := 0; i < 2; i++ {
		res, err := engine.BuildInvoiceDocument(orders, cfg, exampleCatalog)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(res.BaseNumber, "00007") {
			t.Fatalf("run %d base=%s", i, res.BaseNumber)
		}
	}
	if cfg.Invoice.NextNumber != 7 {
		t.Fatalf("config mutated: %d", cfg.Invoice.NextNumber)
	}
}

func TestBuildRejectsEmptyBatch(t *testing.T) {
	_, err := NewEngine(render.New()).BuildInvoiceDocument(nil, testConfig(), nil)
	if !errors.Is(err, ErrNoOrders) {
		t.Fatalf("err=%v", err)
	}
}

func TestRenderErrorPropagates(t *testing.T) {
	orders := []internal.Order{{Name: "Alice"}}
	res, err := NewEngine(failingRenderer{}).BuildInvoiceDocument(orders, testConfig(), nil)
	if err == nil || err.Error() != "disk full" {
		t.Fatalf("err=%v", err)
	}
	if res.Bytes != nil {
		t.Fatal("bytes on failure")
	}
}

func TestLogoHandling(t *testing.T) {
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 200, 80))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	good := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(good, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	broken := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(broken, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	gif := filepath.Join(dir, "logo.gif")
	if err := os.WriteFile(gif, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	logo := loadLogo(good)
	if logo == nil || logo.Width != 200 || logo.Height != 80 || logo.Format != "png" {
		t.Fatalf("logo=%+v", logo)
	}
	for _, p := range []string{"", broken, gif, filepath.Join(dir, "missing.png")} {
		if loadLogo(p) != nil {
			t.Fatalf("expected no logo for %q", p)
		}
	}

	cfg := testConfig()
	cfg.Sender.LogoPath = broken
	orders := []internal.Order{{Name: "Alice", Lines: []internal.OrderLine{{SKU: "SKU1", Amount: 1}}}}
	if _, err := NewEngine(render.New()).BuildInvoiceDocument(orders, cfg, exampleCatalog); err != nil {
		t.Fatalf("broken logo should be ignored: %v", err)
	}

	cfg.Sender.LogoPath = good
	res, err := NewEngine(render.New()).BuildInvoiceDocument(orders, cfg, exampleCatalog)
	if err != nil {
		t.Fatal(err)
	}
	if res.Document.Pages[0].Rows[0].Cells[1].Image == nil {
		t.Fatal("logo not placed")
	}
}
