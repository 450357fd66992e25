package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"proforma/internal"
	"proforma/internal/config"
	"proforma/internal/invoice"
	"proforma/internal/render"
	"proforma/internal/settings"
	"proforma/internal/storage"
)

type fakeGuides map[string][]internal.CatalogProduct

func (f fakeGuides) FetchGuideURL(_ context.Context, rawURL string) ([]internal.CatalogProduct, error) {
	products, ok := f[rawURL]
	if !ok {
		return nil, errors.New("not found")
	}
	return products, nil
}

const guideCSV = "id;gtin;title;batch;price;bbd;articleNo\n" +
	"SKU1;4001;Acme Widget;;10;;\n" +
	"SKU2;4002;Acme Gadget;;5;;\n"

type harness struct {
	dir   string
	svc   *GenerationService
	store *settings.Store
	db    *storage.DB
	guide string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()

	db, err := storage.Open(filepath.Join(dir, "proforma.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	guide := filepath.Join(dir, "guide.csv")
	if err := os.WriteFile(guide, []byte(guideCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	store := settings.NewStore(filepath.Join(dir, "settings.json"), "")
	if _, err := store.Update(func(s *settings.Settings) error {
		s.ReceiverProfiles = []internal.ReceiverProfile{{ID: "r1", Name: " Globex Ltd "}}
		s.Invoice.NextNumber = 7
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{OutputDir: filepath.Join(dir, "out"), DefaultGuidePath: guide}
	svc := NewGenerationService(cfg, store, db, invoice.NewEngine(render.New()))
	svc.now = func() time.Time { return time.Date(2026, time.January, 30, 9, 0, 0, 0, time.UTC) }
	return &harness{dir: dir, svc: svc, store: store, db: db, guide: guide}
}

func testOrders(t *testing.T) []internal.Order {
	t.Helper()
	p, err := ExtractPacklist("orders.csv", []byte(csvPacklist))
	if err != nil {
		t.Fatal(err)
	}
	return p.Orders
}

func TestGenerateCommits(t *testing.T) {
	h := newHarness(t)
	out, err := h.svc.Generate(context.Background(), GenerateRequest{Orders: testOrders(t)})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Committed || out.BaseNumber != "INV-2026-00007" {
		t.Fatalf("committed=%v base=%s", out.Committed, out.BaseNumber)
	}
	want := filepath.Join(h.dir, "out", "2026-01-30", "INV-2026-00007.pdf")
	if out.Path != want {
		t.Fatalf("path=%s", out.Path)
	}

	info, err := InspectPDFFile(out.Path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Pages != 3 {
		t.Fatalf("pages=%d", info.Pages)
	}

	s, err := h.store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.Invoice.NextNumber != 8 {
		t.Fatalf("next=%v", s.Invoice.NextNumber)
	}
	if len(s.InvoiceHistory) != 1 {
		t.Fatalf("history=%d", len(s.InvoiceHistory))
	}
	rec := s.InvoiceHistory[0]
	if rec.IssuedTo != "Globex Ltd" || rec.OrderCount != 2 || rec.Date != "2026-01-30" || rec.FilePath != want {
		t.Fatalf("record=%+v", rec)
	}

	inv, err := h.db.GetInvoiceByNumber("INV-2026-00007")
	if err != nil {
		t.Fatal(err)
	}
	if inv == nil || inv.OrderCount != 2 || inv.Currency != "EUR" {
		t.Fatalf("ledger=%+v", inv)
	}
	// 3*10 + 2*5 for Alice, 1*10 for Bob, 20% VAT on top.
	if inv.Subtotal != 50 || inv.Total != 60 {
		t.Fatalf("subtotal=%v total=%v", inv.Subtotal, inv.Total)
	}
	orders, err := h.db.ListInvoiceOrders(inv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 || orders[1].SubNumber != "INV-2026-00007/2" || orders[0].LineCount != 2 {
		t.Fatalf("orders=%+v", orders)
	}
}

func TestGeneratePreviewLeavesState(t *testing.T) {
	h := newHarness(t)
	outPath := filepath.Join(h.dir, "preview.pdf")
	out, err := h.svc.Generate(context.Background(), GenerateRequest{Orders: testOrders(t), Preview: true, OutPath: outPath})
	if err != nil {
		t.Fatal(err)
	}
	if out.Committed || out.Record != nil {
		t.Fatal("preview committed")
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Fatal(err)
	}

	s, _ := h.store.Load()
	if s.Invoice.NextNumber != 7 || len(s.InvoiceHistory) != 0 {
		t.Fatalf("next=%v history=%d", s.Invoice.NextNumber, len(s.InvoiceHistory))
	}
	list, _ := h.db.ListInvoices(10)
	if len(list) != 0 {
		t.Fatalf("ledger=%d", len(list))
	}
}

func TestGenerateSequence(t *testing.T) {
	h := newHarness(t)
	for _, want := range []string{"INV-2026-00007", "INV-2026-00008"} {
		out, err := h.svc.Generate(context.Background(), GenerateRequest{Orders: testOrders(t)})
		if err != nil {
			t.Fatal(err)
		}
		if out.BaseNumber != want {
			t.Fatalf("base=%s want=%s", out.BaseNumber, want)
		}
	}
	s, _ := h.store.Load()
	if len(s.InvoiceHistory) != 2 || s.InvoiceHistory[0].InvoiceNumber != "INV-2026-00008" {
		t.Fatalf("history=%+v", s.InvoiceHistory)
	}
}

func TestGenerateNoOrders(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Generate(context.Background(), GenerateRequest{})
	if !errors.Is(err, invoice.ErrNoOrders) {
		t.Fatalf("err=%v", err)
	}
}

func TestLoadGuideSources(t *testing.T) {
	h := newHarness(t)
	h.svc.guides = fakeGuides{"https://guides.test/g.json": {{ID: "REMOTE"}}}
	if err := h.db.UpsertCatalogProducts([]internal.CatalogProduct{{ID: "LOCAL"}}); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	cases := []struct {
		source string
		want   string
	}{
		{"", "SKU1"},
		{filepath.Join(h.dir, "missing.csv"), "SKU1"},
		{"db:", "LOCAL"},
		{"https://guides.test/g.json", "REMOTE"},
		{h.guide, "SKU1"},
	}
	for _, tc := range cases {
		t.Run(tc.source, func(t *testing.T) {
			products, err := h.svc.LoadGuide(ctx, tc.source)
			if err != nil {
				t.Fatal(err)
			}
			if len(products) == 0 || products[0].ID != tc.want {
				t.Fatalf("products=%+v", products)
			}
		})
	}

	if _, err := h.svc.LoadGuide(ctx, "https://guides.test/unknown.json"); err == nil {
		t.Fatal("expected fetch error")
	}
}

func TestDefaultOutputPath(t *testing.T) {
	h := newHarness(t)
	now := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	got := h.svc.DefaultOutputPath("/srv/invoices ", "INV-2026-00001", now)
	if got != filepath.Join("/srv/invoices", "2026-03-02", "INV-2026-00001.pdf") {
		t.Fatalf("got=%s", got)
	}
	got = h.svc.DefaultOutputPath("", "INV-2026-00001", now)
	if !strings.HasPrefix(got, filepath.Join(h.dir, "out")) {
		t.Fatalf("got=%s", got)
	}
}

func TestExportLedger(t *testing.T) {
	h := newHarness(t)
	if _, err := h.svc.Generate(context.Background(), GenerateRequest{Orders: testOrders(t)}); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(h.dir, "ledger.xlsx")
	n, err := ExportLedgerToXLSX(h.db, out, 10)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("n=%d", n)
	}

	blob, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := parseXLSX(blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][0] != "INV-2026-00007" {
		t.Fatalf("rows=%v", rows)
	}
}
