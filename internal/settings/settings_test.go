package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"proforma/internal"
)

func TestNumberDecoding(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{`12.5`, 12.5},
		{`"12,5"`, 12.5},
		{`"7"`, 7},
		{`null`, 0},
		{`"abc"`, 0},
		{`true`, 0},
		{`{}`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			var v struct {
				N Number `json:"n"`
			}
			if err := json.Unmarshal([]byte(`{"n":`+tc.in+`}`), &v); err != nil {
				t.Fatal(err)
			}
			if v.N.Float() != tc.want {
				t.Fatalf("got=%v want=%v", v.N, tc.want)
			}
		})
	}
}

func TestMigrateLegacyBlocks(t *testing.T) {
	s := Defaults()
	s.Company = &internal.SenderProfile{Name: "Acme GmbH"}
	s.Buyer = &internal.ReceiverProfile{Name: "Globex"}

	out := Migrate(s)
	if len(out.SenderProfiles) != 1 || len(out.ReceiverProfiles) != 1 {
		t.Fatalf("senders=%d receivers=%d", len(out.SenderProfiles), len(out.ReceiverProfiles))
	}
	if !strings.HasPrefix(out.ActiveSenderID, "sender-") || out.SenderProfiles[0].ID != out.ActiveSenderID {
		t.Fatalf("active sender=%q", out.ActiveSenderID)
	}
	if !strings.HasPrefix(out.ActiveReceiverID, "receiver-") {
		t.Fatalf("active receiver=%q", out.ActiveReceiverID)
	}

	again := Migrate(out)
	if len(again.SenderProfiles) != 1 || again.ActiveSenderID != out.ActiveSenderID {
		t.Fatalf("migration not stable: %+v", again.SenderProfiles)
	}
}

func TestMigrateSkipsEmptyBuyer(t *testing.T) {
	s := Defaults()
	s.Buyer = &internal.ReceiverProfile{}
	out := Migrate(s)
	if len(out.ReceiverProfiles) != 0 {
		t.Fatalf("receivers=%d", len(out.ReceiverProfiles))
	}
}

func TestActiveProfileFallback(t *testing.T) {
	s := Defaults()
	if _, ok := s.ActiveSender(); ok {
		t.Fatal("expected no sender")
	}

	s.SenderProfiles = []internal.SenderProfile{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	p, ok := s.ActiveSender()
	if !ok || p.ID != "a" {
		t.Fatalf("fallback=%+v", p)
	}

	if err := s.SetActiveSender("b"); err != nil {
		t.Fatal(err)
	}
	if p, _ := s.ActiveSender(); p.ID != "b" {
		t.Fatalf("active=%+v", p)
	}
	if err := s.SetActiveSender("zzz"); err != ErrProfileNotFound {
		t.Fatalf("err=%v", err)
	}

	s.ActiveSenderID = "gone"
	if p, _ := s.ActiveSender(); p.ID != "a" {
		t.Fatalf("stale id fallback=%+v", p)
	}
}

func TestToInvoiceConfigSnapshot(t *testing.T) {
	s := Defaults()
	s.Prices["SKU-1"] = 10
	s.InStock["SKU-2"] = false
	price := Number(3.5)
	s.CustomProducts["SKU-3"] = CustomProduct{Title: "Custom", Price: &price}
	s.Invoice.PaymentTerms = "Net 14"

	next := 42
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cfg := s.ToInvoiceConfig(InvoiceOverrides{Currency: "USD", NextNumber: &next, PaymentTerms: "  "}, now)

	s.Prices["SKU-1"] = 99
	s.InStock["SKU-2"] = true

	if cfg.Prices["SKU-1"] != 10 {
		t.Fatalf("price leaked: %v", cfg.Prices["SKU-1"])
	}
	if stock, ok := cfg.InStock["SKU-2"]; !ok || stock {
		t.Fatalf("stock leaked: %v %v", stock, ok)
	}
	if cp := cfg.CustomProducts["SKU-3"]; cp.Price == nil || *cp.Price != 3.5 {
		t.Fatalf("custom=%+v", cp)
	}
	if cfg.Invoice.Currency != "USD" || cfg.Invoice.NextNumber != 42 {
		t.Fatalf("overrides=%+v", cfg.Invoice)
	}
	if cfg.Invoice.PaymentTerms != "Net 14" {
		t.Fatalf("blank override replaced terms: %q", cfg.Invoice.PaymentTerms)
	}
	if cfg.Tax.VATRatePercent != 20 || cfg.Shipping.Mode != "fixed" {
		t.Fatalf("tax=%+v shipping=%+v", cfg.Tax, cfg.Shipping)
	}
	if !cfg.Now.Equal(now) {
		t.Fatalf("now=%v", cfg.Now)
	}
}

func TestStoreMissingFileGivesDefaults(t *testing.T) {
	st := NewStore(filepath.Join(t.TempDir(), "settings.json"), "")
	s, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.Invoice.Prefix != "INV" || s.Invoice.NextNumber != 1 || s.Invoice.Currency != "EUR" {
		t.Fatalf("defaults=%+v", s.Invoice)
	}
}

func TestStoreBadJSONGivesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewStore(path, "").Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.Invoice.Prefix != "INV" {
		t.Fatalf("prefix=%q", s.Invoice.Prefix)
	}
}

func TestStorePartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	blob := `{"invoice":{"prefix":"PF","nextNumber":"12"},"company":{"name":"Acme"}}`
	if err := os.WriteFile(path, []byte(blob), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewStore(path, "").Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.Invoice.Prefix != "PF" || s.Invoice.NextNumber != 12 {
		t.Fatalf("invoice=%+v", s.Invoice)
	}
	if s.Invoice.Currency != "EUR" || s.Tax.VATRatePercent != 20 {
		t.Fatalf("defaults lost: %+v %+v", s.Invoice, s.Tax)
	}
	if p, ok := s.ActiveSender(); !ok || p.Name != "Acme" {
		t.Fatalf("sender=%+v", p)
	}
}

func TestStoreSaveAndReset(t *testing.T) {
	dir := t.TempDir()
	defPath := filepath.Join(dir, "default.json")
	if err := os.WriteFile(defPath, []byte(`{"invoice":{"prefix":"DEF","nextNumber":5}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	st := NewStore(filepath.Join(dir, "settings.json"), defPath)

	s, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	s.Invoice.Prefix = "OWN"
	saved, err := st.Save(s)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Invoice.Prefix != "OWN" {
		t.Fatalf("saved=%+v", saved.Invoice)
	}

	reset, err := st.Reset()
	if err != nil {
		t.Fatal(err)
	}
	if reset.Invoice.Prefix != "DEF" || reset.Invoice.NextNumber != 5 {
		t.Fatalf("reset=%+v", reset.Invoice)
	}
}

func TestStoreImportExport(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(filepath.Join(dir, "settings.json"), "")

	s := Defaults()
	s.Invoice.Prefix = "EXP"
	out := filepath.Join(dir, "export.json")
	if err := st.Export(out, s); err != nil {
		t.Fatal(err)
	}

	imported, err := st.Import(out)
	if err != nil {
		t.Fatal(err)
	}
	if imported.Invoice.Prefix != "EXP" {
		t.Fatalf("imported=%+v", imported.Invoice)
	}
	loaded, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Invoice.Prefix != "EXP" {
		t.Fatalf("loaded=%+v", loaded.Invoice)
	}

	if _, err := st.Import(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCommitGenerationPrependsHistory(t *testing.T) {
	st := NewStore(filepath.Join(t.TempDir(), "settings.json"), "")

	if _, err := st.CommitGeneration(2, internal.HistoryRecord{InvoiceNumber: "INV-2026-00001"}); err != nil {
		t.Fatal(err)
	}
	s, err := st.CommitGeneration(3, internal.HistoryRecord{InvoiceNumber: "INV-2026-00002"})
	if err != nil {
		t.Fatal(err)
	}
	if s.Invoice.NextNumber != 3 {
		t.Fatalf("next=%v", s.Invoice.NextNumber)
	}
	if len(s.InvoiceHistory) != 2 || s.InvoiceHistory[0].InvoiceNumber != "INV-2026-00002" {
		t.Fatalf("history=%+v", s.InvoiceHistory)
	}
}
