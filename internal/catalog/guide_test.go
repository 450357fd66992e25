package catalog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func mkXLSX(rows [][]any) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	buf := bytes.NewBuffer(nil)
	_, _ = f.WriteTo(buf)
	return buf.Bytes()
}

func TestParseGuide(t *testing.T) {
	raw := "id;gtin;title;batch;price;bbd;articleNo\n" +
		"SKU1;4000000000001;Acme Widget;L1;12,50;2027-03-01;A-1\n" +
		"SKU2;4000000000002;Globex Gadget\n" +
		"SKU3;;;;n/a\n" +
		";4000000000004;No id\n" +
		"lonely\n"

	products := ParseGuide(raw)
	if len(products) != 3 {
		t.Fatalf("len=%d", len(products))
	}
	first := products[0]
	if first.Price == nil || *first.Price != 12.5 || first.BBD != "2027-03-01" || first.ArticleNo != "A-1" || first.Batch != "L1" {
		t.Fatalf("first=%+v", first)
	}
	if products[1].Price != nil || products[1].Batch != "" {
		t.Fatalf("second=%+v", products[1])
	}
	if products[2].Price != nil {
		t.Fatalf("third price=%v", *products[2].Price)
	}
}

func TestParseGuideJSON(t *testing.T) {
	content := []byte(`[
		{"id": "SKU1", "gtin": "4000000000001", "title": "Acme Widget", "price": 10},
		{"id": "SKU2", "title": "Globex Gadget", "price": "7,25", "brand": "Globex"},
		{"id": 42, "title": "Numeric id"},
		{"title": "missing id"},
		"garbage"
	]`)

	products, err := ParseGuideJSON(content)
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 3 {
		t.Fatalf("len=%d", len(products))
	}
	if products[0].Price == nil || *products[0].Price != 10 {
		t.Fatalf("price=%v", products[0].Price)
	}
	if products[1].Price == nil || *products[1].Price != 7.25 || products[1].Brand != "Globex" {
		t.Fatalf("second=%+v", products[1])
	}
	if products[2].ID != "42" {
		t.Fatalf("id=%q", products[2].ID)
	}

	notArray, err := ParseGuideJSON([]byte(`{"products": []}`))
	if err != nil || len(notArray) != 0 {
		t.Fatalf("not array: %v %d", err, len(notArray))
	}
	if _, err := ParseGuideJSON([]byte(`{`)); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseGuideXLSX(t *testing.T) {
	blob := mkXLSX([][]any{
		{"id", "gtin", "title", "batch", "price"},
		{"SKU1", "4000000000001", "Acme Widget", "", 9.5},
		{"SKU2", "4000000000002", "Globex Gadget"},
	})
	products, err := ParseGuideXLSX(blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 2 {
		t.Fatalf("len=%d", len(products))
	}
	if products[0].Price == nil || *products[0].Price != 9.5 {
		t.Fatalf("price=%v", products[0].Price)
	}
}

func TestReadGuideFile(t *testing.T) {
	dir := t.TempDir()

	missing, err := ReadGuideFile(filepath.Join(dir, "nope.json"))
	if err != nil || len(missing) != 0 {
		t.Fatalf("missing: %v %d", err, len(missing))
	}

	csvPath := filepath.Join(dir, "guide.csv")
	if err := os.WriteFile(csvPath, []byte("id;gtin;title\nSKU1;1;Acme Widget\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	products, err := ReadGuideFile(csvPath)
	if err != nil || len(products) != 1 {
		t.Fatalf("csv: %v %d", err, len(products))
	}

	odsPath := filepath.Join(dir, "guide.ods")
	if err := os.WriteFile(odsPath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadGuideFile(odsPath); !errors.Is(err, ErrUnsupportedGuide) {
		t.Fatalf("err=%v", err)
	}
}
