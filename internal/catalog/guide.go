package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"proforma/internal"
	"proforma/internal/packlist"
	"proforma/internal/util"
)

var ErrUnsupportedGuide = errors.New("unsupported sku guide format")

const (
	colID = iota
	colGTIN
	colTitle
	colBatch
	colPrice
	colBBD
	colArticleNo
)

// ParseGuide reads a delimited SKU guide: id; gtin; title; batch; price; bbd; articleNo.
func ParseGuide(raw string) []internal.CatalogProduct {
	return guideFromRows(packlist.ParseRows(raw))
}

func guideFromRows(rows [][]string) []internal.CatalogProduct {
	out := make([]internal.CatalogProduct, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		id := packlist.Field(row, colID)
		if id == "" {
			continue
		}
		p := internal.CatalogProduct{
			ID:        id,
			GTIN:      packlist.Field(row, colGTIN),
			Title:     packlist.Field(row, colTitle),
			Batch:     packlist.Field(row, colBatch),
			BBD:       packlist.Field(row, colBBD),
			ArticleNo: packlist.Field(row, colArticleNo),
		}
		if v, ok := util.ParseDecimal(packlist.Field(row, colPrice)); ok {
			p.Price = util.FloatPtr(v)
		}
		out = append(out, p)
	}
	return out
}

// ParseGuideJSON reads a JSON array of guide entries. Anything other than an
// array yields an empty guide.
func ParseGuideJSON(content []byte) ([]internal.CatalogProduct, error) {
	var raw any
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parse sku guide json: %w", err)
	}
	items, ok := raw.([]any)
	if !ok {
		return []internal.CatalogProduct{}, nil
	}
	out := make([]internal.CatalogProduct, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if p, ok := productFromMap(m); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// ParseGuideXLSX reads the first sheet of a workbook with the delimited column order.
func ParseGuideXLSX(content []byte) ([]internal.CatalogProduct, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []internal.CatalogProduct{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		data = append(data, row)
	}
	if len(data) < 2 {
		return []internal.CatalogProduct{}, nil
	}
	return guideFromRows(data[1:]), nil
}

// ReadGuideFile loads a guide by file extension. A missing file is an empty guide.
func ReadGuideFile(path string) ([]internal.CatalogProduct, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return []internal.CatalogProduct{}, nil
	}
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseGuideJSON(content)
	case ".xlsx":
		return ParseGuideXLSX(content)
	case ".csv", ".txt", ".tsv", "":
		return ParseGuide(packlist.Decode(content)), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGuide, filepath.Ext(path))
	}
}

func productFromMap(m map[string]any) (internal.CatalogProduct, bool) {
	id := strings.TrimSpace(anyString(m["id"]))
	if id == "" {
		return internal.CatalogProduct{}, false
	}
	p := internal.CatalogProduct{
		ID:        id,
		GTIN:      strings.TrimSpace(anyString(m["gtin"])),
		Title:     strings.TrimSpace(anyString(m["title"])),
		Batch:     strings.TrimSpace(anyString(m["batch"])),
		BBD:       strings.TrimSpace(anyString(m["bbd"])),
		ArticleNo: strings.TrimSpace(anyString(m["articleNo"])),
		Brand:     strings.TrimSpace(anyString(m["brand"])),
	}
	p.Price = anyFloatPtr(m["price"])
	return p, true
}

func anyString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func anyFloatPtr(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return &f
		}
	case string:
		if f, ok := util.ParseDecimal(t); ok {
			return &f
		}
	}
	return nil
}
