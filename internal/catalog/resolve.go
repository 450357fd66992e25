package catalog

import (
	"regexp"
	"strings"
	"unicode"

	"proforma/internal"
)

var codeLikeTitle = regexp.MustCompile(`(?i)^[A-Z]{2}-[A-Z0-9-]+$`)

// BrandFromTitle guesses a display brand from a product title: the first
// word, shortened to 17 characters plus "..." when longer than 20. Titles
// that look like product codes yield no brand.
func BrandFromTitle(title string) string {
	t := strings.TrimSpace(title)
	if t == "" {
		return ""
	}
	if codeLikeTitle.MatchString(t) || (len([]rune(t)) <= 20 && !strings.ContainsFunc(t, unicode.IsSpace) && strings.ContainsAny(t, "0123456789")) {
		return ""
	}
	first := []rune(strings.Fields(t)[0])
	if len(first) > 20 {
		return string(first[:17]) + "..."
	}
	return string(first)
}

// Resolve merges the base catalog, per-SKU overrides and the price table into
// one lookup keyed by SKU.
func Resolve(products []internal.CatalogProduct, overrides map[string]internal.CustomProduct, prices map[string]float64) map[string]internal.ResolvedProduct {
	out := make(map[string]internal.ResolvedProduct, len(products)+len(overrides))

	for _, p := range products {
		title := p.Title
		if title == "" {
			title = p.ID
		}
		brand := p.Brand
		if brand == "" {
			brand = BrandFromTitle(title)
		}
		price := 0.0
		if v, ok := prices[p.ID]; ok {
			price = v
		} else if p.Price != nil {
			price = *p.Price
		}
		out[p.ID] = internal.ResolvedProduct{
			ID:        p.ID,
			GTIN:      p.GTIN,
			Batch:     p.Batch,
			BBD:       p.BBD,
			ArticleNo: p.ArticleNo,
			Title:     title,
			Brand:     brand,
			Price:     price,
		}
	}

	for id, o := range overrides {
		existing, known := out[id]

		title := nonBlank(o.Title)
		if title == "" {
			title = existing.Title
		}
		if title == "" {
			title = id
		}

		brand := nonBlank(o.Brand)
		if brand == "" {
			brand = BrandFromTitle(title)
		}

		price := 0.0
		switch v, ok := prices[id]; {
		case ok:
			price = v
		case o.Price != nil:
			price = *o.Price
		case known:
			price = existing.Price
		}

		out[id] = internal.ResolvedProduct{
			ID:        id,
			GTIN:      firstSet(o.GTIN, existing.GTIN),
			Batch:     firstSet(o.Batch, existing.Batch),
			BBD:       firstSet(o.BBD, existing.BBD),
			ArticleNo: firstSet(o.ArticleNo, existing.ArticleNo),
			Title:     title,
			Brand:     brand,
			Price:     price,
		}
	}

	return out
}

func nonBlank(v string) string {
	return strings.TrimSpace(v)
}

func firstSet(override, existing string) string {
	if s := strings.TrimSpace(override); s != "" {
		return s
	}
	return existing
}
