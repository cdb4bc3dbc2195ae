// Package transform converts extracted WooCommerce values into target feed
// values. Every transform is pure and total: nil or malformed input yields a
// safe nil/empty result, never a panic.
package transform

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"

	"feedsync/internal/models"
)

// Kind identifies one transform. The set is closed; dispatch happens in
// Apply so an unhandled kind is a compile-visible gap, not a silent
// string-table miss.
type Kind string

const (
	KindNone                  Kind = ""
	KindStripHTML             Kind = "strip_html"
	KindCleanVariationTitle   Kind = "clean_variation_title"
	KindCategoryPath          Kind = "category_path"
	KindStableID              Kind = "stable_id"
	KindGroupID               Kind = "group_id"
	KindGroupTitle            Kind = "group_title"
	KindOfferID               Kind = "offer_id"
	KindPriceWithCurrency     Kind = "price_with_currency"
	KindSaleDateRange         Kind = "sale_date_range"
	KindDimensionUnit         Kind = "dimension_unit"
	KindWeightUnit            Kind = "weight_unit"
	KindStockStatus           Kind = "stock_status"
	KindGTIN                  Kind = "gtin"
	KindBrand                 Kind = "brand"
	KindFirstCustomAttribute  Kind = "first_custom_attribute"
	KindSecondCustomAttribute Kind = "second_custom_attribute"
	KindAdditionalImages      Kind = "additional_images"
	KindDefaultNew            Kind = "default_new"
	KindDefaultZero           Kind = "default_zero"
)

// Context carries the shop-scoped inputs transforms need beyond the raw
// document. Resolved exposes attribute values the auto-fill engine has
// already settled (the offer ID reads color and size from it).
type Context struct {
	ShopID   string
	Settings models.ShopSettings
	Resolved map[string]interface{}
}

// Apply dispatches one transform. Unknown kinds pass the value through
// unchanged.
func Apply(kind Kind, value interface{}, raw map[string]interface{}, ctx Context) interface{} {
	switch kind {
	case KindNone:
		return value
	case KindStripHTML:
		return StripHTML(value)
	case KindCleanVariationTitle:
		return CleanVariationTitle(cast.ToString(value), raw)
	case KindCategoryPath:
		return CategoryPath(raw)
	case KindStableID:
		return StableID(raw, ctx.ShopID)
	case KindGroupID:
		return GroupID(raw, ctx.ShopID)
	case KindGroupTitle:
		return GroupTitle(cast.ToString(value), raw)
	case KindOfferID:
		return OfferID(raw, ctx.Resolved)
	case KindPriceWithCurrency:
		return WithUnit(value, ctx.Settings.Currency)
	case KindSaleDateRange:
		return SaleDateRange(raw)
	case KindDimensionUnit:
		return WithUnit(value, ctx.Settings.DimensionUnit)
	case KindWeightUnit:
		return WithUnit(value, ctx.Settings.WeightUnit)
	case KindStockStatus:
		return StockStatus(value)
	case KindGTIN:
		return GTIN(value, raw)
	case KindBrand:
		return Brand(value, raw)
	case KindFirstCustomAttribute:
		return CustomVariantAttribute(raw, 0)
	case KindSecondCustomAttribute:
		return CustomVariantAttribute(raw, 1)
	case KindAdditionalImages:
		return AdditionalImages(raw)
	case KindDefaultNew:
		return DefaultTo(value, "new")
	case KindDefaultZero:
		return DefaultTo(value, 0)
	default:
		return value
	}
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripHTML removes markup and collapses whitespace. Nil in, empty string
// out.
func StripHTML(value interface{}) string {
	s := cast.ToString(value)
	if s == "" {
		return ""
	}
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// CleanVariationTitle collapses WooCommerce's duplicated variation titles of
// the shape "<Parent> - <Parent> - <variant>" down to "<Parent> - <variant>".
// It only fires for variations (a parent id is present) when the first two
// dash segments match exactly; anything else passes through unchanged.
func CleanVariationTitle(title string, raw map[string]interface{}) string {
	if parentID(raw) <= 0 {
		return title
	}
	segments := strings.Split(title, " - ")
	if len(segments) < 3 || segments[0] != segments[1] {
		return title
	}
	return strings.Join(append(segments[:1], segments[2:]...), " - ")
}

// GroupTitle derives the variant family's display title: the parent portion
// of a variation title, or the title itself for standalone products.
func GroupTitle(title string, raw map[string]interface{}) string {
	if parentID(raw) <= 0 {
		return title
	}
	cleaned := CleanVariationTitle(title, raw)
	if base, _, found := strings.Cut(cleaned, " - "); found {
		return base
	}
	return cleaned
}

// CategoryPath joins the product's category names into a '>'-delimited
// hierarchy string.
func CategoryPath(raw map[string]interface{}) interface{} {
	entries, ok := raw["categories"].([]interface{})
	if !ok || len(entries) == 0 {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		cat, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if name := cast.ToString(cat["name"]); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return strings.Join(names, " > ")
}

// StableID builds the feed item identifier: {shopID}-{sourceID} with the SKU
// appended when present.
func StableID(raw map[string]interface{}, shopID string) interface{} {
	sourceID := cast.ToInt64(raw["id"])
	if sourceID <= 0 {
		return nil
	}
	id := fmt.Sprintf("%s-%d", shopID, sourceID)
	if sku := cast.ToString(raw["sku"]); sku != "" {
		id += "-" + sku
	}
	return id
}

// GroupID links a variant family: the parent's stable id when the product
// has a parent, otherwise the product's own.
func GroupID(raw map[string]interface{}, shopID string) interface{} {
	if pid := parentID(raw); pid > 0 {
		return fmt.Sprintf("%s-%d", shopID, pid)
	}
	return StableID(raw, shopID)
}

// OfferID is the seller-scoped offer identifier: the SKU (or a prod-{id}
// fallback) suffixed with the resolved color and size when present.
func OfferID(raw map[string]interface{}, resolved map[string]interface{}) interface{} {
	base := cast.ToString(raw["sku"])
	if base == "" {
		sourceID := cast.ToInt64(raw["id"])
		if sourceID <= 0 {
			return nil
		}
		base = fmt.Sprintf("prod-%d", sourceID)
	}
	for _, axis := range []string{"color", "size"} {
		if v := cast.ToString(resolved[axis]); v != "" {
			base += "-" + v
		}
	}
	return base
}

// WithUnit appends a unit or currency code to a bare numeric string. A
// missing number yields nil; no unit gets appended to nothing.
func WithUnit(value interface{}, unit string) interface{} {
	s := strings.TrimSpace(cast.ToString(value))
	if s == "" {
		return nil
	}
	if unit == "" {
		return s
	}
	return s + " " + unit
}

var saleDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// SaleDateRange formats the sale window as "start/end" in ISO8601, or just
// the start when no end date is set. No start date yields nil.
func SaleDateRange(raw map[string]interface{}) interface{} {
	from := isoDate(raw["date_on_sale_from"])
	if from == "" {
		return nil
	}
	if to := isoDate(raw["date_on_sale_to"]); to != "" {
		return from + "/" + to
	}
	return from
}

func isoDate(value interface{}) string {
	s := cast.ToString(value)
	if s == "" {
		return ""
	}
	for _, layout := range saleDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return ""
}

// StockStatus maps WooCommerce stock vocabulary onto the target feed's.
// Unknown vocabulary resolves to nil rather than guessing.
func StockStatus(value interface{}) interface{} {
	switch cast.ToString(value) {
	case "instock":
		return "in_stock"
	case "outofstock":
		return "out_of_stock"
	case "onbackorder":
		return "preorder"
	default:
		return nil
	}
}

// DefaultTo substitutes a constant for a missing value.
func DefaultTo(value interface{}, fallback interface{}) interface{} {
	if value == nil || cast.ToString(value) == "" {
		return fallback
	}
	return value
}

// AdditionalImages joins every image URL after the primary one.
func AdditionalImages(raw map[string]interface{}) interface{} {
	entries, ok := raw["images"].([]interface{})
	if !ok || len(entries) < 2 {
		return nil
	}
	urls := make([]string, 0, len(entries)-1)
	for _, entry := range entries[1:] {
		img, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if src := cast.ToString(img["src"]); src != "" {
			urls = append(urls, src)
		}
	}
	if len(urls) == 0 {
		return nil
	}
	return strings.Join(urls, ", ")
}

func parentID(raw map[string]interface{}) int64 {
	if raw == nil {
		return 0
	}
	return cast.ToInt64(raw["parent_id"])
}
