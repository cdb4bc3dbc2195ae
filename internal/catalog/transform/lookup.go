package transform

import (
	"strings"

	"github.com/spf13/cast"
)

// gtinMetaKeys are the meta_data keys checked for a barcode, in fallback
// order. Covers stock WooCommerce 9.2+ (_global_unique_id) and the common
// barcode plugins.
var gtinMetaKeys = []string{
	"_global_unique_id",
	"_gtin",
	"_wpm_gtin_code",
	"_ean",
	"_upc",
}

// GTIN resolves a barcode: the mapped value when it already looks like a
// GTIN, then the known meta_data keys, then the SKU as a last resort. Any
// candidate must be 8-14 digits to count.
func GTIN(value interface{}, raw map[string]interface{}) interface{} {
	if gtin := validGTIN(cast.ToString(value)); gtin != "" {
		return gtin
	}
	for _, key := range gtinMetaKeys {
		if gtin := validGTIN(metaValue(raw, key)); gtin != "" {
			return gtin
		}
	}
	// SKUs are frequently barcodes in practice, but only the retail lengths
	// are trustworthy.
	if sku := cast.ToString(raw["sku"]); len(sku) >= 12 && len(sku) <= 14 {
		if gtin := validGTIN(sku); gtin != "" {
			return gtin
		}
	}
	return nil
}

func validGTIN(candidate string) string {
	if len(candidate) < 8 || len(candidate) > 14 {
		return ""
	}
	for _, ch := range candidate {
		if ch < '0' || ch > '9' {
			return ""
		}
	}
	return candidate
}

// Brand resolves the brand name: mapped value, brand meta keys, a Brand
// product attribute, then the WooCommerce brands taxonomy.
func Brand(value interface{}, raw map[string]interface{}) interface{} {
	if s := cast.ToString(value); s != "" {
		return s
	}
	for _, key := range []string{"_brand", "brand"} {
		if s := metaValue(raw, key); s != "" {
			return s
		}
	}
	if s := attributeValue(raw, "Brand"); s != "" {
		return s
	}
	if entries, ok := raw["brands"].([]interface{}); ok && len(entries) > 0 {
		if brand, ok := entries[0].(map[string]interface{}); ok {
			if s := cast.ToString(brand["name"]); s != "" {
				return s
			}
		}
	}
	return nil
}

// standardAxes are the attribute names with dedicated feed fields; anything
// else is a custom variant axis.
var standardAxes = map[string]bool{
	"color":     true,
	"colour":    true,
	"size":      true,
	"material":  true,
	"brand":     true,
	"age group": true,
}

// CustomVariantAttribute returns the value of the n-th (0-based) product
// attribute that has no dedicated feed field.
func CustomVariantAttribute(raw map[string]interface{}, n int) interface{} {
	entries, ok := raw["attributes"].([]interface{})
	if !ok {
		return nil
	}
	seen := 0
	for _, entry := range entries {
		attr, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		name := cast.ToString(attr["name"])
		if name == "" || standardAxes[strings.ToLower(name)] {
			continue
		}
		if seen == n {
			if v := attributeValue(raw, name); v != "" {
				return v
			}
			return nil
		}
		seen++
	}
	return nil
}

// attributeValue reads one attribute entry by name, handling both the
// variation ("option" scalar) and parent ("options" array) shapes.
func attributeValue(raw map[string]interface{}, name string) string {
	entries, ok := raw["attributes"].([]interface{})
	if !ok {
		return ""
	}
	for _, entry := range entries {
		attr, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if !strings.EqualFold(cast.ToString(attr["name"]), name) {
			continue
		}
		if option := cast.ToString(attr["option"]); option != "" {
			return option
		}
		if options, ok := attr["options"].([]interface{}); ok && len(options) > 0 {
			return cast.ToString(options[0])
		}
		return ""
	}
	return ""
}

func metaValue(raw map[string]interface{}, key string) string {
	entries, ok := raw["meta_data"].([]interface{})
	if !ok {
		return ""
	}
	for _, entry := range entries {
		meta, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if cast.ToString(meta["key"]) == key {
			return cast.ToString(meta["value"])
		}
	}
	return ""
}
