package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"feedsync/internal/models"
)

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Soft organic cotton tee.",
		StripHTML("<p>Soft organic <strong>cotton</strong> tee.</p>"))
	assert.Equal(t, "Fish & Chips", StripHTML("Fish &amp; Chips"))
	assert.Equal(t, "one two", StripHTML("one\n\n  two"))
	assert.Equal(t, "", StripHTML(nil))
	assert.Equal(t, "", StripHTML(""))
}

func TestCleanVariationTitle(t *testing.T) {
	variation := map[string]interface{}{"parent_id": float64(12)}

	assert.Equal(t, "Hoodie - Red, M",
		CleanVariationTitle("Hoodie - Hoodie - Red, M", variation))

	// Fewer than three segments passes through.
	assert.Equal(t, "Hoodie - Hoodie",
		CleanVariationTitle("Hoodie - Hoodie", variation))

	// First two segments must match exactly.
	assert.Equal(t, "Hoodie - Jacket - Red",
		CleanVariationTitle("Hoodie - Jacket - Red", variation))

	// Only variations are touched.
	standalone := map[string]interface{}{"parent_id": float64(0)}
	assert.Equal(t, "Hoodie - Hoodie - Red",
		CleanVariationTitle("Hoodie - Hoodie - Red", standalone))

	// The variant part keeps its own dashes.
	assert.Equal(t, "Hoodie - Red - M",
		CleanVariationTitle("Hoodie - Hoodie - Red - M", variation))
}

func TestGroupTitle(t *testing.T) {
	variation := map[string]interface{}{"parent_id": float64(12)}

	assert.Equal(t, "Hoodie", GroupTitle("Hoodie - Hoodie - Red, M", variation))
	assert.Equal(t, "Hoodie", GroupTitle("Hoodie - Red", variation))
	assert.Equal(t, "Hoodie", GroupTitle("Hoodie", variation))

	standalone := map[string]interface{}{}
	assert.Equal(t, "Hoodie - Red", GroupTitle("Hoodie - Red", standalone))
}

func TestCategoryPath(t *testing.T) {
	raw := map[string]interface{}{
		"categories": []interface{}{
			map[string]interface{}{"name": "Apparel"},
			map[string]interface{}{"name": "Shirts"},
			map[string]interface{}{"name": "T-Shirts"},
		},
	}
	assert.Equal(t, "Apparel > Shirts > T-Shirts", CategoryPath(raw))

	assert.Nil(t, CategoryPath(map[string]interface{}{}))
	assert.Nil(t, CategoryPath(map[string]interface{}{"categories": []interface{}{}}))
}

func TestStableID(t *testing.T) {
	assert.Equal(t, "shop1-1042-TSHIRT-RED-M",
		StableID(map[string]interface{}{"id": float64(1042), "sku": "TSHIRT-RED-M"}, "shop1"))
	assert.Equal(t, "shop1-1042",
		StableID(map[string]interface{}{"id": float64(1042)}, "shop1"))
	assert.Nil(t, StableID(map[string]interface{}{}, "shop1"))
}

func TestGroupID(t *testing.T) {
	variation := map[string]interface{}{"id": float64(99), "parent_id": float64(12), "sku": "X"}
	assert.Equal(t, "shop1-12", GroupID(variation, "shop1"))

	standalone := map[string]interface{}{"id": float64(99), "sku": "X"}
	assert.Equal(t, "shop1-99-X", GroupID(standalone, "shop1"))
}

func TestOfferID(t *testing.T) {
	raw := map[string]interface{}{"id": float64(1042), "sku": "TSHIRT"}

	assert.Equal(t, "TSHIRT", OfferID(raw, nil))
	assert.Equal(t, "TSHIRT-Red-M",
		OfferID(raw, map[string]interface{}{"color": "Red", "size": "M"}))
	assert.Equal(t, "TSHIRT-M",
		OfferID(raw, map[string]interface{}{"size": "M"}))

	noSKU := map[string]interface{}{"id": float64(1042)}
	assert.Equal(t, "prod-1042", OfferID(noSKU, nil))

	assert.Nil(t, OfferID(map[string]interface{}{}, nil))
}

func TestWithUnit(t *testing.T) {
	assert.Equal(t, "24.99 USD", WithUnit("24.99", "USD"))
	assert.Equal(t, "0.3 kg", WithUnit(" 0.3 ", "kg"))
	assert.Equal(t, "0.3", WithUnit("0.3", ""))
	assert.Nil(t, WithUnit("", "USD"))
	assert.Nil(t, WithUnit(nil, "USD"))
}

func TestSaleDateRange(t *testing.T) {
	raw := map[string]interface{}{
		"date_on_sale_from": "2026-03-01T00:00:00",
		"date_on_sale_to":   "2026-03-14T23:59:59",
	}
	assert.Equal(t, "2026-03-01T00:00:00Z/2026-03-14T23:59:59Z", SaleDateRange(raw))

	startOnly := map[string]interface{}{"date_on_sale_from": "2026-03-01"}
	assert.Equal(t, "2026-03-01T00:00:00Z", SaleDateRange(startOnly))

	assert.Nil(t, SaleDateRange(map[string]interface{}{}))
	assert.Nil(t, SaleDateRange(map[string]interface{}{"date_on_sale_to": "2026-03-14"}))
}

func TestStockStatus(t *testing.T) {
	assert.Equal(t, "in_stock", StockStatus("instock"))
	assert.Equal(t, "out_of_stock", StockStatus("outofstock"))
	assert.Equal(t, "preorder", StockStatus("onbackorder"))
	assert.Nil(t, StockStatus("discontinued"))
	assert.Nil(t, StockStatus(nil))
}

func TestGTIN(t *testing.T) {
	// Mapped value wins when it is a plausible barcode.
	assert.Equal(t, "00012345678905", GTIN("00012345678905", map[string]interface{}{}))

	// Meta keys are checked in fallback order.
	raw := map[string]interface{}{
		"meta_data": []interface{}{
			map[string]interface{}{"key": "_ean", "value": "4006381333931"},
			map[string]interface{}{"key": "_gtin", "value": "00012345678905"},
		},
	}
	assert.Equal(t, "00012345678905", GTIN(nil, raw))

	// A retail-length numeric SKU counts as a last resort.
	skuOnly := map[string]interface{}{"sku": "4006381333931"}
	assert.Equal(t, "4006381333931", GTIN(nil, skuOnly))

	// Short or non-numeric candidates never pass.
	assert.Nil(t, GTIN("1234567", map[string]interface{}{}))
	assert.Nil(t, GTIN(nil, map[string]interface{}{"sku": "TSHIRT-RED-M"}))
	assert.Nil(t, GTIN(nil, map[string]interface{}{"sku": "12345678"}))
}

func TestBrand(t *testing.T) {
	assert.Equal(t, "Acme", Brand("Acme", map[string]interface{}{}))

	meta := map[string]interface{}{
		"meta_data": []interface{}{
			map[string]interface{}{"key": "_brand", "value": "Acme Meta"},
		},
	}
	assert.Equal(t, "Acme Meta", Brand(nil, meta))

	attr := map[string]interface{}{
		"attributes": []interface{}{
			map[string]interface{}{"name": "Brand", "options": []interface{}{"Acme Attr"}},
		},
	}
	assert.Equal(t, "Acme Attr", Brand(nil, attr))

	taxonomy := map[string]interface{}{
		"brands": []interface{}{
			map[string]interface{}{"name": "Acme Taxonomy"},
		},
	}
	assert.Equal(t, "Acme Taxonomy", Brand(nil, taxonomy))

	assert.Nil(t, Brand(nil, map[string]interface{}{}))
}

func TestCustomVariantAttribute(t *testing.T) {
	raw := map[string]interface{}{
		"attributes": []interface{}{
			map[string]interface{}{"name": "Color", "option": "Red"},
			map[string]interface{}{"name": "Neckline", "option": "Crew"},
			map[string]interface{}{"name": "Size", "option": "M"},
			map[string]interface{}{"name": "Sleeve", "options": []interface{}{"Short"}},
		},
	}

	assert.Equal(t, "Crew", CustomVariantAttribute(raw, 0))
	assert.Equal(t, "Short", CustomVariantAttribute(raw, 1))
	assert.Nil(t, CustomVariantAttribute(raw, 2))
	assert.Nil(t, CustomVariantAttribute(map[string]interface{}{}, 0))
}

func TestDefaultTo(t *testing.T) {
	assert.Equal(t, "new", DefaultTo(nil, "new"))
	assert.Equal(t, "new", DefaultTo("", "new"))
	assert.Equal(t, "refurbished", DefaultTo("refurbished", "new"))
	assert.Equal(t, 0, DefaultTo(nil, 0))
}

func TestAdditionalImages(t *testing.T) {
	raw := map[string]interface{}{
		"images": []interface{}{
			map[string]interface{}{"src": "https://cdn.example.com/1.jpg"},
			map[string]interface{}{"src": "https://cdn.example.com/2.jpg"},
			map[string]interface{}{"src": "https://cdn.example.com/3.jpg"},
		},
	}
	assert.Equal(t, "https://cdn.example.com/2.jpg, https://cdn.example.com/3.jpg",
		AdditionalImages(raw))

	single := map[string]interface{}{
		"images": []interface{}{
			map[string]interface{}{"src": "https://cdn.example.com/1.jpg"},
		},
	}
	assert.Nil(t, AdditionalImages(single))
	assert.Nil(t, AdditionalImages(map[string]interface{}{}))
}

func TestApplyDispatch(t *testing.T) {
	ctx := Context{
		ShopID:   "shop1",
		Settings: models.ShopSettings{Currency: "EUR"},
	}

	assert.Equal(t, "19.99 EUR", Apply(KindPriceWithCurrency, "19.99", nil, ctx))
	assert.Equal(t, "passthrough", Apply(KindNone, "passthrough", nil, ctx))
	assert.Equal(t, "passthrough", Apply(Kind("unknown"), "passthrough", nil, ctx))
}
