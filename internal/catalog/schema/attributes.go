package schema

import "feedsync/internal/catalog/transform"

// Categories are the display groupings for the completeness breakdown, in
// presentation order.
var Categories = []Category{
	{Key: "enablement", Label: "Enablement", Order: 1},
	{Key: "basic_data", Label: "Basic Data", Order: 2},
	{Key: "media", Label: "Media", Order: 3},
	{Key: "price", Label: "Price & Promotions", Order: 4},
	{Key: "availability", Label: "Availability & Inventory", Order: 5},
	{Key: "variants", Label: "Variants", Order: 6},
	{Key: "measurements", Label: "Measurements", Order: 7},
	{Key: "fulfillment", Label: "Fulfillment", Order: 8},
	{Key: "merchant", Label: "Merchant Info", Order: 9},
	{Key: "returns", Label: "Returns", Order: 10},
	{Key: "performance", Label: "Performance Signals", Order: 11},
	{Key: "compliance", Label: "Compliance", Order: 12},
	{Key: "reviews", Label: "Reviews", Order: 13},
	{Key: "qa", Label: "Q&A", Order: 14},
	{Key: "geo", Label: "Geo Overrides", Order: 15},
}

// Attributes is the full target feed attribute table. Order matters only for
// presentation; the auto-fill output always covers every entry.
var Attributes = []Attribute{
	// Enablement
	{Name: "enable_search", Requirement: Required, Category: "enablement",
		Description: "Whether the item may surface in search results.",
		Example:     "true"},
	{Name: "enable_checkout", Requirement: Required, Category: "enablement",
		Description: "Whether the item supports direct checkout. Always false on this platform.",
		Example:     "false"},

	// Basic data
	{Name: "id", Requirement: Required, Category: "basic_data",
		Description: "Stable item identifier, unique per shop.",
		Example:     "shop1-1042-TSHIRT-RED-M",
		Transform:   transform.KindStableID},
	{Name: "title", Requirement: Required, Category: "basic_data",
		Description: "Item title.",
		Example:     "Organic Cotton T-Shirt - Red, M",
		SourceField: "name",
		Transform:   transform.KindCleanVariationTitle},
	{Name: "description", Requirement: Required, Category: "basic_data",
		Description: "Plain-text item description.",
		Example:     "Soft organic cotton tee with a classic fit.",
		SourceField: "description",
		Transform:   transform.KindStripHTML},
	{Name: "link", Requirement: Required, Category: "basic_data",
		Description: "Canonical product page URL.",
		Example:     "https://shop.example.com/product/organic-tee",
		SourceField: "permalink"},
	{Name: "gtin", Requirement: Conditional, Category: "basic_data",
		Description: "Global trade item number (8-14 digits).",
		Example:     "00012345678905",
		DependsOn:   "required when the product carries a barcode",
		Transform:   transform.KindGTIN},
	{Name: "mpn", Requirement: Recommended, Category: "basic_data",
		Description: "Manufacturer part number.",
		Example:     "TSHIRT-ORG-001",
		SourceField: "sku"},
	{Name: "brand", Requirement: Recommended, Category: "basic_data",
		Description: "Brand name.",
		Example:     "Acme Apparel",
		Transform:   transform.KindBrand},
	{Name: "condition", Requirement: Recommended, Category: "basic_data",
		Description: "Item condition (new, refurbished, used).",
		Example:     "new",
		Transform:   transform.KindDefaultNew},
	{Name: "product_category", Requirement: Recommended, Category: "basic_data",
		Description: "Category hierarchy, '>'-delimited.",
		Example:     "Apparel > Shirts > T-Shirts",
		SourceField: "categories",
		Transform:   transform.KindCategoryPath},
	{Name: "material", Requirement: Optional, Category: "basic_data",
		Description: "Primary material.",
		Example:     "Cotton",
		SourceField: "attributes.Material"},
	{Name: "video_link", Requirement: Optional, Category: "basic_data",
		Description: "Product video URL.",
		Example:     "https://cdn.example.com/video/tee.mp4",
		SourceField: "meta_data._video_url"},
	{Name: "model_3d_link", Requirement: Optional, Category: "basic_data",
		Description: "3D model URL.",
		Example:     "https://cdn.example.com/models/tee.glb",
		SourceField: "meta_data._model_3d_url"},
	{Name: "age_group", Requirement: Optional, Category: "basic_data",
		Description: "Target demographic age group.",
		Example:     "adult",
		SourceField: "attributes.Age Group"},

	// Media
	{Name: "image_link", Requirement: Required, Category: "media",
		Description: "Primary image URL.",
		Example:     "https://cdn.example.com/img/tee-red.jpg",
		SourceField: "images[0].src"},
	{Name: "additional_image_link", Requirement: Recommended, Category: "media",
		Description: "Further image URLs, comma-separated.",
		Example:     "https://cdn.example.com/img/tee-red-back.jpg",
		Transform:   transform.KindAdditionalImages},

	// Price & promotions
	{Name: "price", Requirement: Required, Category: "price",
		Description: "Regular price with currency code.",
		Example:     "24.99 USD",
		SourceField: "regular_price",
		Transform:   transform.KindPriceWithCurrency},
	{Name: "sale_price", Requirement: Recommended, Category: "price",
		Description: "Discounted price with currency code.",
		Example:     "19.99 USD",
		SourceField: "sale_price",
		Transform:   transform.KindPriceWithCurrency},
	{Name: "sale_price_effective_date", Requirement: Conditional, Category: "price",
		Description: "Sale window as ISO8601 start/end.",
		Example:     "2026-03-01T00:00:00Z/2026-03-14T23:59:59Z",
		DependsOn:   "required when sale_price is set",
		Transform:   transform.KindSaleDateRange},
	{Name: "unit_pricing_measure", Requirement: Optional, Category: "price",
		Description: "Measure the price refers to.",
		Example:     "750ml",
		SourceField: "meta_data._unit_pricing_measure"},
	{Name: "base_measure", Requirement: Optional, Category: "price",
		Description: "Denominator for unit pricing.",
		Example:     "100ml",
		SourceField: "meta_data._base_measure"},
	{Name: "pricing_trend", Requirement: Optional, Category: "price",
		Description: "Recent price movement signal.",
		Example:     "stable"},

	// Availability & inventory
	{Name: "availability", Requirement: Required, Category: "availability",
		Description: "Stock state in target vocabulary.",
		Example:     "in_stock",
		SourceField: "stock_status",
		Transform:   transform.KindStockStatus},
	{Name: "availability_date", Requirement: Conditional, Category: "availability",
		Description: "Date a preorder item ships.",
		Example:     "2026-05-01",
		DependsOn:   "required when availability is preorder",
		SourceField: "meta_data._availability_date"},
	{Name: "inventory_quantity", Requirement: Required, Category: "availability",
		Description: "Units on hand.",
		Example:     "25",
		SourceField: "stock_quantity",
		Transform:   transform.KindDefaultZero},
	{Name: "expiration_date", Requirement: Optional, Category: "availability",
		Description: "Date the listing should stop surfacing.",
		Example:     "2026-12-31",
		SourceField: "meta_data._expiration_date"},

	// Variants
	{Name: "item_group_id", Requirement: Conditional, Category: "variants",
		Description: "Shared identifier linking a variant family.",
		Example:     "shop1-1042",
		DependsOn:   "required for variation products",
		Transform:   transform.KindGroupID},
	{Name: "item_group_title", Requirement: Optional, Category: "variants",
		Description: "Display title for the variant family.",
		Example:     "Organic Cotton T-Shirt",
		SourceField: "name",
		Transform:   transform.KindGroupTitle},
	{Name: "color", Requirement: Conditional, Category: "variants",
		Description: "Variant color.",
		Example:     "Red",
		DependsOn:   "required for variation products distinguished by color",
		SourceField: "attributes.Color"},
	{Name: "size", Requirement: Conditional, Category: "variants",
		Description: "Variant size.",
		Example:     "M",
		DependsOn:   "required for variation products distinguished by size",
		SourceField: "attributes.Size"},
	{Name: "size_system", Requirement: Optional, Category: "variants",
		Description: "Sizing standard for the size attribute.",
		Example:     "US",
		SourceField: "meta_data._size_system"},
	{Name: "offer_id", Requirement: Conditional, Category: "variants",
		Description: "Seller-scoped offer identifier.",
		Example:     "TSHIRT-ORG-001-Red-M",
		DependsOn:   "required when checkout is enabled",
		Transform:   transform.KindOfferID},
	{Name: "custom_variant1", Requirement: Optional, Category: "variants",
		Description: "First non-standard variant axis.",
		Example:     "Crew Neck",
		Transform:   transform.KindFirstCustomAttribute},
	{Name: "custom_variant2", Requirement: Optional, Category: "variants",
		Description: "Second non-standard variant axis.",
		Example:     "Short Sleeve",
		Transform:   transform.KindSecondCustomAttribute},

	// Measurements
	{Name: "weight", Requirement: Recommended, Category: "measurements",
		Description: "Item weight with unit.",
		Example:     "0.3 kg",
		SourceField: "weight",
		Transform:   transform.KindWeightUnit},
	{Name: "length", Requirement: Optional, Category: "measurements",
		Description: "Package length with unit.",
		Example:     "30 cm",
		SourceField: "dimensions.length",
		Transform:   transform.KindDimensionUnit},
	{Name: "width", Requirement: Optional, Category: "measurements",
		Description: "Package width with unit.",
		Example:     "20 cm",
		SourceField: "dimensions.width",
		Transform:   transform.KindDimensionUnit},
	{Name: "height", Requirement: Optional, Category: "measurements",
		Description: "Package height with unit.",
		Example:     "5 cm",
		SourceField: "dimensions.height",
		Transform:   transform.KindDimensionUnit},

	// Fulfillment
	{Name: "shipping", Requirement: Recommended, Category: "fulfillment",
		Description: "Shipping cost or class.",
		Example:     "4.99 USD",
		SourceField: "shipping_class"},
	{Name: "delivery_estimate", Requirement: Optional, Category: "fulfillment",
		Description: "Expected delivery window.",
		Example:     "2-4 business days",
		SourceField: "meta_data._delivery_estimate"},
	{Name: "pickup_method", Requirement: Optional, Category: "fulfillment",
		Description: "In-store pickup availability.",
		Example:     "buy_online_pickup_in_store",
		SourceField: "meta_data._pickup_method"},
	{Name: "pickup_sla", Requirement: Optional, Category: "fulfillment",
		Description: "Pickup readiness window.",
		Example:     "same_day",
		SourceField: "meta_data._pickup_sla"},

	// Merchant info (shop-managed)
	{Name: "seller_name", Requirement: Required, Category: "merchant",
		Description: "Seller display name.",
		Example:     "Acme Apparel Co."},
	{Name: "seller_url", Requirement: Required, Category: "merchant",
		Description: "Seller storefront URL.",
		Example:     "https://shop.example.com"},
	{Name: "seller_privacy_policy", Requirement: Conditional, Category: "merchant",
		Description: "Privacy policy URL.",
		Example:     "https://shop.example.com/privacy",
		DependsOn:   "required when checkout is enabled"},
	{Name: "seller_tos", Requirement: Conditional, Category: "merchant",
		Description: "Terms of service URL.",
		Example:     "https://shop.example.com/terms",
		DependsOn:   "required when checkout is enabled"},

	// Returns (shop-managed)
	{Name: "return_policy", Requirement: Conditional, Category: "returns",
		Description: "Return policy URL or summary.",
		Example:     "https://shop.example.com/returns",
		DependsOn:   "required when checkout is enabled"},
	{Name: "return_window", Requirement: Conditional, Category: "returns",
		Description: "Return window in days.",
		Example:     "30",
		DependsOn:   "required when checkout is enabled"},

	// Performance signals
	{Name: "popularity_score", Requirement: Optional, Category: "performance",
		Description: "Relative sales popularity.",
		Example:     "412",
		SourceField: "total_sales"},
	{Name: "return_rate", Requirement: Optional, Category: "performance",
		Description: "Fraction of units returned.",
		Example:     "0",
		Transform:   transform.KindDefaultZero},

	// Compliance
	{Name: "warning", Requirement: Optional, Category: "compliance",
		Description: "Safety or regulatory warning text.",
		Example:     "Contains small parts.",
		SourceField: "meta_data._warning"},
	{Name: "warranty", Requirement: Optional, Category: "compliance",
		Description: "Warranty summary.",
		Example:     "2-year limited warranty",
		SourceField: "meta_data._warranty"},
	{Name: "age_restriction", Requirement: Optional, Category: "compliance",
		Description: "Minimum purchaser age.",
		Example:     "18",
		SourceField: "meta_data._age_restriction"},

	// Reviews
	{Name: "product_review_count", Requirement: Recommended, Category: "reviews",
		Description: "Number of reviews for this item.",
		Example:     "57",
		SourceField: "rating_count"},
	{Name: "product_review_rating", Requirement: Recommended, Category: "reviews",
		Description: "Average review rating (0-5).",
		Example:     "4.6",
		SourceField: "average_rating"},
	{Name: "store_review_count", Requirement: Optional, Category: "reviews",
		Description: "Number of reviews for the store."},
	{Name: "store_review_rating", Requirement: Optional, Category: "reviews",
		Description: "Average store rating (0-5)."},

	// Q&A
	{Name: "q_and_a", Requirement: Optional, Category: "qa",
		Description: "Structured product Q&A content.",
		SourceField: "meta_data._q_and_a"},
	{Name: "raw_review_data", Requirement: Optional, Category: "qa",
		Description: "Raw review payload for the surface to summarize.",
		SourceField: "meta_data._raw_review_data"},

	// Geo overrides
	{Name: "geo_price", Requirement: Optional, Category: "geo",
		Description: "Region-specific price overrides.",
		SourceField: "meta_data._geo_price"},
	{Name: "geo_availability", Requirement: Optional, Category: "geo",
		Description: "Region-specific availability overrides.",
		SourceField: "meta_data._geo_availability"},
}

// LockedMappings are platform-fixed source paths. A locked attribute always
// resolves through its entry here regardless of user mappings or overrides.
// The paths for the ID attributes are nominal; their transforms derive the
// value from the whole document.
var LockedMappings = map[string]string{
	"id":            "id",
	"item_group_id": "parent_id",
	"offer_id":      "sku",
}

// shopManaged attributes come from shop settings, not per-product mappings.
var shopManaged = map[string]bool{
	"seller_name":           true,
	"seller_url":            true,
	"seller_privacy_policy": true,
	"seller_tos":            true,
	"return_policy":         true,
	"return_window":         true,
}

// defaultMapped attributes fall back to their SourceField even when the shop
// has no mapping row for them.
var defaultMapped = map[string]bool{
	"weight": true,
	"length": true,
	"width":  true,
	"height": true,
}

// checkoutOnly attributes only matter when direct checkout is on. Scoring
// skips them for shops with checkout off so merchants aren't penalized for
// fields they cannot use.
var checkoutOnly = []string{
	"offer_id",
	"seller_privacy_policy",
	"seller_tos",
	"return_policy",
	"return_window",
}

// CheckoutOnly returns the attributes excluded from scoring while checkout
// is unavailable.
func CheckoutOnly() []string {
	out := make([]string, len(checkoutOnly))
	copy(out, checkoutOnly)
	return out
}
