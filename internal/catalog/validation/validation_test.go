package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"feedsync/internal/models"
)

// completeAttrs returns an attribute set that passes every unconditional rule.
func completeAttrs() map[string]interface{} {
	return map[string]interface{}{
		"enable_search":      "true",
		"enable_checkout":    "false",
		"id":                 "shop1-1042",
		"title":              "Organic Tee",
		"description":        "Soft organic cotton tee.",
		"link":               "https://shop.example.com/product/organic-tee",
		"image_link":         "https://cdn.example.com/1.jpg",
		"price":              "24.99 USD",
		"availability":       "in_stock",
		"inventory_quantity": 25,
		"seller_name":        "Acme Apparel",
		"seller_url":         "https://shop.example.com",
	}
}

func issueFor(issues []models.FieldIssue, field string) *models.FieldIssue {
	for i := range issues {
		if issues[i].Field == field {
			return &issues[i]
		}
	}
	return nil
}

func TestValidateCompleteSet(t *testing.T) {
	result := Validate(completeAttrs(), false, Context{})

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestValidateRequiredMissing(t *testing.T) {
	attrs := completeAttrs()
	delete(attrs, "title")
	attrs["price"] = "   "

	result := Validate(attrs, false, Context{})

	assert.False(t, result.IsValid)
	assert.NotNil(t, issueFor(result.Errors, "title"))
	assert.NotNil(t, issueFor(result.Errors, "price"))
}

func TestValidateRecommendedMissingIsWarning(t *testing.T) {
	result := Validate(completeAttrs(), false, Context{})

	assert.True(t, result.IsValid)
	assert.NotNil(t, issueFor(result.Warnings, "brand"))
	assert.NotNil(t, issueFor(result.Warnings, "sale_price"))
	assert.Nil(t, issueFor(result.Errors, "brand"))
}

func TestValidateOptionalNeverFlagged(t *testing.T) {
	result := Validate(completeAttrs(), false, Context{})

	assert.Nil(t, issueFor(result.Errors, "material"))
	assert.Nil(t, issueFor(result.Warnings, "material"))
}

func TestValidateItemGroupIDForVariations(t *testing.T) {
	attrs := completeAttrs()

	result := Validate(attrs, false, Context{IsVariation: true})
	assert.NotNil(t, issueFor(result.Errors, "item_group_id"))

	result = Validate(attrs, false, Context{IsVariation: false})
	assert.Nil(t, issueFor(result.Errors, "item_group_id"))

	attrs["item_group_id"] = "shop1-1042"
	result = Validate(attrs, false, Context{IsVariation: true})
	assert.Nil(t, issueFor(result.Errors, "item_group_id"))
}

func TestValidateAxisConditionals(t *testing.T) {
	attrs := completeAttrs()
	attrs["item_group_id"] = "shop1-1042"
	ctx := Context{IsVariation: true, VariationAxes: []string{"Color"}}

	result := Validate(attrs, false, ctx)
	assert.NotNil(t, issueFor(result.Errors, "color"))
	// The product has no size axis, so size is not required.
	assert.Nil(t, issueFor(result.Errors, "size"))

	attrs["color"] = "Red"
	result = Validate(attrs, false, ctx)
	assert.Nil(t, issueFor(result.Errors, "color"))
}

func TestValidateSalePriceEffectiveDate(t *testing.T) {
	attrs := completeAttrs()
	attrs["sale_price"] = "19.99 USD"

	result := Validate(attrs, false, Context{})
	assert.NotNil(t, issueFor(result.Errors, "sale_price_effective_date"))

	attrs["sale_price_effective_date"] = "2026-03-01T00:00:00Z/2026-03-14T23:59:59Z"
	result = Validate(attrs, false, Context{})
	assert.Nil(t, issueFor(result.Errors, "sale_price_effective_date"))
}

func TestValidateAvailabilityDateForPreorder(t *testing.T) {
	attrs := completeAttrs()
	attrs["availability"] = "preorder"

	result := Validate(attrs, false, Context{})
	assert.NotNil(t, issueFor(result.Errors, "availability_date"))

	attrs["availability_date"] = "2026-05-01"
	result = Validate(attrs, false, Context{})
	assert.Nil(t, issueFor(result.Errors, "availability_date"))
}

func TestValidateCheckoutConditionals(t *testing.T) {
	attrs := completeAttrs()

	result := Validate(attrs, false, Context{})
	assert.Nil(t, issueFor(result.Errors, "offer_id"))
	assert.Nil(t, issueFor(result.Errors, "return_policy"))

	result = Validate(attrs, true, Context{})
	for _, field := range []string{"gtin", "offer_id", "seller_privacy_policy", "seller_tos", "return_policy", "return_window"} {
		assert.NotNil(t, issueFor(result.Errors, field), "expected checkout error for %s", field)
	}
}

func TestValidateSalePriceBelowRegular(t *testing.T) {
	attrs := completeAttrs()
	attrs["sale_price"] = "29.99 USD"
	attrs["sale_price_effective_date"] = "2026-03-01T00:00:00Z"

	result := Validate(attrs, false, Context{})
	issue := issueFor(result.Errors, "sale_price")
	assert.NotNil(t, issue)
	assert.Contains(t, issue.Error, "less than")

	attrs["sale_price"] = "19.99 USD"
	result = Validate(attrs, false, Context{})
	assert.Nil(t, issueFor(result.Errors, "sale_price"))

	// Equal prices also fail.
	attrs["sale_price"] = "24.99 USD"
	result = Validate(attrs, false, Context{})
	assert.NotNil(t, issueFor(result.Errors, "sale_price"))
}

func TestValidateMalformedPricesSkipCrossCheck(t *testing.T) {
	attrs := completeAttrs()
	attrs["price"] = "call for pricing"
	attrs["sale_price"] = "19.99 USD"
	attrs["sale_price_effective_date"] = "2026-03-01T00:00:00Z"

	result := Validate(attrs, false, Context{})
	assert.Nil(t, issueFor(result.Errors, "sale_price"))
}
