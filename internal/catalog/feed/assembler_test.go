package feed

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsync/internal/catalog/schema"
	"feedsync/internal/logger"
	"feedsync/internal/models"
)

func testShop() *models.Shop {
	return &models.Shop{
		ID: "shop1",
		Settings: models.ShopSettings{
			SellerName:          "Acme Apparel",
			SellerURL:           "https://shop.example.com",
			SellerPrivacyPolicy: "https://shop.example.com/privacy",
			SellerTos:           "https://shop.example.com/terms",
		},
	}
}

func validAttrs() map[string]interface{} {
	return map[string]interface{}{
		"enable_search":      "true",
		"enable_checkout":    "false",
		"id":                 "shop1-1042-TSHIRT",
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

func syncedProduct(attrs map[string]interface{}) models.Product {
	return models.Product{
		ID:              "p1",
		ShopID:          "shop1",
		SourceID:        1042,
		SKU:             "TSHIRT",
		Type:            "simple",
		RawData:         map[string]interface{}{"id": float64(1042), "sku": "TSHIRT"},
		Attributes:      attrs,
		IsValid:         true,
		SelectedForSync: true,
		SyncStatus:      models.SyncStatusCompleted,
	}
}

func TestBuildIncludesEligibleProducts(t *testing.T) {
	a := New(logger.New("error"), DefaultOptions())
	payload := a.Build(testShop(), []models.Product{syncedProduct(validAttrs())})

	require.Len(t, payload.Items, 1)
	assert.Equal(t, "shop1", payload.Seller.ID)
	assert.Equal(t, "Acme Apparel", payload.Seller.Name)
	assert.Equal(t, 1, payload.ValidationStats.Eligible)
	assert.Equal(t, 1, payload.ValidationStats.Valid)
	assert.Zero(t, payload.ValidationStats.Dropped)
}

func TestBuildEligibilityFilters(t *testing.T) {
	a := New(logger.New("error"), DefaultOptions())

	deselected := syncedProduct(validAttrs())
	deselected.SelectedForSync = false

	pending := syncedProduct(validAttrs())
	pending.SyncStatus = models.SyncStatusPending

	invalid := syncedProduct(validAttrs())
	invalid.IsValid = false

	hidden := syncedProduct(validAttrs())
	hidden.Attributes["enable_search"] = "false"

	payload := a.Build(testShop(), []models.Product{deselected, pending, invalid, hidden})

	assert.Empty(t, payload.Items)
	assert.Equal(t, 4, payload.ValidationStats.Total)
	assert.Zero(t, payload.ValidationStats.Eligible)
}

func TestBuildItemCoversFullSchema(t *testing.T) {
	a := New(logger.New("error"), DefaultOptions())
	payload := a.Build(testShop(), []models.Product{syncedProduct(validAttrs())})

	require.Len(t, payload.Items, 1)
	item := payload.Items[0]
	require.Len(t, item, len(schema.Attributes))
	for _, attr := range schema.Attributes {
		_, ok := item[attr.Name]
		assert.True(t, ok, "item missing schema key %s", attr.Name)
	}
}

func TestBuildRecomputesHardwiredAttributes(t *testing.T) {
	a := New(logger.New("error"), DefaultOptions())

	attrs := validAttrs()
	attrs["id"] = "stale-cached-id"
	attrs["enable_checkout"] = "true"

	payload := a.Build(testShop(), []models.Product{syncedProduct(attrs)})

	require.Len(t, payload.Items, 1)
	assert.Equal(t, "shop1-1042-TSHIRT", payload.Items[0]["id"])
	assert.Equal(t, "false", payload.Items[0]["enable_checkout"])
}

func TestBuildDropsSchemaDriftKeys(t *testing.T) {
	a := New(logger.New("error"), DefaultOptions())

	attrs := validAttrs()
	attrs["legacy_field"] = "stale"

	payload := a.Build(testShop(), []models.Product{syncedProduct(attrs)})

	require.Len(t, payload.Items, 1)
	_, ok := payload.Items[0]["legacy_field"]
	assert.False(t, ok)
}

func TestBuildRevalidateDropsInvalid(t *testing.T) {
	a := New(logger.New("error"), DefaultOptions())

	attrs := validAttrs()
	delete(attrs, "title")
	product := syncedProduct(attrs) // stored IsValid is stale

	payload := a.Build(testShop(), []models.Product{product})

	assert.Empty(t, payload.Items)
	assert.Equal(t, 1, payload.ValidationStats.Invalid)
	assert.Equal(t, 1, payload.ValidationStats.Dropped)
	require.NotEmpty(t, payload.ValidationStats.TopErrors)
}

func TestBuildKeepInvalidWhenConfigured(t *testing.T) {
	a := New(logger.New("error"), Options{Revalidate: true, DropInvalid: false})

	attrs := validAttrs()
	delete(attrs, "title")

	payload := a.Build(testShop(), []models.Product{syncedProduct(attrs)})

	assert.Len(t, payload.Items, 1)
	assert.Equal(t, 1, payload.ValidationStats.Invalid)
	assert.Zero(t, payload.ValidationStats.Dropped)
}

func TestTopErrors(t *testing.T) {
	counts := map[string]int{
		"a": 3, "b": 3, "c": 1, "d": 5, "e": 2, "f": 4, "g": 1,
	}

	top := topErrors(counts, 5)

	require.Len(t, top, 5)
	assert.Equal(t, ErrorCount{Message: "d", Count: 5}, top[0])
	assert.Equal(t, ErrorCount{Message: "f", Count: 4}, top[1])
	// Ties break alphabetically.
	assert.Equal(t, ErrorCount{Message: "a", Count: 3}, top[2])
	assert.Equal(t, ErrorCount{Message: "b", Count: 3}, top[3])
	assert.Equal(t, ErrorCount{Message: "e", Count: 2}, top[4])
}

func TestWriteJSONL(t *testing.T) {
	items := []map[string]interface{}{
		{"id": "a"},
		{"id": "b"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, items))

	out := buf.String()
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.False(t, strings.HasSuffix(out, "\n"))

	for i, line := range lines {
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &decoded))
		assert.Equal(t, items[i]["id"], decoded["id"])
	}
}

func TestWriteJSONLEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, nil))
	assert.Zero(t, buf.Len())
}
