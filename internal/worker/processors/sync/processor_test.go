package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"feedsync/internal/logger"
	"feedsync/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Shop{}, &models.Product{}, &models.FieldMapping{}, &models.FieldOverride{}))
	return db
}

func testShop(t *testing.T, db *gorm.DB) *models.Shop {
	t.Helper()
	shop := &models.Shop{
		Name:     "Test Shop",
		StoreURL: "https://shop.example.com",
		Settings: models.ShopSettings{
			Currency:            "USD",
			WeightUnit:          "kg",
			DimensionUnit:       "cm",
			SellerName:          "Acme Apparel",
			SellerURL:           "https://shop.example.com",
			DefaultEnableSearch: true,
		},
	}
	require.NoError(t, db.Create(shop).Error)
	for attr, path := range map[string]string{
		"title":        "name",
		"description":  "description",
		"link":         "permalink",
		"image_link":   "images[0].src",
		"price":        "regular_price",
		"availability": "stock_status",
	} {
		require.NoError(t, db.Create(&models.FieldMapping{
			ShopID:     shop.ID,
			Attribute:  attr,
			SourcePath: &path,
		}).Error)
	}
	return shop
}

func testDocument() map[string]interface{} {
	return map[string]interface{}{
		"id":            float64(1042),
		"sku":           "TSHIRT",
		"type":          "simple",
		"name":          "Organic Tee",
		"description":   "<p>Soft organic cotton tee.</p>",
		"permalink":     "https://shop.example.com/product/organic-tee",
		"regular_price": "24.99",
		"stock_status":  "instock",
		"images": []interface{}{
			map[string]interface{}{"src": "https://cdn.example.com/1.jpg"},
		},
	}
}

func TestProcessDocumentCreatesProduct(t *testing.T) {
	db := testDB(t)
	shop := testShop(t, db)
	p := New(db, logger.New("error"), 100)

	mappings, err := p.LoadMappings(shop.ID)
	require.NoError(t, err)
	require.NoError(t, p.ProcessDocument(shop, mappings, testDocument()))

	var product models.Product
	require.NoError(t, db.First(&product, "shop_id = ? AND source_id = ?", shop.ID, int64(1042)).Error)

	assert.Equal(t, models.SyncStatusCompleted, product.SyncStatus)
	assert.NotEmpty(t, product.Checksum)
	assert.NotNil(t, product.LastProcessedAt)
	assert.Equal(t, shop.ID+"-1042-TSHIRT", product.Attributes["id"])
	assert.Equal(t, "Organic Tee", product.Attributes["title"])
	assert.Equal(t, "24.99 USD", product.Attributes["price"])
	assert.Equal(t, "false", product.Attributes["enable_checkout"])
	assert.True(t, product.IsValid)
	assert.Greater(t, product.Score, 0)
}

func TestProcessDocumentSkipsUnchanged(t *testing.T) {
	db := testDB(t)
	shop := testShop(t, db)
	p := New(db, logger.New("error"), 100)

	mappings, err := p.LoadMappings(shop.ID)
	require.NoError(t, err)
	require.NoError(t, p.ProcessDocument(shop, mappings, testDocument()))

	var first models.Product
	require.NoError(t, db.First(&first, "shop_id = ?", shop.ID).Error)

	require.NoError(t, p.ProcessDocument(shop, mappings, testDocument()))

	var second models.Product
	require.NoError(t, db.First(&second, "shop_id = ?", shop.ID).Error)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
}

func TestProcessDocumentReprocessesAfterMappingChange(t *testing.T) {
	db := testDB(t)
	shop := testShop(t, db)
	p := New(db, logger.New("error"), 100)

	mappings, err := p.LoadMappings(shop.ID)
	require.NoError(t, err)
	require.NoError(t, p.ProcessDocument(shop, mappings, testDocument()))

	// Same checksum, but the shop's mappings moved afterward.
	bumped := time.Now().UTC().Add(time.Minute)
	shop.MappingsUpdatedAt = &bumped
	require.NoError(t, db.Save(shop).Error)

	path := "sku"
	require.NoError(t, db.Create(&models.FieldMapping{
		ShopID:     shop.ID,
		Attribute:  "mpn",
		SourcePath: &path,
	}).Error)

	mappings, err = p.LoadMappings(shop.ID)
	require.NoError(t, err)
	require.NoError(t, p.ProcessDocument(shop, mappings, testDocument()))

	var product models.Product
	require.NoError(t, db.First(&product, "shop_id = ?", shop.ID).Error)
	assert.Equal(t, "TSHIRT", product.Attributes["mpn"])
}

func TestRecomputeAppliesOverrides(t *testing.T) {
	db := testDB(t)
	shop := testShop(t, db)
	p := New(db, logger.New("error"), 100)

	mappings, err := p.LoadMappings(shop.ID)
	require.NoError(t, err)
	require.NoError(t, p.ProcessDocument(shop, mappings, testDocument()))

	var product models.Product
	require.NoError(t, db.First(&product, "shop_id = ?", shop.ID).Error)

	require.NoError(t, db.Create(&models.FieldOverride{
		ProductID: product.ID,
		Attribute: "title",
		Value:     "Hand-tuned title",
	}).Error)

	require.NoError(t, p.RecomputeProduct(product.ID))

	require.NoError(t, db.First(&product, "id = ?", product.ID).Error)
	assert.Equal(t, "Hand-tuned title", product.Attributes["title"])
}

func TestChecksumStableAcrossKeyOrder(t *testing.T) {
	a := map[string]interface{}{"id": 1, "name": "Tee", "sku": "X"}
	b := map[string]interface{}{"sku": "X", "name": "Tee", "id": 1}

	assert.Equal(t, Checksum(a), Checksum(b))
	assert.NotEqual(t, Checksum(a), Checksum(map[string]interface{}{"id": 2}))
}

func TestVariationAxes(t *testing.T) {
	raw := map[string]interface{}{
		"attributes": []interface{}{
			map[string]interface{}{"name": "Color", "option": "Red"},
			map[string]interface{}{"name": "Size", "options": []interface{}{"S", "M"}},
			map[string]interface{}{"name": "Neckline", "option": "Crew"},
		},
	}

	assert.Equal(t, []string{"Color", "Neckline"}, variationAxes(raw))
	assert.Nil(t, variationAxes(map[string]interface{}{}))
}

func TestMergeParentFields(t *testing.T) {
	parent := map[string]interface{}{
		"id":         float64(1042),
		"name":       "Organic Tee",
		"categories": []interface{}{map[string]interface{}{"name": "Apparel"}},
	}
	variation := map[string]interface{}{"id": float64(2001)}

	mergeParentFields(variation, parent)

	assert.Equal(t, "Organic Tee", variation["name"])
	assert.Equal(t, parent["categories"], variation["categories"])
	assert.Equal(t, float64(1042), variation["parent_id"])

	// Existing fields stay put.
	named := map[string]interface{}{"id": float64(2002), "name": "Custom", "parent_id": float64(7)}
	mergeParentFields(named, parent)
	assert.Equal(t, "Custom", named["name"])
	assert.Equal(t, float64(7), named["parent_id"])
}
