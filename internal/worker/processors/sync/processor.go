// Package sync runs the per-shop catalog pipeline: fetch raw products from
// WooCommerce, skip unchanged ones by checksum, then auto-fill, validate,
// score, and persist each product.
package sync

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cast"
	"gorm.io/gorm"

	"feedsync/internal/catalog/autofill"
	"feedsync/internal/catalog/schema"
	"feedsync/internal/catalog/scoring"
	"feedsync/internal/catalog/validation"
	"feedsync/internal/connectors/woocommerce"
	"feedsync/internal/logger"
	"feedsync/internal/models"
)

type Processor struct {
	db       *gorm.DB
	logger   *logger.Logger
	engine   *autofill.Engine
	scoreCfg scoring.Config
	pageSize int
}

func New(db *gorm.DB, logger *logger.Logger, pageSize int) *Processor {
	return &Processor{
		db:       db,
		logger:   logger,
		engine:   autofill.New(),
		scoreCfg: scoring.DefaultConfig(),
		pageSize: pageSize,
	}
}

// SyncShop pulls the shop's catalog and processes every published product
// and variation. Individual product failures are logged and skipped; the
// sync carries on.
func (p *Processor) SyncShop(shopID string) error {
	var shop models.Shop
	if err := p.db.First(&shop, "id = ?", shopID).Error; err != nil {
		return fmt.Errorf("failed to load shop %s: %w", shopID, err)
	}

	mappings, err := p.LoadMappings(shopID)
	if err != nil {
		return err
	}

	client := woocommerce.NewClient(shop.StoreURL, shop.ConsumerKey, shop.ConsumerSecret, p.logger)
	processed, failed := 0, 0

	for page := 1; ; page++ {
		docs, err := client.GetProducts(page, p.pageSize)
		if err != nil {
			return fmt.Errorf("failed to fetch products page %d: %w", page, err)
		}
		if len(docs) == 0 {
			break
		}

		for _, doc := range docs {
			if cast.ToString(doc["type"]) == "variable" {
				n, f := p.syncVariations(client, &shop, mappings, doc)
				processed += n
				failed += f
				continue
			}
			if err := p.ProcessDocument(&shop, mappings, doc); err != nil {
				p.logger.Error("shop %s: product %v failed: %v", shopID, doc["id"], err)
				failed++
				continue
			}
			processed++
		}
	}

	p.logger.Info("shop %s sync complete: %d processed, %d failed", shopID, processed, failed)
	return nil
}

// syncVariations fetches and processes each variation of a variable product.
// Variation documents lack the parent's name and categories, so those are
// folded in before processing.
func (p *Processor) syncVariations(client *woocommerce.Client, shop *models.Shop, mappings map[string]*string, parent map[string]interface{}) (processed, failed int) {
	parentID := cast.ToInt64(parent["id"])
	for page := 1; ; page++ {
		docs, err := client.GetVariations(parentID, page, p.pageSize)
		if err != nil {
			p.logger.Error("shop %s: variations of %d failed: %v", shop.ID, parentID, err)
			failed++
			return
		}
		if len(docs) == 0 {
			return
		}
		for _, doc := range docs {
			mergeParentFields(doc, parent)
			if err := p.ProcessDocument(shop, mappings, doc); err != nil {
				p.logger.Error("shop %s: variation %v failed: %v", shop.ID, doc["id"], err)
				failed++
				continue
			}
			processed++
		}
	}
}

// ProcessDocument runs one raw product through the full pipeline and
// persists the result. Unchanged products (same checksum, still fresh
// against mapping/settings timestamps) are skipped.
func (p *Processor) ProcessDocument(shop *models.Shop, mappings map[string]*string, raw map[string]interface{}) error {
	sourceID := cast.ToInt64(raw["id"])
	if sourceID <= 0 {
		return fmt.Errorf("document has no usable id")
	}
	checksum := Checksum(raw)

	var product models.Product
	err := p.db.First(&product, "shop_id = ? AND source_id = ?", shop.ID, sourceID).Error
	switch {
	case err == nil:
		if product.Checksum == checksum && !p.stale(shop, &product) {
			p.logger.Debug("shop %s: product %d unchanged, skipping", shop.ID, sourceID)
			return nil
		}
	case err == gorm.ErrRecordNotFound:
		product = models.Product{ShopID: shop.ID, SourceID: sourceID}
	default:
		return fmt.Errorf("failed to load product %d: %w", sourceID, err)
	}

	product.RawData = raw
	product.Checksum = checksum
	product.ParentID = cast.ToInt64(raw["parent_id"])
	product.SKU = cast.ToString(raw["sku"])
	product.Type = cast.ToString(raw["type"])

	if err := p.Recompute(shop, mappings, &product); err != nil {
		return err
	}

	if err := p.db.Save(&product).Error; err != nil {
		return fmt.Errorf("failed to save product %d: %w", sourceID, err)
	}
	return nil
}

// Recompute rebuilds the product's attribute set, validation result, and
// score from its stored raw document. Used both by the sync and by the
// reprocessor after mapping/settings changes.
func (p *Processor) Recompute(shop *models.Shop, mappings map[string]*string, product *models.Product) error {
	overrides, err := p.loadOverrides(product.ID)
	if err != nil {
		return err
	}

	attrs := p.engine.Fill(autofill.Input{
		Raw:          product.RawData,
		ShopID:       shop.ID,
		Settings:     shop.Settings,
		Mappings:     mappings,
		Overrides:    overrides,
		EnableSearch: product.EnableSearch,
	})

	result := validation.Validate(attrs, false, validation.Context{
		IsVariation:   product.IsVariation(),
		ProductType:   product.Type,
		VariationAxes: variationAxes(product.RawData),
	})
	score := scoring.Compute(p.scoreCfg, attrs, result.Errors, result.Warnings, schema.CheckoutOnly())

	now := time.Now().UTC()
	product.Attributes = attrs
	product.IsValid = result.IsValid
	product.Errors = result.Errors
	product.Warnings = result.Warnings
	product.Score = score.Overall
	product.Grade = score.Grade
	product.SyncStatus = models.SyncStatusCompleted
	product.LastProcessedAt = &now
	return nil
}

// RecomputeProduct rebuilds a single stored product, for example after one
// of its overrides changed.
func (p *Processor) RecomputeProduct(productID string) error {
	var product models.Product
	if err := p.db.First(&product, "id = ?", productID).Error; err != nil {
		return fmt.Errorf("failed to load product %s: %w", productID, err)
	}
	var shop models.Shop
	if err := p.db.First(&shop, "id = ?", product.ShopID).Error; err != nil {
		return fmt.Errorf("failed to load shop %s: %w", product.ShopID, err)
	}
	mappings, err := p.LoadMappings(shop.ID)
	if err != nil {
		return err
	}
	if err := p.Recompute(&shop, mappings, &product); err != nil {
		return err
	}
	if err := p.db.Save(&product).Error; err != nil {
		return fmt.Errorf("failed to save product %s: %w", productID, err)
	}
	return nil
}

// stale reports whether mappings or shop settings changed after the product
// was last processed.
func (p *Processor) stale(shop *models.Shop, product *models.Product) bool {
	if product.LastProcessedAt == nil {
		return true
	}
	last := *product.LastProcessedAt
	if shop.MappingsUpdatedAt != nil && shop.MappingsUpdatedAt.After(last) {
		return true
	}
	if shop.SettingsUpdatedAt != nil && shop.SettingsUpdatedAt.After(last) {
		return true
	}
	return false
}

func (p *Processor) LoadMappings(shopID string) (map[string]*string, error) {
	var rows []models.FieldMapping
	if err := p.db.Find(&rows, "shop_id = ?", shopID).Error; err != nil {
		return nil, fmt.Errorf("failed to load field mappings: %w", err)
	}
	mappings := make(map[string]*string, len(rows))
	for _, row := range rows {
		mappings[row.Attribute] = row.SourcePath
	}
	return mappings, nil
}

func (p *Processor) loadOverrides(productID string) (map[string]string, error) {
	if productID == "" {
		return nil, nil
	}
	var rows []models.FieldOverride
	if err := p.db.Find(&rows, "product_id = ?", productID).Error; err != nil {
		return nil, fmt.Errorf("failed to load field overrides: %w", err)
	}
	overrides := make(map[string]string, len(rows))
	for _, row := range rows {
		overrides[row.Attribute] = row.Value
	}
	return overrides, nil
}

// Checksum hashes the canonical JSON encoding of a raw document. Map keys
// marshal sorted, so equal documents hash equal regardless of source order.
func Checksum(raw map[string]interface{}) string {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}

// variationAxes lists the attribute names a variation document carries an
// option for, which is what distinguishes it within its family.
func variationAxes(raw map[string]interface{}) []string {
	entries, ok := raw["attributes"].([]interface{})
	if !ok {
		return nil
	}
	var axes []string
	for _, entry := range entries {
		attr, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if name := cast.ToString(attr["name"]); name != "" && cast.ToString(attr["option"]) != "" {
			axes = append(axes, name)
		}
	}
	return axes
}

// mergeParentFields copies catalog-level fields a variation document lacks
// from its parent.
func mergeParentFields(variation, parent map[string]interface{}) {
	if cast.ToString(variation["name"]) == "" {
		variation["name"] = parent["name"]
	}
	if _, ok := variation["categories"]; !ok {
		variation["categories"] = parent["categories"]
	}
	if cast.ToInt64(variation["parent_id"]) == 0 {
		variation["parent_id"] = parent["id"]
	}
}
