// Package reprocess recomputes stored products after field mappings or shop
// settings change.
package reprocess

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"feedsync/internal/logger"
	"feedsync/internal/models"
	"feedsync/internal/worker/processors/sync"
)

const batchSize = 200

type Processor struct {
	db     *gorm.DB
	logger *logger.Logger
	sync   *sync.Processor
}

func New(db *gorm.DB, logger *logger.Logger, syncProcessor *sync.Processor) *Processor {
	return &Processor{db: db, logger: logger, sync: syncProcessor}
}

// OnMappingsChanged clears per-product overrides (they were set against the
// old mapping and may no longer make sense) and then recomputes every stale
// product. The override clearing is transactional per batch; the recompute
// pass is independent and tolerates partial failure; a product that fails
// simply stays stale until the next trigger.
func (p *Processor) OnMappingsChanged(shopID string) error {
	if err := p.clearOverrides(shopID); err != nil {
		return err
	}
	return p.RecomputeStale(shopID)
}

// OnSettingsChanged recomputes stale products; overrides survive a settings
// change.
func (p *Processor) OnSettingsChanged(shopID string) error {
	return p.RecomputeStale(shopID)
}

// clearOverrides deletes the shop's field overrides in product batches, each
// batch all-or-nothing.
func (p *Processor) clearOverrides(shopID string) error {
	var productIDs []string
	if err := p.db.Model(&models.Product{}).Where("shop_id = ?", shopID).Pluck("id", &productIDs).Error; err != nil {
		return fmt.Errorf("failed to list products for shop %s: %w", shopID, err)
	}

	for start := 0; start < len(productIDs); start += batchSize {
		end := start + batchSize
		if end > len(productIDs) {
			end = len(productIDs)
		}
		batch := productIDs[start:end]
		err := p.db.Transaction(func(tx *gorm.DB) error {
			return tx.Where("product_id IN ?", batch).Delete(&models.FieldOverride{}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to clear overrides for shop %s: %w", shopID, err)
		}
	}
	p.logger.Info("shop %s: cleared field overrides for %d products", shopID, len(productIDs))
	return nil
}

// RecomputeStale rebuilds the attribute set of every product processed
// before the shop's last mapping or settings change.
func (p *Processor) RecomputeStale(shopID string) error {
	var shop models.Shop
	if err := p.db.First(&shop, "id = ?", shopID).Error; err != nil {
		return fmt.Errorf("failed to load shop %s: %w", shopID, err)
	}
	mappings, err := p.sync.LoadMappings(shopID)
	if err != nil {
		return err
	}

	var products []models.Product
	query := p.db.Where("shop_id = ?", shopID)
	if cutoff := latest(shop.MappingsUpdatedAt, shop.SettingsUpdatedAt); cutoff != nil {
		query = query.Where("last_processed_at IS NULL OR last_processed_at < ?", *cutoff)
	}
	if err := query.Find(&products).Error; err != nil {
		return fmt.Errorf("failed to list stale products: %w", err)
	}

	recomputed, failed := 0, 0
	for i := range products {
		product := &products[i]
		if err := p.sync.Recompute(&shop, mappings, product); err != nil {
			p.logger.Error("shop %s: recompute of product %s failed: %v", shopID, product.ID, err)
			failed++
			continue
		}
		if err := p.db.Save(product).Error; err != nil {
			p.logger.Error("shop %s: save of product %s failed: %v", shopID, product.ID, err)
			failed++
			continue
		}
		recomputed++
	}

	p.logger.Info("shop %s: recomputed %d products, %d failed", shopID, recomputed, failed)
	return nil
}

func latest(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.After(*b):
		return a
	default:
		return b
	}
}
