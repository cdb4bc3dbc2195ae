// Package settings keeps cached shop settings in step with the source
// store.
package settings

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"feedsync/internal/connectors/woocommerce"
	"feedsync/internal/logger"
	"feedsync/internal/models"
)

type Refresher struct {
	db     *gorm.DB
	logger *logger.Logger
}

func New(db *gorm.DB, logger *logger.Logger) *Refresher {
	return &Refresher{db: db, logger: logger}
}

// RefreshShop re-reads the store's settings. When anything changed, the
// shop's settings timestamp moves forward, which marks its products stale.
// Returns whether a change was recorded.
func (r *Refresher) RefreshShop(shopID string) (bool, error) {
	var shop models.Shop
	if err := r.db.First(&shop, "id = ?", shopID).Error; err != nil {
		return false, fmt.Errorf("failed to load shop %s: %w", shopID, err)
	}

	client := woocommerce.NewClient(shop.StoreURL, shop.ConsumerKey, shop.ConsumerSecret, r.logger)
	merged, err := client.FetchSettings(shop.Settings)
	if err != nil {
		return false, err
	}
	if merged == shop.Settings {
		r.logger.Debug("shop %s: settings unchanged", shopID)
		return false, nil
	}

	now := time.Now().UTC()
	shop.Settings = merged
	shop.SettingsUpdatedAt = &now
	if err := r.db.Save(&shop).Error; err != nil {
		return false, fmt.Errorf("failed to save shop %s settings: %w", shopID, err)
	}
	r.logger.Info("shop %s: settings refreshed", shopID)
	return true, nil
}

// RefreshAll refreshes every shop and returns the IDs of shops whose
// settings changed.
func (r *Refresher) RefreshAll() ([]string, error) {
	var shopIDs []string
	if err := r.db.Model(&models.Shop{}).Pluck("id", &shopIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}

	var changed []string
	for _, id := range shopIDs {
		didChange, err := r.RefreshShop(id)
		if err != nil {
			r.logger.Error("settings refresh for shop %s failed: %v", id, err)
			continue
		}
		if didChange {
			changed = append(changed, id)
		}
	}
	return changed, nil
}
