package woocommerce

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"

	"feedsync/internal/models"
)

// settingKeys maps WooCommerce general-settings IDs onto shop settings
// fields. Only these are read; everything else in the settings payload is
// merchant configuration we don't care about.
var settingKeys = map[string]func(*models.ShopSettings, string){
	"woocommerce_currency":       func(s *models.ShopSettings, v string) { s.Currency = v },
	"woocommerce_dimension_unit": func(s *models.ShopSettings, v string) { s.DimensionUnit = v },
	"woocommerce_weight_unit":    func(s *models.ShopSettings, v string) { s.WeightUnit = v },
}

// FetchSettings reads the store's general settings and merges them over the
// current shop settings. Seller identity and return policy are configured in
// the dashboard, not the store, so they pass through untouched.
func (c *Client) FetchSettings(current models.ShopSettings) (models.ShopSettings, error) {
	body, err := c.get("/wp-json/wc/v3/settings/general", nil)
	if err != nil {
		return current, fmt.Errorf("failed to fetch store settings: %w", err)
	}

	var entries []map[string]interface{}
	if err := json.Unmarshal(body, &entries); err != nil {
		return current, fmt.Errorf("failed to decode store settings: %w", err)
	}

	merged := current
	for _, entry := range entries {
		apply, ok := settingKeys[cast.ToString(entry["id"])]
		if !ok {
			continue
		}
		if value := cast.ToString(entry["value"]); value != "" {
			apply(&merged, value)
		}
	}
	return merged, nil
}
