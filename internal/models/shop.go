package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Shop struct {
	ID             string `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name           string `json:"name" gorm:"not null"`
	StoreURL       string `json:"store_url" gorm:"not null"`
	ConsumerKey    string `json:"-"`
	ConsumerSecret string `json:"-"`

	Settings ShopSettings `json:"settings" gorm:"embedded;embeddedPrefix:settings_"`

	// SettingsUpdatedAt and MappingsUpdatedAt drive staleness checks against
	// each product's LastProcessedAt.
	SettingsUpdatedAt *time.Time `json:"settings_updated_at"`
	MappingsUpdatedAt *time.Time `json:"mappings_updated_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShopSettings holds the shop-scoped feed inputs: currency and units for the
// price/measurement transforms, seller identity and return policy for the
// shop-managed attributes, and the search default for products without their
// own flag.
type ShopSettings struct {
	Currency            string `json:"currency" gorm:"default:USD"`
	DimensionUnit       string `json:"dimension_unit" gorm:"default:cm"`
	WeightUnit          string `json:"weight_unit" gorm:"default:kg"`
	SellerName          string `json:"seller_name"`
	SellerURL           string `json:"seller_url"`
	SellerPrivacyPolicy string `json:"seller_privacy_policy"`
	SellerTos           string `json:"seller_tos"`
	ReturnPolicy        string `json:"return_policy"`
	ReturnWindow        *int   `json:"return_window"`
	DefaultEnableSearch bool   `json:"default_enable_search" gorm:"default:true"`
}

func (s *Shop) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
