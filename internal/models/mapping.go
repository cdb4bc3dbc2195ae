package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FieldMapping links one feed attribute to a WooCommerce source path for a
// shop. A nil SourcePath means the merchant explicitly unmapped the
// attribute.
type FieldMapping struct {
	ID         string  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ShopID     string  `json:"shop_id" gorm:"not null;index:idx_mapping_shop_attr,unique"`
	Attribute  string  `json:"attribute" gorm:"not null;index:idx_mapping_shop_attr,unique"`
	SourcePath *string `json:"source_path"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *FieldMapping) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// FieldOverride is a merchant-supplied final value for one attribute of one
// product. It bypasses mapping and transforms entirely.
type FieldOverride struct {
	ID        string `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID string `json:"product_id" gorm:"not null;index:idx_override_product_attr,unique"`
	Attribute string `json:"attribute" gorm:"not null;index:idx_override_product_attr,unique"`
	Value     string `json:"value"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *FieldOverride) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}
