package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID       string `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ShopID   string `json:"shop_id" gorm:"not null;index"`
	SourceID int64  `json:"source_id" gorm:"not null;index"`
	ParentID int64  `json:"parent_id"`
	SKU      string `json:"sku"`
	Type     string `json:"type"` // simple, variable, variation

	// RawData is the WooCommerce document as fetched, kept loosely typed so
	// the extraction layer sees the source shape unmodified. Checksum detects
	// upstream changes without diffing.
	RawData  map[string]interface{} `json:"raw_data" gorm:"type:jsonb;serializer:json"`
	Checksum string                 `json:"checksum"`

	// Attributes is the complete auto-filled feed attribute set; never
	// sparse once the product has been processed.
	Attributes map[string]interface{} `json:"attributes" gorm:"type:jsonb;serializer:json"`

	IsValid  bool         `json:"is_valid"`
	Errors   []FieldIssue `json:"errors" gorm:"type:jsonb;serializer:json"`
	Warnings []FieldIssue `json:"warnings" gorm:"type:jsonb;serializer:json"`
	Score    int          `json:"score"`
	Grade    string       `json:"grade"`

	SelectedForSync bool       `json:"selected_for_sync" gorm:"default:true"`
	SyncStatus      SyncStatus `json:"sync_status" gorm:"default:PENDING"`
	EnableSearch    *bool      `json:"enable_search"`

	LastProcessedAt *time.Time `json:"last_processed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// FieldIssue is one validation error or warning tied to a feed attribute.
type FieldIssue struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "PENDING"
	SyncStatusSyncing   SyncStatus = "SYNCING"
	SyncStatusCompleted SyncStatus = "COMPLETED"
	SyncStatusFailed    SyncStatus = "FAILED"
)

// IsVariation reports whether the product is a variation of a parent product.
func (p *Product) IsVariation() bool {
	return p.ParentID > 0 || p.Type == "variation"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
