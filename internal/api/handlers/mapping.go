package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"feedsync/internal/catalog/schema"
	"feedsync/internal/events"
	"feedsync/internal/logger"
	"feedsync/internal/models"
)

type MappingHandler struct {
	db        *gorm.DB
	logger    *logger.Logger
	publisher *events.Publisher
}

func NewMappingHandler(db *gorm.DB, logger *logger.Logger, publisher *events.Publisher) *MappingHandler {
	return &MappingHandler{db: db, logger: logger, publisher: publisher}
}

type mappingView struct {
	Attribute   string  `json:"attribute"`
	SourcePath  *string `json:"source_path"`
	Locked      bool    `json:"locked"`
	ShopManaged bool    `json:"shop_managed"`
	Default     string  `json:"default,omitempty"`
}

// List returns the full mapping editor view: every schema attribute with its
// current mapping, locked/shop-managed flags, and default path.
func (h *MappingHandler) List(c *gin.Context) {
	shopID := c.Param("id")

	var rows []models.FieldMapping
	if err := h.db.Find(&rows, "shop_id = ?", shopID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch mappings"})
		return
	}
	current := make(map[string]*string, len(rows))
	for _, row := range rows {
		current[row.Attribute] = row.SourcePath
	}

	views := make([]mappingView, 0, len(schema.Attributes))
	for _, attr := range schema.Attributes {
		view := mappingView{
			Attribute:   attr.Name,
			Locked:      schema.IsLocked(attr.Name),
			ShopManaged: schema.IsShopManaged(attr.Name),
			Default:     attr.SourceField,
		}
		if locked, ok := schema.LockedMappings[attr.Name]; ok {
			path := locked
			view.SourcePath = &path
		} else if path, ok := current[attr.Name]; ok {
			view.SourcePath = path
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"data": views})
}

type putMappingsRequest struct {
	Mappings map[string]*string `json:"mappings" binding:"required"`
}

// Replace swaps the shop's editable mappings wholesale, bumps the staleness
// timestamp, and queues reprocessing. Locked, shop-managed, and unknown
// attributes are rejected.
func (h *MappingHandler) Replace(c *gin.Context) {
	shopID := c.Param("id")

	var shop models.Shop
	if err := h.db.First(&shop, "id = ?", shopID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shop not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shop"})
		return
	}

	var req putMappingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for attr := range req.Mappings {
		switch {
		case !schema.Has(attr):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown attribute: " + attr})
			return
		case schema.IsLocked(attr):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Attribute mapping is locked: " + attr})
			return
		case schema.IsShopManaged(attr):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Attribute is managed by shop settings: " + attr})
			return
		}
	}

	now := time.Now().UTC()
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shop_id = ?", shopID).Delete(&models.FieldMapping{}).Error; err != nil {
			return err
		}
		for attr, path := range req.Mappings {
			mapping := models.FieldMapping{ShopID: shopID, Attribute: attr, SourcePath: path}
			if err := tx.Create(&mapping).Error; err != nil {
				return err
			}
		}
		shop.MappingsUpdatedAt = &now
		return tx.Save(&shop).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update mappings"})
		return
	}

	if err := h.publisher.Publish(c.Request.Context(), events.Event{
		Type:   events.TypeMappingsChanged,
		ShopID: shopID,
	}); err != nil {
		h.logger.Error("failed to publish mappings.changed for shop %s: %v", shopID, err)
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"shop_id": shopID, "mappings": len(req.Mappings)}})
}
