package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"feedsync/internal/catalog/schema"
	"feedsync/internal/events"
	"feedsync/internal/logger"
	"feedsync/internal/models"
)

type OverrideHandler struct {
	db        *gorm.DB
	logger    *logger.Logger
	publisher *events.Publisher
}

func NewOverrideHandler(db *gorm.DB, logger *logger.Logger, publisher *events.Publisher) *OverrideHandler {
	return &OverrideHandler{db: db, logger: logger, publisher: publisher}
}

func (h *OverrideHandler) List(c *gin.Context) {
	productID := c.Param("id")

	var overrides []models.FieldOverride
	if err := h.db.Find(&overrides, "product_id = ?", productID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch overrides"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": overrides})
}

type putOverrideRequest struct {
	Value string `json:"value" binding:"required"`
}

// Put upserts a per-product override for one attribute and queues a recompute.
func (h *OverrideHandler) Put(c *gin.Context) {
	productID := c.Param("id")
	attribute := c.Param("attribute")

	if !schema.Has(attribute) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown attribute: " + attribute})
		return
	}
	if schema.IsLocked(attribute) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Attribute cannot be overridden: " + attribute})
		return
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	var req putOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	override := models.FieldOverride{ProductID: productID, Attribute: attribute, Value: req.Value}
	err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "attribute"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&override).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save override"})
		return
	}

	h.publishRecompute(c, product.ShopID, productID)
	c.JSON(http.StatusOK, gin.H{"data": override})
}

func (h *OverrideHandler) Delete(c *gin.Context) {
	productID := c.Param("id")
	attribute := c.Param("attribute")

	var product models.Product
	if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	result := h.db.Where("product_id = ? AND attribute = ?", productID, attribute).Delete(&models.FieldOverride{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete override"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Override not found"})
		return
	}

	h.publishRecompute(c, product.ShopID, productID)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (h *OverrideHandler) publishRecompute(c *gin.Context, shopID, productID string) {
	if err := h.publisher.Publish(c.Request.Context(), events.Event{
		Type:      events.TypeProductUpdated,
		ShopID:    shopID,
		ProductID: productID,
	}); err != nil {
		h.logger.Error("failed to publish product.updated for product %s: %v", productID, err)
	}
}
