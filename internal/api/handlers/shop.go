package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"feedsync/internal/catalog/schema"
	"feedsync/internal/connectors/woocommerce"
	"feedsync/internal/events"
	"feedsync/internal/logger"
	"feedsync/internal/models"
)

type ShopHandler struct {
	db        *gorm.DB
	logger    *logger.Logger
	publisher *events.Publisher
}

func NewShopHandler(db *gorm.DB, logger *logger.Logger, publisher *events.Publisher) *ShopHandler {
	return &ShopHandler{db: db, logger: logger, publisher: publisher}
}

func (h *ShopHandler) List(c *gin.Context) {
	var shops []models.Shop
	if err := h.db.Find(&shops).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shops"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": shops})
}

func (h *ShopHandler) Get(c *gin.Context) {
	var shop models.Shop
	if err := h.db.First(&shop, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shop not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shop"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": shop})
}

type createShopRequest struct {
	Name           string `json:"name" binding:"required"`
	StoreURL       string `json:"store_url" binding:"required"`
	ConsumerKey    string `json:"consumer_key" binding:"required"`
	ConsumerSecret string `json:"consumer_secret" binding:"required"`
}

// Create registers a store and seeds its field mappings from the schema
// defaults so the first sync produces a usable feed.
func (h *ShopHandler) Create(c *gin.Context) {
	var req createShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shop := models.Shop{
		Name:           req.Name,
		StoreURL:       req.StoreURL,
		ConsumerKey:    req.ConsumerKey,
		ConsumerSecret: req.ConsumerSecret,
	}
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&shop).Error; err != nil {
			return err
		}
		for attr, path := range schema.DefaultMappings() {
			sourcePath := path
			mapping := models.FieldMapping{
				ShopID:     shop.ID,
				Attribute:  attr,
				SourcePath: &sourcePath,
			}
			if err := tx.Create(&mapping).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create shop"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": shop})
}

// UpdateSettings replaces the dashboard-managed shop settings and marks the
// shop's products stale.
func (h *ShopHandler) UpdateSettings(c *gin.Context) {
	var shop models.Shop
	if err := h.db.First(&shop, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shop not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shop"})
		return
	}

	var settings models.ShopSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	shop.Settings = settings
	shop.SettingsUpdatedAt = &now
	if err := h.db.Save(&shop).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}

	if err := h.publisher.Publish(c.Request.Context(), events.Event{
		Type:   events.TypeSettingsChanged,
		ShopID: shop.ID,
	}); err != nil {
		h.logger.Error("failed to publish settings.changed for shop %s: %v", shop.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"data": shop})
}

// Sync queues a full catalog sync for the shop.
func (h *ShopHandler) Sync(c *gin.Context) {
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

	if err := h.publisher.Publish(c.Request.Context(), events.Event{
		Type:   events.TypeSyncRequested,
		ShopID: shopID,
	}); err != nil {
		h.logger.Error("failed to publish sync.requested for shop %s: %v", shopID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue sync"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"data": gin.H{"shop_id": shopID, "status": "queued"}})
}

// Webhook receives WooCommerce product webhooks. Deletions remove the stored
// product; creates and updates queue an incremental sync.
func (h *ShopHandler) Webhook(c *gin.Context) {
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

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read payload"})
		return
	}
	webhook, err := woocommerce.ParseWebhook(c.GetHeader(woocommerce.TopicHeader), payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if webhook.Deleted {
		result := h.db.Where("shop_id = ? AND source_id = ?", shopID, webhook.SourceID).Delete(&models.Product{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": result.RowsAffected > 0}})
		return
	}

	// The stored raw document is stale the moment a webhook fires, so a
	// recompute from it would serve old data. Queue a sync instead; the
	// checksum gate keeps it incremental.
	if err := h.publisher.Publish(c.Request.Context(), events.Event{
		Type:   events.TypeSyncRequested,
		ShopID: shopID,
	}); err != nil {
		h.logger.Error("failed to publish sync.requested for shop %s: %v", shopID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue event"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"data": gin.H{"topic": webhook.Topic, "status": "queued"}})
}
