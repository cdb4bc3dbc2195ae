package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"feedsync/internal/events"
	"feedsync/internal/logger"
	"feedsync/internal/models"
)

type ProductHandler struct {
	db        *gorm.DB
	logger    *logger.Logger
	publisher *events.Publisher
}

func NewProductHandler(db *gorm.DB, logger *logger.Logger, publisher *events.Publisher) *ProductHandler {
	return &ProductHandler{db: db, logger: logger, publisher: publisher}
}

func (h *ProductHandler) List(c *gin.Context) {
	var products []models.Product

	// Pagination
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset := (page - 1) * limit

	query := h.db.Model(&models.Product{})

	if shopID := c.Query("shop_id"); shopID != "" {
		query = query.Where("shop_id = ?", shopID)
	}
	if grade := c.Query("grade"); grade != "" {
		query = query.Where("grade = ?", grade)
	}
	if valid := c.Query("valid"); valid != "" {
		query = query.Where("is_valid = ?", valid == "true")
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("sku ILIKE ?", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	if err := query.Order("score DESC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": products,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	var product models.Product
	if err := h.db.First(&product, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

type updateProductRequest struct {
	SelectedForSync *bool `json:"selected_for_sync"`
	EnableSearch    *bool `json:"enable_search"`
}

// Update covers the merchant-editable sync flags. A change queues a
// recompute so the attribute set tracks the flags.
func (h *ProductHandler) Update(c *gin.Context) {
	var product models.Product
	if err := h.db.First(&product, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.SelectedForSync != nil {
		product.SelectedForSync = *req.SelectedForSync
	}
	if req.EnableSearch != nil {
		product.EnableSearch = req.EnableSearch
	}

	if err := h.db.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	if err := h.publisher.Publish(c.Request.Context(), events.Event{
		Type:      events.TypeProductUpdated,
		ShopID:    product.ShopID,
		ProductID: product.ID,
	}); err != nil {
		h.logger.Error("failed to publish product.updated for %s: %v", product.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}
