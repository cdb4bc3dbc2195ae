package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"feedsync/internal/logger"
	"feedsync/internal/models"
)

type IssueHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewIssueHandler(db *gorm.DB, logger *logger.Logger) *IssueHandler {
	return &IssueHandler{db: db, logger: logger}
}

type issueRow struct {
	ProductID string `json:"product_id"`
	SourceID  int64  `json:"source_id"`
	SKU       string `json:"sku"`
	Field     string `json:"field"`
	Error     string `json:"error"`
	Severity  string `json:"severity"`
}

// List flattens the validation issues of a shop's products into one feed of
// rows, newest products first. severity=error|warning narrows the result.
func (h *IssueHandler) List(c *gin.Context) {
	shopID := c.Query("shop_id")
	if shopID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shop_id is required"})
		return
	}
	severity := c.Query("severity")

	var products []models.Product
	if err := h.db.Order("updated_at DESC").Find(&products, "shop_id = ?", shopID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	rows := []issueRow{}
	byField := map[string]int{}
	for _, p := range products {
		if severity == "" || severity == "error" {
			for _, issue := range p.Errors {
				rows = append(rows, issueRow{
					ProductID: p.ID, SourceID: p.SourceID, SKU: p.SKU,
					Field: issue.Field, Error: issue.Error, Severity: "error",
				})
				byField[issue.Field]++
			}
		}
		if severity == "" || severity == "warning" {
			for _, issue := range p.Warnings {
				rows = append(rows, issueRow{
					ProductID: p.ID, SourceID: p.SourceID, SKU: p.SKU,
					Field: issue.Field, Error: issue.Error, Severity: "warning",
				})
				byField[issue.Field]++
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"data": rows,
		"summary": gin.H{
			"total":    len(rows),
			"by_field": byField,
		},
	})
}
