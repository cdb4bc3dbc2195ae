package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"feedsync/internal/catalog/feed"
	"feedsync/internal/logger"
	"feedsync/internal/models"
)

type FeedHandler struct {
	db        *gorm.DB
	logger    *logger.Logger
	redis     *redis.Client
	assembler *feed.Assembler
	cacheTTL  time.Duration
}

func NewFeedHandler(db *gorm.DB, log *logger.Logger, rdb *redis.Client, assembler *feed.Assembler, cacheTTL time.Duration) *FeedHandler {
	return &FeedHandler{db: db, logger: log, redis: rdb, assembler: assembler, cacheTTL: cacheTTL}
}

// GetJSON serves the assembled feed payload for a shop. Payloads are cached in
// Redis; mutations go through the worker, which leaves the cache to expire on
// its TTL rather than invalidating eagerly.
func (h *FeedHandler) GetJSON(c *gin.Context) {
	shopID := c.Param("id")
	cacheKey := "feed:json:" + shopID

	if h.redis != nil {
		if cached, err := h.redis.Get(c.Request.Context(), cacheKey).Bytes(); err == nil {
			c.Data(http.StatusOK, "application/json", cached)
			return
		}
	}

	payload, ok := h.build(c, shopID)
	if !ok {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to serialize feed"})
		return
	}
	h.cache(c, cacheKey, body)
	c.Data(http.StatusOK, "application/json", body)
}

// GetJSONL serves the feed items as newline-delimited JSON.
func (h *FeedHandler) GetJSONL(c *gin.Context) {
	shopID := c.Param("id")
	cacheKey := "feed:jsonl:" + shopID

	if h.redis != nil {
		if cached, err := h.redis.Get(c.Request.Context(), cacheKey).Bytes(); err == nil {
			c.Data(http.StatusOK, "application/x-ndjson", cached)
			return
		}
	}

	payload, ok := h.build(c, shopID)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := feed.WriteJSONL(&buf, payload.Items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to serialize feed"})
		return
	}
	h.cache(c, cacheKey, buf.Bytes())
	c.Data(http.StatusOK, "application/x-ndjson", buf.Bytes())
}

func (h *FeedHandler) build(c *gin.Context, shopID string) (*feed.Payload, bool) {
	var shop models.Shop
	if err := h.db.First(&shop, "id = ?", shopID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shop not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shop"})
		return nil, false
	}

	var products []models.Product
	if err := h.db.Find(&products, "shop_id = ?", shopID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return nil, false
	}

	return h.assembler.Build(&shop, products), true
}

func (h *FeedHandler) cache(c *gin.Context, key string, body []byte) {
	if h.redis == nil {
		return
	}
	if err := h.redis.Set(c.Request.Context(), key, body, h.cacheTTL).Err(); err != nil {
		h.logger.Warn("failed to cache feed %s: %v", key, err)
	}
}
