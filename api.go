package handler

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"feedsync/internal/catalog/feed"
	"feedsync/internal/logger"
	"feedsync/internal/models"
)

var (
	db      *sql.DB
	dbMutex sync.Mutex
)

// initDB initializes the database connection
func initDB() error {
	dbMutex.Lock()
	defer dbMutex.Unlock()

	if db != nil {
		return nil // Already initialized
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}

	var err error
	db, err = sql.Open("postgres", databaseURL)
	if err != nil {
		return err
	}

	// Test the connection
	if err = db.Ping(); err != nil {
		return err
	}

	return nil
}

func loadShop(shopID string) (*models.Shop, error) {
	var shop models.Shop
	var returnWindow sql.NullInt64
	err := db.QueryRow(`
		SELECT id, name, store_url,
			   settings_currency, settings_dimension_unit, settings_weight_unit,
			   settings_seller_name, settings_seller_url,
			   settings_seller_privacy_policy, settings_seller_tos,
			   settings_return_policy, settings_return_window,
			   settings_default_enable_search
		FROM shops
		WHERE id = $1
	`, shopID).Scan(&shop.ID, &shop.Name, &shop.StoreURL,
		&shop.Settings.Currency, &shop.Settings.DimensionUnit, &shop.Settings.WeightUnit,
		&shop.Settings.SellerName, &shop.Settings.SellerURL,
		&shop.Settings.SellerPrivacyPolicy, &shop.Settings.SellerTos,
		&shop.Settings.ReturnPolicy, &returnWindow,
		&shop.Settings.DefaultEnableSearch)
	if err != nil {
		return nil, err
	}
	if returnWindow.Valid {
		window := int(returnWindow.Int64)
		shop.Settings.ReturnWindow = &window
	}
	return &shop, nil
}

func loadProducts(shopID string) ([]models.Product, error) {
	rows, err := db.Query(`
		SELECT id, shop_id, source_id, parent_id, sku, type,
			   raw_data, attributes, is_valid, selected_for_sync, sync_status
		FROM products
		WHERE shop_id = $1
	`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var rawData, attributes []byte
		err := rows.Scan(&p.ID, &p.ShopID, &p.SourceID, &p.ParentID, &p.SKU, &p.Type,
			&rawData, &attributes, &p.IsValid, &p.SelectedForSync, &p.SyncStatus)
		if err != nil {
			continue // Skip problematic products
		}
		if len(rawData) > 0 {
			if err := json.Unmarshal(rawData, &p.RawData); err != nil {
				continue
			}
		}
		if len(attributes) > 0 {
			if err := json.Unmarshal(attributes, &p.Attributes); err != nil {
				continue
			}
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Handler is the main entry point for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	// Initialize database connection
	if err := initDB(); err != nil {
		http.Error(w, fmt.Sprintf("Database initialization failed: %v", err), http.StatusInternalServerError)
		return
	}

	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	log := logger.New(getLogLevel())
	assembler := feed.New(log, feed.DefaultOptions())

	// Health check endpoint
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Feedsync API is running",
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	api := router.Group("/api/v1")
	{
		shops := api.Group("/shops")
		{
			shops.GET("/:id/feed", func(c *gin.Context) {
				payload, ok := buildFeed(c, assembler)
				if !ok {
					return
				}
				c.JSON(http.StatusOK, payload)
			})

			shops.GET("/:id/feed.jsonl", func(c *gin.Context) {
				payload, ok := buildFeed(c, assembler)
				if !ok {
					return
				}
				c.Header("Content-Type", "application/x-ndjson")
				c.Status(http.StatusOK)
				if err := feed.WriteJSONL(c.Writer, payload.Items); err != nil {
					log.Error("failed to write feed: %v", err)
				}
			})
		}
	}

	router.ServeHTTP(w, r)
}

func buildFeed(c *gin.Context, assembler *feed.Assembler) (*feed.Payload, bool) {
	shopID := c.Param("id")

	shop, err := loadShop(shopID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shop not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shop"})
		return nil, false
	}

	products, err := loadProducts(shopID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return nil, false
	}

	return assembler.Build(shop, products), true
}

func getLogLevel() string {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		return level
	}
	return "info"
}
