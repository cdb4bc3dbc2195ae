package woocommerce

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"feedsync/internal/logger"
)

// Client talks to one store's WooCommerce REST API (v3) with consumer
// key/secret auth. Products decode into loosely-typed documents so the
// extraction layer sees the source shape unmodified.
type Client struct {
	storeURL       string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
	logger         *logger.Logger
}

func NewClient(storeURL, consumerKey, consumerSecret string, logger *logger.Logger) *Client {
	return &Client{
		storeURL:       strings.TrimRight(storeURL, "/"),
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// GetProducts fetches one page of products. An empty result means the page
// is past the end of the catalog.
func (c *Client) GetProducts(page, perPage int) ([]map[string]interface{}, error) {
	return c.getDocuments("/wp-json/wc/v3/products", url.Values{
		"page":     {fmt.Sprintf("%d", page)},
		"per_page": {fmt.Sprintf("%d", perPage)},
		"status":   {"publish"},
	})
}

// GetVariations fetches one page of a variable product's variations.
func (c *Client) GetVariations(productID int64, page, perPage int) ([]map[string]interface{}, error) {
	path := fmt.Sprintf("/wp-json/wc/v3/products/%d/variations", productID)
	return c.getDocuments(path, url.Values{
		"page":     {fmt.Sprintf("%d", page)},
		"per_page": {fmt.Sprintf("%d", perPage)},
	})
}

// GetProduct fetches a single product by its WooCommerce ID.
func (c *Client) GetProduct(productID int64) (map[string]interface{}, error) {
	body, err := c.get(fmt.Sprintf("/wp-json/wc/v3/products/%d", productID), nil)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}
	return doc, nil
}

func (c *Client) getDocuments(path string, params url.Values) ([]map[string]interface{}, error) {
	body, err := c.get(path, params)
	if err != nil {
		return nil, err
	}
	var docs []map[string]interface{}
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return docs, nil
}

func (c *Client) get(path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequest("GET", c.storeURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	for key, values := range params {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	q.Set("consumer_key", c.consumerKey)
	q.Set("consumer_secret", c.consumerSecret)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}
	return body, nil
}
