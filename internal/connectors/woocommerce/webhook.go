package woocommerce

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// TopicHeader is the header WooCommerce sets to the webhook topic, for
// example "product.updated".
const TopicHeader = "X-WC-Webhook-Topic"

// WebhookEvent is a parsed product webhook delivery.
type WebhookEvent struct {
	Topic    string
	SourceID int64
	Deleted  bool
}

// ParseWebhook decodes a WooCommerce product webhook payload. Only product
// topics are accepted; anything else is an error so the caller can 400.
func ParseWebhook(topic string, payload []byte) (*WebhookEvent, error) {
	if !strings.HasPrefix(topic, "product.") {
		return nil, fmt.Errorf("unsupported webhook topic %q", topic)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	sourceID := cast.ToInt64(body["id"])
	if sourceID <= 0 {
		return nil, fmt.Errorf("webhook payload has no usable product id")
	}

	return &WebhookEvent{
		Topic:    topic,
		SourceID: sourceID,
		Deleted:  topic == "product.deleted",
	}, nil
}
