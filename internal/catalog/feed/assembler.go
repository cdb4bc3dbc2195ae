// Package feed assembles the outbound feed payload from processed products.
package feed

import (
	"encoding/json"
	"io"
	"sort"
	"time"

	"github.com/spf13/cast"

	"feedsync/internal/catalog/schema"
	"feedsync/internal/catalog/transform"
	"feedsync/internal/catalog/validation"
	"feedsync/internal/logger"
	"feedsync/internal/models"
)

type Options struct {
	// Revalidate re-runs validation at assembly time instead of trusting the
	// stored result. On by default in production.
	Revalidate bool

	// DropInvalid excludes items that fail validation from the payload.
	DropInvalid bool
}

func DefaultOptions() Options {
	return Options{Revalidate: true, DropInvalid: true}
}

type Seller struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	URL            string `json:"url"`
	PrivacyPolicy  string `json:"privacy_policy"`
	TermsOfService string `json:"terms_of_service"`
}

type Payload struct {
	Seller          Seller                   `json:"seller"`
	GeneratedAt     string                   `json:"generatedAt"`
	Items           []map[string]interface{} `json:"items"`
	ValidationStats *Stats                   `json:"validationStats,omitempty"`
}

type Stats struct {
	Total     int          `json:"total"`
	Eligible  int          `json:"eligible"`
	Valid     int          `json:"valid"`
	Invalid   int          `json:"invalid"`
	Dropped   int          `json:"dropped"`
	TopErrors []ErrorCount `json:"topErrors,omitempty"`
}

type ErrorCount struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type Assembler struct {
	logger *logger.Logger
	opts   Options
}

func New(log *logger.Logger, opts Options) *Assembler {
	return &Assembler{logger: log, opts: opts}
}

// Build selects eligible products, finalizes each item over the full
// attribute schema, and wraps them with the shop's seller identity.
func (a *Assembler) Build(shop *models.Shop, products []models.Product) *Payload {
	stats := &Stats{Total: len(products)}
	errorCounts := map[string]int{}
	items := make([]map[string]interface{}, 0, len(products))

	for i := range products {
		p := &products[i]
		if !eligible(p) {
			continue
		}
		stats.Eligible++

		item := a.buildItem(shop, p)

		valid := p.IsValid
		if a.opts.Revalidate {
			result := validation.Validate(item, false, validationContext(p))
			valid = result.IsValid
			for _, issue := range result.Errors {
				errorCounts[issue.Error]++
			}
		} else {
			for _, issue := range p.Errors {
				errorCounts[issue.Error]++
			}
		}

		if valid {
			stats.Valid++
		} else {
			stats.Invalid++
			if a.opts.DropInvalid {
				stats.Dropped++
				continue
			}
		}
		items = append(items, item)
	}

	stats.TopErrors = topErrors(errorCounts, 5)
	a.logger.Info("feed assembled for shop %s: %d/%d products eligible, %d valid, %d dropped",
		shop.ID, stats.Eligible, stats.Total, stats.Valid, stats.Dropped)
	for _, e := range stats.TopErrors {
		a.logger.Info("feed validation: %dx %q", e.Count, e.Message)
	}

	return &Payload{
		Seller: Seller{
			ID:             shop.ID,
			Name:           shop.Settings.SellerName,
			URL:            shop.Settings.SellerURL,
			PrivacyPolicy:  shop.Settings.SellerPrivacyPolicy,
			TermsOfService: shop.Settings.SellerTos,
		},
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
		Items:           items,
		ValidationStats: stats,
	}
}

// buildItem copies the stored attribute set over the full schema key set.
// The hardwired attributes are always recomputed rather than trusted from
// cache; stored keys outside the schema indicate drift and are logged and
// dropped.
func (a *Assembler) buildItem(shop *models.Shop, p *models.Product) map[string]interface{} {
	item := make(map[string]interface{}, len(schema.Attributes))
	for _, attr := range schema.Attributes {
		item[attr.Name] = p.Attributes[attr.Name]
	}
	for key := range p.Attributes {
		if !schema.Has(key) {
			a.logger.Warn("shop %s product %s: attribute %q not in feed schema, dropping", shop.ID, p.ID, key)
		}
	}

	if id := transform.StableID(p.RawData, shop.ID); id != nil {
		item["id"] = id
	}
	item["enable_checkout"] = "false"

	return item
}

// WriteJSONL serializes items as newline-delimited JSON, one item per line.
func WriteJSONL(w io.Writer, items []map[string]interface{}) error {
	for i, item := range items {
		line, err := json.Marshal(item)
		if err != nil {
			return err
		}
		if i > 0 {
			if _, err := w.Write([]byte("\n")); err != nil {
				return err
			}
		}
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

func eligible(p *models.Product) bool {
	if !p.SelectedForSync || p.SyncStatus != models.SyncStatusCompleted || !p.IsValid {
		return false
	}
	return cast.ToString(p.Attributes["enable_search"]) == "true"
}

func validationContext(p *models.Product) validation.Context {
	return validation.Context{
		IsVariation: p.IsVariation(),
		ProductType: p.Type,
	}
}

func topErrors(counts map[string]int, n int) []ErrorCount {
	all := make([]ErrorCount, 0, len(counts))
	for msg, count := range counts {
		all = append(all, ErrorCount{Message: msg, Count: count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Message < all[j].Message
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}
