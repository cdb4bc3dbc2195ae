// Package validation applies the per-attribute feed rules to an auto-filled
// attribute set. It never panics on data shape; a malformed set just
// accumulates issues.
package validation

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"feedsync/internal/catalog/schema"
	"feedsync/internal/models"
)

// Context carries the product facts conditional rules depend on.
type Context struct {
	IsVariation bool
	ProductType string

	// VariationAxes names the attribute axes this variation is distinguished
	// by (lowercased, e.g. "color", "size"). Axis-specific conditional rules
	// only fire for axes the product actually has.
	VariationAxes []string
}

type Result struct {
	IsValid  bool                `json:"isValid"`
	Errors   []models.FieldIssue `json:"errors"`
	Warnings []models.FieldIssue `json:"warnings"`
}

// Validate checks every schema attribute against its requirement level.
// Required misses and failed conditionals are errors; recommended misses are
// warnings; optional attributes never contribute to pass/fail.
func Validate(attrs map[string]interface{}, enableCheckout bool, pctx Context) Result {
	result := Result{
		Errors:   []models.FieldIssue{},
		Warnings: []models.FieldIssue{},
	}

	for _, attr := range schema.Attributes {
		present := hasValue(attrs[attr.Name])

		switch attr.Requirement {
		case schema.Required:
			if !present {
				result.Errors = append(result.Errors, models.FieldIssue{
					Field: attr.Name,
					Error: "required field is missing",
				})
			}
		case schema.Recommended:
			if !present {
				result.Warnings = append(result.Warnings, models.FieldIssue{
					Field: attr.Name,
					Error: "recommended field is missing",
				})
			}
		case schema.Conditional:
			if present {
				continue
			}
			if reason := conditionalReason(attr.Name, attrs, enableCheckout, pctx); reason != "" {
				result.Errors = append(result.Errors, models.FieldIssue{
					Field: attr.Name,
					Error: reason,
				})
			}
		}
	}

	result.Errors = append(result.Errors, crossFieldIssues(attrs)...)
	result.IsValid = len(result.Errors) == 0
	return result
}

// conditionalReason evaluates the predicate for a conditional attribute and
// returns the error message when the attribute is required for this product.
// An empty string means the attribute is optional here.
func conditionalReason(name string, attrs map[string]interface{}, enableCheckout bool, pctx Context) string {
	switch name {
	case "item_group_id":
		if pctx.IsVariation {
			return "required for variation products"
		}
	case "color", "size":
		if pctx.IsVariation && hasAxis(pctx.VariationAxes, name) {
			return "required for variations distinguished by " + name
		}
	case "sale_price_effective_date":
		if hasValue(attrs["sale_price"]) {
			return "required when sale_price is set"
		}
	case "availability_date":
		if cast.ToString(attrs["availability"]) == "preorder" {
			return "required for preorder items"
		}
	case "gtin", "offer_id", "seller_privacy_policy", "seller_tos",
		"return_policy", "return_window":
		if enableCheckout {
			return "required when checkout is enabled"
		}
	}
	return ""
}

// crossFieldIssues covers rules that read more than one attribute at once.
func crossFieldIssues(attrs map[string]interface{}) []models.FieldIssue {
	var issues []models.FieldIssue

	sale, saleOK := leadingNumber(attrs["sale_price"])
	regular, regularOK := leadingNumber(attrs["price"])
	if saleOK && regularOK && sale >= regular {
		issues = append(issues, models.FieldIssue{
			Field: "sale_price",
			Error: "sale price must be less than the regular price",
		})
	}

	return issues
}

// leadingNumber parses the numeric part of values like "19.99 USD".
func leadingNumber(value interface{}) (float64, bool) {
	s := strings.TrimSpace(cast.ToString(value))
	if s == "" {
		return 0, false
	}
	if idx := strings.IndexByte(s, ' '); idx > 0 {
		s = s[:idx]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func hasAxis(axes []string, name string) bool {
	for _, axis := range axes {
		if strings.EqualFold(axis, name) {
			return true
		}
	}
	return false
}

// hasValue is the presence check shared by every rule class: non-nil,
// non-empty string, non-empty slice.
func hasValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case []interface{}:
		return len(v) > 0
	case []string:
		return len(v) > 0
	default:
		return true
	}
}
