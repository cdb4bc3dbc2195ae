// Package autofill resolves the complete feed attribute set for one raw
// product. Resolution runs an ordered resolver chain per attribute; the
// output always contains every schema attribute key, nil where nothing
// resolved.
package autofill

import (
	"strconv"

	"feedsync/internal/catalog/extract"
	"feedsync/internal/catalog/schema"
	"feedsync/internal/catalog/transform"
	"feedsync/internal/models"
)

// Input is everything one fill needs. Mappings maps attribute name to source
// path; a present-but-nil path means the merchant explicitly unmapped the
// attribute. Overrides are per-product final values.
type Input struct {
	Raw          map[string]interface{}
	ShopID       string
	Settings     models.ShopSettings
	Mappings     map[string]*string
	Overrides    map[string]string
	EnableSearch *bool
}

type Engine struct {
	chain []resolver
}

// resolver is one step of the precedence chain. claimed true short-circuits
// the chain even when the value is nil; otherwise the chain falls through on
// a nil result.
type resolver struct {
	name string
	fn   func(attr schema.Attribute, in Input, ctx transform.Context) (value interface{}, claimed bool)
}

func New() *Engine {
	return &Engine{
		chain: []resolver{
			{name: "locked", fn: resolveLocked},
			{name: "override", fn: resolveOverride},
			{name: "shop", fn: resolveShopManaged},
			{name: "mapped", fn: resolveMapped},
			{name: "derived", fn: resolveDerived},
		},
	}
}

// Fill produces the complete attribute set for one raw product.
func (e *Engine) Fill(in Input) map[string]interface{} {
	out := make(map[string]interface{}, len(schema.Attributes))
	ctx := transform.Context{
		ShopID:   in.ShopID,
		Settings: in.Settings,
		Resolved: out,
	}

	for _, attr := range schema.Attributes {
		out[attr.Name] = e.resolve(attr, in, ctx)
	}

	// The offer ID folds in the resolved color and size, so it settles only
	// after the rest of the set.
	if attr, ok := schema.Lookup("offer_id"); ok {
		out[attr.Name] = e.resolve(attr, in, ctx)
	}

	// Hardwired attributes sit outside the mapping system entirely.
	out["id"] = transform.StableID(in.Raw, in.ShopID)
	out["enable_search"] = strconv.FormatBool(enableSearch(in))
	out["enable_checkout"] = "false" // checkout is not available on this platform

	return out
}

func (e *Engine) resolve(attr schema.Attribute, in Input, ctx transform.Context) interface{} {
	for _, r := range e.chain {
		value, claimed := r.fn(attr, in, ctx)
		value = normalize(value)
		if claimed || value != nil {
			return value
		}
	}
	return nil
}

// resolveLocked applies platform-fixed mappings. A locked attribute resolves
// here unconditionally; user mappings and overrides never reach it.
func resolveLocked(attr schema.Attribute, in Input, ctx transform.Context) (interface{}, bool) {
	path, ok := schema.LockedMappings[attr.Name]
	if !ok {
		return nil, false
	}
	value := extract.Extract(in.Raw, path)
	return transform.Apply(attr.Transform, value, in.Raw, ctx), true
}

// resolveOverride returns the merchant's per-product value verbatim; it is
// already final, so no transform applies.
func resolveOverride(attr schema.Attribute, in Input, ctx transform.Context) (interface{}, bool) {
	value, ok := in.Overrides[attr.Name]
	if !ok || value == "" {
		return nil, false
	}
	return value, true
}

func resolveShopManaged(attr schema.Attribute, in Input, ctx transform.Context) (interface{}, bool) {
	if !schema.IsShopManaged(attr.Name) {
		return nil, false
	}
	s := in.Settings
	switch attr.Name {
	case "seller_name":
		return nilIfEmpty(s.SellerName), false
	case "seller_url":
		return nilIfEmpty(s.SellerURL), false
	case "seller_privacy_policy":
		return nilIfEmpty(s.SellerPrivacyPolicy), false
	case "seller_tos":
		return nilIfEmpty(s.SellerTos), false
	case "return_policy":
		return nilIfEmpty(s.ReturnPolicy), false
	case "return_window":
		if s.ReturnWindow == nil {
			return nil, false
		}
		return *s.ReturnWindow, false
	}
	return nil, false
}

// resolveMapped extracts through the shop's field mapping, or the attribute's
// default source path for the fixed subset that maps out of the box. An
// explicit nil mapping suppresses the default.
func resolveMapped(attr schema.Attribute, in Input, ctx transform.Context) (interface{}, bool) {
	var path string
	if mapped, ok := in.Mappings[attr.Name]; ok {
		if mapped == nil {
			return nil, false
		}
		path = *mapped
	} else if attr.SourceField != "" && schema.HasDefaultMapping(attr.Name) {
		path = attr.SourceField
	}
	if path == "" {
		return nil, false
	}
	value := extract.Extract(in.Raw, path)
	return transform.Apply(attr.Transform, value, in.Raw, ctx), false
}

// resolveDerived computes attributes whose transforms read the raw document
// directly (category path, barcode, brand, custom axes, constant defaults).
// These need no source path at all.
func resolveDerived(attr schema.Attribute, in Input, ctx transform.Context) (interface{}, bool) {
	if !derivedKinds[attr.Transform] {
		return nil, false
	}
	return transform.Apply(attr.Transform, nil, in.Raw, ctx), false
}

var derivedKinds = map[transform.Kind]bool{
	transform.KindCategoryPath:          true,
	transform.KindGTIN:                  true,
	transform.KindBrand:                 true,
	transform.KindFirstCustomAttribute:  true,
	transform.KindSecondCustomAttribute: true,
	transform.KindAdditionalImages:      true,
	transform.KindSaleDateRange:         true,
	transform.KindDefaultNew:            true,
	transform.KindDefaultZero:           true,
}

func enableSearch(in Input) bool {
	if in.EnableSearch != nil {
		return *in.EnableSearch
	}
	return in.Settings.DefaultEnableSearch
}

func normalize(value interface{}) interface{} {
	if value == nil {
		return nil
	}
	if s, ok := value.(string); ok && s == "" {
		return nil
	}
	return value
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
