package schema

import "feedsync/internal/catalog/transform"

// Requirement is the validation severity class of a feed attribute.
type Requirement string

const (
	Required    Requirement = "REQUIRED"
	Recommended Requirement = "RECOMMENDED"
	Conditional Requirement = "CONDITIONAL"
	Optional    Requirement = "OPTIONAL"
)

// Attribute describes one field of the target feed format: how severe a miss
// is, where it shows up in the UI, where it defaults from in a WooCommerce
// product document, and which transform shapes the raw value.
type Attribute struct {
	Name        string
	Requirement Requirement
	Category    string
	Description string
	Example     string

	// SourceField is the default WooCommerce field path ("" when the
	// attribute has no product-level source).
	SourceField string

	// DependsOn documents the predicate for Conditional attributes.
	DependsOn string

	// Transform is the transform kind applied after extraction
	// (transform.KindNone for pass-through).
	Transform transform.Kind
}

// Category is a display grouping for the score breakdown.
type Category struct {
	Key   string
	Label string
	Order int
}

// Lookup returns the attribute definition by name.
func Lookup(name string) (Attribute, bool) {
	a, ok := byName[name]
	return a, ok
}

// Has reports whether name is a known feed attribute.
func Has(name string) bool {
	_, ok := byName[name]
	return ok
}

// Names returns all attribute names in declaration order.
func Names() []string {
	names := make([]string, len(Attributes))
	for i, a := range Attributes {
		names[i] = a.Name
	}
	return names
}

// IsLocked reports whether the attribute's mapping is platform-fixed and not
// user-editable.
func IsLocked(name string) bool {
	_, ok := LockedMappings[name]
	return ok
}

// IsShopManaged reports whether the attribute is sourced from shop settings
// rather than a per-product field mapping.
func IsShopManaged(name string) bool {
	return shopManaged[name]
}

// HasDefaultMapping reports whether the attribute's default source path
// applies even without a user mapping. Kept to a fixed subset; everything
// else only maps when the merchant (or the mapping bootstrap) says so.
func HasDefaultMapping(name string) bool {
	return defaultMapped[name]
}

// DefaultMappings returns the default source path for every mappable
// attribute that declares one. Used to seed a new shop's mapping table;
// locked and shop-managed attributes are excluded because no mapping row
// ever governs them.
func DefaultMappings() map[string]string {
	m := make(map[string]string)
	for _, a := range Attributes {
		if a.SourceField == "" || IsLocked(a.Name) || IsShopManaged(a.Name) {
			continue
		}
		m[a.Name] = a.SourceField
	}
	return m
}

var byName = func() map[string]Attribute {
	m := make(map[string]Attribute, len(Attributes))
	for _, a := range Attributes {
		m[a.Name] = a
	}
	return m
}()
