// Package extract resolves field paths against raw WooCommerce product
// documents. Extraction is total: any missing segment, shape mismatch, or
// out-of-range index resolves to nil, never a panic.
package extract

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

type pathKind int

const (
	directPath pathKind = iota
	attributeLookup
	metaLookup
)

type segment struct {
	name  string
	index int // -1 when the segment is not indexed
}

// Path is a parsed field path. The grammar is closed: dotted segments,
// optional [n] indexing, and the two special prefixes "attributes." and
// "meta_data." which address WooCommerce's array-of-named-entries shapes.
type Path struct {
	kind     pathKind
	segments []segment
	key      string // attribute name or meta key for the lookup kinds
}

// Parse builds a Path descriptor. Parsing never fails; a degenerate input
// simply produces a path that resolves to nil.
func Parse(fieldPath string) Path {
	if name, ok := strings.CutPrefix(fieldPath, "attributes."); ok && name != "" {
		return Path{kind: attributeLookup, key: name}
	}
	if key, ok := strings.CutPrefix(fieldPath, "meta_data."); ok && key != "" {
		return Path{kind: metaLookup, key: key}
	}

	parts := strings.Split(fieldPath, ".")
	segments := make([]segment, 0, len(parts))
	for _, part := range parts {
		seg := segment{name: part, index: -1}
		if open := strings.IndexByte(part, '['); open >= 0 && strings.HasSuffix(part, "]") {
			if idx, err := strconv.Atoi(part[open+1 : len(part)-1]); err == nil && idx >= 0 {
				seg.name = part[:open]
				seg.index = idx
			}
		}
		segments = append(segments, seg)
	}
	return Path{kind: directPath, segments: segments}
}

// Resolve walks the raw document. Returns nil on any miss.
func (p Path) Resolve(raw map[string]interface{}) interface{} {
	if raw == nil {
		return nil
	}
	switch p.kind {
	case attributeLookup:
		return resolveAttribute(raw, p.key)
	case metaLookup:
		return resolveMeta(raw, p.key)
	default:
		return resolveDirect(raw, p.segments)
	}
}

// Extract resolves fieldPath against raw in one call.
func Extract(raw map[string]interface{}, fieldPath string) interface{} {
	return Parse(fieldPath).Resolve(raw)
}

func resolveDirect(raw map[string]interface{}, segments []segment) interface{} {
	var current interface{} = raw
	for _, seg := range segments {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = obj[seg.name]
		if !ok || current == nil {
			return nil
		}
		if seg.index >= 0 {
			arr, ok := current.([]interface{})
			if !ok || seg.index >= len(arr) {
				return nil
			}
			current = arr[seg.index]
		}
	}
	if s, ok := current.(string); ok && s == "" {
		return nil
	}
	return current
}

// resolveAttribute matches an entry of the product's attributes array by
// name, case-insensitively. Variations carry a scalar "option"; parent
// products carry an "options" array, joined with commas when multi-valued.
func resolveAttribute(raw map[string]interface{}, name string) interface{} {
	entries, ok := raw["attributes"].([]interface{})
	if !ok {
		return nil
	}
	for _, entry := range entries {
		attr, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if !strings.EqualFold(cast.ToString(attr["name"]), name) {
			continue
		}
		if option := cast.ToString(attr["option"]); option != "" {
			return option
		}
		if options, ok := attr["options"].([]interface{}); ok && len(options) > 0 {
			values := make([]string, 0, len(options))
			for _, o := range options {
				if s := cast.ToString(o); s != "" {
					values = append(values, s)
				}
			}
			switch len(values) {
			case 0:
				return nil
			case 1:
				return values[0]
			default:
				return strings.Join(values, ", ")
			}
		}
		return nil
	}
	return nil
}

// resolveMeta scans the meta_data array for a matching key.
func resolveMeta(raw map[string]interface{}, key string) interface{} {
	entries, ok := raw["meta_data"].([]interface{})
	if !ok {
		return nil
	}
	for _, entry := range entries {
		meta, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if cast.ToString(meta["key"]) != key {
			continue
		}
		value := meta["value"]
		if s, ok := value.(string); ok && s == "" {
			return nil
		}
		return value
	}
	return nil
}
