package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleProduct() map[string]interface{} {
	return map[string]interface{}{
		"id":   float64(1042),
		"name": "Organic Cotton T-Shirt",
		"dimensions": map[string]interface{}{
			"length": "30",
			"width":  "",
		},
		"images": []interface{}{
			map[string]interface{}{"src": "https://cdn.example.com/img/front.jpg"},
			map[string]interface{}{"src": "https://cdn.example.com/img/back.jpg"},
		},
		"attributes": []interface{}{
			map[string]interface{}{
				"name":    "Color",
				"options": []interface{}{"Red", "Blue"},
			},
			map[string]interface{}{
				"name":   "Size",
				"option": "M",
			},
			map[string]interface{}{
				"name":    "Material",
				"options": []interface{}{"Cotton"},
			},
		},
		"meta_data": []interface{}{
			map[string]interface{}{"key": "_gtin", "value": "00012345678905"},
			map[string]interface{}{"key": "_warning", "value": ""},
		},
	}
}

func TestExtractDirectPath(t *testing.T) {
	raw := sampleProduct()

	assert.Equal(t, "Organic Cotton T-Shirt", Extract(raw, "name"))
	assert.Equal(t, "30", Extract(raw, "dimensions.length"))
}

func TestExtractIndexedPath(t *testing.T) {
	raw := sampleProduct()

	assert.Equal(t, "https://cdn.example.com/img/front.jpg", Extract(raw, "images[0].src"))
	assert.Equal(t, "https://cdn.example.com/img/back.jpg", Extract(raw, "images[1].src"))
	assert.Nil(t, Extract(raw, "images[5].src"))
}

func TestExtractNeverPanics(t *testing.T) {
	raw := sampleProduct()

	assert.Nil(t, Extract(nil, "name"))
	assert.Nil(t, Extract(raw, "missing"))
	assert.Nil(t, Extract(raw, "missing.deeper.path"))
	assert.Nil(t, Extract(raw, "name.not_an_object"))
	assert.Nil(t, Extract(raw, "images[abc].src"))
	assert.Nil(t, Extract(raw, ""))
}

func TestExtractEmptyStringIsNil(t *testing.T) {
	raw := sampleProduct()

	assert.Nil(t, Extract(raw, "dimensions.width"))
}

func TestExtractAttributeOption(t *testing.T) {
	raw := sampleProduct()

	// Variations carry a scalar option.
	assert.Equal(t, "M", Extract(raw, "attributes.Size"))
}

func TestExtractAttributeOptions(t *testing.T) {
	raw := sampleProduct()

	// Parent products carry an options array; multi-valued joins with commas.
	assert.Equal(t, "Red, Blue", Extract(raw, "attributes.Color"))
	assert.Equal(t, "Cotton", Extract(raw, "attributes.Material"))
}

func TestExtractAttributeCaseInsensitive(t *testing.T) {
	raw := sampleProduct()

	assert.Equal(t, "M", Extract(raw, "attributes.size"))
	assert.Equal(t, "Red, Blue", Extract(raw, "attributes.COLOR"))
}

func TestExtractAttributeMissing(t *testing.T) {
	raw := sampleProduct()

	assert.Nil(t, Extract(raw, "attributes.Pattern"))
	assert.Nil(t, Extract(map[string]interface{}{"attributes": "not-a-list"}, "attributes.Color"))
}

func TestExtractMetaData(t *testing.T) {
	raw := sampleProduct()

	assert.Equal(t, "00012345678905", Extract(raw, "meta_data._gtin"))
	assert.Nil(t, Extract(raw, "meta_data._warning"))
	assert.Nil(t, Extract(raw, "meta_data._nope"))
}

func TestExtractMetaKeyIsCaseSensitive(t *testing.T) {
	raw := sampleProduct()

	assert.Nil(t, Extract(raw, "meta_data._GTIN"))
}

func TestParseReusablePath(t *testing.T) {
	p := Parse("images[0].src")
	raw := sampleProduct()

	assert.Equal(t, "https://cdn.example.com/img/front.jpg", p.Resolve(raw))
	assert.Nil(t, p.Resolve(nil))
}
