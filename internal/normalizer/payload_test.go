package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPrice_KeyPrecedence(t *testing.T) {
	// "price" outranks "total" even when both are present.
	v := extractPrice(map[string]any{"total": 99.0, "price": 10.0})
	assert.NotNil(t, v)
	assert.Equal(t, 10.0, *v)

	v = extractPrice(map[string]any{"revenue": 42.5})
	assert.NotNil(t, v)
	assert.Equal(t, 42.5, *v)

	assert.Nil(t, extractPrice(map[string]any{"unrelated": 1.0}))
	assert.Nil(t, extractPrice(nil))
}

func TestExtractPrice_SumsItemPrices(t *testing.T) {
	payload := map[string]any{
		"items": []any{
			map[string]any{"price": 10.0},
			map[string]any{"price": 5.5},
			map[string]any{"name": "no price"},
		},
	}

	v := extractPrice(payload)

	assert.NotNil(t, v)
	assert.Equal(t, 15.5, *v)
}

func TestExtractQuantity_TopLevelThenItems(t *testing.T) {
	v := extractQuantity(map[string]any{"quantity": 3.0})
	assert.NotNil(t, v)
	assert.Equal(t, 3.0, *v)

	payload := map[string]any{
		"items": []any{
			map[string]any{"quantity": 2.0},
			map[string]any{"quantity": 1.0},
		},
	}
	v = extractQuantity(payload)
	assert.NotNil(t, v)
	assert.Equal(t, 3.0, *v)

	assert.Nil(t, extractQuantity(map[string]any{"items": []any{}}))
}

func TestExtractProductID_Fallbacks(t *testing.T) {
	assert.Equal(t, "p-1", extractProductID(map[string]any{"product_id": "p-1", "sku": "s-1"}))
	assert.Equal(t, "i-1", extractProductID(map[string]any{"item_id": "i-1"}))
	assert.Equal(t, "s-1", extractProductID(map[string]any{"sku": "s-1"}))

	payload := map[string]any{
		"items": []any{
			map[string]any{"sku": "item-sku"},
		},
	}
	assert.Equal(t, "item-sku", extractProductID(payload))

	assert.Empty(t, extractProductID(map[string]any{}))
}

func TestExtractProductID_NumericIDsCoerced(t *testing.T) {
	// JSON numbers decode to float64; numeric product IDs keep their digits.
	assert.Equal(t, "12345", extractProductID(map[string]any{"product_id": 12345.0}))
}

func TestToFloat_StringAndNumericForms(t *testing.T) {
	v := toFloat("19.99")
	assert.NotNil(t, v)
	assert.Equal(t, 19.99, *v)

	v = toFloat(7)
	assert.NotNil(t, v)
	assert.Equal(t, 7.0, *v)

	assert.Nil(t, toFloat("not a number"))
	assert.Nil(t, toFloat(nil))
	assert.Nil(t, toFloat(true))
}
