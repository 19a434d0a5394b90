package normalizer

import "strconv"

// Purchase payloads are loosely shaped: the price may live under several
// keys and line items may be nested under items[]. Extraction follows an
// explicit optional-field contract: a nil result means the payload does
// not carry the field, never a silently coerced zero.

var priceKeys = []string{"price", "total", "revenue", "amount", "value"}

// extractPrice returns the unit price from the first known price key, or
// the summed per-item price when only items[] carry one.
func extractPrice(payload map[string]any) *float64 {
	if payload == nil {
		return nil
	}
	for _, key := range priceKeys {
		if raw, ok := payload[key]; ok {
			return toFloat(raw)
		}
	}
	return sumFromItems(payload, "price")
}

// extractQuantity returns the top-level quantity, falling back to the sum
// of per-item quantities.
func extractQuantity(payload map[string]any) *float64 {
	if payload == nil {
		return nil
	}
	if raw, ok := payload["quantity"]; ok {
		if v := toFloat(raw); v != nil {
			return v
		}
	}
	return sumFromItems(payload, "quantity")
}

// extractProductID returns the first product identifier found, checking
// top-level keys before items[].
func extractProductID(payload map[string]any) string {
	if payload == nil {
		return ""
	}
	for _, key := range []string{"product_id", "item_id", "sku"} {
		if v := getStringField(payload, key); v != "" {
			return v
		}
	}
	for _, key := range []string{"product_id", "sku", "item_id"} {
		if v := firstFromItems(payload, key); v != "" {
			return v
		}
	}
	return ""
}

// sumFromItems sums a numeric field across items[]. Nil when there are no
// items or none carry the field.
func sumFromItems(payload map[string]any, key string) *float64 {
	items, ok := payload["items"].([]any)
	if !ok || len(items) == 0 {
		return nil
	}

	var sum float64
	found := false
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if v := toFloat(item[key]); v != nil {
			sum += *v
			found = true
		}
	}
	if !found {
		return nil
	}
	return &sum
}

// firstFromItems returns the first non-empty string value of key in items[].
func firstFromItems(payload map[string]any, key string) string {
	items, ok := payload["items"].([]any)
	if !ok {
		return ""
	}
	for _, raw := range items {
		if item, ok := raw.(map[string]any); ok {
			if v := getStringField(item, key); v != "" {
				return v
			}
		}
	}
	return ""
}

// Helper functions for extracting fields from parsed JSON payloads
func getStringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func toFloat(raw any) *float64 {
	switch v := raw.(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case int64:
		f := float64(v)
		return &f
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &f
		}
	}
	return nil
}
