package transaction

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NormalizeMedicine renders a purchase's medicine field as display text and
// counts the items it names. A string holding JSON is decoded first.
func NormalizeMedicine(v interface{}) (string, int) {
	if s, ok := v.(string); ok {
		var decoded interface{}
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return s, 1
		}
		v = decoded
	}

	switch m := v.(type) {
	case []interface{}:
		parts := make([]string, 0, len(m))
		count := 0
		for _, item := range m {
			if obj, ok := item.(map[string]interface{}); ok {
				text, qty := medicineLine(obj)
				parts = append(parts, text)
				count += qty
				continue
			}
			parts = append(parts, textOf(item))
			count++
		}
		return strings.Join(parts, ", "), count
	case map[string]interface{}:
		return medicineLine(m)
	default:
		return textOf(m), 1
	}
}

// medicineLine formats one {name|medicine, qty|quantity} object as "name (xqty)".
func medicineLine(obj map[string]interface{}) (string, int) {
	name := "Unknown"
	if v := firstPresent(obj, "name", "medicine"); v != nil {
		name = textOf(v)
	}

	qtyText, qty := "1", 1
	if v := firstPresent(obj, "qty", "quantity"); v != nil {
		qtyText = textOf(v)
		qty = quantityOf(v)
	}
	return fmt.Sprintf("%s (x%s)", name, qtyText), qty
}

func firstPresent(obj map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// quantityOf reads a positive whole quantity, counting anything else as one item.
func quantityOf(v interface{}) int {
	var f float64
	switch q := v.(type) {
	case float64:
		f = q
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(q), 64)
		if err != nil {
			return 1
		}
		f = parsed
	default:
		return 1
	}
	if f < 1 || f > math.MaxInt32 || f != math.Trunc(f) {
		return 1
	}
	return int(f)
}

// textOf renders a decoded JSON value the way clients wrote it.
func textOf(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// optionalText keeps absent and null values as nil.
func optionalText(v interface{}) *string {
	if v == nil {
		return nil
	}
	s := textOf(v)
	return &s
}

// parsePrice accepts a JSON number or a numeric string.
func parsePrice(v interface{}) (float64, error) {
	var f float64
	switch p := v.(type) {
	case float64:
		f = p
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, fmt.Errorf("price_eth must be a number, got %q", p)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("price_eth must be a number, got %s", textOf(v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("price_eth must be finite")
	}
	return f, nil
}
