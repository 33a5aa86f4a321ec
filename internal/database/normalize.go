package database

import (
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"shophub/internal/models"
)

// normalizeProductDocument decodes documents written by older revisions, where
// numbers could be stored as strings or integers and category as an array.
func normalizeProductDocument(raw bson.M) (models.Product, error) {
	for _, key := range []string{"price", "discount", "rate"} {
		if val, ok := raw[key]; ok {
			raw[key] = toFloat(val)
		}
	}

	switch typed := raw["category"].(type) {
	case bson.A:
		raw["category"] = firstString(typed)
	case []interface{}:
		raw["category"] = firstString(typed)
	case string:
		raw["category"] = strings.TrimSpace(typed)
	case nil:
		raw["category"] = ""
	}

	data, err := bson.Marshal(raw)
	if err != nil {
		return models.Product{}, err
	}

	var p models.Product
	if err := bson.Unmarshal(data, &p); err != nil {
		return models.Product{}, err
	}

	p.Decorate()
	return p, nil
}

// toFloat coerces legacy numeric fields; anything non-finite reads as 0.
func toFloat(val interface{}) float64 {
	f := rawFloat(val)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

func rawFloat(val interface{}) float64 {
	switch typed := val.(type) {
	case float64:
		return typed
	case float32:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case int:
		return float64(typed)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func firstString(values []interface{}) string {
	for _, v := range values {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
