package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase/tools/types"
)

// NormalizeInputs reduces an arbitrary payload to a map of finite numbers
// keyed by trimmed variable name. Finite numbers are kept as-is, numeric
// strings are parsed, and null / empty / non-numeric entries are dropped so
// that an absent measurement stays absent instead of becoming zero. Stored
// rows and network payloads go through the same path, so re-evaluation sees
// exactly what the original save saw.
func NormalizeInputs(raw any) map[string]float64 {
	out := make(map[string]float64)

	switch v := raw.(type) {
	case nil:
		return out
	case types.JSONRaw:
		return normalizeJSON([]byte(v))
	case json.RawMessage:
		return normalizeJSON([]byte(v))
	case []byte:
		return normalizeJSON(v)
	case map[string]float64:
		for key, num := range v {
			putNormalized(out, key, num)
		}
		return out
	case map[string]any:
		for key, val := range v {
			name := strings.TrimSpace(key)
			if name == "" {
				continue
			}
			if num, ok := normalizeValue(val); ok {
				out[name] = num
			}
		}
		return out
	default:
		return out
	}
}

func normalizeJSON(data []byte) map[string]float64 {
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return map[string]float64{}
	}
	return NormalizeInputs(decoded)
}

func putNormalized(out map[string]float64, key string, num float64) {
	name := strings.TrimSpace(key)
	if name == "" || math.IsNaN(num) || math.IsInf(num, 0) {
		return
	}
	out[name] = num
}

// normalizeValue converts a single entry to a finite float64.
// The bool result reports whether the value counts as measured.
func normalizeValue(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return normalizeValue(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		num, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return normalizeValue(num)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		num, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return normalizeValue(num)
	default:
		// null, bool, nested objects: not a measurement
		return 0, false
	}
}
