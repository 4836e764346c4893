package geometry

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// HashGeoJSON computes the SHA-256 of a canonical serialization of a
// decoded JSON value: object keys sorted recursively, no whitespace, stable
// number formatting. Order-independent in the input's key ordering (§8
// invariant 5), since canonicalize re-sorts before hashing.
func HashGeoJSON(raw []byte) (string, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode geometry for hashing: %w", err)
	}

	canon := canonicalize(decoded)
	sum := sha256.Sum256([]byte(canon))
	return hex.EncodeToString(sum[:]), nil
}

// canonicalize renders v as compact JSON with object keys sorted
// recursively and numbers formatted via strconv for stability across
// encoding/json's float formatting quirks.
func canonicalize(v any) string {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := "{"
		for i, k := range keys {
			if i > 0 {
				out += ","
			}
			out += strconv.Quote(k) + ":" + canonicalize(val[k])
		}
		return out + "}"
	case []any:
		out := "["
		for i, item := range val {
			if i > 0 {
				out += ","
			}
			out += canonicalize(item)
		}
		return out + "]"
	case string:
		return strconv.Quote(val)
	case float64:
		return formatNumber(val)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return "null"
	default:
		b, _ := json.Marshal(val)
		return string(b)
	}
}

// formatNumber renders floats the way json.Marshal would for an integer
// value (no trailing ".0") while preserving full precision otherwise, so
// identical numeric content always serializes identically.
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
