package textutil

import "strings"

// NormalizeStringMap trims keys and values, removing entries with empty keys.
func NormalizeStringMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]string, len(values))
	for key, value := range values {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		result[trimmedKey] = strings.TrimSpace(value)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// SplitCSV splits a comma-delimited field into trimmed, non-empty pieces,
// preserving the source order. The result is never nil so downstream JSON
// encodes an empty field as [] rather than null.
func SplitCSV(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// EqualsTrue reports whether the raw value equals the literal "true",
// case-insensitively. Absent or mismatched values are false.
func EqualsTrue(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "true")
}
