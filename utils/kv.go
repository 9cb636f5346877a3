package utils

import "strings"

// ParseKeyValues: split "k1=v1,k2=v2" into a map; an item without '=' maps to an empty value
func ParseKeyValues(s string) map[string]string {
	result := map[string]string{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if len(item) == 0 {
			continue
		}
		parts := strings.SplitN(item, "=", 2)
		if len(parts) == 1 {
			result[parts[0]] = ""
			continue
		}
		result[parts[0]] = parts[1]
	}
	return result
}
