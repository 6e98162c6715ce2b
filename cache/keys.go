package cache

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// sanitizeKey makes a cache key safe for use as a filename
func sanitizeKey(key string) string {
	replacements := map[string]string{
		"/":  "_",
		"\\": "_",
		":":  "_",
		"*":  "_",
		"?":  "_",
		"\"": "_",
		"<":  "_",
		">":  "_",
		"|":  "_",
		"#":  "_",
		"&":  "_",
		"=":  "_",
		" ":  "_",
	}

	result := key
	for old, new := range replacements {
		result = strings.ReplaceAll(result, old, new)
	}

	// Hash very long keys to stay under filesystem name limits
	if len(result) > 200 {
		hash := md5.Sum([]byte(key))
		return fmt.Sprintf("long_%x.json", hash)
	}

	return result + ".json"
}
