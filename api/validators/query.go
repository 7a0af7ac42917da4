package validators

import (
	"net/http"
	"strings"
)

const maxQueryValueLen = 64

// QueryValues reads the named query parameters, trimmed and length-capped.
func QueryValues(r *http.Request, keys ...string) map[string]string {
	query := r.URL.Query()
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		out[key] = SanitizeString(query.Get(key), maxQueryValueLen)
	}
	return out
}

// QueryLower is QueryValues for a single case-insensitive parameter.
func QueryLower(r *http.Request, key string) string {
	return strings.ToLower(QueryValues(r, key)[key])
}
