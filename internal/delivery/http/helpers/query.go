package helpers

import (
	"net/http"
	"strconv"
)

// ParseLimit reads limit from the request query string and clamps it to
// [1, max]. Invalid or missing values fall back to def.
func ParseLimit(r *http.Request, def, max int) int {
	limit := def
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			limit = v
			if limit > max {
				limit = max
			}
		}
	}
	return limit
}
