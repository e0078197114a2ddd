package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// OptionalQuery returns the trimmed query parameter, or nil when it is absent
// or blank. Values longer than maxLen are rejected.
func OptionalQuery(r *http.Request, key string, maxLen int) (*string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	if maxLen > 0 && len(raw) > maxLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter too long").WithDetails(map[string]any{"field": key, "max": maxLen})
	}
	return &raw, nil
}
