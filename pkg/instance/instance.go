package instance

import "os"

// GetID returns the identifier logged for this process: STOREFRONT_INSTANCE_ID,
// then the host name, then "local".
func GetID() string {
	if id := os.Getenv("STOREFRONT_INSTANCE_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
