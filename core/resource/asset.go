package resource

import "strings"

// ResolveAssetURL turns a stored asset reference into a fetchable URL.
// Absolute http(s) URLs are returned unchanged; relative paths are prefixed with baseURL.
func ResolveAssetURL(baseURL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return ref
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(ref, "/")
}
