package middleware

import "strings"

// publicPrefixes are the path prefixes C9 admits without an API key or rate
// limit check (§4.3, §4.4): health, docs, public verification, admin auth,
// the admin surface itself (which authenticates via its own JWT), and the
// one quick, unauthenticated quota-free validation endpoint.
var publicPrefixes = []string{
	"/health",
	"/metrics",
	"/docs",
	"/openapi",
	"/api/v1/reports/verify/",
	"/api/v1/metadata/data-freshness",
	"/api/v1/auth/login",
	"/api/v1/admin/",
	"/api/v1/validations/quick",
}

// IsPublicRoute reports whether path should bypass API-key admission and
// rate limiting. OPTIONS preflight always bypasses both regardless of path.
func IsPublicRoute(method, path string) bool {
	if method == "OPTIONS" {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
