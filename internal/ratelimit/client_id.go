package ratelimit

// ClientID derives the rate-limiter key for a request: "key:<prefix>" for
// an authenticated caller, "ip:<addr>" otherwise (§4.4).
func ClientID(apiKeyPrefix, clientIP string) string {
	if apiKeyPrefix != "" {
		return "key:" + apiKeyPrefix
	}
	return "ip:" + clientIP
}
