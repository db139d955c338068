package cache

import "strings"

const (
	GlobalKeyPrefix = "quizmatch"
)

// GenerateCacheKey builds "quizmatch:<service>:<object>:<id>[:<params joined by _>]".
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// QuizKey is where the active quiz tree is cached.
func QuizKey(quizID string) string {
	return GenerateCacheKey("submission", "quiz", quizID)
}

// RateLimitKey scopes a limiter window to one endpoint, quiz and client address.
func RateLimitKey(endpoint, quizID, clientIP string) string {
	return GenerateCacheKey("ratelimit", endpoint, quizID, clientIP)
}
